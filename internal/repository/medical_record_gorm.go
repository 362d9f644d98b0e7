package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medvisit/visitflow/internal/domain/medical_record"
)

type MedicalRecordRepository struct {
	db *gorm.DB
}

func NewMedicalRecordRepository(db *gorm.DB) *MedicalRecordRepository {
	return &MedicalRecordRepository{db: db}
}

func (r *MedicalRecordRepository) Create(ctx context.Context, rec *medical_record.Record) error {
	return FromContext(ctx, r.db).Create(rec).Error
}

func (r *MedicalRecordRepository) CreateBatch(ctx context.Context, recs []*medical_record.Record) error {
	if len(recs) == 0 {
		return nil
	}
	return FromContext(ctx, r.db).Create(recs).Error
}

func (r *MedicalRecordRepository) GetByAppointmentID(ctx context.Context, appointmentID uuid.UUID) (*medical_record.Record, error) {
	var rec medical_record.Record
	err := FromContext(ctx, r.db).First(&rec, "appointment_id = ?", appointmentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, medical_record.ErrRecordNotFound
		}
		return nil, fmt.Errorf("fetching medical record: %w", err)
	}
	return &rec, nil
}
