package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medvisit/visitflow/internal/domain/catalog"
	"github.com/medvisit/visitflow/internal/domain/patient"
	"github.com/medvisit/visitflow/internal/domain/therapist"
)

type TherapistRepository struct {
	db *gorm.DB
}

func NewTherapistRepository(db *gorm.DB) *TherapistRepository {
	return &TherapistRepository{db: db}
}

func (r *TherapistRepository) GetByID(ctx context.Context, id uuid.UUID) (*therapist.Therapist, error) {
	var t therapist.Therapist
	err := FromContext(ctx, r.db).First(&t, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, therapist.ErrTherapistNotFound
		}
		return nil, fmt.Errorf("fetching therapist: %w", err)
	}
	return &t, nil
}

func (r *TherapistRepository) GetSchedule(ctx context.Context, therapistID uuid.UUID) (*therapist.Schedule, error) {
	var s therapist.Schedule
	err := FromContext(ctx, r.db).First(&s, "therapist_id = ?", therapistID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, therapist.ErrScheduleNotFound
		}
		return nil, fmt.Errorf("fetching therapist schedule: %w", err)
	}
	return &s, nil
}

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) GetService(ctx context.Context, id uuid.UUID) (*catalog.Service, error) {
	var s catalog.Service
	err := FromContext(ctx, r.db).First(&s, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrServiceNotFound
		}
		return nil, fmt.Errorf("fetching service: %w", err)
	}
	return &s, nil
}

func (r *CatalogRepository) GetPackage(ctx context.Context, id uuid.UUID) (*catalog.Package, error) {
	var p catalog.Package
	err := FromContext(ctx, r.db).First(&p, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrPackageNotFound
		}
		return nil, fmt.Errorf("fetching package: %w", err)
	}
	return &p, nil
}

func (r *CatalogRepository) GetLocation(ctx context.Context, id uuid.UUID) (*catalog.Location, error) {
	var l catalog.Location
	err := FromContext(ctx, r.db).First(&l, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrLocationNotFound
		}
		return nil, fmt.Errorf("fetching location: %w", err)
	}
	return &l, nil
}

type PatientRepository struct {
	db *gorm.DB
}

func NewPatientRepository(db *gorm.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

func (r *PatientRepository) GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	var p patient.Patient
	err := FromContext(ctx, r.db).First(&p, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, patient.ErrPatientNotFound
		}
		return nil, fmt.Errorf("fetching patient: %w", err)
	}
	return &p, nil
}

func (r *PatientRepository) GetActiveAddress(ctx context.Context, patientID uuid.UUID) (*patient.Address, error) {
	var a patient.Address
	err := FromContext(ctx, r.db).
		Where("patient_id = ? AND is_active = true", patientID).
		Order("updated_at DESC").
		First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, patient.ErrNoActiveAddress
		}
		return nil, fmt.Errorf("fetching active address: %w", err)
	}
	return &a, nil
}
