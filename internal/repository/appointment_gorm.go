package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medvisit/visitflow/internal/domain/appointment"
)

type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

func (r *AppointmentRepository) Create(ctx context.Context, a *appointment.Appointment) error {
	return FromContext(ctx, r.db).Create(a).Error
}

func (r *AppointmentRepository) CreateBatch(ctx context.Context, as []*appointment.Appointment) error {
	if len(as) == 0 {
		return nil
	}
	return FromContext(ctx, r.db).Create(as).Error
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	var a appointment.Appointment
	err := FromContext(ctx, r.db).First(&a, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appointment.ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("fetching appointment: %w", err)
	}
	return &a, nil
}

func (r *AppointmentRepository) Save(ctx context.Context, a *appointment.Appointment) error {
	return FromContext(ctx, r.db).Save(a).Error
}

func (r *AppointmentRepository) ListByPatient(ctx context.Context, patientID uuid.UUID, excludeID *uuid.UUID) ([]*appointment.Appointment, error) {
	q := FromContext(ctx, r.db).Where("patient_id = ?", patientID)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}

	var as []*appointment.Appointment
	if err := q.Order("appointment_date_time ASC NULLS LAST").Find(&as).Error; err != nil {
		return nil, fmt.Errorf("listing patient appointments: %w", err)
	}
	return as, nil
}

func (r *AppointmentRepository) ListSeries(ctx context.Context, rootID uuid.UUID) ([]*appointment.Appointment, error) {
	var as []*appointment.Appointment
	err := FromContext(ctx, r.db).
		Where("reference_appointment_id = ?", rootID).
		Order("visit_number ASC").
		Find(&as).Error
	if err != nil {
		return nil, fmt.Errorf("listing series visits: %w", err)
	}
	return as, nil
}

func (r *AppointmentRepository) ListGroup(ctx context.Context, registrationNumber string) ([]*appointment.Appointment, error) {
	var as []*appointment.Appointment
	err := FromContext(ctx, r.db).
		Where("registration_number = ?", registrationNumber).
		Order("visit_number ASC").
		Find(&as).Error
	if err != nil {
		return nil, fmt.Errorf("listing visit group: %w", err)
	}
	return as, nil
}

func (r *AppointmentRepository) CountTherapistBetween(ctx context.Context, therapistID uuid.UUID, from, to time.Time, excludeID *uuid.UUID) (int64, error) {
	q := FromContext(ctx, r.db).
		Model(&appointment.Appointment{}).
		Where("therapist_id = ?", therapistID).
		Where("appointment_date_time >= ? AND appointment_date_time < ?", from, to).
		Where("status <> ?", appointment.StatusCancelled)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting therapist appointments: %w", err)
	}
	return count, nil
}

func (r *AppointmentRepository) MaxRegistrationSuffix(ctx context.Context, codePrefix string) (int, error) {
	var latest string
	err := FromContext(ctx, r.db).
		Model(&appointment.Appointment{}).
		Where("registration_number LIKE ?", codePrefix+"-%").
		Order("registration_number DESC").
		Limit(1).
		Pluck("registration_number", &latest).Error
	if err != nil {
		return 0, fmt.Errorf("finding latest registration number: %w", err)
	}
	if latest == "" {
		return 0, nil
	}

	suffix := strings.TrimPrefix(latest, codePrefix+"-")
	n, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, fmt.Errorf("parsing registration number %q: %w", latest, err)
	}
	return n, nil
}
