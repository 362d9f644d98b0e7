package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists a new appointment.
	Create(ctx context.Context, a *Appointment) error

	// CreateBatch persists a set of generated series visits in one statement.
	CreateBatch(ctx context.Context, as []*Appointment) error

	// GetByID retrieves an appointment by primary key. Returns
	// ErrAppointmentNotFound if not found.
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// Save writes the full record back (scheduling fields, status, reason).
	Save(ctx context.Context, a *Appointment) error

	// ListByPatient returns every non-deleted appointment of the patient,
	// optionally excluding one record (the one being saved).
	ListByPatient(ctx context.Context, patientID uuid.UUID, excludeID *uuid.UUID) ([]*Appointment, error)

	// ListSeries returns the generated series visits of a root, ordered by
	// visit number. The root itself is not included.
	ListSeries(ctx context.Context, rootID uuid.UUID) ([]*Appointment, error)

	// ListGroup returns every visit sharing a registration number, ordered by
	// visit number.
	ListGroup(ctx context.Context, registrationNumber string) ([]*Appointment, error)

	// CountTherapistBetween counts non-cancelled appointments assigned to the
	// therapist in [from, to), excluding one record. Used for the daily cap.
	CountTherapistBetween(ctx context.Context, therapistID uuid.UUID, from, to time.Time, excludeID *uuid.UUID) (int64, error)

	// MaxRegistrationSuffix returns the greatest numeric suffix among
	// registration numbers with the given code prefix, or 0 if none exist.
	MaxRegistrationSuffix(ctx context.Context, codePrefix string) (int, error)
}
