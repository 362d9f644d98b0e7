package medical_record

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists a new record.
	Create(ctx context.Context, r *Record) error

	// CreateBatch persists the cloned records of a generated series in one
	// statement.
	CreateBatch(ctx context.Context, rs []*Record) error

	// GetByAppointmentID returns the visit's record. Returns
	// ErrRecordNotFound when none exists.
	GetByAppointmentID(ctx context.Context, appointmentID uuid.UUID) (*Record, error)
}
