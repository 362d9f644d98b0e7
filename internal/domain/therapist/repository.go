package therapist

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// GetByID retrieves a therapist. Returns ErrTherapistNotFound if missing.
	GetByID(ctx context.Context, id uuid.UUID) (*Therapist, error)

	// GetSchedule retrieves the therapist's working configuration. Returns
	// ErrScheduleNotFound if none is configured.
	GetSchedule(ctx context.Context, therapistID uuid.UUID) (*Schedule, error)
}
