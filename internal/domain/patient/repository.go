package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// GetByID retrieves a patient. Returns ErrPatientNotFound if missing.
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)

	// GetActiveAddress returns the patient's currently active address.
	// Returns ErrNoActiveAddress when none is marked active.
	GetActiveAddress(ctx context.Context, patientID uuid.UUID) (*Address, error)
}
