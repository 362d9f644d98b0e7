package history

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// ReplacePackageHistory destroys any prior snapshot for the appointment
	// and writes the new one.
	ReplacePackageHistory(ctx context.Context, h *PackageHistory) error

	// ReplaceAddressHistory destroys any prior snapshot for the appointment
	// and writes the new one.
	ReplaceAddressHistory(ctx context.Context, h *AddressHistory) error

	// AppendStatusHistory adds one audit row. Rows are never updated.
	AppendStatusHistory(ctx context.Context, h *StatusHistory) error

	// GetPackageHistory returns the pricing snapshot for an appointment, or
	// ErrSnapshotNotFound when none was taken.
	GetPackageHistory(ctx context.Context, appointmentID uuid.UUID) (*PackageHistory, error)

	// ListStatusHistory returns the audit trail, oldest first.
	ListStatusHistory(ctx context.Context, appointmentID uuid.UUID) ([]*StatusHistory, error)
}
