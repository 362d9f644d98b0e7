package catalog

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetService(ctx context.Context, id uuid.UUID) (*Service, error)
	GetPackage(ctx context.Context, id uuid.UUID) (*Package, error)
	GetLocation(ctx context.Context, id uuid.UUID) (*Location, error)
}
