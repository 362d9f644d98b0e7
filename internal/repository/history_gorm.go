package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medvisit/visitflow/internal/domain/history"
)

type HistoryRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) ReplacePackageHistory(ctx context.Context, h *history.PackageHistory) error {
	db := FromContext(ctx, r.db)
	if err := db.Where("appointment_id = ?", h.AppointmentID).Delete(&history.PackageHistory{}).Error; err != nil {
		return fmt.Errorf("deleting prior package snapshot: %w", err)
	}
	if err := db.Create(h).Error; err != nil {
		return fmt.Errorf("creating package snapshot: %w", err)
	}
	return nil
}

func (r *HistoryRepository) ReplaceAddressHistory(ctx context.Context, h *history.AddressHistory) error {
	db := FromContext(ctx, r.db)
	if err := db.Where("appointment_id = ?", h.AppointmentID).Delete(&history.AddressHistory{}).Error; err != nil {
		return fmt.Errorf("deleting prior address snapshot: %w", err)
	}
	if err := db.Create(h).Error; err != nil {
		return fmt.Errorf("creating address snapshot: %w", err)
	}
	return nil
}

func (r *HistoryRepository) AppendStatusHistory(ctx context.Context, h *history.StatusHistory) error {
	return FromContext(ctx, r.db).Create(h).Error
}

func (r *HistoryRepository) GetPackageHistory(ctx context.Context, appointmentID uuid.UUID) (*history.PackageHistory, error) {
	var h history.PackageHistory
	err := FromContext(ctx, r.db).First(&h, "appointment_id = ?", appointmentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, history.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("fetching package snapshot: %w", err)
	}
	return &h, nil
}

func (r *HistoryRepository) ListStatusHistory(ctx context.Context, appointmentID uuid.UUID) ([]*history.StatusHistory, error) {
	var hs []*history.StatusHistory
	err := FromContext(ctx, r.db).
		Where("appointment_id = ?", appointmentID).
		Order("occurred_at ASC").
		Find(&hs).Error
	if err != nil {
		return nil, fmt.Errorf("listing status history: %w", err)
	}
	return hs, nil
}
