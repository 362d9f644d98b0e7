package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medvisit/visitflow/internal/domain/appointment"
	"github.com/medvisit/visitflow/internal/domain/catalog"
	"github.com/medvisit/visitflow/internal/domain/history"
	"github.com/medvisit/visitflow/internal/domain/patient"
	"github.com/medvisit/visitflow/pkg/auth"
	"github.com/medvisit/visitflow/pkg/metrics"
)

const statusHistoryBufferSize = 10_000

// HistoryService persists the audit trail. Address and package snapshots run
// inside the creating transaction; status-history rows are appended after the
// commit by a background worker, so a slow audit write never blocks a save.
type HistoryService struct {
	repo    history.Repository
	log     *zap.Logger
	metrics *metrics.Collector
	entries chan *history.StatusHistory
	done    chan struct{}
}

func NewHistoryService(repo history.Repository, collector *metrics.Collector, log *zap.Logger) *HistoryService {
	svc := &HistoryService{
		repo:    repo,
		log:     log,
		metrics: collector,
		entries: make(chan *history.StatusHistory, statusHistoryBufferSize),
		done:    make(chan struct{}),
	}
	go svc.worker()
	return svc
}

// SnapshotRoot captures the package's pricing terms and the patient's active
// address for a freshly committed root visit. Prior snapshots for the same
// appointment are replaced. Must run inside the creating transaction.
func (s *HistoryService) SnapshotRoot(ctx context.Context, a *appointment.Appointment, pkg *catalog.Package, addr *patient.Address) error {
	if err := s.repo.ReplacePackageHistory(ctx, &history.PackageHistory{
		AppointmentID:   a.ID,
		PackageID:       pkg.ID,
		VisitCount:      pkg.VisitCount,
		PricePerVisit:   pkg.PricePerVisit,
		Currency:        pkg.Currency,
		DiscountPercent: pkg.DiscountPercent,
	}); err != nil {
		return err
	}

	return s.repo.ReplaceAddressHistory(ctx, &history.AddressHistory{
		AppointmentID: a.ID,
		PatientID:     addr.PatientID,
		Line1:         addr.Line1,
		Line2:         addr.Line2,
		City:          addr.City,
		State:         addr.State,
		ZipCode:       addr.ZipCode,
		Country:       addr.Country,
	})
}

// PackageSnapshot returns the pricing terms recorded at booking time.
func (s *HistoryService) PackageSnapshot(ctx context.Context, appointmentID uuid.UUID) (*history.PackageHistory, error) {
	return s.repo.GetPackageHistory(ctx, appointmentID)
}

// RecordStatusChange enqueues one audit row for a committed status change.
// No row is written when the status didn't actually change or when no acting
// user is known. If the buffer is full the row is dropped with a warning.
func (s *HistoryService) RecordStatusChange(appointmentID uuid.UUID, oldStatus, newStatus appointment.Status, reason string, actor *auth.Actor) {
	if oldStatus == newStatus || actor == nil {
		return
	}

	row := &history.StatusHistory{
		AppointmentID: appointmentID,
		OldStatus:     oldStatus,
		NewStatus:     newStatus,
		Reason:        reason,
		ChangedBy:     actor.UserID,
	}

	select {
	case s.entries <- row:
	default:
		if s.metrics != nil {
			s.metrics.HistoryBufferDropped.Inc()
		}
		s.log.Warn("status history buffer full, dropping entry",
			zap.String("appointment_id", appointmentID.String()),
			zap.String("new_status", string(newStatus)),
		)
	}
}

// Shutdown drains the queue. Waits up to 10 seconds.
func (s *HistoryService) Shutdown() {
	close(s.entries)
	select {
	case <-s.done:
	case <-time.After(10 * time.Second):
		s.log.Warn("history service shutdown timed out; some entries may be lost")
	}
}

func (s *HistoryService) worker() {
	defer close(s.done)
	for row := range s.entries {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.repo.AppendStatusHistory(ctx, row); err != nil {
			s.log.Error("failed to persist status history", zap.Error(err))
		}
		cancel()
	}
}
