package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/medvisit/visitflow/internal/domain/appointment"
	"github.com/medvisit/visitflow/internal/domain/history"
	"github.com/medvisit/visitflow/internal/domain/medical_record"
)

// Progress summarizes how far a visit group has come.
type Progress struct {
	Completed int
	Total     int
}

// VisitProgress counts completed visits across the whole group of the given
// appointment (root or series member).
func (s *AppointmentService) VisitProgress(ctx context.Context, id uuid.UUID) (Progress, error) {
	group, err := s.group(ctx, id)
	if err != nil {
		return Progress{}, err
	}

	p := Progress{Total: len(group)}
	for _, v := range group {
		if v.Status == appointment.StatusCompleted {
			p.Completed++
		}
	}
	return p, nil
}

// SeriesCompletion reports whether every visit in the group is completed.
func (s *AppointmentService) SeriesCompletion(ctx context.Context, id uuid.UUID) (bool, error) {
	p, err := s.VisitProgress(ctx, id)
	if err != nil {
		return false, err
	}
	return p.Total > 0 && p.Completed == p.Total, nil
}

// NextAvailableVisitNumber returns the lowest-numbered visit in the group
// that is still waiting for a slot, or 0 when none is.
func (s *AppointmentService) NextAvailableVisitNumber(ctx context.Context, id uuid.UUID) (int, error) {
	group, err := s.group(ctx, id)
	if err != nil {
		return 0, err
	}

	for _, v := range group {
		if v.Status == appointment.StatusCancelled {
			continue
		}
		if v.AppointmentDateTime == nil {
			return v.VisitNumber, nil
		}
	}
	return 0, nil
}

// ScheduleBounds returns the datetime bounds imposed by the group: a series
// visit must fall strictly after its previous scheduled sibling (or the
// root) and strictly before its next scheduled sibling; a root must precede
// its earliest scheduled series visit. Nil means unbounded on that side.
func (s *AppointmentService) ScheduleBounds(ctx context.Context, id uuid.UUID) (minTime, maxTime *time.Time, err error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	group, err := s.repo.ListGroup(ctx, a.RegistrationNumber)
	if err != nil {
		return nil, nil, err
	}

	for _, v := range group {
		if v.ID == a.ID || v.AppointmentDateTime == nil {
			continue
		}
		if v.VisitNumber < a.VisitNumber {
			if minTime == nil || v.AppointmentDateTime.After(*minTime) {
				minTime = v.AppointmentDateTime
			}
		} else {
			if maxTime == nil || v.AppointmentDateTime.Before(*maxTime) {
				maxTime = v.AppointmentDateTime
			}
		}
	}
	return minTime, maxTime, nil
}

// TotalPrice returns the group's price and currency. The pricing snapshot
// taken at booking time wins; the live package is the fallback for groups
// booked before snapshotting existed.
func (s *AppointmentService) TotalPrice(ctx context.Context, id uuid.UUID) (float64, string, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return 0, "", err
	}

	snap, err := s.historySvc.PackageSnapshot(ctx, a.RootID())
	if err == nil {
		return snap.TotalPrice(), snap.Currency, nil
	}
	if !errors.Is(err, history.ErrSnapshotNotFound) {
		return 0, "", err
	}

	pkg, err := s.catalog.GetPackage(ctx, a.PackageID)
	if err != nil {
		return 0, "", err
	}
	return pkg.TotalPrice(), pkg.Currency, nil
}

// group loads every member of the appointment's visit group, ordered by
// visit number.
func (s *AppointmentService) group(ctx context.Context, id uuid.UUID) ([]*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.repo.ListGroup(ctx, a.RegistrationNumber)
}

// StatusTrail returns the appointment's audit trail, oldest first.
func (s *AppointmentService) StatusTrail(ctx context.Context, id uuid.UUID) ([]*history.StatusHistory, error) {
	return s.historySvc.repo.ListStatusHistory(ctx, id)
}

// MedicalRecord returns the visit's clinical record.
func (s *AppointmentService) MedicalRecord(ctx context.Context, id uuid.UUID) (*medical_record.Record, error) {
	return s.records.GetByAppointmentID(ctx, id)
}
