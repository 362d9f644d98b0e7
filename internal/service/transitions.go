package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medvisit/visitflow/internal/domain/appointment"
	"github.com/medvisit/visitflow/internal/scheduling"
	"github.com/medvisit/visitflow/pkg/auth"
)

// statusChange is a committed transition awaiting its audit row.
type statusChange struct {
	id     uuid.UUID
	old    appointment.Status
	new    appointment.Status
	reason string
}

// AssignTherapistCommand attaches a therapist, optionally fixing the slot in
// the same call when the visit has none yet.
type AssignTherapistCommand struct {
	TherapistID         uuid.UUID
	AppointmentDateTime *time.Time
}

// AssignTherapist attaches a therapist to a scheduled visit and moves it to
// pending_patient_approval. Both a date/time and a therapist must be present
// after the call.
func (s *AppointmentService) AssignTherapist(ctx context.Context, id uuid.UUID, cmd *AssignTherapistCommand, actor *auth.Actor) (*appointment.Appointment, error) {
	var result *appointment.Appointment
	var change *statusChange

	err := s.tx.Transact(ctx, func(ctx context.Context) error {
		a, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		ve := &appointment.ValidationError{}
		if cmd.AppointmentDateTime != nil {
			a.AppointmentDateTime = cmd.AppointmentDateTime
		}
		if cmd.TherapistID == uuid.Nil {
			ve.Add("therapist_id", "is required")
		} else {
			if err := s.checkTherapist(ctx, cmd.TherapistID, ve); err != nil {
				return err
			}
			tid := cmd.TherapistID
			a.TherapistID = &tid
		}
		if a.AppointmentDateTime == nil {
			ve.Add("appointment_date_time", "is required to assign a therapist")
		}

		oldStatus := a.Status
		s.applyStatus(a, appointment.StatusPendingApproval, "", actor, ve)

		if err := s.validateSchedule(ctx, a, ve); err != nil {
			return err
		}
		if ve.HasErrors() {
			return ve
		}

		if err := s.repo.Save(ctx, a); err != nil {
			return fmt.Errorf("saving appointment: %w", err)
		}
		change = &statusChange{id: a.ID, old: oldStatus, new: a.Status}
		result = a
		return nil
	})
	if err != nil {
		s.countValidationFailureIf(err)
		return nil, err
	}

	s.recordChanges(actor, change)
	return result, nil
}

// PatientApprove moves an approved visit to pending_payment.
func (s *AppointmentService) PatientApprove(ctx context.Context, id uuid.UUID, actor *auth.Actor) (*appointment.Appointment, error) {
	return s.transition(ctx, id, appointment.StatusPendingPayment, "", actor)
}

// MarkPaid records payment.
func (s *AppointmentService) MarkPaid(ctx context.Context, id uuid.UUID, actor *auth.Actor) (*appointment.Appointment, error) {
	return s.transition(ctx, id, appointment.StatusPaid, "", actor)
}

// MarkCompleted closes out a paid visit.
func (s *AppointmentService) MarkCompleted(ctx context.Context, id uuid.UUID, actor *auth.Actor) (*appointment.Appointment, error) {
	return s.transition(ctx, id, appointment.StatusCompleted, "", actor)
}

// Cancel cancels a visit. Only a root visit, or a series visit whose root is
// already cancelled, may be cancelled; cancelling a root cascades to every
// non-cancelled series visit in the same transaction.
func (s *AppointmentService) Cancel(ctx context.Context, id uuid.UUID, reason string, actor *auth.Actor) (*appointment.Appointment, error) {
	var result *appointment.Appointment
	var changes []statusChange

	err := s.tx.Transact(ctx, func(ctx context.Context) error {
		a, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		ve := &appointment.ValidationError{}
		if !a.IsRoot() {
			root, err := s.repo.GetByID(ctx, *a.ReferenceAppointmentID)
			if err != nil {
				return err
			}
			if root.Status != appointment.StatusCancelled {
				ve.AddBase("only a root visit, or a series visit of a cancelled root, can be cancelled")
			}
		}

		oldStatus := a.Status
		s.applyStatus(a, appointment.StatusCancelled, reason, actor, ve)
		if ve.HasErrors() {
			return ve
		}

		if err := s.repo.Save(ctx, a); err != nil {
			return fmt.Errorf("saving appointment: %w", err)
		}
		changes = append(changes, statusChange{id: a.ID, old: oldStatus, new: a.Status, reason: reason})

		if a.IsRoot() {
			cascaded, err := s.cascadeCancel(ctx, a.ID, reason)
			if err != nil {
				return err
			}
			changes = append(changes, cascaded...)
		}

		result = a
		return nil
	})
	if err != nil {
		s.countValidationFailureIf(err)
		return nil, err
	}

	s.log.Info("appointment cancelled",
		zap.String("appointment_id", result.ID.String()),
		zap.Int("cascaded", len(changes)-1),
	)
	s.recordChanges(actor, asPtrs(changes)...)
	return result, nil
}

// Hold suspends scheduling. Called on a root it cascades to the series
// without touching the root's own status; called on a series visit it holds
// that visit first, then runs the root's cascade to catch siblings. Moving
// to on_hold clears the visit's date/time and therapist in the same write.
func (s *AppointmentService) Hold(ctx context.Context, id uuid.UUID, reason string, actor *auth.Actor) (*appointment.Appointment, error) {
	var result *appointment.Appointment
	var changes []statusChange

	err := s.tx.Transact(ctx, func(ctx context.Context) error {
		a, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if a.IsRoot() {
			cascaded, err := s.cascadeHold(ctx, a.ID, reason)
			if err != nil {
				return err
			}
			changes = cascaded
			result = a
			return nil
		}

		ve := &appointment.ValidationError{}
		oldStatus := a.Status
		s.applyStatus(a, appointment.StatusOnHold, reason, actor, ve)

		root, err := s.repo.GetByID(ctx, *a.ReferenceAppointmentID)
		if err != nil {
			return err
		}
		scheduling.ValidateStatusParity(a, root, ve)
		if ve.HasErrors() {
			return ve
		}

		if err := s.repo.Save(ctx, a); err != nil {
			return fmt.Errorf("saving appointment: %w", err)
		}
		changes = append(changes, statusChange{id: a.ID, old: oldStatus, new: a.Status, reason: reason})

		cascaded, err := s.cascadeHold(ctx, root.ID, reason)
		if err != nil {
			return err
		}
		changes = append(changes, cascaded...)

		result = a
		return nil
	})
	if err != nil {
		s.countValidationFailureIf(err)
		return nil, err
	}

	s.recordChanges(actor, asPtrs(changes)...)
	return result, nil
}

// transition is the shared path for the simple status operations: check the
// table (unless privileged), enforce series parity, save, emit history.
func (s *AppointmentService) transition(ctx context.Context, id uuid.UUID, target appointment.Status, reason string, actor *auth.Actor) (*appointment.Appointment, error) {
	var result *appointment.Appointment
	var change *statusChange

	err := s.tx.Transact(ctx, func(ctx context.Context) error {
		a, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		ve := &appointment.ValidationError{}
		oldStatus := a.Status
		s.applyStatus(a, target, reason, actor, ve)

		root, err := s.loadRoot(ctx, a)
		if err != nil {
			return err
		}
		scheduling.ValidateStatusParity(a, root, ve)
		if ve.HasErrors() {
			return ve
		}

		if err := s.repo.Save(ctx, a); err != nil {
			return fmt.Errorf("saving appointment: %w", err)
		}
		change = &statusChange{id: a.ID, old: oldStatus, new: a.Status, reason: reason}
		result = a
		return nil
	})
	if err != nil {
		s.countValidationFailureIf(err)
		return nil, err
	}

	s.recordChanges(actor, change)
	return result, nil
}

// applyStatus performs the in-memory part of a transition: legality check,
// status write, reason, and the on_hold schedule-clearing side effect.
func (s *AppointmentService) applyStatus(a *appointment.Appointment, target appointment.Status, reason string, actor *auth.Actor, ve *appointment.ValidationError) {
	if !actor.Privileged() && !a.Status.CanTransitionTo(target) {
		ve.AddBase(fmt.Sprintf("cannot transition from %q to %q", a.Status, target))
		return
	}
	a.Status = target
	if reason != "" {
		a.StatusReason = reason
	}
	if target == appointment.StatusOnHold {
		a.ClearSchedule()
	}
}

// cascadeCancel forces every non-cancelled series visit of a root to
// cancelled. System-driven: the transition table does not apply.
func (s *AppointmentService) cascadeCancel(ctx context.Context, rootID uuid.UUID, reason string) ([]statusChange, error) {
	series, err := s.repo.ListSeries(ctx, rootID)
	if err != nil {
		return nil, err
	}

	var changes []statusChange
	for _, v := range series {
		if v.Status == appointment.StatusCancelled {
			continue
		}
		old := v.Status
		v.Status = appointment.StatusCancelled
		if reason != "" {
			v.StatusReason = reason
		}
		if err := s.repo.Save(ctx, v); err != nil {
			return nil, fmt.Errorf("cascading cancellation to visit %d: %w", v.VisitNumber, err)
		}
		changes = append(changes, statusChange{id: v.ID, old: old, new: v.Status, reason: reason})
	}
	return changes, nil
}

// cascadeHold forces series visits onto hold, clearing their slots.
// System-driven: visits already on hold or in a terminal status are left
// untouched, everything else moves so the series is suspended together.
func (s *AppointmentService) cascadeHold(ctx context.Context, rootID uuid.UUID, reason string) ([]statusChange, error) {
	series, err := s.repo.ListSeries(ctx, rootID)
	if err != nil {
		return nil, err
	}

	var changes []statusChange
	for _, v := range series {
		switch v.Status {
		case appointment.StatusOnHold, appointment.StatusCompleted, appointment.StatusCancelled:
			continue
		}
		old := v.Status
		v.Status = appointment.StatusOnHold
		v.ClearSchedule()
		if reason != "" {
			v.StatusReason = reason
		}
		if err := s.repo.Save(ctx, v); err != nil {
			return nil, fmt.Errorf("cascading hold to visit %d: %w", v.VisitNumber, err)
		}
		changes = append(changes, statusChange{id: v.ID, old: old, new: v.Status, reason: reason})
	}
	return changes, nil
}

func (s *AppointmentService) loadRoot(ctx context.Context, a *appointment.Appointment) (*appointment.Appointment, error) {
	if a.IsRoot() {
		return a, nil
	}
	return s.repo.GetByID(ctx, *a.ReferenceAppointmentID)
}

// recordChanges emits history rows and metrics for committed transitions.
func (s *AppointmentService) recordChanges(actor *auth.Actor, changes ...*statusChange) {
	for _, c := range changes {
		if c == nil || c.old == c.new {
			continue
		}
		s.historySvc.RecordStatusChange(c.id, c.old, c.new, c.reason, actor)
		if s.metrics != nil {
			s.metrics.StatusTransitionsTotal.WithLabelValues(string(c.new)).Inc()
		}
	}
}

func asPtrs(changes []statusChange) []*statusChange {
	ptrs := make([]*statusChange, len(changes))
	for i := range changes {
		ptrs[i] = &changes[i]
	}
	return ptrs
}
