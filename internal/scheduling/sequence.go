package scheduling

import (
	"fmt"
	"time"

	"github.com/medvisit/visitflow/internal/domain/appointment"
)

// SequenceInput is the group context for the series-sequence validator.
type SequenceInput struct {
	Candidate *appointment.Appointment
	Params    Params

	// Root is the group's root visit; equal to Candidate when validating the
	// root itself.
	Root *appointment.Appointment

	// Siblings are the other members of the group (for a series candidate
	// this includes the root), each with its therapist's resolved schedule.
	Siblings []PatientVisit
}

// ValidateSequence enforces intra-group ordering: a root never starts after a
// scheduled series visit, a series visit sits strictly between its scheduled
// neighbours, and no two scheduled group members' windows overlap.
func ValidateSequence(in SequenceInput, ve *appointment.ValidationError) {
	if in.Candidate.AppointmentDateTime == nil {
		return
	}
	at := *in.Candidate.AppointmentDateTime

	if in.Candidate.IsRoot() {
		var earliest *appointment.Appointment
		for _, s := range in.Siblings {
			if s.Appt.AppointmentDateTime == nil {
				continue
			}
			if at.After(*s.Appt.AppointmentDateTime) {
				if earliest == nil || s.Appt.AppointmentDateTime.Before(*earliest.AppointmentDateTime) {
					earliest = s.Appt
				}
			}
		}
		if earliest != nil {
			ve.Add("appointment_date_time", fmt.Sprintf(
				"root visit must not start after series visit %d (scheduled %s)",
				earliest.VisitNumber, earliest.AppointmentDateTime.Format(time.RFC3339),
			))
		}
		return
	}

	if in.Root == nil || in.Root.AppointmentDateTime == nil {
		ve.Add("appointment_date_time", "the root visit must be scheduled before its series visits")
		return
	}

	var prev, next *appointment.Appointment
	for _, s := range in.Siblings {
		a := s.Appt
		if a.AppointmentDateTime == nil {
			continue
		}
		if a.VisitNumber < in.Candidate.VisitNumber {
			if prev == nil || a.VisitNumber > prev.VisitNumber {
				prev = a
			}
		}
		if a.VisitNumber > in.Candidate.VisitNumber {
			if next == nil || a.VisitNumber < next.VisitNumber {
				next = a
			}
		}
	}

	if prev != nil && !at.After(*prev.AppointmentDateTime) {
		ve.Add("appointment_date_time", fmt.Sprintf(
			"must be after visit %d (scheduled %s)",
			prev.VisitNumber, prev.AppointmentDateTime.Format(time.RFC3339),
		))
	}
	if next != nil && !at.Before(*next.AppointmentDateTime) {
		ve.Add("appointment_date_time", fmt.Sprintf(
			"must be before visit %d (scheduled %s)",
			next.VisitNumber, next.AppointmentDateTime.Format(time.RFC3339),
		))
	}

	window, _ := in.Candidate.Window(in.Params.DurationMins, in.Params.BufferMins)
	for _, s := range in.Siblings {
		if s.Params == nil {
			continue
		}
		siblingWindow, ok := s.Appt.Window(s.Params.DurationMins, s.Params.BufferMins)
		if !ok {
			continue
		}
		if window.Overlaps(siblingWindow) {
			ve.Add("appointment_date_time", fmt.Sprintf(
				"overlaps visit %d's occupied window", s.Appt.VisitNumber,
			))
		}
	}
}

// ValidateStatusParity rejects a series visit whose status rank would exceed
// its root's, unless the root itself is cancelled.
func ValidateStatusParity(candidate, root *appointment.Appointment, ve *appointment.ValidationError) {
	if candidate.IsRoot() || root == nil {
		return
	}
	if root.Status == appointment.StatusCancelled {
		return
	}
	if candidate.Status.Rank() > root.Status.Rank() {
		ve.AddBase(fmt.Sprintf(
			"series visit status %q cannot outpace the root visit's status %q",
			candidate.Status, root.Status,
		))
	}
}
