package scheduling

import (
	"fmt"
	"time"

	"github.com/medvisit/visitflow/internal/domain/appointment"
)

// PatientVisit pairs another appointment of the same patient with its
// therapist's resolved schedule. Params is nil when the visit has no assigned
// therapist or no schedule, in which case it occupies no window.
type PatientVisit struct {
	Appt   *appointment.Appointment
	Params *Params
}

// ConflictInput is everything the conflict validator needs, loaded inside the
// saving transaction.
type ConflictInput struct {
	Candidate *appointment.Appointment
	Params    Params
	Now       time.Time

	// Other appointments of the same patient, excluding the candidate.
	Others []PatientVisit

	// Non-cancelled appointments of the candidate's therapist on the
	// candidate's calendar day, excluding the candidate itself.
	TherapistDayCount int64
}

// ValidateConflicts checks temporal feasibility of one scheduled appointment.
// Every check runs; violations accumulate onto ve. Appointments in states
// that occupy no slot (unscheduled, cancelled, on_hold) are skipped.
func ValidateConflicts(in ConflictInput, ve *appointment.ValidationError) {
	if !in.Candidate.Status.IsScheduledState() {
		return
	}
	if in.Candidate.AppointmentDateTime == nil {
		if in.Candidate.IsRoot() {
			ve.Add("appointment_date_time", "a root visit must carry a date/time")
		}
		return
	}

	at := *in.Candidate.AppointmentDateTime

	if !at.After(in.Now) {
		ve.Add("appointment_date_time", "must be in the future")
	}

	for _, other := range in.Others {
		if other.Appt.AppointmentDateTime != nil && other.Appt.AppointmentDateTime.Equal(at) {
			ve.Add("appointment_date_time", "patient already has an appointment at this time")
			break
		}
	}

	window, _ := in.Candidate.Window(in.Params.DurationMins, in.Params.BufferMins)
	for _, other := range in.Others {
		if other.Appt.TherapistID == nil || other.Params == nil {
			continue
		}
		otherWindow, ok := other.Appt.Window(other.Params.DurationMins, other.Params.BufferMins)
		if !ok {
			continue
		}
		if window.Overlaps(otherWindow) {
			ve.Add("appointment_date_time", fmt.Sprintf(
				"overlaps the patient's appointment at %s",
				otherWindow.Start.Format(time.RFC3339),
			))
		}
	}

	if in.Candidate.TherapistID != nil && in.Params.MaxDaily > 0 && in.TherapistDayCount >= int64(in.Params.MaxDaily) {
		ve.AddBase(fmt.Sprintf(
			"therapist is already assigned %d appointments on this day (limit %d)",
			in.TherapistDayCount, in.Params.MaxDaily,
		))
	}
}
