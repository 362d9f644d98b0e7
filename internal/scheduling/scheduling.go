// Package scheduling holds the temporal-feasibility validators. They operate
// on snapshots loaded by the service inside the saving transaction and
// accumulate every violation instead of failing fast.
package scheduling

import (
	"time"

	"github.com/medvisit/visitflow/internal/domain/therapist"
)

// Params is a therapist schedule with service-wide defaults applied.
type Params struct {
	DurationMins int
	BufferMins   int
	MaxDaily     int
	Location     *time.Location
}

// Defaults are the fallbacks for schedule fields left at zero.
type Defaults struct {
	DurationMins int
	BufferMins   int
	MaxDaily     int
	Location     *time.Location
}

// Resolve applies defaults to a schedule. A nil schedule (no therapist, or
// therapist without configuration) resolves to zero duration and buffer so
// the visit occupies no window.
func Resolve(s *therapist.Schedule, d Defaults) Params {
	if s == nil {
		return Params{Location: d.Location}
	}

	p := Params{
		DurationMins: s.AppointmentDurationMins,
		BufferMins:   s.BufferTimeMins,
		MaxDaily:     s.MaxDailyAppointments,
		Location:     d.Location,
	}
	if p.DurationMins == 0 {
		p.DurationMins = d.DurationMins
	}
	if p.BufferMins == 0 {
		p.BufferMins = d.BufferMins
	}
	if p.MaxDaily == 0 {
		p.MaxDaily = d.MaxDaily
	}
	if s.TimeZone != "" {
		if loc, err := time.LoadLocation(s.TimeZone); err == nil {
			p.Location = loc
		}
	}
	if p.Location == nil {
		p.Location = time.UTC
	}
	return p
}

// DayWindow returns the [from, to) bounds of t's calendar day in loc. The
// daily cap counts appointments inside these bounds.
func DayWindow(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	from := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return from, from.AddDate(0, 0, 1)
}
