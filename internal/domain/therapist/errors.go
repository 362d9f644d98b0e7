package therapist

import "errors"

var (
	ErrTherapistNotFound = errors.New("therapist not found")
	ErrScheduleNotFound  = errors.New("therapist schedule not found")
)
