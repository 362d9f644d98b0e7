package appointment

import "errors"

var (
	ErrAppointmentNotFound     = errors.New("appointment not found")
	ErrInvalidStatusTransition = errors.New("invalid appointment status transition")
	ErrTerminalStatus          = errors.New("appointment is in a terminal status")
	ErrNotCancellable          = errors.New("only a root visit, or a series visit of a cancelled root, can be cancelled")
	ErrScheduleRequired        = errors.New("appointment date/time and therapist are required")
	ErrRootUnscheduled         = errors.New("a root visit must always carry a date/time")
)
