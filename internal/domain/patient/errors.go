package patient

import "errors"

var (
	ErrPatientNotFound = errors.New("patient not found")
	ErrNoActiveAddress = errors.New("patient has no active address")
	ErrPatientInactive = errors.New("patient is not active")
)
