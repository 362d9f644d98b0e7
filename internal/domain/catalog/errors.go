package catalog

import "errors"

var (
	ErrServiceNotFound  = errors.New("service not found")
	ErrPackageNotFound  = errors.New("package not found")
	ErrLocationNotFound = errors.New("location not found")
)
