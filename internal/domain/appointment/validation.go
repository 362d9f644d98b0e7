package appointment

import "strings"

// FieldError is a single violated invariant. Field is empty for record-level
// violations (capacity limits, transition legality, series parity).
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) String() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// ValidationError accumulates every violation found during a save. Validators
// run to completion so callers see the complete set of problems at once.
type ValidationError struct {
	Violations []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.String())
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Add attaches a violation to a specific attribute.
func (e *ValidationError) Add(field, message string) {
	e.Violations = append(e.Violations, FieldError{Field: field, Message: message})
}

// AddBase attaches a record-level violation.
func (e *ValidationError) AddBase(message string) {
	e.Violations = append(e.Violations, FieldError{Message: message})
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Violations) > 0
}

// ErrOrNil returns the accumulated error, or nil when nothing was violated.
func (e *ValidationError) ErrOrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}
