package appointment

// Status is the lifecycle state of an appointment. The declared order is the
// progress order: a higher rank means the visit is further along. Series
// visits may never outrank their root unless the root is cancelled.
type Status string

const (
	StatusCancelled        Status = "cancelled"
	StatusUnscheduled      Status = "unscheduled"
	StatusOnHold           Status = "on_hold"
	StatusPendingTherapist Status = "pending_therapist_assignment"
	StatusPendingApproval  Status = "pending_patient_approval"
	StatusPendingPayment   Status = "pending_payment"
	StatusPaid             Status = "paid"
	StatusCompleted        Status = "completed"
)

var statusRank = map[Status]int{
	StatusCancelled:        0,
	StatusUnscheduled:      1,
	StatusOnHold:           2,
	StatusPendingTherapist: 3,
	StatusPendingApproval:  4,
	StatusPendingPayment:   5,
	StatusPaid:             6,
	StatusCompleted:        7,
}

func (s Status) IsValid() bool {
	_, ok := statusRank[s]
	return ok
}

// Rank returns the progress rank of the status. Unknown statuses rank below
// everything valid.
func (s Status) Rank() int {
	if r, ok := statusRank[s]; ok {
		return r
	}
	return -1
}

// IsTerminal reports whether the status has no outgoing transitions.
func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// IsScheduledState reports whether the status implies the visit occupies a
// time slot. Conflict validation only runs for these states.
func (s Status) IsScheduledState() bool {
	switch s {
	case StatusUnscheduled, StatusCancelled, StatusOnHold:
		return false
	}
	return true
}

var allowedTransitions = map[Status][]Status{
	StatusCancelled:   {},
	StatusUnscheduled: {StatusUnscheduled, StatusPendingTherapist, StatusPendingApproval, StatusOnHold, StatusCancelled},
	StatusOnHold:      {StatusUnscheduled, StatusOnHold, StatusPendingTherapist, StatusPendingApproval},
	StatusPendingTherapist: {
		StatusUnscheduled, StatusPendingTherapist, StatusPendingApproval, StatusOnHold, StatusCancelled,
	},
	StatusPendingApproval: {
		StatusUnscheduled, StatusPendingTherapist, StatusPendingApproval, StatusPendingPayment,
		StatusOnHold, StatusCancelled, StatusPaid,
	},
	StatusPendingPayment: {StatusPendingPayment, StatusPaid, StatusCancelled},
	StatusPaid:           {StatusOnHold, StatusPaid, StatusCompleted, StatusCancelled},
	StatusCompleted:      {},
}

// CanTransitionTo checks the standard transition table for a non-privileged
// actor. Privileged actors and system cascades bypass this check entirely.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
