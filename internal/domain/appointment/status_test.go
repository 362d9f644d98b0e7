package appointment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusRankOrdering(t *testing.T) {
	ordered := []Status{
		StatusCancelled,
		StatusUnscheduled,
		StatusOnHold,
		StatusPendingTherapist,
		StatusPendingApproval,
		StatusPendingPayment,
		StatusPaid,
		StatusCompleted,
	}

	for i := 1; i < len(ordered); i++ {
		assert.Greater(t, ordered[i].Rank(), ordered[i-1].Rank(),
			"%s should outrank %s", ordered[i], ordered[i-1])
	}

	assert.Equal(t, -1, Status("bogus").Rank())
	assert.False(t, Status("bogus").IsValid())
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.False(t, StatusPaid.IsTerminal())
	assert.False(t, StatusUnscheduled.IsTerminal())
}

func TestStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		allowed bool
	}{
		{"terminal cancelled has no exits", StatusCancelled, StatusUnscheduled, false},
		{"terminal completed has no exits", StatusCompleted, StatusPaid, false},
		{"unscheduled to pending therapist", StatusUnscheduled, StatusPendingTherapist, true},
		{"unscheduled to cancelled", StatusUnscheduled, StatusCancelled, true},
		{"on hold cannot cancel", StatusOnHold, StatusCancelled, false},
		{"on hold back to pending therapist", StatusOnHold, StatusPendingTherapist, true},
		{"pending therapist straight to paid is illegal", StatusPendingTherapist, StatusPaid, false},
		{"pending approval straight to paid", StatusPendingApproval, StatusPaid, true},
		{"pending approval to pending payment", StatusPendingApproval, StatusPendingPayment, true},
		{"pending payment cannot go on hold", StatusPendingPayment, StatusOnHold, false},
		{"pending payment to paid", StatusPendingPayment, StatusPaid, true},
		{"paid to completed", StatusPaid, StatusCompleted, true},
		{"paid to on hold", StatusPaid, StatusOnHold, true},
		{"paid cannot reopen scheduling", StatusPaid, StatusPendingTherapist, false},
		{"self transition allowed where listed", StatusPendingPayment, StatusPendingPayment, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestStatusScheduledState(t *testing.T) {
	assert.False(t, StatusUnscheduled.IsScheduledState())
	assert.False(t, StatusCancelled.IsScheduledState())
	assert.False(t, StatusOnHold.IsScheduledState())
	assert.True(t, StatusPendingTherapist.IsScheduledState())
	assert.True(t, StatusCompleted.IsScheduledState())
}
