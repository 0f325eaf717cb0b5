package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobCardStatusTransitions(t *testing.T) {
	tests := []struct {
		from    JobCardStatus
		to      JobCardStatus
		allowed bool
	}{
		{JobStatusDraft, JobStatusScheduled, true},
		{JobStatusDraft, JobStatusInProgress, true},
		{JobStatusDraft, JobStatusCancelled, true},
		{JobStatusDraft, JobStatusCompleted, false},
		{JobStatusDraft, JobStatusInvoiced, false},
		{JobStatusDraft, JobStatusClosed, false},

		{JobStatusScheduled, JobStatusInProgress, true},
		{JobStatusScheduled, JobStatusCancelled, true},
		{JobStatusScheduled, JobStatusDraft, false},
		{JobStatusScheduled, JobStatusCompleted, false},

		{JobStatusInProgress, JobStatusCompleted, true},
		{JobStatusInProgress, JobStatusInvoiced, true},
		{JobStatusInProgress, JobStatusCancelled, true},
		{JobStatusInProgress, JobStatusScheduled, false},
		{JobStatusInProgress, JobStatusClosed, false},

		{JobStatusCompleted, JobStatusInvoiced, true},
		{JobStatusCompleted, JobStatusClosed, true},
		{JobStatusCompleted, JobStatusCancelled, false},
		{JobStatusCompleted, JobStatusInProgress, false},

		{JobStatusInvoiced, JobStatusClosed, true},
		{JobStatusInvoiced, JobStatusCancelled, false},
		{JobStatusInvoiced, JobStatusCompleted, false},

		{JobStatusClosed, JobStatusDraft, false},
		{JobStatusClosed, JobStatusCancelled, false},
		{JobStatusCancelled, JobStatusDraft, false},
		{JobStatusCancelled, JobStatusInProgress, false},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestJobCardStatusIsTerminal(t *testing.T) {
	assert.True(t, JobStatusClosed.IsTerminal())
	assert.True(t, JobStatusCancelled.IsTerminal())

	for _, s := range []JobCardStatus{JobStatusDraft, JobStatusScheduled, JobStatusInProgress, JobStatusCompleted, JobStatusInvoiced} {
		assert.False(t, s.IsTerminal(), "%s should not be terminal", s)
	}
}

func TestJobCardStatusIsValid(t *testing.T) {
	for _, s := range AllJobStatuses() {
		assert.True(t, s.IsValid(), "%s should be valid", s)
	}
	assert.False(t, JobCardStatus("shipped").IsValid())
	assert.False(t, JobCardStatus("").IsValid())
}

func TestJobCardStatusAllowedTransitions(t *testing.T) {
	// Mutating the returned slice must not change the graph
	targets := JobStatusDraft.AllowedTransitions()
	assert.Len(t, targets, 3)
	targets[0] = JobStatusClosed
	assert.False(t, JobStatusDraft.CanTransitionTo(JobStatusClosed))
}

func TestLineSyncModeIsValid(t *testing.T) {
	assert.True(t, SyncModeReplace.IsValid())
	assert.True(t, SyncModeAppend.IsValid())
	assert.False(t, LineSyncMode("merge").IsValid())
	assert.False(t, LineSyncMode("").IsValid())
}
