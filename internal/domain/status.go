package domain

import "fmt"

// JobCardStatus represents the lifecycle state of a job card
type JobCardStatus string

const (
	JobStatusDraft      JobCardStatus = "draft"
	JobStatusScheduled  JobCardStatus = "scheduled"
	JobStatusInProgress JobCardStatus = "in_progress"
	JobStatusCompleted  JobCardStatus = "completed"
	JobStatusInvoiced   JobCardStatus = "invoiced"
	JobStatusClosed     JobCardStatus = "closed"
	JobStatusCancelled  JobCardStatus = "cancelled"
)

// jobStatusTransitions is the full transition graph. Terminal states map
// to an empty set. Adding a state or transition is a data change here,
// not new conditional logic.
var jobStatusTransitions = map[JobCardStatus][]JobCardStatus{
	JobStatusDraft:      {JobStatusScheduled, JobStatusInProgress, JobStatusCancelled},
	JobStatusScheduled:  {JobStatusInProgress, JobStatusCancelled},
	JobStatusInProgress: {JobStatusCompleted, JobStatusInvoiced, JobStatusCancelled},
	JobStatusCompleted:  {JobStatusInvoiced, JobStatusClosed},
	JobStatusInvoiced:   {JobStatusClosed},
	JobStatusClosed:     {},
	JobStatusCancelled:  {},
}

func init() {
	// Every transition target must itself be a node of the graph.
	for from, targets := range jobStatusTransitions {
		for _, to := range targets {
			if _, ok := jobStatusTransitions[to]; !ok {
				panic(fmt.Sprintf("job status graph references unknown state %q (from %q)", to, from))
			}
		}
	}
}

// IsValid checks if the JobCardStatus is a node of the transition graph
func (s JobCardStatus) IsValid() bool {
	_, ok := jobStatusTransitions[s]
	return ok
}

// IsTerminal reports whether no further transitions are allowed
func (s JobCardStatus) IsTerminal() bool {
	targets, ok := jobStatusTransitions[s]
	return ok && len(targets) == 0
}

// CanTransitionTo reports whether the target status is reachable in one step
func (s JobCardStatus) CanTransitionTo(target JobCardStatus) bool {
	for _, t := range jobStatusTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the legal targets from this status
func (s JobCardStatus) AllowedTransitions() []JobCardStatus {
	targets := jobStatusTransitions[s]
	out := make([]JobCardStatus, len(targets))
	copy(out, targets)
	return out
}

// AllJobStatuses returns every node of the transition graph
func AllJobStatuses() []JobCardStatus {
	return []JobCardStatus{
		JobStatusDraft,
		JobStatusScheduled,
		JobStatusInProgress,
		JobStatusCompleted,
		JobStatusInvoiced,
		JobStatusClosed,
		JobStatusCancelled,
	}
}

// LineSyncMode controls how incoming line items merge with existing ones
type LineSyncMode string

const (
	// SyncModeReplace deletes existing lines before applying the new set
	SyncModeReplace LineSyncMode = "replace"
	// SyncModeAppend keeps existing lines and adds the new set
	SyncModeAppend LineSyncMode = "append"
)

// IsValid checks if the LineSyncMode is a valid enum value
func (m LineSyncMode) IsValid() bool {
	return m == SyncModeReplace || m == SyncModeAppend
}
