package download

import (
	"fmt"
	"time"
)

// JobStatus is the orchestrator's view of a torrent job.
type JobStatus string

const (
	JobSubmitted   JobStatus = "submitted"
	JobDownloading JobStatus = "downloading"
	JobCompleted   JobStatus = "completed"
	JobStalled     JobStatus = "stalled"
	JobTimedOut    JobStatus = "timed_out"
	JobFailed      JobStatus = "failed"
	JobRemoved     JobStatus = "removed"
)

// validTransitions defines allowed state transitions.
// Key is the "from" status, value is list of valid "to" statuses.
var validTransitions = map[JobStatus][]JobStatus{
	JobSubmitted:   {JobDownloading, JobCompleted, JobFailed, JobTimedOut, JobStalled},
	JobDownloading: {JobCompleted, JobStalled, JobTimedOut, JobFailed},
	JobCompleted:   {JobFailed, JobRemoved}, // failed: no usable video in the payload
	JobStalled:     {JobRemoved},
	JobTimedOut:    {JobRemoved},
	JobFailed:      {JobRemoved},
	JobRemoved:     {}, // terminal - no transitions out
}

// CanTransitionTo returns true if transitioning from s to target is valid.
func (s JobStatus) CanTransitionTo(target JobStatus) bool {
	valid, ok := validTransitions[s]
	if !ok {
		return false
	}
	for _, v := range valid {
		if v == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true once the job can no longer make progress.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobCompleted, JobStalled, JobTimedOut, JobFailed, JobRemoved:
		return true
	}
	return false
}

// Job tracks a single submitted torrent.
type Job struct {
	Hash      string
	SavePath  string
	Status    JobStatus
	Progress  float64 // 0.0 - 100.0
	StartedAt time.Time
	UpdatedAt time.Time
}

// Transition moves the job to a new status.
// Returns ErrInvalidTransition if the state machine forbids it.
func (j *Job) Transition(to JobStatus, at time.Time) error {
	if j.Status == to {
		return nil
	}
	if !j.Status.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.Status, to)
	}
	j.Status = to
	j.UpdatedAt = at
	return nil
}
