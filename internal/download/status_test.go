package download

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransitionTo_ValidTransitions(t *testing.T) {
	tests := []struct {
		from JobStatus
		to   JobStatus
	}{
		{JobSubmitted, JobDownloading},
		{JobSubmitted, JobCompleted}, // already seeded
		{JobSubmitted, JobFailed},
		{JobDownloading, JobCompleted},
		{JobDownloading, JobStalled},
		{JobDownloading, JobTimedOut},
		{JobDownloading, JobFailed},
		{JobCompleted, JobRemoved},
		{JobCompleted, JobFailed}, // payload without a video
		{JobStalled, JobRemoved},
		{JobTimedOut, JobRemoved},
		{JobFailed, JobRemoved},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.True(t, tt.from.CanTransitionTo(tt.to),
				"%s should be able to transition to %s", tt.from, tt.to)
		})
	}
}

func TestCanTransitionTo_InvalidTransitions(t *testing.T) {
	tests := []struct {
		from JobStatus
		to   JobStatus
	}{
		{JobSubmitted, JobRemoved},     // never ran
		{JobDownloading, JobSubmitted}, // backwards
		{JobCompleted, JobDownloading}, // backwards
		{JobStalled, JobCompleted},     // aborted jobs stay aborted
		{JobRemoved, JobDownloading},   // terminal
		{JobRemoved, JobFailed},        // terminal
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.False(t, tt.from.CanTransitionTo(tt.to),
				"%s should NOT be able to transition to %s", tt.from, tt.to)
		})
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := []JobStatus{JobCompleted, JobStalled, JobTimedOut, JobFailed, JobRemoved}
	nonTerminal := []JobStatus{JobSubmitted, JobDownloading}

	for _, s := range terminal {
		assert.True(t, s.IsTerminal(), "%s should be terminal", s)
	}
	for _, s := range nonTerminal {
		assert.False(t, s.IsTerminal(), "%s should NOT be terminal", s)
	}
}

func TestJob_Transition(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	job := &Job{Hash: "abc", Status: JobSubmitted}

	require.NoError(t, job.Transition(JobDownloading, at))
	assert.Equal(t, JobDownloading, job.Status)
	assert.Equal(t, at, job.UpdatedAt)

	// Same status is a no-op.
	require.NoError(t, job.Transition(JobDownloading, at.Add(time.Second)))
	assert.Equal(t, at, job.UpdatedAt)

	err := job.Transition(JobRemoved, at)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, JobDownloading, job.Status)
}
