package scheduler

import (
	"time"

	"github.com/vmunix/mediaportal/internal/ingest"
	"github.com/vmunix/mediaportal/internal/library"
)

// CycleSummary describes the most recent cycle of a category.
type CycleSummary struct {
	CycleID    string    `json:"cycle_id"`
	Genre      string    `json:"genre"`
	Attempts   int       `json:"attempts"`
	RecordID   int64     `json:"record_id,omitempty"`
	Title      string    `json:"title,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	FinishedAt time.Time `json:"finished_at"`
}

// Status is a read-only view of one category's scheduling state.
type Status struct {
	Category library.Category `json:"category"`
	Enabled  bool             `json:"enabled"`
	Running  bool             `json:"running"`
	LastRun  *time.Time       `json:"last_run,omitempty"`
	NextRun  *time.Time       `json:"next_run,omitempty"`
	Cycles   int              `json:"cycles"`
	Ingested int              `json:"ingested"`
	Panics   int              `json:"panics"`

	LastPanic string        `json:"last_panic,omitempty"`
	LastCycle *CycleSummary `json:"last_cycle,omitempty"`
}

// Snapshot returns a copy of every owned category's status.
func (s *Scheduler) Snapshot() []Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Status, 0, len(s.order))
	for _, c := range s.order {
		st := *s.status[c]
		if st.LastCycle != nil {
			lc := *st.LastCycle
			st.LastCycle = &lc
		}
		out = append(out, st)
	}
	return out
}

func (s *Scheduler) setEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.status {
		st.Enabled = enabled
	}
}

func (s *Scheduler) markRunning(c library.Category, running bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[c].Running = running
}

// setNextRun records when c becomes due. A category that never ran is due now.
func (s *Scheduler) setNextRun(c library.Category, last time.Time, ran bool, interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.status[c]
	if !ran {
		st.LastRun, st.NextRun = nil, nil
		return
	}
	lastRun, nextRun := last, last.Add(interval)
	st.LastRun, st.NextRun = &lastRun, &nextRun
}

func (s *Scheduler) recordResult(c library.Category, res ingest.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.status[c]
	st.Cycles++
	summary := &CycleSummary{
		CycleID:    res.CycleID,
		Genre:      res.Genre,
		Attempts:   res.Attempts,
		Reason:     string(res.Reason),
		DurationMS: res.Duration.Milliseconds(),
		FinishedAt: s.now(),
	}
	if res.Ingested() {
		st.Ingested++
		summary.RecordID = res.Record.ID
		summary.Title = res.Record.Title
	}
	st.LastCycle = summary
}

func (s *Scheduler) recordPanic(c library.Category, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.status[c]
	st.Cycles++
	st.Panics++
	st.LastPanic = msg
}
