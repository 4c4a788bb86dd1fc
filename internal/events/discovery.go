// internal/events/discovery.go
package events

// EntityMaintenance is the entity type of maintenance job events.
const EntityMaintenance = "maintenance"

// Event type constants
const (
	EventCycleStarted      = "cycle.started"
	EventCycleCompleted    = "cycle.completed"
	EventCandidateSkipped  = "candidate.skipped"
	EventRecordProvisioned = "record.provisioned"
	EventRecordIngested    = "record.ingested"
	EventRecordRolledBack  = "record.rolled_back"
	EventTorrentProgressed = "torrent.progressed"
	EventTorrentStalled    = "torrent.stalled"
	EventCleanupCompleted  = "cleanup.completed"
)

// CycleStarted is emitted when a category's discovery cycle begins.
type CycleStarted struct {
	BaseEvent
	CycleID string `json:"cycle_id"`
	Genre   string `json:"genre"`
	Forced  bool   `json:"forced"`
}

// CycleCompleted is emitted once per cycle with its final outcome.
type CycleCompleted struct {
	BaseEvent
	CycleID    string `json:"cycle_id"`
	Attempts   int    `json:"attempts"`
	RecordID   int64  `json:"record_id,omitempty"` // set when a record was ingested
	Reason     string `json:"reason,omitempty"`    // last skip reason when nothing was ingested
	DurationMS int64  `json:"duration_ms"`
}

// CandidateSkipped is emitted when an attempt ends without a record.
type CandidateSkipped struct {
	BaseEvent
	CycleID string `json:"cycle_id"`
	Attempt int    `json:"attempt"`
	Title   string `json:"title,omitempty"`
	Creator string `json:"creator,omitempty"`
	Reason  string `json:"reason"`
	Detail  string `json:"detail,omitempty"`
}

// RecordProvisioned is emitted after the provisional record is committed.
type RecordProvisioned struct {
	BaseEvent
	CycleID   string `json:"cycle_id"`
	Title     string `json:"title"`
	Creator   string `json:"creator"`
	SourceURL string `json:"source_url,omitempty"`
}

// RecordIngested is emitted when a record is complete with its files.
type RecordIngested struct {
	BaseEvent
	CycleID       string `json:"cycle_id"`
	Title         string `json:"title"`
	FilePath      string `json:"file_path"`
	ThumbnailPath string `json:"thumbnail_path,omitempty"`
}

// RecordRolledBack is emitted after a provisional record and its files are removed.
type RecordRolledBack struct {
	BaseEvent
	CycleID      string `json:"cycle_id"`
	Title        string `json:"title"`
	Reason       string `json:"reason"`
	Error        string `json:"error,omitempty"`
	FilesRemoved int    `json:"files_removed"`
}

// TorrentProgressed is emitted at every 10% progress boundary.
type TorrentProgressed struct {
	BaseEvent
	Hash         string  `json:"hash"`
	Progress     float64 `json:"progress"` // 0.0 - 100.0
	DownloadRate int64   `json:"download_rate"`
}

// TorrentStalled is emitted when a torrent is aborted for inactivity.
type TorrentStalled struct {
	BaseEvent
	Hash     string  `json:"hash"`
	Progress float64 `json:"progress"`
	IdleSecs int     `json:"idle_secs"`
}

// CleanupCompleted is emitted by maintenance jobs.
type CleanupCompleted struct {
	BaseEvent
	Job     string `json:"job"` // "temp_torrents" or "events"
	Removed int64  `json:"removed"`
}
