package events

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/vmunix/mediaportal/internal/migrations"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(migrations.EventsSQL)
	require.NoError(t, err)
	return db
}

func TestEventLog_Append(t *testing.T) {
	db := setupTestDB(t)
	log := NewEventLog(db)

	e := &RecordProvisioned{
		BaseEvent: NewBaseEvent(EventRecordProvisioned, "books", 1),
		CycleID:   "c1",
		Title:     "Пикник на обочине",
	}

	id, err := log.Append(e)
	require.NoError(t, err)
	assert.Positive(t, id)

	events, err := log.ForEntity("books", 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Contains(t, events[0].Payload, `"cycle_id":"c1"`)
	assert.Equal(t, EventRecordProvisioned, events[0].EventType)
	assert.Equal(t, "books", events[0].EntityType)
	assert.Equal(t, int64(1), events[0].EntityID)
}

func TestEventLog_Since(t *testing.T) {
	db := setupTestDB(t)
	log := NewEventLog(db)

	start := time.Now().Add(-time.Hour)

	_, err := log.Append(&CycleStarted{BaseEvent: NewBaseEvent(EventCycleStarted, "books", 0)})
	require.NoError(t, err)
	_, err = log.Append(&CycleCompleted{BaseEvent: NewBaseEvent(EventCycleCompleted, "books", 0)})
	require.NoError(t, err)

	events, err := log.Since(start)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, EventCycleStarted, events[0].EventType)
	assert.Equal(t, EventCycleCompleted, events[1].EventType)

	events, err = log.Since(time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEventLog_ForEntity(t *testing.T) {
	db := setupTestDB(t)
	log := NewEventLog(db)

	_, err := log.Append(&RecordProvisioned{BaseEvent: NewBaseEvent(EventRecordProvisioned, "movies", 1)})
	require.NoError(t, err)
	_, err = log.Append(&RecordProvisioned{BaseEvent: NewBaseEvent(EventRecordProvisioned, "movies", 2)})
	require.NoError(t, err)
	_, err = log.Append(&RecordRolledBack{BaseEvent: NewBaseEvent(EventRecordRolledBack, "movies", 1)})
	require.NoError(t, err)
	_, err = log.Append(&RecordProvisioned{BaseEvent: NewBaseEvent(EventRecordProvisioned, "books", 1)})
	require.NoError(t, err)

	events, err := log.ForEntity("movies", 1)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, EventRecordProvisioned, events[0].EventType)
	assert.Equal(t, EventRecordRolledBack, events[1].EventType)
}

func TestEventLog_Prune(t *testing.T) {
	db := setupTestDB(t)
	log := NewEventLog(db)

	_, err := db.Exec(`
		INSERT INTO events (event_type, entity_type, entity_id, payload, occurred_at)
		VALUES (?, ?, ?, ?, ?)`,
		EventCycleStarted, "books", 0, `{}`, time.Now().Add(-100*24*time.Hour),
	)
	require.NoError(t, err)

	_, err = log.Append(&CycleCompleted{BaseEvent: NewBaseEvent(EventCycleCompleted, "books", 0)})
	require.NoError(t, err)

	count, err := log.Prune(30 * 24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	events, err := log.Since(time.Time{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, EventCycleCompleted, events[0].EventType)
}

func TestEventLog_Recent(t *testing.T) {
	db := setupTestDB(t)
	log := NewEventLog(db)

	for i := 0; i < 5; i++ {
		evt := &RecordIngested{
			BaseEvent: NewBaseEvent(EventRecordIngested, "audiobooks", int64(i+1)),
			Title:     fmt.Sprintf("Книга %d", i+1),
		}
		_, err := log.Append(evt)
		require.NoError(t, err)
	}

	events, err := log.Recent(3)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, int64(5), events[0].EntityID)
	assert.Equal(t, int64(4), events[1].EntityID)
	assert.Equal(t, int64(3), events[2].EntityID)
}
