package journal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/watchdeck/watchdeck/internal/db"
)

func newTestJournal(t *testing.T) *Journal {
	t.Helper()
	sqldb, err := db.NewSqliteDB(db.WithPath(":memory:"))
	require.NoError(t, err)
	t.Cleanup(func() { sqldb.Close() })

	j, err := New(sqldb)
	require.NoError(t, err)
	return j
}

func TestJournalRecordAndCollections(t *testing.T) {
	j := newTestJournal(t)

	entries := []*Entry{
		{Path: "outputs/chunks/demo/a.json", Collection: "demo", Size: 100, Client: "host-1", UploadedAt: "2025-01-02T03:04:05Z"},
		{Path: "outputs/chunks/demo/b.json", Collection: "demo", Size: 50, UploadedAt: "2025-01-02T04:00:00Z"},
		{Path: "prompts/concat/p.txt", Collection: "concat", Size: 10, UploadedAt: "2025-01-01T00:00:00Z"},
	}
	for _, e := range entries {
		require.NoError(t, j.Record(context.Background(), e))
	}

	stats, err := j.Collections(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 2)

	// sorted by collection name
	assert.Equal(t, "concat", stats[0].Collection)
	assert.Equal(t, int64(1), stats[0].Files)
	assert.Equal(t, int64(10), stats[0].TotalSize)

	assert.Equal(t, "demo", stats[1].Collection)
	assert.Equal(t, int64(2), stats[1].Files)
	assert.Equal(t, int64(150), stats[1].TotalSize)
	assert.Equal(t, "2025-01-02T04:00:00Z", stats[1].LastUpload)
}

func TestJournalRecordReplacesOnSamePath(t *testing.T) {
	j := newTestJournal(t)

	require.NoError(t, j.Record(context.Background(), &Entry{
		Path: "outputs/x.json", Collection: "outputs", Size: 10, UploadedAt: "2025-01-01T00:00:00Z",
	}))
	require.NoError(t, j.Record(context.Background(), &Entry{
		Path: "outputs/x.json", Collection: "outputs", Size: 25, UploadedAt: "2025-01-02T00:00:00Z",
	}))

	stats, err := j.Collections(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, int64(1), stats[0].Files, "re-upload must not duplicate the row")
	assert.Equal(t, int64(25), stats[0].TotalSize)
	assert.Equal(t, "2025-01-02T00:00:00Z", stats[0].LastUpload)
}

func TestJournalRemove(t *testing.T) {
	j := newTestJournal(t)

	require.NoError(t, j.Record(context.Background(), &Entry{
		Path: "outputs/x.json", Collection: "outputs", Size: 10, UploadedAt: "2025-01-01T00:00:00Z",
	}))
	require.NoError(t, j.Remove(context.Background(), "outputs/x.json"))

	stats, err := j.Collections(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stats)

	// removing again is harmless
	assert.NoError(t, j.Remove(context.Background(), "outputs/x.json"))
}
