package lesson

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestAppend_WritesLabelledFieldsAndTerminator(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lessons.md")
	l := New(path, zerolog.Nop())

	l.Append(Entry{
		Timestamp: time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC),
		Type:      "STALE_FILE",
		IntentID:  "INT-001",
		Tool:      "write_file",
		Message:   "write rejected",
		Details:   "hash mismatch on src/a.go",
		Tags:      []string{"lock", "stale"},
	})

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	require.Contains(t, content, "### 2026-07-30T12:00:00Z — STALE_FILE")
	require.Contains(t, content, "- **Intent:** INT-001")
	require.Contains(t, content, "- **Tool:** write_file")
	require.Contains(t, content, "- **Message:** write rejected")
	require.Contains(t, content, "hash mismatch on src/a.go")
	require.Contains(t, content, "- **Tags:** lock, stale")
	require.Contains(t, content, "\n---\n")
}

func TestAppend_MissingOptionalFieldsDefaultToNone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lessons.md")
	l := New(path, zerolog.Nop())

	l.Append(Entry{Type: "INSIGHT", Message: "observed"})

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	require.Contains(t, content, "- **Intent:** none")
	require.Contains(t, content, "- **Tool:** none")
	require.Contains(t, content, "- **Resolution:** none")
	require.Contains(t, content, "- **Tags:** none")
}

func TestAppend_MultipleEntriesAreAppended(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lessons.md")
	l := New(path, zerolog.Nop())
	l.Append(Entry{Type: "A", Message: "first"})
	l.Append(Entry{Type: "B", Message: "second"})

	entries, err := Read(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Contains(t, entries[0], "first")
	require.Contains(t, entries[1], "second")
}

func TestRead_MissingFileReturnsEmpty(t *testing.T) {
	entries, err := Read(filepath.Join(t.TempDir(), "missing.md"))
	require.NoError(t, err)
	require.Empty(t, entries)
}
