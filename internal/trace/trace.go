// Package trace implements the append-only, content-addressed trace
// journal: one JSON object per line, single-writer discipline enforced
// with an advisory file lock so concurrent processes never interleave
// partial writes.
package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agentflow/intentguard/internal/domain"
)

// Store appends to and queries a single JSONL journal file.
type Store struct {
	path string
	log  zerolog.Logger
}

// New creates a Store writing to path. The parent directory is created on
// first Append.
func New(path string, log zerolog.Logger) *Store {
	return &Store{path: path, log: log.With().Str("component", "trace").Logger()}
}

// Path returns the journal file's location.
func (s *Store) Path() string {
	return s.path
}

// Append serializes record as one JSON line and atomically appends it to
// the journal. A write failure is logged and swallowed: tracing must never
// block or propagate an error to the tool-call path it observes.
func (s *Store) Append(record domain.TraceRecord) {
	if record.UUID == "" {
		record.UUID = uuid.New().String()
	}

	if err := s.appendLocked(record); err != nil {
		s.log.Warn().Err(err).Msg("failed to append trace record")
	}
}

func (s *Store) appendLocked(record domain.TraceRecord) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create trace directory: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open trace journal: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		return fmt.Errorf("lock trace journal: %w", err)
	}
	defer func() {
		_ = syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
	}()

	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal trace record: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write trace record: %w", err)
	}
	return nil
}

// all reads every parseable record in the journal, skipping malformed
// lines rather than failing the whole scan.
func (s *Store) all() []domain.TraceRecord {
	f, err := os.Open(s.path)
	if err != nil {
		return nil
	}
	defer func() {
		_ = f.Close()
	}()

	var records []domain.TraceRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var record domain.TraceRecord
		if err := json.Unmarshal(line, &record); err != nil {
			continue
		}
		records = append(records, record)
	}
	return records
}

// ByIntent returns records where any related entry names intentID as a
// specification.
func (s *Store) ByIntent(intentID string) []domain.TraceRecord {
	var out []domain.TraceRecord
	for _, record := range s.all() {
		if recordReferencesIntent(record, intentID) {
			out = append(out, record)
		}
	}
	return out
}

func recordReferencesIntent(record domain.TraceRecord, intentID string) bool {
	for _, file := range record.Files {
		for _, conv := range file.Conversations {
			for _, rel := range conv.Related {
				if rel.Kind == domain.RelatedSpecification && rel.Value == intentID {
					return true
				}
			}
		}
	}
	return false
}

// ByFile returns records containing a file entry whose relative_path
// matches path exactly or as a suffix (tolerating absolute-vs-relative
// differences between caller and journal).
func (s *Store) ByFile(path string) []domain.TraceRecord {
	var out []domain.TraceRecord
	for _, record := range s.all() {
		for _, file := range record.Files {
			if file.RelativePath == path || strings.HasSuffix(file.RelativePath, path) || strings.HasSuffix(path, file.RelativePath) {
				out = append(out, record)
				break
			}
		}
	}
	return out
}

// intentMapEntry is one bullet in the derived intent map: a (file,
// mutation_class, timestamp) tuple.
type intentMapEntry struct {
	file      string
	class     domain.MutationClass
	timestamp string
}

// RenderIntentMap writes the markdown derived view for intentID, sectioned
// by intent id with one bullet per (file, mutation_class, timestamp)
// tuple. The store's journal remains the single source of truth; this view
// is always rebuilt from ByIntent, never itself persisted as truth.
func (s *Store) RenderIntentMap(w io.Writer, intentID string) error {
	records := s.ByIntent(intentID)

	var entries []intentMapEntry
	for _, record := range records {
		ts := record.Timestamp.UTC().Format("2006-01-02T15:04:05Z")
		for _, file := range record.Files {
			entries = append(entries, intentMapEntry{
				file:      file.RelativePath,
				class:     record.MutationClass,
				timestamp: ts,
			})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].file != entries[j].file {
			return entries[i].file < entries[j].file
		}
		return entries[i].timestamp < entries[j].timestamp
	})

	if _, err := fmt.Fprintf(w, "# %s\n\n", intentID); err != nil {
		return err
	}
	for _, e := range entries {
		class := string(e.class)
		if class == "" {
			class = "UNCLASSIFIED"
		}
		if _, err := fmt.Fprintf(w, "- `%s` — %s (%s)\n", e.file, class, e.timestamp); err != nil {
			return err
		}
	}
	return nil
}

// WriteIntentMap rewrites the full derived intent map at path: one section
// per intent id referenced anywhere in the journal. The file is replaced
// wholesale via a temp-file rename; unlike the journal it is a rewritten
// view, not an append-only log.
func (s *Store) WriteIntentMap(path string) error {
	ids := make(map[string]struct{})
	for _, record := range s.all() {
		for _, file := range record.Files {
			for _, conv := range file.Conversations {
				for _, rel := range conv.Related {
					if rel.Kind == domain.RelatedSpecification && rel.Value != "" {
						ids[rel.Value] = struct{}{}
					}
				}
			}
		}
	}

	sorted := make([]string, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	var b strings.Builder
	for i, id := range sorted {
		if i > 0 {
			b.WriteString("\n")
		}
		if err := s.RenderIntentMap(&b, id); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create intent map directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("write intent map: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace intent map: %w", err)
	}
	return nil
}

// FileMatch pairs a trace record with the file path a content-hash query
// matched inside it.
type FileMatch struct {
	Record   domain.TraceRecord
	FilePath string
}

// ByContentHash locates code by what it is rather than where it lives: it
// returns every record/file pair containing a range whose content_hash
// equals hash.
func (s *Store) ByContentHash(hash string) []FileMatch {
	var out []FileMatch
	for _, record := range s.all() {
		for _, file := range record.Files {
			for _, conv := range file.Conversations {
				for _, r := range conv.Ranges {
					if r.ContentHash == hash {
						out = append(out, FileMatch{Record: record, FilePath: file.RelativePath})
						break
					}
				}
			}
		}
	}
	return out
}
