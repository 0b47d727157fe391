// Package lesson appends human-readable post-mortem entries to a
// markdown log: one entry per failure or insight, never rewritten once
// appended.
package lesson

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/rs/zerolog"
)

// Entry is one lesson to append.
type Entry struct {
	Timestamp  time.Time
	Type       string
	IntentID   string
	Tool       string
	Message    string
	Details    string
	Resolution string
	Tags       []string
}

// Log appends Entry values to a markdown file.
type Log struct {
	path string
	log  zerolog.Logger
}

// New creates a Log writing to path.
func New(path string, log zerolog.Logger) *Log {
	return &Log{path: path, log: log.With().Str("component", "lesson").Logger()}
}

// headerPrefix is the literal string entries begin with; readers split the
// log on this prefix to locate individual entries.
const headerPrefix = "### "

var entryTemplate = template.Must(template.New("lesson").Parse(
	headerPrefix + `{{ .Timestamp }} — {{ .Type }}

- **Intent:** {{ .IntentIDOrNone }}
- **Tool:** {{ .ToolOrNone }}
- **Type:** {{ .Type }}
- **Message:** {{ .Message }}
- **Details:**
` + "```" + `
{{ .Details }}
` + "```" + `
- **Resolution:** {{ .ResolutionOrNone }}
- **Tags:** {{ .TagsJoined }}

---

`))

type templateData struct {
	Timestamp  string
	Type       string
	IntentID   string
	Tool       string
	Message    string
	Details    string
	Resolution string
	Tags       []string
}

func (d templateData) IntentIDOrNone() string {
	if d.IntentID == "" {
		return "none"
	}
	return d.IntentID
}

func (d templateData) ToolOrNone() string {
	if d.Tool == "" {
		return "none"
	}
	return d.Tool
}

func (d templateData) ResolutionOrNone() string {
	if d.Resolution == "" {
		return "none"
	}
	return d.Resolution
}

func (d templateData) TagsJoined() string {
	if len(d.Tags) == 0 {
		return "none"
	}
	return strings.Join(d.Tags, ", ")
}

// Append writes entry to the log. A write failure is logged and swallowed:
// the lesson log records observations about failures, it must never itself
// cause one.
func (l *Log) Append(entry Entry) {
	if err := l.appendTry(entry); err != nil {
		l.log.Warn().Err(err).Msg("failed to append lesson entry")
	}
}

func (l *Log) appendTry(entry Entry) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o700); err != nil {
		return fmt.Errorf("create lesson log directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open lesson log: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	ts := entry.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	data := templateData{
		Timestamp:  ts.UTC().Format(time.RFC3339),
		Type:       entry.Type,
		IntentID:   entry.IntentID,
		Tool:       entry.Tool,
		Message:    entry.Message,
		Details:    entry.Details,
		Resolution: entry.Resolution,
		Tags:       entry.Tags,
	}

	return entryTemplate.Execute(f, data)
}

// Read returns the raw contents of the log, splitting it into individual
// entry strings (each beginning with the header prefix).
func Read(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	raw := strings.Split(string(data), headerPrefix)
	var entries []string
	for _, chunk := range raw {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		entries = append(entries, headerPrefix+chunk)
	}
	return entries, nil
}
