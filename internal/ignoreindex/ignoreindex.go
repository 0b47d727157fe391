// Package ignoreindex parses the plaintext ignore-rules file and answers
// exclusion/destructive-allowance/approval-requirement queries for a path,
// with intent-specific rules taking precedence over global ones.
package ignoreindex

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/agentflow/intentguard/internal/domain"
)

// defaultRules is applied when the rules file is absent.
var defaultRules = []domain.IgnoreRule{
	{Pattern: "node_modules/**", Kind: domain.IgnoreExclude},
	{Pattern: ".git/**", Kind: domain.IgnoreExclude},
	{Pattern: "dist/**", Kind: domain.IgnoreExclude},
	{Pattern: "*.log", Kind: domain.IgnoreExclude},
}

// Index answers ignore/allow-destructive/require-approval queries.
type Index struct {
	path  string
	log   zerolog.Logger
	mu    sync.RWMutex
	rules []domain.IgnoreRule
}

// New creates an Index reading from path. Load must be called before use.
func New(path string, log zerolog.Logger) *Index {
	return &Index{path: path, log: log.With().Str("component", "ignoreindex").Logger()}
}

// Load parses the rules file. A missing file yields the built-in defaults;
// a malformed line is skipped, never fatal.
func (idx *Index) Load() []domain.IgnoreRule {
	data, err := os.ReadFile(idx.path)
	if err != nil {
		if !os.IsNotExist(err) {
			idx.log.Warn().Err(err).Str("path", idx.path).Msg("failed to read ignore rules; using defaults")
		}
		idx.setRules(defaultRules)
		return idx.Rules()
	}

	rules := parseRules(data)
	idx.setRules(rules)
	return idx.Rules()
}

func (idx *Index) setRules(rules []domain.IgnoreRule) {
	idx.mu.Lock()
	idx.rules = rules
	idx.mu.Unlock()
}

// Rules returns the currently loaded rule set.
func (idx *Index) Rules() []domain.IgnoreRule {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]domain.IgnoreRule, len(idx.rules))
	copy(out, idx.rules)
	return out
}

// parseRules parses the line syntax: blank lines and "#..." comments are
// ignored; each rule is "[intent_id:]pattern [kind]" where kind defaults
// to exclude.
func parseRules(data []byte) []domain.IgnoreRule {
	var rules []domain.IgnoreRule
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if rule, ok := parseRuleLine(line); ok {
			rules = append(rules, rule)
		}
	}
	return rules
}

func parseRuleLine(line string) (domain.IgnoreRule, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return domain.IgnoreRule{}, false
	}

	patternField := fields[0]
	kind := domain.IgnoreExclude
	if len(fields) > 1 {
		kind = domain.IgnoreRuleKind(strings.ToLower(fields[1]))
	}

	intentID := ""
	pattern := patternField
	if idx := strings.Index(patternField, ":"); idx >= 0 {
		intentID = patternField[:idx]
		pattern = patternField[idx+1:]
	}

	return domain.IgnoreRule{IntentID: intentID, Pattern: pattern, Kind: kind}, pattern != ""
}

// matches reports whether pattern matches the normalized path using
// ignore-glob semantics (a bare filename pattern like "*.log" matches the
// basename anywhere in the tree, matching canonical ignore-file behavior).
func matches(pattern, path string) bool {
	if ok, err := doublestar.Match(pattern, path); err == nil && ok {
		return true
	}
	if !strings.Contains(pattern, "/") {
		if ok, err := doublestar.Match(pattern, "**/"+path); err == nil && ok {
			return true
		}
		base := path
		if slash := strings.LastIndex(path, "/"); slash >= 0 {
			base = path[slash+1:]
		}
		if ok, err := doublestar.Match(pattern, base); err == nil && ok {
			return true
		}
	}
	return false
}

// applicable rules for an optional intent: intent-specific rules for a
// pattern take precedence over a global rule for the same pattern.
func (idx *Index) applicable(intentID string) []domain.IgnoreRule {
	rules := idx.Rules()
	byPattern := make(map[string]domain.IgnoreRule)
	for _, r := range rules {
		if r.IntentID != "" && r.IntentID != intentID {
			continue
		}
		existing, ok := byPattern[r.Pattern]
		if !ok || (existing.IntentID == "" && r.IntentID != "") {
			byPattern[r.Pattern] = r
		}
	}
	out := make([]domain.IgnoreRule, 0, len(byPattern))
	for _, r := range byPattern {
		out = append(out, r)
	}
	return out
}

// IsExcluded reports whether path is excluded for the given optional intent.
func (idx *Index) IsExcluded(path, intentID string) bool {
	for _, r := range idx.applicable(intentID) {
		if r.Kind == domain.IgnoreExclude && matches(r.Pattern, path) {
			return true
		}
	}
	return false
}

// AllowsDestructive reports whether the intent carries any
// allow_destructive rule (conventionally written `INT-XXX:* allow_destructive`).
func (idx *Index) AllowsDestructive(intentID string) bool {
	for _, r := range idx.applicable(intentID) {
		if r.Kind == domain.IgnoreAllowDestructive && r.IntentID == intentID {
			return true
		}
	}
	return false
}

// RequiresApproval reports whether path requires explicit approval for the
// given optional intent.
func (idx *Index) RequiresApproval(path, intentID string) bool {
	for _, r := range idx.applicable(intentID) {
		if r.Kind == domain.IgnoreRequireApproval && matches(r.Pattern, path) {
			return true
		}
	}
	return false
}

// Watch mirrors intentstore.Store.Watch for the ignore-rules file.
func (idx *Index) Watch() (changes <-chan struct{}, stop func(), err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("create ignore index watcher: %w", err)
	}
	if err := watcher.Add(idx.path); err != nil {
		_ = watcher.Close()
		return nil, nil, fmt.Errorf("watch ignore rules: %w", err)
	}

	ch := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		defer close(ch)
		for {
			select {
			case <-done:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					select {
					case ch <- struct{}{}:
					default:
					}
				}
			case watchErr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				idx.log.Warn().Err(watchErr).Msg("ignore index watch error")
			}
		}
	}()

	return ch, func() {
		close(done)
		_ = watcher.Close()
	}, nil
}
