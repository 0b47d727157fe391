// Package intentstore loads the declarative intent store and answers scope
// queries against it. It is deliberately fail-open: a missing or malformed
// store never errors out to the caller, it just yields an empty intent
// list, so a misconfigured host never crashes the middleware (downstream
// gate checks then fail closed via ErrIntentNotFound instead).
package intentstore

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/agentflow/intentguard/internal/domain"
)

// document mirrors the declarative store's YAML schema:
// root key active_intents mapping to a list of intent declarations.
type document struct {
	ActiveIntents []domain.Intent `yaml:"active_intents"`
}

// Store loads and serves Intent declarations from a YAML file.
type Store struct {
	path   string
	log    zerolog.Logger
	mu     sync.RWMutex
	cached []domain.Intent
}

// New creates a Store reading from path. Nothing is read until Load is
// called.
func New(path string, log zerolog.Logger) *Store {
	return &Store{path: path, log: log.With().Str("component", "intentstore").Logger()}
}

// Load reads and parses the declarative store. On any I/O or parse error
// it logs the failure and returns an empty list rather than an error: a
// missing or malformed store must never crash the middleware.
func (s *Store) Load() []domain.Intent {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn().Err(err).Str("path", s.path).Msg("failed to read intent store")
		}
		s.setCached(nil)
		return nil
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("failed to parse intent store")
		s.setCached(nil)
		return nil
	}

	s.setCached(doc.ActiveIntents)
	return doc.ActiveIntents
}

func (s *Store) setCached(intents []domain.Intent) {
	s.mu.Lock()
	s.cached = intents
	s.mu.Unlock()
}

// Get resolves an intent by id from the most recently loaded snapshot.
func (s *Store) Get(id string) (domain.Intent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, intent := range s.cached {
		if intent.ID == id {
			return intent, nil
		}
	}
	return domain.Intent{}, domain.ErrIntentNotFound
}

// All returns the most recently loaded snapshot of intents.
func (s *Store) All() []domain.Intent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Intent, len(s.cached))
	copy(out, s.cached)
	return out
}

// ScopeMatches reports whether path is within any of intent's scope globs.
// An empty scope list means the intent owns nothing (read-only intent): no
// path is in scope. Matching is pure and stable under repeated calls.
func ScopeMatches(intent domain.Intent, path string) bool {
	if len(intent.OwnedScope) == 0 {
		return false
	}
	normalized := normalizePath(path)
	for _, pattern := range intent.OwnedScope {
		ok, err := doublestar.Match(pattern, normalized)
		if err == nil && ok {
			return true
		}
	}
	return false
}

func normalizePath(path string) string {
	return strings.TrimPrefix(strings.ReplaceAll(path, "\\", "/"), "./")
}

// Watch starts an fsnotify watch on the store's file and returns a channel
// that receives a signal whenever the file changes on disk. Reload between
// operations is permitted but never forced: callers decide when to call
// Load again in response to a signal. The returned channel is closed when
// the watch is stopped via the returned stop function.
func (s *Store) Watch() (changes <-chan struct{}, stop func(), err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("create intent store watcher: %w", err)
	}
	if err := watcher.Add(s.path); err != nil {
		_ = watcher.Close()
		return nil, nil, fmt.Errorf("watch intent store: %w", err)
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
				s.log.Warn().Err(watchErr).Msg("intent store watch error")
			}
		}
	}()

	return ch, func() {
		close(done)
		_ = watcher.Close()
	}, nil
}
