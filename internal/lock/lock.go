// Package lock implements per-file exclusive locking with FIFO waiter
// queues, stale-lock eviction, and optimistic-concurrency read/write
// version tracking.
package lock

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	"github.com/agentflow/intentguard/internal/domain"
	"github.com/agentflow/intentguard/internal/spatial"
)

// staleAfter is how long a held lock may go unreleased before acquire()
// treats the incumbent as abandoned and evicts it.
const staleAfter = 30 * time.Second

// forceReleaseAfter is how long a held lock may go unreleased before the
// reaper force-releases it regardless of incoming acquire calls.
const forceReleaseAfter = 60 * time.Second

// reapInterval is how often the background reaper sweeps for stale locks.
const reapInterval = 30 * time.Second

// AcquireResult is the outcome of Acquire.
type AcquireResult int

const (
	Acquired AcquireResult = iota
	Contended
)

// WriteValidation is the outcome of ValidateWrite.
type WriteValidation int

const (
	ValidationOK WriteValidation = iota
	ValidationStale
	ValidationNoPriorRead
)

type versionKey struct {
	path    string
	session string
}

type readVersion struct {
	hash string
	at   time.Time
}

type waiter struct {
	session string
	wake    chan struct{}
}

// Manager tracks per-path locks, FIFO waiters, and per-session read
// versions.
type Manager struct {
	log zerolog.Logger

	mu       sync.Mutex
	locks    map[string]domain.FileLock
	waiters  map[string][]waiter
	versions map[versionKey]readVersion

	readFile func(path string) (string, error)

	wg     conc.WaitGroup
	stopCh chan struct{}
}

// New creates a Manager. readFile reads a path's current content (injected
// so tests can avoid touching the filesystem); pass nil to use os.ReadFile.
func New(log zerolog.Logger, readFile func(path string) (string, error)) *Manager {
	if readFile == nil {
		readFile = defaultReadFile
	}
	return &Manager{
		log:      log.With().Str("component", "lock").Logger(),
		locks:    make(map[string]domain.FileLock),
		waiters:  make(map[string][]waiter),
		versions: make(map[versionKey]readVersion),
		readFile: readFile,
		stopCh:   make(chan struct{}),
	}
}

// CanonicalPath lower-cases and forward-slashes a path, matching the
// canonical form locks and versions are keyed under.
func CanonicalPath(path string) string {
	return strings.ToLower(strings.ReplaceAll(path, "\\", "/"))
}

// Acquire attempts to take the exclusive lock on path for session. A lock
// held longer than staleAfter is evicted and the caller wins it instead of
// being contended.
func (m *Manager) Acquire(path, session string) AcquireResult {
	path = CanonicalPath(path)
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, held := m.locks[path]
	if held && existing.Holder != session && now.Sub(existing.AcquiredAt) > staleAfter {
		m.log.Warn().Str("path", path).Str("evicted_session", existing.Holder).Msg("evicting stale lock")
		held = false
	}

	if !held || existing.Holder == session {
		m.locks[path] = domain.FileLock{Holder: session, AcquiredAt: now}
		return Acquired
	}

	return Contended
}

// Release releases path's lock if session is the current holder, waking
// the FIFO head waiter (if any). The woken waiter must retry acquisition;
// it does not gain ownership automatically.
func (m *Manager) Release(path, session string) {
	path = CanonicalPath(path)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.releaseLocked(path, session)
}

func (m *Manager) releaseLocked(path, session string) {
	existing, held := m.locks[path]
	if !held || existing.Holder != session {
		return
	}
	delete(m.locks, path)
	m.wakeHeadLocked(path)
}

func (m *Manager) wakeHeadLocked(path string) {
	queue := m.waiters[path]
	if len(queue) == 0 {
		return
	}
	head := queue[0]
	m.waiters[path] = queue[1:]
	close(head.wake)
}

// QueueWrite enqueues session as a FIFO waiter for path and returns a
// channel that closes when the waiter reaches the head of the queue, along
// with the 0-indexed position it was enqueued at. The caller must then
// call Acquire again; reaching the head does not confer ownership.
func (m *Manager) QueueWrite(path, session string) (wake <-chan struct{}, position int) {
	path = CanonicalPath(path)

	m.mu.Lock()
	defer m.mu.Unlock()
	position = len(m.waiters[path])
	w := waiter{session: session, wake: make(chan struct{})}
	m.waiters[path] = append(m.waiters[path], w)
	return w.wake, position
}

// RegisterRead records the normalized content hash of path's current
// on-disk content under (path, session), establishing the baseline a
// later ValidateWrite will be checked against.
func (m *Manager) RegisterRead(path, session string) error {
	key := versionKey{path: CanonicalPath(path), session: session}

	content, err := m.readFile(path)
	if err != nil {
		content = ""
	}
	hash := spatial.Hash(content)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.versions[key] = readVersion{hash: hash, at: time.Now()}
	return nil
}

// ValidateWrite compares the current on-disk hash of path to the version
// session registered with RegisterRead. It never mutates state.
func (m *Manager) ValidateWrite(path, session string) (WriteValidation, string) {
	key := versionKey{path: CanonicalPath(path), session: session}

	m.mu.Lock()
	registered, ok := m.versions[key]
	m.mu.Unlock()
	if !ok {
		return ValidationNoPriorRead, ""
	}

	content, err := m.readFile(path)
	if err != nil {
		content = ""
	}
	currentHash := spatial.Hash(content)
	if currentHash == registered.hash {
		return ValidationOK, ""
	}
	return ValidationStale, currentHash
}

// StartReaper launches the background goroutine that force-releases locks
// older than forceReleaseAfter every reapInterval. Stop must be called to
// terminate it.
func (m *Manager) StartReaper() {
	m.wg.Go(func() {
		ticker := time.NewTicker(reapInterval)
		defer ticker.Stop()
		for {
			select {
			case <-m.stopCh:
				return
			case <-ticker.C:
				m.reapOnce()
			}
		}
	})
}

func (m *Manager) reapOnce() {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()
	for path, l := range m.locks {
		if now.Sub(l.AcquiredAt) > forceReleaseAfter {
			m.log.Warn().Str("path", path).Str("session", l.Holder).Msg("force-releasing expired lock")
			delete(m.locks, path)
			m.wakeHeadLocked(path)
		}
	}
}

// HeldLock pairs a canonical path with its current lock record.
type HeldLock struct {
	Path string
	Lock domain.FileLock
}

// All returns a snapshot of every currently held lock.
func (m *Manager) All() []HeldLock {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]HeldLock, 0, len(m.locks))
	for path, l := range m.locks {
		out = append(out, HeldLock{Path: path, Lock: l})
	}
	return out
}

// ForceRelease releases path's lock regardless of holder, waking the FIFO
// head waiter (if any). Operator override for when a session can no longer
// release its own lock.
func (m *Manager) ForceRelease(path string) bool {
	path = CanonicalPath(path)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, held := m.locks[path]; !held {
		return false
	}
	delete(m.locks, path)
	m.wakeHeadLocked(path)
	return true
}

// Stop terminates the reaper goroutine and waits for it to exit.
func (m *Manager) Stop() {
	close(m.stopCh)
	m.wg.Wait()
}

func defaultReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
