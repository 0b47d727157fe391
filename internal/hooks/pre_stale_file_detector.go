package hooks

import (
	"context"

	"github.com/agentflow/intentguard/internal/domain"
	"github.com/agentflow/intentguard/internal/lock"
)

// StaleFileDetector acquires the target file's lock for write_to_file
// calls. A contended lock enqueues the session as a FIFO waiter and blocks
// with the queue position; an acquired lock is then validated against the
// session's registered read-version, blocking with STALE_FILE on mismatch.
func StaleFileDetector(deps *Deps) Hook {
	return func(_ context.Context, hctx *domain.HookContext) {
		if hctx.ToolName != WriteToFileTool {
			return
		}
		if hctx.Session == nil {
			return
		}

		path := ArgString(hctx, "path")
		session := hctx.Session.ID

		if deps.Locks.Acquire(path, session) == lock.Contended {
			_, position := deps.Locks.QueueWrite(path, session)
			hctx.Block(domain.HookError{
				Type:    domain.ErrorFileLocked,
				Message: "file is locked by another session",
				Details: map[string]any{"position": position},
			})
			return
		}

		validation, currentHash := deps.Locks.ValidateWrite(path, session)
		switch validation {
		case lock.ValidationOK:
			// Stash the pre-write content so the trace_recorder post-hook can
			// classify the mutation without re-reading a file that next()
			// is about to overwrite.
			if hctx.Args != nil {
				hctx.Args[priorContentArgKey] = deps.readFile(path)
			}
			return
		case lock.ValidationNoPriorRead:
			deps.Locks.Release(path, session)
			hctx.Block(domain.HookError{
				Type:    domain.ErrorStaleFile,
				Message: "session never registered a read for this path",
			})
		default: // lock.ValidationStale
			deps.Locks.Release(path, session)
			hctx.Block(domain.HookError{
				Type:    domain.ErrorStaleFile,
				Message: "file changed on disk since it was last read",
				Details: map[string]any{"current_hash": currentHash},
			})
		}
	}
}
