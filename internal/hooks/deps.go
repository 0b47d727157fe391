package hooks

import (
	"github.com/rs/zerolog"

	"github.com/agentflow/intentguard/internal/domain"
	"github.com/agentflow/intentguard/internal/ignoreindex"
	"github.com/agentflow/intentguard/internal/intentstore"
	"github.com/agentflow/intentguard/internal/lesson"
	"github.com/agentflow/intentguard/internal/lock"
	"github.com/agentflow/intentguard/internal/ports"
	"github.com/agentflow/intentguard/internal/session"
	"github.com/agentflow/intentguard/internal/trace"
)

// ReadFile reads a path's current on-disk content; empty content is
// returned (not an error) for a missing file, matching the "treat a
// missing file as empty" rule used throughout the optimistic-lock and
// trace-recording hooks.
type ReadFile func(path string) (string, bool)

// Deps bundles every service a built-in hook needs. It is constructed once
// at bootstrap and shared by every hook closure.
type Deps struct {
	Intents   *intentstore.Store
	Ignore    *ignoreindex.Index
	Locks     *lock.Manager
	Sessions  *session.Registry
	Traces    *trace.Store
	Lessons   *lesson.Log
	Approval  ports.UserApprovalPort
	Vcs       ports.VcsProbe
	ReadFile  ReadFile
	Log       zerolog.Logger

	// IntentMapPath, when non-empty, is the derived intent map the
	// trace_recorder post-hook rewrites after each append.
	IntentMapPath string
}

// ArgString reads a string field out of a HookContext's opaque args map.
func ArgString(hctx *domain.HookContext, key string) string {
	if hctx.Args == nil {
		return ""
	}
	v, ok := hctx.Args[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// ArgBool reads a bool field out of a HookContext's opaque args map.
func ArgBool(hctx *domain.HookContext, key string) bool {
	if hctx.Args == nil {
		return false
	}
	v, ok := hctx.Args[key]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// currentIntent resolves the session's selected intent, or the zero Intent
// and false if none is selected or it no longer exists in the store.
func (d *Deps) currentIntent(hctx *domain.HookContext) (domain.Intent, bool) {
	if hctx.Session == nil || hctx.Session.IntentID == "" {
		return domain.Intent{}, false
	}
	intent, err := d.Intents.Get(hctx.Session.IntentID)
	if err != nil {
		return domain.Intent{}, false
	}
	return intent, true
}

func (d *Deps) readFile(path string) string {
	if d.ReadFile == nil {
		return ""
	}
	content, _ := d.ReadFile(path)
	return content
}
