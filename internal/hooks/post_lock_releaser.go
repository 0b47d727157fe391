package hooks

import (
	"context"

	"github.com/agentflow/intentguard/internal/domain"
)

// LockReleaser releases the write_to_file target's lock regardless of the
// tool result's success, so a failed write never leaves the file wedged.
func LockReleaser(deps *Deps) Hook {
	return func(_ context.Context, hctx *domain.HookContext) {
		if hctx.ToolName != WriteToFileTool || hctx.Session == nil {
			return
		}
		path := ArgString(hctx, "path")
		deps.Locks.Release(path, hctx.Session.ID)
	}
}
