// Package hooks implements the per-tool hook registry and the
// built-in pre/post hooks the interceptor pipeline wires against every
// write_to_file and execute_command call.
package hooks

import (
	"context"
	"sync"

	"github.com/agentflow/intentguard/internal/domain"
)

// Hook is a single pre- or post-hook invocation. It mutates ctx in place;
// pre-hooks call ctx.Block to short-circuit the pipeline, post-hooks read
// ctx.Blocked/ctx.Error to decide whether to act.
type Hook func(ctx context.Context, hctx *domain.HookContext)

// wildcard is the registration key used for hooks that run for every tool.
const wildcard = "*"

// Registry holds ordered pre- and post-hooks, per-tool and global. Global
// hooks run before tool-specific ones for the same phase, preserving
// registration order within each group.
type Registry struct {
	mu sync.RWMutex

	globalPre  []Hook
	pre        map[string][]Hook
	globalPost []Hook
	post       map[string][]Hook
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		pre:  make(map[string][]Hook),
		post: make(map[string][]Hook),
	}
}

// RegisterPre adds a pre-hook for toolName, or for every tool if toolName
// is "" or "*".
func (r *Registry) RegisterPre(toolName string, hook Hook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if toolName == "" || toolName == wildcard {
		r.globalPre = append(r.globalPre, hook)
		return
	}
	r.pre[toolName] = append(r.pre[toolName], hook)
}

// RegisterPost adds a post-hook for toolName, or for every tool if toolName
// is "" or "*".
func (r *Registry) RegisterPost(toolName string, hook Hook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if toolName == "" || toolName == wildcard {
		r.globalPost = append(r.globalPost, hook)
		return
	}
	r.post[toolName] = append(r.post[toolName], hook)
}

// PreHooksFor returns the ordered pre-hooks for toolName: global hooks
// first, then tool-specific ones, each in registration order.
func (r *Registry) PreHooksFor(toolName string) []Hook {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return concat(r.globalPre, r.pre[toolName])
}

// PostHooksFor returns the ordered post-hooks for toolName: global hooks
// first, then tool-specific ones, each in registration order.
func (r *Registry) PostHooksFor(toolName string) []Hook {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return concat(r.globalPost, r.post[toolName])
}

func concat(a, b []Hook) []Hook {
	if len(a) == 0 {
		return append([]Hook(nil), b...)
	}
	if len(b) == 0 {
		return append([]Hook(nil), a...)
	}
	out := make([]Hook, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}
