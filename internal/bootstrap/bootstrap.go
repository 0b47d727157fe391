// Package bootstrap wires every governance component into a single
// Pipeline and exposes select_intent as the one tool exempt from
// intent_gatekeeper.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentflow/intentguard/internal/hooks"
	"github.com/agentflow/intentguard/internal/ignoreindex"
	"github.com/agentflow/intentguard/internal/intentstore"
	"github.com/agentflow/intentguard/internal/lesson"
	"github.com/agentflow/intentguard/internal/lock"
	"github.com/agentflow/intentguard/internal/pipeline"
	"github.com/agentflow/intentguard/internal/ports"
	"github.com/agentflow/intentguard/internal/session"
	"github.com/agentflow/intentguard/internal/trace"
)

// Config collects the paths and durations a Runtime needs. New reads only
// the paths and SessionIdleTimeout; LockStaleAfter, LockReapInterval and
// BypassWindow are not read, and the lock manager and FallbackPipeline use
// their built-in timings.
type Config struct {
	IntentStorePath    string
	IgnoreFilePath     string
	TraceJournalPath   string
	LessonLogPath      string
	IntentMapPath      string
	LockStaleAfter     time.Duration
	LockReapInterval   time.Duration
	SessionIdleTimeout time.Duration
	BypassWindow       time.Duration
}

// Runtime holds every long-lived service plus the Pipeline that fronts
// them. Callers route tool calls through Pipeline.Execute (or
// Fallback.Execute, when a health check is wired) and call Close when the
// process shuts down.
type Runtime struct {
	Deps     *hooks.Deps
	Registry *hooks.Registry
	Pipeline *pipeline.Pipeline
	Fallback *pipeline.FallbackPipeline

	log zerolog.Logger
}

// New constructs every component, registers the built-in hooks in their
// required order, and starts the background reapers. It
// does not start file-watches; call Watch separately to opt into hot
// reload.
func New(cfg Config, readFile hooks.ReadFile, approval ports.UserApprovalPort, vcs ports.VcsProbe, log zerolog.Logger) *Runtime {
	intents := intentstore.New(cfg.IntentStorePath, log)
	intents.Load()

	ignore := ignoreindex.New(cfg.IgnoreFilePath, log)
	ignore.Load()

	locks := lock.New(log, func(path string) (string, error) {
		content, _ := readFile(path)
		return content, nil
	})
	locks.StartReaper()

	sessions := session.New(log, cfg.SessionIdleTimeout)
	sessions.StartReaper()

	traces := trace.New(cfg.TraceJournalPath, log)
	lessons := lesson.New(cfg.LessonLogPath, log)

	deps := &hooks.Deps{
		Intents:       intents,
		Ignore:        ignore,
		Locks:         locks,
		Sessions:      sessions,
		Traces:        traces,
		Lessons:       lessons,
		Approval:      approval,
		Vcs:           vcs,
		ReadFile:      readFile,
		Log:           log,
		IntentMapPath: cfg.IntentMapPath,
	}

	registry := hooks.New()
	registerBuiltins(registry, deps)

	p := pipeline.New(registry, log)
	fb := pipeline.NewFallback(p, healthCheck(registry), log)

	return &Runtime{Deps: deps, Registry: registry, Pipeline: p, Fallback: fb, log: log}
}

// registerBuiltins wires the built-in hooks: gatekeeper runs globally,
// the command classifier guards execute_command, scope enforcement and
// stale-file detection are write_to_file specific. Of the four post-hooks,
// the lock releaser and trace recorder are write_to_file specific (the
// trace recorder skips blocked calls), while the lesson recorder and
// recovery logger run for every tool and act only on blocked or failed
// calls.
func registerBuiltins(r *hooks.Registry, deps *hooks.Deps) {
	r.RegisterPre("*", hooks.IntentGatekeeper(deps))
	r.RegisterPre(hooks.ExecuteCommandTool, hooks.CommandClassifierHook(deps))
	r.RegisterPre(hooks.WriteToFileTool, hooks.ScopeEnforcer(deps))
	r.RegisterPre(hooks.WriteToFileTool, hooks.StaleFileDetector(deps))

	r.RegisterPost(hooks.WriteToFileTool, hooks.LockReleaser(deps))
	r.RegisterPost(hooks.WriteToFileTool, hooks.TraceRecorder(deps))
	r.RegisterPost("*", hooks.LessonRecorder(deps))
	r.RegisterPost("*", hooks.RecoveryLogger(deps))
}

// healthCheck gives FallbackPipeline a cheap probe: a registry is
// considered healthy if it can list pre-hooks for an arbitrary tool name
// without panicking.
func healthCheck(registry *hooks.Registry) func(ctx context.Context) error {
	return func(_ context.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("registry probe panicked: %v", r)
			}
		}()
		registry.PreHooksFor("__health_check__")
		return nil
	}
}

// Close stops every background goroutine the Runtime started.
func (rt *Runtime) Close() {
	rt.Deps.Locks.Stop()
	rt.Deps.Sessions.Stop()
	rt.Fallback.Stop()
}
