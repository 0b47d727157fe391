// Package pipeline implements the single entry point every tool call
// passes through: pre-hooks run in order and may
// short-circuit, the wrapped tool executes on success, and post-hooks fire
// without blocking the return. A FallbackPipeline wraps Pipeline so an
// internal failure in the hook machinery degrades to bypass mode instead
// of wedging the host agent.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	"github.com/agentflow/intentguard/internal/domain"
	"github.com/agentflow/intentguard/internal/hooks"
	"github.com/agentflow/intentguard/internal/recovery"
)

// Next invokes the wrapped tool. It is supplied by the caller (the host
// agent's tool dispatcher); the pipeline never implements tool behavior
// itself, only the governance wrapped around it.
type Next func(ctx context.Context, hctx *domain.HookContext) (any, error)

// Pipeline runs the pre/post hook chain around a tool invocation.
type Pipeline struct {
	registry *hooks.Registry
	log      zerolog.Logger
}

// New creates a Pipeline backed by registry.
func New(registry *hooks.Registry, log zerolog.Logger) *Pipeline {
	return &Pipeline{registry: registry, log: log.With().Str("component", "pipeline").Logger()}
}

// Execute runs the full pre-hook -> next -> post-hook sequence for one
// tool call.
func (p *Pipeline) Execute(ctx context.Context, toolName string, args map[string]any, session *domain.Session, next Next) domain.Result {
	hctx := &domain.HookContext{ToolName: toolName, Args: args, Session: session}

	p.runPreHooks(ctx, hctx)

	if hctx.Blocked {
		p.fireAndForgetPostHooks(ctx, hctx, nil)
		return p.blockedResult(hctx)
	}

	value, err := next(ctx, hctx)
	if err != nil {
		kind := domain.ErrorHookError
		if errors.Is(err, domain.ErrIntentNotFound) {
			kind = domain.ErrorMissingIntent
		}
		hctx.Block(domain.HookError{
			Type:    kind,
			Message: err.Error(),
		})
		p.fireAndForgetPostHooks(ctx, hctx, nil)
		return p.blockedResult(hctx)
	}

	p.fireAndForgetPostHooks(ctx, hctx, value)
	return domain.Result{Success: true, Value: value}
}

func (p *Pipeline) blockedResult(hctx *domain.HookContext) domain.Result {
	payload := recovery.FromHookError(*hctx.Error)
	hctx.LLMError = &payload
	return domain.Result{Success: false, Error: hctx.Error, LLMError: hctx.LLMError}
}

// runPreHooks runs every pre-hook for toolName in order inside an isolated
// failure boundary: a hook that panics is logged and the unmodified
// context is carried into the next hook (fail-open per hook). Iteration
// stops as soon as hctx.Blocked is set.
func (p *Pipeline) runPreHooks(ctx context.Context, hctx *domain.HookContext) {
	for _, hook := range p.registry.PreHooksFor(hctx.ToolName) {
		p.runHookSafely(ctx, hook, hctx)
		if hctx.Blocked {
			return
		}
	}
}

// fireAndForgetPostHooks runs every post-hook for toolName concurrently
// via a panic-safe conc.WaitGroup, without the caller awaiting completion.
// value is accepted for symmetry with a future where post-hooks inspect
// the tool's return value; current built-in post-hooks do not need it.
func (p *Pipeline) fireAndForgetPostHooks(ctx context.Context, hctx *domain.HookContext, _ any) {
	hookList := p.registry.PostHooksFor(hctx.ToolName)
	if len(hookList) == 0 {
		return
	}

	snapshot := *hctx // copy: post-hooks must not race the caller's return value

	var wg conc.WaitGroup
	for _, hook := range hookList {
		hook := hook
		wg.Go(func() {
			p.runHookSafely(ctx, hook, &snapshot)
		})
	}
	// Detached wait: the caller's return does not depend on post-hook
	// completion.
	go wg.Wait()
}

func (p *Pipeline) runHookSafely(ctx context.Context, hook hooks.Hook, hctx *domain.HookContext) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Warn().Interface("panic", r).Str("tool", hctx.ToolName).Msg("hook panicked; suppressing and continuing")
		}
	}()
	hook(ctx, hctx)
}

// FallbackPipeline wraps a Pipeline and switches to bypass mode (hooks
// disabled, tool executes directly) for bypassWindow after a catastrophic
// failure from the primary registry, reinstating primary mode early on a
// successful health-check probe.
type FallbackPipeline struct {
	primary       *Pipeline
	healthCheck   func(ctx context.Context) error
	bypassWindow  time.Duration
	healthPeriod  time.Duration
	log           zerolog.Logger

	mu          sync.Mutex
	bypassUntil time.Time

	wg     conc.WaitGroup
	stopCh chan struct{}
	once   sync.Once
}

// DefaultBypassWindow is how long bypass mode lasts without an early
// reinstatement from a successful health check.
const DefaultBypassWindow = 60 * time.Second

// DefaultHealthCheckPeriod is how often the background probe runs while in
// bypass mode.
const DefaultHealthCheckPeriod = 5 * time.Second

// NewFallback wraps primary. healthCheck is a cheap registry operation used
// to probe whether it is safe to leave bypass mode; it may be nil, in
// which case bypass mode always runs the full bypassWindow.
func NewFallback(primary *Pipeline, healthCheck func(ctx context.Context) error, log zerolog.Logger) *FallbackPipeline {
	return &FallbackPipeline{
		primary:      primary,
		healthCheck:  healthCheck,
		bypassWindow: DefaultBypassWindow,
		healthPeriod: DefaultHealthCheckPeriod,
		log:          log.With().Str("component", "fallback_pipeline").Logger(),
		stopCh:       make(chan struct{}),
	}
}

// Execute runs the call through the primary pipeline, or directly through
// next if currently in bypass mode. A panic escaping the primary pipeline
// itself (rather than an individual hook, which Pipeline already isolates)
// triggers bypass mode and is converted to a HOOK_ERROR result.
func (f *FallbackPipeline) Execute(ctx context.Context, toolName string, args map[string]any, session *domain.Session, next Next) (result domain.Result) {
	if f.inBypass() {
		hctx := &domain.HookContext{ToolName: toolName, Args: args, Session: session}
		value, err := next(ctx, hctx)
		if err != nil {
			errPayload := domain.HookError{Type: domain.ErrorHookError, Message: err.Error()}
			llm := recovery.FromHookError(errPayload)
			return domain.Result{Success: false, Error: &errPayload, LLMError: &llm}
		}
		return domain.Result{Success: true, Value: value}
	}

	defer func() {
		if r := recover(); r != nil {
			f.log.Error().Interface("panic", r).Msg("primary pipeline failed catastrophically; entering bypass mode")
			f.enterBypass()
			hookErr := domain.HookError{Type: domain.ErrorHookError, Message: fmt.Sprintf("pipeline panic: %v", r)}
			payload := recovery.FromHookError(hookErr)
			result = domain.Result{Success: false, Error: &hookErr, LLMError: &payload}
		}
	}()

	return f.primary.Execute(ctx, toolName, args, session, next)
}

func (f *FallbackPipeline) inBypass() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return time.Now().Before(f.bypassUntil)
}

func (f *FallbackPipeline) enterBypass() {
	f.mu.Lock()
	f.bypassUntil = time.Now().Add(f.bypassWindow)
	f.mu.Unlock()
	f.once.Do(f.startHealthCheck)
}

func (f *FallbackPipeline) startHealthCheck() {
	if f.healthCheck == nil {
		return
	}
	f.wg.Go(func() {
		ticker := time.NewTicker(f.healthPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-f.stopCh:
				return
			case <-ticker.C:
				if !f.inBypass() {
					return
				}
				if err := f.healthCheck(context.Background()); err == nil {
					f.mu.Lock()
					f.bypassUntil = time.Time{}
					f.mu.Unlock()
					f.log.Info().Msg("health check succeeded; reinstating primary pipeline")
					return
				}
			}
		}
	})
}

// Stop terminates the background health-check goroutine, if running.
func (f *FallbackPipeline) Stop() {
	close(f.stopCh)
	f.wg.Wait()
}
