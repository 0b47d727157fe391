package hooks

import (
	"context"
	"strings"

	"github.com/agentflow/intentguard/internal/domain"
	"github.com/agentflow/intentguard/internal/intentstore"
)

// ScopeEnforcer checks a write_to_file target against the IgnoreIndex and
// then the active intent's declared scope globs, requesting approval and
// blocking on rejection when the path falls outside scope.
func ScopeEnforcer(deps *Deps) Hook {
	return func(ctx context.Context, hctx *domain.HookContext) {
		if hctx.ToolName != WriteToFileTool {
			return
		}

		path := ArgString(hctx, "path")
		intent, ok := deps.currentIntent(hctx)
		if !ok {
			// intent_gatekeeper already blocks this case when it runs first;
			// nothing further to enforce without a resolved intent.
			return
		}

		if deps.Ignore.IsExcluded(path, intent.ID) {
			hctx.Block(domain.HookError{
				Type:    domain.ErrorFileExcluded,
				Message: "path is covered by an exclusion rule",
			})
			return
		}

		if deps.Ignore.RequiresApproval(path, intent.ID) {
			decision, err := deps.Approval.ConfirmScopeViolation(ctx, intent.ID, path, intent.OwnedScope)
			if err != nil || !decision.Approved {
				hctx.Block(domain.HookError{
					Type:    domain.ErrorFileExcluded,
					Message: "path requires explicit approval, which was not granted",
				})
				return
			}
			hctx.UserFeedback = decision.Feedback
		}

		if intentstore.ScopeMatches(intent, path) {
			return
		}

		decision, err := deps.Approval.ConfirmScopeViolation(ctx, intent.ID, path, intent.OwnedScope)
		if err != nil {
			deps.Log.Warn().Err(err).Str("path", path).Msg("approval port failed; failing closed")
			hctx.Block(domain.HookError{
				Type:       domain.ErrorScopeViolation,
				Message:    "path is outside the active intent's scope",
				Suggestion: scopeSuggestion(intent),
			})
			return
		}

		if decision.Approved {
			hctx.UserFeedback = decision.Feedback
			return
		}

		hctx.Block(domain.HookError{
			Type:       domain.ErrorScopeViolation,
			Message:    "path is outside the active intent's scope and was rejected by the user",
			Suggestion: scopeSuggestion(intent),
			Details:    map[string]any{"owned_scope": intent.OwnedScope},
		})
	}
}

func scopeSuggestion(intent domain.Intent) string {
	if len(intent.OwnedScope) == 0 {
		return "this intent owns no scope; select a different intent"
	}
	return "restrict changes to " + strings.Join(intent.OwnedScope, ", ")
}
