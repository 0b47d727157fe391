package hooks

import (
	"context"

	"github.com/agentflow/intentguard/internal/domain"
)

// selectIntentTool is the one tool name exempt from the gatekeeper:
// it is the operation used to select an intent in the first place.
const selectIntentTool = "select_intent"

// IntentGatekeeper blocks every call other than select_intent when the
// session has not yet selected an intent.
func IntentGatekeeper(deps *Deps) Hook {
	return func(_ context.Context, hctx *domain.HookContext) {
		if hctx.ToolName == selectIntentTool {
			return
		}
		if hctx.Session != nil && hctx.Session.IntentID != "" {
			return
		}
		hctx.Block(domain.HookError{
			Type:    domain.ErrorIntentRequired,
			Message: "no intent selected for this session",
		})
	}
}
