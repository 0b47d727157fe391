package hooks

import (
	"context"
	"strings"

	"github.com/agentflow/intentguard/internal/domain"
	"github.com/agentflow/intentguard/internal/lesson"
	"github.com/agentflow/intentguard/internal/recovery"
)

// RecoveryLogger appends the recovery strategy (_recovery envelope) that
// was computed for a failed or blocked call, distinct from lesson_recorder
// which records the failure itself.
func RecoveryLogger(deps *Deps) Hook {
	return func(_ context.Context, hctx *domain.HookContext) {
		if !hctx.Blocked || hctx.Error == nil {
			return
		}

		// The pipeline builds Result.LLMError itself before returning; the
		// payload here only feeds the logged entry.
		payload := recovery.FromHookError(*hctx.Error)

		intentID := ""
		if hctx.Session != nil {
			intentID = hctx.Session.IntentID
		}

		deps.Lessons.Append(lesson.Entry{
			Type:       "RECOVERY",
			IntentID:   intentID,
			Tool:       hctx.ToolName,
			Message:    payload.Recovery.Instruction,
			Resolution: strings.Join(payload.Recovery.SuggestedActions, "; "),
			Tags:       []string{"recovery", string(hctx.Error.Type)},
		})
	}
}
