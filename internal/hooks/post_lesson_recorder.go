package hooks

import (
	"context"

	"github.com/agentflow/intentguard/internal/domain"
	"github.com/agentflow/intentguard/internal/lesson"
)

// LessonRecorder appends a post-mortem entry keyed by intent, tool, and
// error type whenever a call is blocked or fails.
func LessonRecorder(deps *Deps) Hook {
	return func(_ context.Context, hctx *domain.HookContext) {
		if !hctx.Blocked || hctx.Error == nil {
			return
		}

		intentID := ""
		if hctx.Session != nil {
			intentID = hctx.Session.IntentID
		}

		deps.Lessons.Append(lesson.Entry{
			Type:     string(hctx.Error.Type),
			IntentID: intentID,
			Tool:     hctx.ToolName,
			Message:  hctx.Error.Message,
			Details:  hctx.Error.Suggestion,
			Tags:     []string{"pipeline", string(hctx.Error.Type)},
		})
	}
}
