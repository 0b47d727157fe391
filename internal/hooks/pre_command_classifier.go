package hooks

import (
	"context"

	"github.com/agentflow/intentguard/internal/classifier"
	"github.com/agentflow/intentguard/internal/domain"
)

// ExecuteCommandTool is the tool name the command classifier hook watches
// for.
const ExecuteCommandTool = "execute_command"

// WriteToFileTool is the tool name the scope/stale-file/lock/trace hooks
// watch for.
const WriteToFileTool = "write_to_file"

// CommandClassifierHook consults the IgnoreIndex first, then classifies
// the command. Safe commands pass. Destructive/unknown commands pass only
// if the active intent allows destructive operations; otherwise the hook
// requests human approval and blocks on rejection.
func CommandClassifierHook(deps *Deps) Hook {
	return func(ctx context.Context, hctx *domain.HookContext) {
		if hctx.ToolName != ExecuteCommandTool {
			return
		}

		command := ArgString(hctx, "command")
		intentID := ""
		if hctx.Session != nil {
			intentID = hctx.Session.IntentID
		}

		if deps.Ignore.IsExcluded(command, intentID) {
			hctx.Block(domain.HookError{
				Type:    domain.ErrorCommandExcluded,
				Message: "command is covered by an exclusion rule",
			})
			return
		}

		classification := classifier.Classify(command)
		if classification.Risk == domain.RiskSafe {
			return
		}

		if deps.Ignore.AllowsDestructive(intentID) {
			return
		}

		decision, err := deps.Approval.ConfirmDestructive(ctx, command, string(classification.Risk), classification.MatchedPattern, intentID)
		if err != nil {
			deps.Log.Warn().Err(err).Str("command", command).Msg("approval port failed; failing closed")
			hctx.Block(domain.HookError{
				Type:       domain.ErrorDestructiveCmd,
				Message:    "command classified as " + string(classification.Risk) + " and approval could not be obtained",
				Suggestion: classification.SuggestedAlternative,
			})
			return
		}

		if decision.Approved {
			hctx.UserFeedback = decision.Feedback
			return
		}

		hctx.Block(domain.HookError{
			Type:       domain.ErrorDestructiveCmd,
			Message:    "command classified as " + string(classification.Risk) + " and was rejected by the user",
			Suggestion: classification.SuggestedAlternative,
			Details:    map[string]any{"matched_pattern": classification.MatchedPattern},
		})
	}
}
