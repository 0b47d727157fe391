package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/agentflow/intentguard/internal/domain"
	"github.com/agentflow/intentguard/internal/hooks"
	"github.com/agentflow/intentguard/internal/pipeline"
)

// SelectIntentTool is the one externally-callable tool name: it records
// an intent choice on the session and is itself routed through the
// Pipeline, exempted from intent_gatekeeper by name.
const SelectIntentTool = "select_intent"

// maxCuratedConstraints bounds the curated (default) context's constraint
// list.
const maxCuratedConstraints = 3

// recentActivityLimit bounds the enhanced variant's trace history.
const recentActivityLimit = 3

// CuratedContext is the bounded, relevance-filtered summary returned by
// select_intent: never the full intent dump.
type CuratedContext struct {
	IntentID       string              `json:"intent_id"`
	Name           string              `json:"name"`
	Status         domain.IntentStatus `json:"status"`
	Constraints    []string            `json:"constraints"`
	PrimaryFocus   string              `json:"primary_focus,omitempty"`
	Guidance       string              `json:"guidance"`
	RecentActivity []domain.TraceRecord `json:"recent_activity,omitempty"`
}

// SelectIntent looks up intentID in the intent store, sets it on the
// session, and returns a curated (or, with enhanced=true, expanded)
// context. It is called as the tool body behind the Pipeline's next, not
// as a hooks.Hook itself: the gatekeeper exemption is by name, not by
// bypassing the pipeline.
func SelectIntent(deps *hooks.Deps) pipeline.Next {
	return func(ctx context.Context, hctx *domain.HookContext) (any, error) {
		intentID := hooks.ArgString(hctx, "intent_id")
		enhanced := hooks.ArgBool(hctx, "enhanced")

		intent, err := deps.Intents.Get(intentID)
		if err != nil {
			return nil, fmt.Errorf("intent %q: %w; check the declarative intent store", intentID, err)
		}

		if hctx.Session != nil {
			deps.Sessions.SetIntent(hctx.Session.ID, intent.ID)
		}

		curated := CuratedContext{
			IntentID:     intent.ID,
			Name:         intent.Name,
			Status:       intent.Status,
			Constraints:  relevantConstraints(intent, hctx),
			PrimaryFocus: primaryFocus(intent),
			Guidance:     guidanceFor(intent),
		}

		if enhanced {
			curated.Constraints = intent.Constraints
			curated.RecentActivity = recentActivity(deps, intent.ID)
		}

		return curated, nil
	}
}

// relevantConstraints returns at most maxCuratedConstraints entries,
// preferring ones that mention the call's target path when one is
// present, and falling back to the first few otherwise.
func relevantConstraints(intent domain.Intent, hctx *domain.HookContext) []string {
	if len(intent.Constraints) <= maxCuratedConstraints {
		return intent.Constraints
	}

	path := hooks.ArgString(hctx, "path")
	var matched []string
	if path != "" {
		for _, c := range intent.Constraints {
			if strings.Contains(strings.ToLower(c), strings.ToLower(path)) {
				matched = append(matched, c)
			}
		}
	}

	for _, c := range intent.Constraints {
		if len(matched) >= maxCuratedConstraints {
			break
		}
		if !contains(matched, c) {
			matched = append(matched, c)
		}
	}

	if len(matched) > maxCuratedConstraints {
		matched = matched[:maxCuratedConstraints]
	}
	return matched
}

func primaryFocus(intent domain.Intent) string {
	if len(intent.OwnedScope) == 0 {
		return ""
	}
	return intent.OwnedScope[0]
}

func guidanceFor(intent domain.Intent) string {
	if len(intent.OwnedScope) == 0 {
		return "this intent owns no scope; writes will require approval on every path"
	}
	return "stay within " + primaryFocus(intent) + "; consult the declaration store for the full scope list"
}

func recentActivity(deps *hooks.Deps, intentID string) []domain.TraceRecord {
	records := deps.Traces.ByIntent(intentID)
	if len(records) <= recentActivityLimit {
		return records
	}
	return records[len(records)-recentActivityLimit:]
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

