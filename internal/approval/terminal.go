// Package approval provides reference UserApprovalPort implementations: a
// terminal prompt for interactive sessions and an HTTP callback port for
// hosts that drive approval from a separate process or UI.
package approval

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/rs/zerolog"

	"github.com/agentflow/intentguard/internal/ports"
)

// Terminal asks for approval with an interactive huh confirm prompt. It
// blocks the calling goroutine until the user answers, so it is only
// appropriate for a foreground, single-session host.
type Terminal struct {
	log        zerolog.Logger
	accessible bool
}

// NewTerminal creates a Terminal port. accessible forces huh's
// screen-reader-friendly prompt mode (normally auto-detected from the
// environment by the host CLI).
func NewTerminal(accessible bool, log zerolog.Logger) *Terminal {
	return &Terminal{log: log.With().Str("component", "approval_terminal").Logger(), accessible: accessible}
}

func (t *Terminal) ConfirmDestructive(_ context.Context, command, risk, matchedPattern, intentID string) (ports.ApprovalDecision, error) {
	title := fmt.Sprintf("Run destructive command under intent %q?\n  %s\n  (matched: %s)", intentID, command, matchedPattern)
	return t.confirm(title)
}

func (t *Terminal) ConfirmScopeViolation(_ context.Context, intentID, path string, scopes []string) (ports.ApprovalDecision, error) {
	title := fmt.Sprintf("Write to %q is outside intent %q's declared scope %v. Allow anyway?", path, intentID, scopes)
	return t.confirm(title)
}

func (t *Terminal) ConfirmIntentEvolution(_ context.Context, intentID, path, summary string) (ports.ApprovalDecision, error) {
	title := fmt.Sprintf("Change to %q under intent %q looks like intent evolution: %s. Proceed?", path, intentID, summary)
	return t.confirm(title)
}

func (t *Terminal) confirm(title string) (ports.ApprovalDecision, error) {
	var approved bool
	var feedback string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Allow").
				Negative("Deny").
				Value(&approved),
			huh.NewText().
				Title("Optional feedback (why, or what to do instead)").
				Value(&feedback),
		),
	).WithAccessible(t.accessible)

	if err := form.Run(); err != nil {
		t.log.Warn().Err(err).Msg("approval form failed; treating as denied")
		return ports.ApprovalDecision{Approved: false}, err
	}

	return ports.ApprovalDecision{Approved: approved, Feedback: feedback}, nil
}
