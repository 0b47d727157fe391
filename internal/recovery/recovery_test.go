package recovery

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agentflow/intentguard/internal/domain"
)

func TestFormat_ScopeViolationShape(t *testing.T) {
	payload := Format(domain.ErrorScopeViolation, "path outside scope", "restrict to src/api/weather/**", nil)
	require.Equal(t, "error", payload.Status)
	require.Equal(t, domain.ErrorScopeViolation, payload.Error.Type)
	require.True(t, payload.Error.Recoverable)
	require.Contains(t, payload.Recovery.SuggestedActions, "restrict changes to allowed globs")
	require.False(t, payload.Recovery.Retry)
}

func TestFormat_DestructiveCommandSuggestsForceWithLease(t *testing.T) {
	payload := Format(domain.ErrorDestructiveCmd, "force push rejected", "use --force-with-lease", nil)
	require.Equal(t, "use --force-with-lease", payload.Error.Suggestion)
	require.Contains(t, payload.Recovery.SuggestedActions, "obtain explicit user approval")
	require.Contains(t, payload.Recovery.SuggestedActions, "use --force-with-lease")
}

func TestFromHookError_FileLockedSubstitutesQueuePosition(t *testing.T) {
	err := domain.HookError{
		Type:    domain.ErrorFileLocked,
		Message: "file is locked",
		Details: map[string]any{"position": 2},
	}
	payload := FromHookError(err)
	require.Equal(t, "wait for queue position 2", payload.Recovery.SuggestedActions[0])
	require.True(t, payload.Recovery.Retry)
}

func TestActionsFor_ReturnsIndependentCopy(t *testing.T) {
	a := Format(domain.ErrorFileLocked, "m", "", nil)
	a.Recovery.SuggestedActions[0] = "mutated"
	b := Format(domain.ErrorFileLocked, "m", "", nil)
	require.NotEqual(t, "mutated", b.Recovery.SuggestedActions[0])
}

func TestFormat_UnknownKindFallsBackToGenericInstruction(t *testing.T) {
	payload := Format(domain.ErrorKind("UNSEEN"), "m", "", nil)
	require.Equal(t, "an unrecoverable condition was reported", payload.Recovery.Instruction)
	require.Nil(t, payload.Recovery.SuggestedActions)
}
