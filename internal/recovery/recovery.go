// Package recovery formats blocked/failed pipeline outcomes into the
// machine-parseable payload agents consume: a structured error plus a
// _recovery envelope carrying suggested next actions per error kind.
package recovery

import (
	"fmt"

	"github.com/agentflow/intentguard/internal/domain"
)

// suggestedActions is the per-kind action list agents receive.
var suggestedActions = map[domain.ErrorKind][]string{
	domain.ErrorIntentRequired: {
		"call select_intent with a valid id",
		"check the intent declaration store",
	},
	domain.ErrorScopeViolation: {
		"request scope expansion",
		"switch to an intent with broader scope",
		"restrict changes to allowed globs",
	},
	domain.ErrorDestructiveCmd: {
		"use a safer alternative",
		"split the operation",
		"obtain explicit user approval",
	},
	domain.ErrorStaleFile: {
		"re-read current content",
		"merge against the new version",
		"restart with a fresh snapshot",
	},
	domain.ErrorFileExcluded: {
		"remove from the exclusion rules",
		"choose a different target",
		"ask for approval",
	},
	domain.ErrorCommandExcluded: {
		"remove from the exclusion rules",
		"choose a different target",
		"ask for approval",
	},
	domain.ErrorFileLocked: {
		"wait for queue position N",
		"back off and retry",
	},
	domain.ErrorHookError: {
		"retry",
		"report to maintainer",
	},
}

// instructions gives the one-line imperative summary placed in
// _recovery.instruction for each error kind.
var instructions = map[domain.ErrorKind]string{
	domain.ErrorIntentRequired:  "select an intent before calling this tool",
	domain.ErrorScopeViolation:  "this path is outside the active intent's scope",
	domain.ErrorDestructiveCmd:  "this command was classified as destructive and was not approved",
	domain.ErrorStaleFile:       "the file changed on disk since it was last read",
	domain.ErrorFileExcluded:    "this path is covered by an exclusion rule",
	domain.ErrorCommandExcluded: "this command is covered by an exclusion rule",
	domain.ErrorFileLocked:      "another session holds this file's lock",
	domain.ErrorMissingIntent:   "the referenced intent does not exist in the declarative store",
	domain.ErrorHookError:       "an internal hook failure occurred; the call did not complete",
}

// retryable is the set of kinds for which _recovery.retry is true: the
// agent can reasonably retry the same call after following the suggested
// action, as opposed to needing a different call entirely.
var retryable = map[domain.ErrorKind]bool{
	domain.ErrorStaleFile:  true,
	domain.ErrorFileLocked: true,
	domain.ErrorHookError:  true,
}

// Format builds the full RecoveryPayload for a blocked or failed call. Every
// kind in the taxonomy is recoverable=true; catastrophic conditions the
// caller cannot influence are not represented here.
func Format(kind domain.ErrorKind, message, suggestion string, details map[string]any) domain.RecoveryPayload {
	var payload domain.RecoveryPayload
	payload.Status = "error"
	payload.Error.Type = kind
	payload.Error.Message = message
	payload.Error.Recoverable = true
	payload.Error.Suggestion = suggestion
	payload.Error.Details = details

	payload.Recovery.Instruction = instructionFor(kind)
	payload.Recovery.Retry = retryable[kind]
	payload.Recovery.SuggestedActions = actionsFor(kind)
	if suggestion != "" {
		payload.Recovery.SuggestedActions = append(payload.Recovery.SuggestedActions, suggestion)
	}

	return payload
}

// FromHookError builds a RecoveryPayload from a domain.HookError, the shape
// every blocking pre-hook populates on domain.HookContext.
func FromHookError(err domain.HookError) domain.RecoveryPayload {
	payload := Format(err.Type, err.Message, err.Suggestion, err.Details)
	if err.Type == domain.ErrorFileLocked {
		if pos, ok := err.Details["position"]; ok {
			payload.Recovery.SuggestedActions[0] = fmt.Sprintf("wait for queue position %v", pos)
		}
	}
	return payload
}

func instructionFor(kind domain.ErrorKind) string {
	if s, ok := instructions[kind]; ok {
		return s
	}
	return "an unrecoverable condition was reported"
}

// actionsFor returns a copy of the suggested-actions slice for kind so
// callers can safely append to it (e.g. FILE_LOCKED's queue-position
// substitution) without mutating the shared table.
func actionsFor(kind domain.ErrorKind) []string {
	actions, ok := suggestedActions[kind]
	if !ok {
		return nil
	}
	out := make([]string, len(actions))
	copy(out, actions)
	return out
}
