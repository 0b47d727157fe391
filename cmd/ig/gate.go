package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentflow/intentguard/internal/bootstrap"
	"github.com/agentflow/intentguard/internal/domain"
	"github.com/agentflow/intentguard/internal/ports"
	"github.com/agentflow/intentguard/internal/recovery"
	"github.com/agentflow/intentguard/internal/vcs"
)

var (
	gateTool         string
	gatePath         string
	gateContent      string
	gateCommand      string
	gateIntentID     string
	gateRegisterRead bool
)

var gateCmd = &cobra.Command{
	Use:   "gate",
	Short: "Inspect the pre-hook gate",
}

var gateSimulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Dry-run a hypothetical tool call through the pre-hooks",
	Long: `Run a hypothetical (tool, args, session) through the real pre-hook
chain without executing the tool, and report which hook would block and
why. Approval prompts are answered with an automatic rejection, so any
path that needs a human shows up as a block.

Examples:
  ig gate simulate --tool write_to_file --path src/api/handler.go --intent INT-001
  ig gate simulate --tool write_to_file --path src/api/handler.go --intent INT-001 --register-read
  ig gate simulate --tool execute_command --command "git push --force" --intent INT-001`,
	RunE: runGateSimulate,
}

func init() {
	gateSimulateCmd.Flags().StringVar(&gateTool, "tool", "", "tool name (write_to_file, execute_command, ...)")
	gateSimulateCmd.Flags().StringVar(&gatePath, "path", "", "target path for write_to_file")
	gateSimulateCmd.Flags().StringVar(&gateContent, "content", "", "new content for write_to_file")
	gateSimulateCmd.Flags().StringVar(&gateCommand, "command", "", "shell command for execute_command")
	gateSimulateCmd.Flags().StringVar(&gateIntentID, "intent", "", "intent id to select on the simulated session")
	gateSimulateCmd.Flags().BoolVar(&gateRegisterRead, "register-read", false, "register a read of the current on-disk content first")
	_ = gateSimulateCmd.MarkFlagRequired("tool")
	gateCmd.AddCommand(gateSimulateCmd)
	rootCmd.AddCommand(gateCmd)
}

// denyAllApproval answers every approval prompt with a rejection so the
// simulation reports what a human would be asked about.
type denyAllApproval struct{}

func (denyAllApproval) ConfirmDestructive(context.Context, string, string, string, string) (ports.ApprovalDecision, error) {
	return ports.ApprovalDecision{Approved: false, Feedback: "rejected by gate simulation"}, nil
}

func (denyAllApproval) ConfirmScopeViolation(context.Context, string, string, []string) (ports.ApprovalDecision, error) {
	return ports.ApprovalDecision{Approved: false, Feedback: "rejected by gate simulation"}, nil
}

func (denyAllApproval) ConfirmIntentEvolution(context.Context, string, string, string) (ports.ApprovalDecision, error) {
	return ports.ApprovalDecision{Approved: false, Feedback: "rejected by gate simulation"}, nil
}

// simulationOutcome is the result of one simulated gate pass.
type simulationOutcome struct {
	Tool     string                  `json:"tool"`
	Allowed  bool                    `json:"allowed"`
	Error    *domain.HookError       `json:"error,omitempty"`
	Recovery *domain.RecoveryPayload `json:"recovery,omitempty"`
	Locks    []string                `json:"locks_acquired,omitempty"`
}

// simulateGate runs the registry's pre-hooks for one fabricated call and
// reports the decision plus any lock the stale-file detector acquired.
func simulateGate(rt *bootstrap.Runtime, toolName string, tfArgs map[string]any, intentID string, registerRead bool) simulationOutcome {
	session := rt.Deps.Sessions.Create("", "gate-simulate")
	if intentID != "" {
		if _, err := rt.Deps.Intents.Get(intentID); err == nil {
			_ = rt.Deps.Sessions.SetIntent(session.ID, intentID)
		}
	}
	if registerRead {
		if path, ok := tfArgs["path"].(string); ok && path != "" {
			_ = rt.Deps.Locks.RegisterRead(path, session.ID)
		}
	}

	hctx := &domain.HookContext{ToolName: toolName, Args: tfArgs, Session: session}
	ctx := context.Background()
	for _, hook := range rt.Registry.PreHooksFor(toolName) {
		hook(ctx, hctx)
		if hctx.Blocked {
			break
		}
	}

	outcome := simulationOutcome{Tool: toolName, Allowed: !hctx.Blocked, Error: hctx.Error}
	if hctx.Error != nil {
		payload := recovery.FromHookError(*hctx.Error)
		outcome.Recovery = &payload
	}
	for _, held := range rt.Deps.Locks.All() {
		if held.Lock.Holder == session.ID {
			outcome.Locks = append(outcome.Locks, held.Path)
			rt.Deps.Locks.ForceRelease(held.Path)
		}
	}
	rt.Deps.Sessions.Destroy(session.ID)
	return outcome
}

func runGateSimulate(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	log := GetLogger()

	readFile := func(path string) (string, bool) {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", false
		}
		return string(data), true
	}

	rt := bootstrap.New(bootstrap.Config{
		IntentStorePath:    cfg.IntentStorePath,
		IgnoreFilePath:     cfg.IgnoreFilePath,
		TraceJournalPath:   cfg.TraceJournalPath,
		LessonLogPath:      cfg.LessonLogPath,
		IntentMapPath:      cfg.IntentMapPath,
		LockStaleAfter:     cfg.LockStaleAfter,
		LockReapInterval:   cfg.LockReapInterval,
		SessionIdleTimeout: cfg.SessionIdleTimeout,
		BypassWindow:       cfg.BypassWindow,
	}, readFile, denyAllApproval{}, vcs.New(".", 2*time.Second, log), log)
	defer rt.Close()

	tfArgs := map[string]any{}
	if gatePath != "" {
		tfArgs["path"] = gatePath
	}
	if gateContent != "" {
		tfArgs["content"] = gateContent
	}
	if gateCommand != "" {
		tfArgs["command"] = gateCommand
	}

	outcome := simulateGate(rt, gateTool, tfArgs, gateIntentID, gateRegisterRead)

	if GetOutput() == "json" {
		data, err := json.MarshalIndent(outcome, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal outcome: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if outcome.Allowed {
		fmt.Printf("ALLOW  %s would pass the gate\n", outcome.Tool)
	} else {
		fmt.Printf("BLOCK  %s\n", outcome.Error.Type)
		fmt.Printf("  %s\n", outcome.Error.Message)
		if outcome.Error.Suggestion != "" {
			fmt.Printf("  suggestion: %s\n", outcome.Error.Suggestion)
		}
		if outcome.Recovery != nil {
			for _, action := range outcome.Recovery.Recovery.SuggestedActions {
				fmt.Printf("  → %s\n", action)
			}
		}
	}
	for _, path := range outcome.Locks {
		fmt.Printf("  (lock exercised: %s)\n", path)
	}
	return nil
}
