package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentflow/intentguard/internal/domain"
	"github.com/agentflow/intentguard/internal/intentstore"
)

var intentCmd = &cobra.Command{
	Use:   "intent",
	Short: "Inspect the declarative intent store",
}

var intentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List declared intents",
	Long: `List every intent in the declarative store with its status and scope.

Examples:
  ig intent list
  ig intent list -o json`,
	RunE: runIntentList,
}

var intentShowCmd = &cobra.Command{
	Use:   "show <intent-id>",
	Short: "Show one intent in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runIntentShow,
}

func init() {
	intentCmd.AddCommand(intentListCmd)
	intentCmd.AddCommand(intentShowCmd)
	rootCmd.AddCommand(intentCmd)
}

func runIntentList(cmd *cobra.Command, args []string) error {
	store := intentstore.New(GetConfig().IntentStorePath, GetLogger())
	intents := store.Load()

	if GetOutput() == "json" {
		data, err := json.MarshalIndent(intents, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal intents: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if len(intents) == 0 {
		fmt.Println("No intents declared.")
		fmt.Printf("Expected store at: %s\n", GetConfig().IntentStorePath)
		return nil
	}

	fmt.Printf("%-10s %-10s %-30s %s\n", "ID", "STATUS", "NAME", "SCOPE")
	for _, intent := range intents {
		fmt.Printf("%-10s %-10s %-30s %s\n",
			intent.ID, intent.Status, truncate(intent.Name, 30), scopeSummary(intent))
	}
	return nil
}

func runIntentShow(cmd *cobra.Command, args []string) error {
	store := intentstore.New(GetConfig().IntentStorePath, GetLogger())
	store.Load()

	intent, err := store.Get(args[0])
	if err != nil {
		return fmt.Errorf("intent %s: %w", args[0], err)
	}

	if GetOutput() == "json" {
		data, err := json.MarshalIndent(intent, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal intent: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("%s — %s [%s]\n", intent.ID, intent.Name, intent.Status)
	printList("Scope", intent.OwnedScope)
	printList("Constraints", intent.Constraints)
	printList("Acceptance criteria", intent.AcceptanceCriteria)
	if intent.CreatedAt != nil {
		fmt.Printf("Created: %s\n", intent.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	if intent.UpdatedAt != nil {
		fmt.Printf("Updated: %s\n", intent.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// scopeSummary renders an intent's scope for the list view: the first glob
// plus a count of the rest, or a read-only marker for an empty scope.
func scopeSummary(intent domain.Intent) string {
	switch len(intent.OwnedScope) {
	case 0:
		return "(read-only)"
	case 1:
		return intent.OwnedScope[0]
	default:
		return fmt.Sprintf("%s (+%d more)", intent.OwnedScope[0], len(intent.OwnedScope)-1)
	}
}

func printList(label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Printf("%s:\n", label)
	for _, item := range items {
		fmt.Printf("  • %s\n", item)
	}
}

func truncate(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
