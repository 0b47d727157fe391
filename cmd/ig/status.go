package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentflow/intentguard/internal/config"
	"github.com/agentflow/intentguard/internal/domain"
	"github.com/agentflow/intentguard/internal/intentstore"
	"github.com/agentflow/intentguard/internal/lesson"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show governance data overview",
	Long: `Summarize the on-disk governance state: declared intents by status,
trace journal size, lesson log entries, and where each config value came
from.

Examples:
  ig status
  ig status -o json`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// statusReport is the JSON shape of `ig status -o json`.
type statusReport struct {
	IntentStorePath string                 `json:"intent_store_path"`
	IntentCounts    map[string]int         `json:"intent_counts"`
	TraceJournal    string                 `json:"trace_journal_path"`
	TraceRecords    int                    `json:"trace_records"`
	LessonLog       string                 `json:"lesson_log_path"`
	LessonEntries   int                    `json:"lesson_entries"`
	Config          *config.ResolvedConfig `json:"config"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	intents := intentstore.New(cfg.IntentStorePath, GetLogger()).Load()
	counts := countByStatus(intents)

	traceRecords, err := countJournalLines(cfg.TraceJournalPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read trace journal: %w", err)
	}

	entries, err := lesson.Read(cfg.LessonLogPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read lesson log: %w", err)
	}

	report := statusReport{
		IntentStorePath: cfg.IntentStorePath,
		IntentCounts:    counts,
		TraceJournal:    cfg.TraceJournalPath,
		TraceRecords:    traceRecords,
		LessonLog:       cfg.LessonLogPath,
		LessonEntries:   len(entries),
		Config:          config.Resolve(output, baseDir, verbose),
	}

	if GetOutput() == "json" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal status: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Println("intentguard status")
	fmt.Println()
	fmt.Printf("Intent store:   %s\n", report.IntentStorePath)
	if len(intents) == 0 {
		fmt.Println("  No intents declared.")
	}
	for _, status := range []domain.IntentStatus{domain.IntentActive, domain.IntentPaused, domain.IntentCompleted} {
		if n := counts[string(status)]; n > 0 {
			fmt.Printf("  %-10s %d\n", strings.ToLower(string(status)), n)
		}
	}
	fmt.Printf("Trace journal:  %s (%d records)\n", report.TraceJournal, report.TraceRecords)
	fmt.Printf("Lesson log:     %s (%d entries)\n", report.LessonLog, report.LessonEntries)
	fmt.Println()
	fmt.Printf("Config:\n")
	fmt.Printf("  output:   %-8v (%s)\n", report.Config.Output.Value, report.Config.Output.Source)
	fmt.Printf("  base_dir: %-8v (%s)\n", report.Config.BaseDir.Value, report.Config.BaseDir.Source)
	fmt.Printf("  verbose:  %-8v (%s)\n", report.Config.Verbose.Value, report.Config.Verbose.Source)
	return nil
}

// countByStatus tallies intents per lifecycle status.
func countByStatus(intents []domain.Intent) map[string]int {
	counts := make(map[string]int)
	for _, intent := range intents {
		counts[string(intent.Status)]++
	}
	return counts
}

// countJournalLines counts non-blank lines in the trace journal without
// parsing them; malformed lines still count toward journal size here.
func countJournalLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) != "" {
			n++
		}
	}
	return n, scanner.Err()
}
