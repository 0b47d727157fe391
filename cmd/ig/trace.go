package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentflow/intentguard/internal/domain"
	"github.com/agentflow/intentguard/internal/trace"
)

var (
	traceIntentID    string
	traceFilePath    string
	traceContentHash string
)

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Query the append-only trace journal",
}

var traceQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query trace records by intent, file, or content hash",
	Long: `Query the trace journal. Exactly one selector is required.

The --hash selector is the spatial-independence query: it locates code by
its content fingerprint regardless of which file or line it occupies now.

Examples:
  ig trace query --intent INT-001
  ig trace query --file src/api/weather/fetch.ts
  ig trace query --hash 9f86d081884c7d65 -o json`,
	RunE: runTraceQuery,
}

var traceMapCmd = &cobra.Command{
	Use:   "map <intent-id>",
	Short: "Render the derived intent map for one intent",
	Long: `Regenerate the markdown intent map view: one section per intent,
one bullet per (file, mutation class, timestamp) tuple, derived entirely
from the trace journal.`,
	Args: cobra.ExactArgs(1),
	RunE: runTraceMap,
}

func init() {
	traceQueryCmd.Flags().StringVar(&traceIntentID, "intent", "", "select records referencing this intent id")
	traceQueryCmd.Flags().StringVar(&traceFilePath, "file", "", "select records touching this file path")
	traceQueryCmd.Flags().StringVar(&traceContentHash, "hash", "", "select records containing this content hash")
	traceCmd.AddCommand(traceQueryCmd)
	traceCmd.AddCommand(traceMapCmd)
	rootCmd.AddCommand(traceCmd)
}

func runTraceQuery(cmd *cobra.Command, args []string) error {
	selectors := 0
	for _, s := range []string{traceIntentID, traceFilePath, traceContentHash} {
		if s != "" {
			selectors++
		}
	}
	if selectors != 1 {
		return fmt.Errorf("exactly one of --intent, --file, --hash is required")
	}

	store := trace.New(GetConfig().TraceJournalPath, GetLogger())

	var records []domain.TraceRecord
	switch {
	case traceIntentID != "":
		records = store.ByIntent(traceIntentID)
	case traceFilePath != "":
		records = store.ByFile(traceFilePath)
	case traceContentHash != "":
		matches := store.ByContentHash(traceContentHash)
		if GetOutput() == "json" {
			data, err := json.MarshalIndent(matches, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal matches: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}
		if len(matches) == 0 {
			fmt.Println("No trace records match.")
			return nil
		}
		for _, m := range matches {
			fmt.Printf("%s  %s  %s\n",
				m.Record.Timestamp.Format("2006-01-02 15:04:05"), m.Record.UUID, m.FilePath)
		}
		return nil
	}

	if GetOutput() == "json" {
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal records: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if len(records) == 0 {
		fmt.Println("No trace records match.")
		return nil
	}

	for _, record := range records {
		fmt.Printf("%s  %s", record.Timestamp.Format("2006-01-02 15:04:05"), record.UUID)
		if record.MutationClass != "" {
			fmt.Printf("  [%s]", record.MutationClass)
		}
		fmt.Println()
		for _, file := range record.Files {
			fmt.Printf("  %s\n", file.RelativePath)
		}
	}
	fmt.Printf("%d record(s)\n", len(records))
	return nil
}

func runTraceMap(cmd *cobra.Command, args []string) error {
	store := trace.New(GetConfig().TraceJournalPath, GetLogger())
	return store.RenderIntentMap(os.Stdout, args[0])
}
