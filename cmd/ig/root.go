package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/agentflow/intentguard/internal/config"
	"github.com/agentflow/intentguard/internal/logging"
)

var (
	// Global flags
	verbose bool
	output  string
	baseDir string
	cfgFile string

	// resolvedCfg is loaded once in PersistentPreRunE and read by every
	// subcommand via the Get* accessors below.
	resolvedCfg *config.Config
	rootLog     zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "ig",
	Short: "intentguard operator CLI",
	Long: `ig inspects a running intentguard governance middleware: the
declared intents, the trace journal, and the gate's pre-hook decisions.

Examples:
  ig status
  ig intent list
  ig trace query --intent INT-001
  ig gate simulate --tool write_to_file --path src/api/handler.go`,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile != "" {
			_ = os.Setenv("INTENTGUARD_CONFIG", cfgFile)
		}

		overrides := &config.Config{Output: output, BaseDir: baseDir, Verbose: verbose}
		cfg, err := config.Load(overrides)
		if err != nil {
			return err
		}
		resolvedCfg = cfg
		rootLog = logging.New(logging.Options{Verbose: verbose})
		return nil
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose/console logging")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "", "output format (table, json, yaml)")
	rootCmd.PersistentFlags().StringVar(&baseDir, "base-dir", "", "intentguard data directory (default: .intentguard)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .intentguard/config.yaml)")
}

// GetOutput returns the resolved output format for use by subcommands.
func GetOutput() string {
	if resolvedCfg == nil {
		return "table"
	}
	return resolvedCfg.Output
}

// GetConfig returns the fully resolved configuration.
func GetConfig() *config.Config {
	if resolvedCfg == nil {
		return config.Default()
	}
	return resolvedCfg
}

// GetLogger returns the root logger built from the resolved --verbose flag.
func GetLogger() zerolog.Logger {
	return rootLog
}
