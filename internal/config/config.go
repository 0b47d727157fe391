// Package config provides configuration management for intentguard.
// Configuration is loaded from (highest to lowest priority):
// 1. Command-line flags
// 2. Environment variables (INTENTGUARD_*)
// 3. Project config (.intentguard/config.yaml in cwd)
// 4. Home config (~/.intentguard/config.yaml)
// 5. Defaults
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all intentguard configuration.
type Config struct {
	// Output controls the default output format (table, json, yaml).
	Output string `yaml:"output" json:"output"`

	// BaseDir is the intentguard data directory (default: .intentguard).
	BaseDir string `yaml:"base_dir" json:"base_dir"`

	// Verbose enables verbose/console logging.
	Verbose bool `yaml:"verbose" json:"verbose"`

	// IntentStorePath is the declarative intent store (component A).
	IntentStorePath string `yaml:"intent_store_path" json:"intent_store_path"`

	// IgnoreFilePath is the ignore/exclusion rule file (component B).
	IgnoreFilePath string `yaml:"ignore_file_path" json:"ignore_file_path"`

	// TraceJournalPath is the append-only trace journal (component G).
	TraceJournalPath string `yaml:"trace_journal_path" json:"trace_journal_path"`

	// LessonLogPath is the markdown lesson log (component L).
	LessonLogPath string `yaml:"lesson_log_path" json:"lesson_log_path"`

	// IntentMapPath is the derived intent map rewritten after each trace
	// append.
	IntentMapPath string `yaml:"intent_map_path" json:"intent_map_path"`

	// LockStaleAfter is how long an idle lock is eligible for reclaim by
	// a waiter (component F). bootstrap.New does not pass it to the lock
	// manager, which always evicts after its built-in 30 s.
	LockStaleAfter time.Duration `yaml:"lock_stale_after" json:"lock_stale_after"`

	// LockReapInterval is how often the lock reaper sweeps. bootstrap.New
	// does not pass it to the lock manager, whose reaper always sweeps
	// every 30 s.
	LockReapInterval time.Duration `yaml:"lock_reap_interval" json:"lock_reap_interval"`

	// SessionIdleTimeout is how long an idle session survives before the
	// SessionRegistry reaper destroys it (component K).
	SessionIdleTimeout time.Duration `yaml:"session_idle_timeout" json:"session_idle_timeout"`

	// BypassWindow is how long FallbackPipeline stays in bypass mode
	// after a catastrophic pipeline failure (component I). bootstrap.New
	// does not pass it on; FallbackPipeline always uses
	// pipeline.DefaultBypassWindow.
	BypassWindow time.Duration `yaml:"bypass_window" json:"bypass_window"`
}

// Default config values (used in resolution and validation).
const (
	defaultOutput  = "table"
	defaultBaseDir = ".intentguard"

	defaultLockStaleAfter     = 30 * time.Second
	defaultLockReapInterval   = 30 * time.Second
	defaultSessionIdleTimeout = 5 * time.Minute
	defaultBypassWindow       = 60 * time.Second
)

// Default returns the default configuration, with every path rooted at
// BaseDir (".intentguard" in the current directory).
func Default() *Config {
	return &Config{
		Output:             defaultOutput,
		BaseDir:            defaultBaseDir,
		Verbose:            false,
		IntentStorePath:    filepath.Join(defaultBaseDir, "intents.yaml"),
		IgnoreFilePath:     filepath.Join(defaultBaseDir, "ignore"),
		TraceJournalPath:   filepath.Join(defaultBaseDir, "trace.jsonl"),
		LessonLogPath:      filepath.Join(defaultBaseDir, "lessons.md"),
		IntentMapPath:      filepath.Join(defaultBaseDir, "intent_map.md"),
		LockStaleAfter:     defaultLockStaleAfter,
		LockReapInterval:   defaultLockReapInterval,
		SessionIdleTimeout: defaultSessionIdleTimeout,
		BypassWindow:       defaultBypassWindow,
	}
}

// Load loads configuration with proper precedence.
// Priority: flags > env > project > home > defaults
func Load(flagOverrides *Config) (*Config, error) {
	cfg := Default()

	if homeConfig, _ := loadFromPath(homeConfigPath()); homeConfig != nil {
		cfg = merge(cfg, homeConfig)
	}

	if projectConfig, _ := loadFromPath(projectConfigPath()); projectConfig != nil {
		cfg = merge(cfg, projectConfig)
	}

	cfg = applyEnv(cfg)

	if flagOverrides != nil {
		cfg = merge(cfg, flagOverrides)
	}

	return cfg, nil
}

// homeConfigPath returns the home config path.
func homeConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".intentguard", "config.yaml")
}

// projectConfigPath returns the project config path.
func projectConfigPath() string {
	if override := strings.TrimSpace(os.Getenv("INTENTGUARD_CONFIG")); override != "" {
		return override
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Join(cwd, ".intentguard", "config.yaml")
}

// loadFromPath loads config from a YAML file.
func loadFromPath(path string) (*Config, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnv applies INTENTGUARD_* environment variable overrides.
func applyEnv(cfg *Config) *Config {
	if v := os.Getenv("INTENTGUARD_OUTPUT"); v != "" {
		cfg.Output = v
	}
	if v := os.Getenv("INTENTGUARD_BASE_DIR"); v != "" {
		cfg.BaseDir = v
	}
	if v := os.Getenv("INTENTGUARD_VERBOSE"); v == "true" || v == "1" {
		cfg.Verbose = true
	}
	if v := os.Getenv("INTENTGUARD_INTENT_STORE_PATH"); v != "" {
		cfg.IntentStorePath = v
	}
	if v := os.Getenv("INTENTGUARD_IGNORE_FILE_PATH"); v != "" {
		cfg.IgnoreFilePath = v
	}
	if v := os.Getenv("INTENTGUARD_TRACE_JOURNAL_PATH"); v != "" {
		cfg.TraceJournalPath = v
	}
	if v := os.Getenv("INTENTGUARD_LESSON_LOG_PATH"); v != "" {
		cfg.LessonLogPath = v
	}
	if v := os.Getenv("INTENTGUARD_INTENT_MAP_PATH"); v != "" {
		cfg.IntentMapPath = v
	}
	if d, ok := parseDurationEnv("INTENTGUARD_LOCK_STALE_AFTER"); ok {
		cfg.LockStaleAfter = d
	}
	if d, ok := parseDurationEnv("INTENTGUARD_LOCK_REAP_INTERVAL"); ok {
		cfg.LockReapInterval = d
	}
	if d, ok := parseDurationEnv("INTENTGUARD_SESSION_IDLE_TIMEOUT"); ok {
		cfg.SessionIdleTimeout = d
	}
	if d, ok := parseDurationEnv("INTENTGUARD_BYPASS_WINDOW"); ok {
		cfg.BypassWindow = d
	}
	return cfg
}

func parseDurationEnv(key string) (time.Duration, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, false
	}
	return d, true
}

// merge merges src into dst, with src values taking precedence. Zero
// values in src are treated as "not set" and do not override dst.
func merge(dst, src *Config) *Config {
	if src.Output != "" {
		dst.Output = src.Output
	}
	if src.BaseDir != "" {
		dst.BaseDir = src.BaseDir
	}
	if src.Verbose {
		dst.Verbose = true
	}
	if src.IntentStorePath != "" {
		dst.IntentStorePath = src.IntentStorePath
	}
	if src.IgnoreFilePath != "" {
		dst.IgnoreFilePath = src.IgnoreFilePath
	}
	if src.TraceJournalPath != "" {
		dst.TraceJournalPath = src.TraceJournalPath
	}
	if src.LessonLogPath != "" {
		dst.LessonLogPath = src.LessonLogPath
	}
	if src.IntentMapPath != "" {
		dst.IntentMapPath = src.IntentMapPath
	}
	if src.LockStaleAfter != 0 {
		dst.LockStaleAfter = src.LockStaleAfter
	}
	if src.LockReapInterval != 0 {
		dst.LockReapInterval = src.LockReapInterval
	}
	if src.SessionIdleTimeout != 0 {
		dst.SessionIdleTimeout = src.SessionIdleTimeout
	}
	if src.BypassWindow != 0 {
		dst.BypassWindow = src.BypassWindow
	}
	return dst
}

// Source represents where a config value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceHome    Source = "~/.intentguard/config.yaml"
	SourceProject Source = ".intentguard/config.yaml"
	SourceEnv     Source = "environment"
	SourceFlag    Source = "flag"
)

// resolved pairs a resolved value with the layer it came from, for `ig
// status`'s config-provenance display.
type resolved struct {
	Value  interface{} `json:"value"`
	Source Source      `json:"source"`
}

// ResolvedConfig shows config values with their sources.
type ResolvedConfig struct {
	Output  resolved `json:"output"`
	BaseDir resolved `json:"base_dir"`
	Verbose resolved `json:"verbose"`
}

// resolveStringField resolves a string through the precedence chain.
func resolveStringField(home, project, env, flag, def string) resolved {
	result := resolved{Value: def, Source: SourceDefault}
	if home != "" {
		result = resolved{Value: home, Source: SourceHome}
	}
	if project != "" {
		result = resolved{Value: project, Source: SourceProject}
	}
	if env != "" {
		result = resolved{Value: env, Source: SourceEnv}
	}
	if flag != "" {
		result = resolved{Value: flag, Source: SourceFlag}
	}
	return result
}

func getEnvString(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvBool(key string) (bool, bool) {
	v, ok := strconv.ParseBool(os.Getenv(key))
	return v, ok == nil && v
}

// Resolve returns configuration with source tracking, used by `ig status`
// to show the operator where each setting came from.
func Resolve(flagOutput, flagBaseDir string, flagVerbose bool) *ResolvedConfig {
	homeConfig, _ := loadFromPath(homeConfigPath())
	projectConfig, _ := loadFromPath(projectConfigPath())

	var homeOutput, homeBaseDir string
	var homeVerbose bool
	if homeConfig != nil {
		homeOutput = homeConfig.Output
		homeBaseDir = homeConfig.BaseDir
		homeVerbose = homeConfig.Verbose
	}

	var projectOutput, projectBaseDir string
	var projectVerbose bool
	if projectConfig != nil {
		projectOutput = projectConfig.Output
		projectBaseDir = projectConfig.BaseDir
		projectVerbose = projectConfig.Verbose
	}

	envOutput, _ := getEnvString("INTENTGUARD_OUTPUT")
	envBaseDir, _ := getEnvString("INTENTGUARD_BASE_DIR")
	envVerbose, envVerboseSet := getEnvBool("INTENTGUARD_VERBOSE")

	rc := &ResolvedConfig{
		Output:  resolveStringField(homeOutput, projectOutput, envOutput, flagOutput, defaultOutput),
		BaseDir: resolveStringField(homeBaseDir, projectBaseDir, envBaseDir, flagBaseDir, defaultBaseDir),
		Verbose: resolved{Value: false, Source: SourceDefault},
	}

	if homeVerbose {
		rc.Verbose = resolved{Value: true, Source: SourceHome}
	}
	if projectVerbose {
		rc.Verbose = resolved{Value: true, Source: SourceProject}
	}
	if envVerboseSet && envVerbose {
		rc.Verbose = resolved{Value: true, Source: SourceEnv}
	}
	if flagVerbose {
		rc.Verbose = resolved{Value: true, Source: SourceFlag}
	}

	return rc
}
