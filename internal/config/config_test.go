package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Output != "table" {
		t.Errorf("Default Output = %q, want %q", cfg.Output, "table")
	}
	if cfg.BaseDir != ".intentguard" {
		t.Errorf("Default BaseDir = %q, want %q", cfg.BaseDir, ".intentguard")
	}
	if cfg.Verbose {
		t.Error("Default Verbose = true, want false")
	}
	if cfg.LockStaleAfter != defaultLockStaleAfter {
		t.Errorf("Default LockStaleAfter = %v, want %v", cfg.LockStaleAfter, defaultLockStaleAfter)
	}
	if cfg.LockReapInterval != defaultLockReapInterval {
		t.Errorf("Default LockReapInterval = %v, want %v", cfg.LockReapInterval, defaultLockReapInterval)
	}
	if cfg.SessionIdleTimeout != defaultSessionIdleTimeout {
		t.Errorf("Default SessionIdleTimeout = %v, want %v", cfg.SessionIdleTimeout, defaultSessionIdleTimeout)
	}
	if cfg.BypassWindow != defaultBypassWindow {
		t.Errorf("Default BypassWindow = %v, want %v", cfg.BypassWindow, defaultBypassWindow)
	}
	if cfg.IntentStorePath != filepath.Join(".intentguard", "intents.yaml") {
		t.Errorf("Default IntentStorePath = %q", cfg.IntentStorePath)
	}
	if cfg.IgnoreFilePath != filepath.Join(".intentguard", "ignore") {
		t.Errorf("Default IgnoreFilePath = %q", cfg.IgnoreFilePath)
	}
	if cfg.TraceJournalPath != filepath.Join(".intentguard", "trace.jsonl") {
		t.Errorf("Default TraceJournalPath = %q", cfg.TraceJournalPath)
	}
	if cfg.LessonLogPath != filepath.Join(".intentguard", "lessons.md") {
		t.Errorf("Default LessonLogPath = %q", cfg.LessonLogPath)
	}
}

func TestMerge(t *testing.T) {
	dst := Default()
	src := &Config{
		Output:  "json",
		BaseDir: "/custom/path",
	}

	result := merge(dst, src)

	if result.Output != "json" {
		t.Errorf("merge Output = %q, want %q", result.Output, "json")
	}
	if result.BaseDir != "/custom/path" {
		t.Errorf("merge BaseDir = %q, want %q", result.BaseDir, "/custom/path")
	}
	if result.LockStaleAfter != defaultLockStaleAfter {
		t.Errorf("merge preserved LockStaleAfter = %v, want %v", result.LockStaleAfter, defaultLockStaleAfter)
	}
}

func TestMerge_DurationOverride(t *testing.T) {
	dst := Default()
	src := &Config{BypassWindow: 90 * time.Second}

	result := merge(dst, src)

	if result.BypassWindow != 90*time.Second {
		t.Errorf("merge BypassWindow = %v, want 90s", result.BypassWindow)
	}
	if result.LockStaleAfter != defaultLockStaleAfter {
		t.Error("merge should preserve LockStaleAfter when not set")
	}
}

func TestMerge_PathsPreservedWhenEmpty(t *testing.T) {
	dst := Default()
	src := &Config{Output: "json"}

	result := merge(dst, src)

	if result.IntentStorePath != filepath.Join(".intentguard", "intents.yaml") {
		t.Errorf("merge should preserve default IntentStorePath, got %q", result.IntentStorePath)
	}
	if result.LessonLogPath != filepath.Join(".intentguard", "lessons.md") {
		t.Errorf("merge should preserve default LessonLogPath, got %q", result.LessonLogPath)
	}
}

func TestMerge_VerboseOverride(t *testing.T) {
	dst := Default()
	src := &Config{Verbose: true}

	result := merge(dst, src)

	if !result.Verbose {
		t.Error("merge Verbose = false, want true")
	}
}

func TestMerge_BooleanNotSet(t *testing.T) {
	dst := Default()
	dst.Verbose = true
	src := &Config{Output: "json"}

	result := merge(dst, src)

	if !result.Verbose {
		t.Error("merge should not clear Verbose when src.Verbose is false (zero value means unset)")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("INTENTGUARD_OUTPUT", "yaml")
	t.Setenv("INTENTGUARD_VERBOSE", "true")
	t.Setenv("INTENTGUARD_BYPASS_WINDOW", "2m")
	t.Setenv("INTENTGUARD_INTENT_STORE_PATH", "/env/intents.yaml")

	cfg := Default()
	cfg = applyEnv(cfg)

	if cfg.Output != "yaml" {
		t.Errorf("applyEnv Output = %q, want %q", cfg.Output, "yaml")
	}
	if !cfg.Verbose {
		t.Error("applyEnv Verbose = false, want true")
	}
	if cfg.BypassWindow != 2*time.Minute {
		t.Errorf("applyEnv BypassWindow = %v, want 2m", cfg.BypassWindow)
	}
	if cfg.IntentStorePath != "/env/intents.yaml" {
		t.Errorf("applyEnv IntentStorePath = %q, want %q", cfg.IntentStorePath, "/env/intents.yaml")
	}
}

func TestApplyEnv_VerboseVariants(t *testing.T) {
	tests := []struct {
		val  string
		want bool
	}{
		{"true", true},
		{"1", true},
		{"false", false},
		{"", false},
		{"yes", false},
	}

	for _, tt := range tests {
		t.Setenv("INTENTGUARD_VERBOSE", tt.val)
		cfg := applyEnv(Default())
		if cfg.Verbose != tt.want {
			t.Errorf("applyEnv INTENTGUARD_VERBOSE=%q -> Verbose = %v, want %v", tt.val, cfg.Verbose, tt.want)
		}
	}
}

func TestApplyEnv_InvalidDurationIgnored(t *testing.T) {
	t.Setenv("INTENTGUARD_LOCK_STALE_AFTER", "not-a-duration")

	cfg := Default()
	cfg = applyEnv(cfg)

	if cfg.LockStaleAfter != defaultLockStaleAfter {
		t.Errorf("applyEnv should ignore an invalid duration, got %v", cfg.LockStaleAfter)
	}
}

func TestApplyEnv_AllDurationFields(t *testing.T) {
	t.Setenv("INTENTGUARD_LOCK_STALE_AFTER", "10s")
	t.Setenv("INTENTGUARD_LOCK_REAP_INTERVAL", "20s")
	t.Setenv("INTENTGUARD_SESSION_IDLE_TIMEOUT", "1h")
	t.Setenv("INTENTGUARD_BYPASS_WINDOW", "30s")

	cfg := applyEnv(Default())

	if cfg.LockStaleAfter != 10*time.Second {
		t.Errorf("LockStaleAfter = %v, want 10s", cfg.LockStaleAfter)
	}
	if cfg.LockReapInterval != 20*time.Second {
		t.Errorf("LockReapInterval = %v, want 20s", cfg.LockReapInterval)
	}
	if cfg.SessionIdleTimeout != time.Hour {
		t.Errorf("SessionIdleTimeout = %v, want 1h", cfg.SessionIdleTimeout)
	}
	if cfg.BypassWindow != 30*time.Second {
		t.Errorf("BypassWindow = %v, want 30s", cfg.BypassWindow)
	}
}

func TestLoadFromPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
output: json
base_dir: /custom/root
verbose: true
lock_stale_after: 45s
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadFromPath(configPath)
	if err != nil {
		t.Fatalf("loadFromPath() error = %v", err)
	}

	if cfg.Output != "json" {
		t.Errorf("loadFromPath Output = %q, want %q", cfg.Output, "json")
	}
	if cfg.BaseDir != "/custom/root" {
		t.Errorf("loadFromPath BaseDir = %q, want %q", cfg.BaseDir, "/custom/root")
	}
	if !cfg.Verbose {
		t.Error("loadFromPath Verbose = false, want true")
	}
	if cfg.LockStaleAfter != 45*time.Second {
		t.Errorf("loadFromPath LockStaleAfter = %v, want 45s", cfg.LockStaleAfter)
	}
}

func TestLoadFromPath_NotExists(t *testing.T) {
	cfg, err := loadFromPath("/nonexistent/config.yaml")
	if cfg != nil {
		t.Errorf("loadFromPath for nonexistent file should return nil config")
	}
	if err == nil {
		t.Errorf("loadFromPath for nonexistent file should return error")
	}
}

func TestLoadFromPath_Empty(t *testing.T) {
	cfg, err := loadFromPath("")
	if cfg != nil || err != nil {
		t.Errorf("loadFromPath(\"\") = %v, %v; want nil, nil", cfg, err)
	}
}

func TestLoadFromPath_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte(`{{{invalid yaml`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadFromPath(configPath)
	if err == nil {
		t.Error("loadFromPath for invalid YAML should return error")
	}
	if cfg != nil {
		t.Error("loadFromPath for invalid YAML should return nil config")
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"INTENTGUARD_CONFIG", "INTENTGUARD_OUTPUT", "INTENTGUARD_BASE_DIR", "INTENTGUARD_VERBOSE",
		"INTENTGUARD_INTENT_STORE_PATH", "INTENTGUARD_IGNORE_FILE_PATH", "INTENTGUARD_TRACE_JOURNAL_PATH",
		"INTENTGUARD_LESSON_LOG_PATH", "INTENTGUARD_LOCK_STALE_AFTER", "INTENTGUARD_LOCK_REAP_INTERVAL",
		"INTENTGUARD_SESSION_IDLE_TIMEOUT", "INTENTGUARD_BYPASS_WINDOW",
	} {
		t.Setenv(key, "")
	}
}

func TestResolve(t *testing.T) {
	clearEnv(t)
	rc := Resolve("json", "/flag/path", true)

	if rc.Output.Value != "json" {
		t.Errorf("Resolve Output.Value = %v, want %q", rc.Output.Value, "json")
	}
	if rc.Output.Source != SourceFlag {
		t.Errorf("Resolve Output.Source = %v, want %v", rc.Output.Source, SourceFlag)
	}
	if rc.BaseDir.Value != "/flag/path" {
		t.Errorf("Resolve BaseDir.Value = %v, want %q", rc.BaseDir.Value, "/flag/path")
	}
	if rc.Verbose.Value != true {
		t.Errorf("Resolve Verbose.Value = %v, want true", rc.Verbose.Value)
	}
	if rc.Verbose.Source != SourceFlag {
		t.Errorf("Resolve Verbose.Source = %v, want %v", rc.Verbose.Source, SourceFlag)
	}
}

func TestResolve_Defaults(t *testing.T) {
	clearEnv(t)

	rc := Resolve("", "", false)

	if rc.Output.Value != "table" || rc.Output.Source != SourceDefault {
		t.Errorf("Resolve default Output = (%v, %v), want (table, %v)", rc.Output.Value, rc.Output.Source, SourceDefault)
	}
	if rc.BaseDir.Value != ".intentguard" || rc.BaseDir.Source != SourceDefault {
		t.Errorf("Resolve default BaseDir = (%v, %v)", rc.BaseDir.Value, rc.BaseDir.Source)
	}
	if rc.Verbose.Value != false || rc.Verbose.Source != SourceDefault {
		t.Errorf("Resolve default Verbose = (%v, %v)", rc.Verbose.Value, rc.Verbose.Source)
	}
}

func TestResolve_EnvOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("INTENTGUARD_OUTPUT", "yaml")
	t.Setenv("INTENTGUARD_BASE_DIR", "/env/path")
	t.Setenv("INTENTGUARD_VERBOSE", "1")

	rc := Resolve("", "", false)

	if rc.Output.Value != "yaml" || rc.Output.Source != SourceEnv {
		t.Errorf("Resolve env Output = (%v, %v), want (yaml, %v)", rc.Output.Value, rc.Output.Source, SourceEnv)
	}
	if rc.BaseDir.Value != "/env/path" || rc.BaseDir.Source != SourceEnv {
		t.Errorf("Resolve env BaseDir = (%v, %v), want (/env/path, %v)", rc.BaseDir.Value, rc.BaseDir.Source, SourceEnv)
	}
	if rc.Verbose.Value != true || rc.Verbose.Source != SourceEnv {
		t.Errorf("Resolve env Verbose = (%v, %v), want (true, %v)", rc.Verbose.Value, rc.Verbose.Source, SourceEnv)
	}
}

func TestResolveStringField(t *testing.T) {
	tests := []struct {
		name       string
		home       string
		project    string
		env        string
		flag       string
		def        string
		wantValue  string
		wantSource Source
	}{
		{name: "default only", def: "table", wantValue: "table", wantSource: SourceDefault},
		{name: "home overrides default", home: "json", def: "table", wantValue: "json", wantSource: SourceHome},
		{name: "project overrides home", home: "json", project: "yaml", def: "table", wantValue: "yaml", wantSource: SourceProject},
		{name: "env overrides project", home: "json", project: "yaml", env: "csv", def: "table", wantValue: "csv", wantSource: SourceEnv},
		{name: "flag overrides everything", home: "json", project: "yaml", env: "csv", flag: "text", def: "table", wantValue: "text", wantSource: SourceFlag},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveStringField(tt.home, tt.project, tt.env, tt.flag, tt.def)
			if got.Value != tt.wantValue {
				t.Errorf("resolveStringField() Value = %v, want %v", got.Value, tt.wantValue)
			}
			if got.Source != tt.wantSource {
				t.Errorf("resolveStringField() Source = %v, want %v", got.Source, tt.wantSource)
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name     string
		envVal   string
		wantBool bool
		wantSet  bool
	}{
		{name: "true string", envVal: "true", wantBool: true, wantSet: true},
		{name: "1 string", envVal: "1", wantBool: true, wantSet: true},
		{name: "false string", envVal: "false", wantBool: false, wantSet: false},
		{name: "empty string", envVal: "", wantBool: false, wantSet: false},
		{name: "random string", envVal: "yes", wantBool: false, wantSet: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_BOOL_KEY", tt.envVal)
			gotBool, gotSet := getEnvBool("TEST_BOOL_KEY")
			if gotBool != tt.wantBool {
				t.Errorf("getEnvBool() bool = %v, want %v", gotBool, tt.wantBool)
			}
			if gotSet != tt.wantSet {
				t.Errorf("getEnvBool() set = %v, want %v", gotSet, tt.wantSet)
			}
		})
	}
}

func TestGetEnvString(t *testing.T) {
	tests := []struct {
		name    string
		envVal  string
		wantVal string
		wantSet bool
	}{
		{name: "set value", envVal: "hello", wantVal: "hello", wantSet: true},
		{name: "empty value", envVal: "", wantVal: "", wantSet: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_STR_KEY", tt.envVal)
			gotVal, gotSet := getEnvString("TEST_STR_KEY")
			if gotVal != tt.wantVal {
				t.Errorf("getEnvString() val = %q, want %q", gotVal, tt.wantVal)
			}
			if gotSet != tt.wantSet {
				t.Errorf("getEnvString() set = %v, want %v", gotSet, tt.wantSet)
			}
		})
	}
}

func TestLoad_WithFlagOverrides(t *testing.T) {
	clearEnv(t)

	overrides := &Config{Output: "json", BaseDir: "/flag/base", Verbose: true}

	cfg, err := Load(overrides)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Output != "json" {
		t.Errorf("Load Output = %q, want %q", cfg.Output, "json")
	}
	if cfg.BaseDir != "/flag/base" {
		t.Errorf("Load BaseDir = %q, want %q", cfg.BaseDir, "/flag/base")
	}
	if !cfg.Verbose {
		t.Error("Load Verbose = false, want true")
	}
}

func TestLoad_NilOverrides(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Output != "table" {
		t.Errorf("Load nil Output = %q, want %q", cfg.Output, "table")
	}
	if cfg.BaseDir != ".intentguard" {
		t.Errorf("Load nil BaseDir = %q, want %q", cfg.BaseDir, ".intentguard")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("INTENTGUARD_OUTPUT", "yaml")
	t.Setenv("INTENTGUARD_BASE_DIR", "/env/dir")
	t.Setenv("INTENTGUARD_VERBOSE", "1")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Output != "yaml" {
		t.Errorf("Load env Output = %q, want %q", cfg.Output, "yaml")
	}
	if cfg.BaseDir != "/env/dir" {
		t.Errorf("Load env BaseDir = %q, want %q", cfg.BaseDir, "/env/dir")
	}
	if !cfg.Verbose {
		t.Error("Load env Verbose = false, want true")
	}
}

func TestProjectConfigPath_UsesIntentguardConfigEnv(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "custom.yaml")
	t.Setenv("INTENTGUARD_CONFIG", configPath)

	got := projectConfigPath()
	if got != configPath {
		t.Fatalf("projectConfigPath() = %q, want %q", got, configPath)
	}
}

func TestProjectConfigPath_DefaultFromCwd(t *testing.T) {
	t.Setenv("INTENTGUARD_CONFIG", "")
	got := projectConfigPath()
	cwd, _ := os.Getwd()
	expected := filepath.Join(cwd, ".intentguard", "config.yaml")
	if got != expected {
		t.Errorf("projectConfigPath() = %q, want %q", got, expected)
	}
}

func TestProjectConfigPath_WhitespaceOnlyConfig(t *testing.T) {
	t.Setenv("INTENTGUARD_CONFIG", "  \t  ")
	got := projectConfigPath()
	cwd, _ := os.Getwd()
	expected := filepath.Join(cwd, ".intentguard", "config.yaml")
	if got != expected {
		t.Errorf("projectConfigPath() with whitespace = %q, want %q", got, expected)
	}
}

func TestResolve_WithProjectConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	content := `
output: yaml
base_dir: /project/base
verbose: true
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	clearEnv(t)
	t.Setenv("INTENTGUARD_CONFIG", configPath)

	rc := Resolve("", "", false)

	if rc.Output.Value != "yaml" || rc.Output.Source != SourceProject {
		t.Errorf("Output = (%v, %v), want (yaml, %v)", rc.Output.Value, rc.Output.Source, SourceProject)
	}
	if rc.BaseDir.Value != "/project/base" || rc.BaseDir.Source != SourceProject {
		t.Errorf("BaseDir = (%v, %v), want (/project/base, %v)", rc.BaseDir.Value, rc.BaseDir.Source, SourceProject)
	}
	if rc.Verbose.Value != true || rc.Verbose.Source != SourceProject {
		t.Errorf("Verbose = (%v, %v), want (true, %v)", rc.Verbose.Value, rc.Verbose.Source, SourceProject)
	}
}

func TestResolve_FlagOverridesProjectConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	content := `
output: yaml
base_dir: /project/base
verbose: true
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	clearEnv(t)
	t.Setenv("INTENTGUARD_CONFIG", configPath)

	rc := Resolve("json", "/flag/dir", true)

	if rc.Output.Value != "json" || rc.Output.Source != SourceFlag {
		t.Errorf("Flag should override project: Output = (%v, %v)", rc.Output.Value, rc.Output.Source)
	}
	if rc.BaseDir.Value != "/flag/dir" || rc.BaseDir.Source != SourceFlag {
		t.Errorf("Flag should override project: BaseDir = (%v, %v)", rc.BaseDir.Value, rc.BaseDir.Source)
	}
	if rc.Verbose.Value != true || rc.Verbose.Source != SourceFlag {
		t.Errorf("Flag should override project: Verbose = (%v, %v)", rc.Verbose.Value, rc.Verbose.Source)
	}
}

func TestResolve_EnvOverridesProjectConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	content := `
output: yaml
base_dir: /project/base
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	clearEnv(t)
	t.Setenv("INTENTGUARD_CONFIG", configPath)
	t.Setenv("INTENTGUARD_OUTPUT", "csv")

	rc := Resolve("", "", false)

	if rc.Output.Value != "csv" || rc.Output.Source != SourceEnv {
		t.Errorf("Env should override project: Output = (%v, %v)", rc.Output.Value, rc.Output.Source)
	}
	if rc.BaseDir.Value != "/project/base" || rc.BaseDir.Source != SourceProject {
		t.Errorf("Project value should survive when env unset: BaseDir = (%v, %v)", rc.BaseDir.Value, rc.BaseDir.Source)
	}
}

func TestLoad_WithProjectConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	content := `
output: yaml
base_dir: /project/root
bypass_window: 90s
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	clearEnv(t)
	t.Setenv("INTENTGUARD_CONFIG", configPath)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Output != "yaml" {
		t.Errorf("Load with project config Output = %q, want %q", cfg.Output, "yaml")
	}
	if cfg.BaseDir != "/project/root" {
		t.Errorf("Load with project config BaseDir = %q, want %q", cfg.BaseDir, "/project/root")
	}
	if cfg.BypassWindow != 90*time.Second {
		t.Errorf("Load with project config BypassWindow = %v, want 90s", cfg.BypassWindow)
	}
}

func TestLoad_WithHomeConfig(t *testing.T) {
	homePath := homeConfigPath()
	if homePath == "" {
		t.Skip("cannot determine home config path")
	}

	if err := os.MkdirAll(filepath.Dir(homePath), 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	origData, origErr := os.ReadFile(homePath)
	existed := origErr == nil

	content := `
output: markdown
base_dir: /home-base
verbose: true
`
	if err := os.WriteFile(homePath, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Cleanup(func() {
		if existed {
			_ = os.WriteFile(homePath, origData, 0644)
		} else {
			_ = os.Remove(homePath)
		}
	})

	clearEnv(t)
	t.Setenv("INTENTGUARD_CONFIG", "/nonexistent/project.yaml")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Output != "markdown" {
		t.Errorf("Load with home config: Output = %q, want %q", cfg.Output, "markdown")
	}
	if cfg.BaseDir != "/home-base" {
		t.Errorf("Load with home config: BaseDir = %q, want %q", cfg.BaseDir, "/home-base")
	}
	if !cfg.Verbose {
		t.Error("Load with home config: Verbose = false, want true")
	}
}

func TestResolve_WithHomeConfig(t *testing.T) {
	homePath := homeConfigPath()
	if homePath == "" {
		t.Skip("cannot determine home config path")
	}

	if err := os.MkdirAll(filepath.Dir(homePath), 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	origData, origErr := os.ReadFile(homePath)
	existed := origErr == nil

	content := `
output: markdown
base_dir: /home-resolve
verbose: true
`
	if err := os.WriteFile(homePath, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Cleanup(func() {
		if existed {
			_ = os.WriteFile(homePath, origData, 0644)
		} else {
			_ = os.Remove(homePath)
		}
	})

	clearEnv(t)
	t.Setenv("INTENTGUARD_CONFIG", "/nonexistent/project.yaml")

	rc := Resolve("", "", false)

	if rc.Output.Value != "markdown" || rc.Output.Source != SourceHome {
		t.Errorf("Resolve with home config: Output = (%v, %v), want (markdown, %v)",
			rc.Output.Value, rc.Output.Source, SourceHome)
	}
	if rc.BaseDir.Value != "/home-resolve" || rc.BaseDir.Source != SourceHome {
		t.Errorf("Resolve with home config: BaseDir = (%v, %v), want (/home-resolve, %v)",
			rc.BaseDir.Value, rc.BaseDir.Source, SourceHome)
	}
	if rc.Verbose.Value != true || rc.Verbose.Source != SourceHome {
		t.Errorf("Resolve with home config: Verbose = (%v, %v), want (true, %v)",
			rc.Verbose.Value, rc.Verbose.Source, SourceHome)
	}
}

func BenchmarkDefault(b *testing.B) {
	for i := 0; i < b.N; i++ {
		Default()
	}
}

func BenchmarkMerge(b *testing.B) {
	base := Default()
	overlay := &Config{
		Output:  "json",
		BaseDir: "/tmp/bench",
		Verbose: true,
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		dst := *base
		merge(&dst, overlay)
	}
}
