// Package classifier classifies shell command strings as safe, destructive,
// or unknown. Unmatched commands classify as unknown, which callers treat
// like destructive for approval purposes (fail safe): see T3 in the
// governance threat model this package implements.
package classifier

import (
	"regexp"

	"github.com/agentflow/intentguard/internal/domain"
)

// pattern is one entry in the ordered destructive-command table.
type pattern struct {
	name        string
	re          *regexp.Regexp
	reason      string
	alternative string
}

// destructivePatterns is the required minimum set, checked in order; first
// match wins. Package-manager installs are included here (rather than in
// the safe list) because an uncontrolled install can fetch and execute
// arbitrary code, so they fail safe through the approval path with a
// dry-run suggestion.
var destructivePatterns = []pattern{
	{"rm_rf", regexp.MustCompile(`(?i)rm\s+-rf`), "recursive force delete", "remove files individually or use a targeted path"},
	{"rmdir_s", regexp.MustCompile(`(?i)rmdir\s+/s`), "recursive directory removal", "remove the specific subdirectory instead"},
	{"format", regexp.MustCompile(`(?i)\bformat\b`), "disk format", "back up data before formatting, or operate on a scratch volume"},
	{"mkfs", regexp.MustCompile(`(?i)\bmkfs\b`), "filesystem creation wipes the target block device", "confirm the target device is not in use first"},
	{"dd_if", regexp.MustCompile(`(?i)dd\s+if=`), "raw block-level copy can overwrite a device", "use a file-level copy tool instead"},
	{"git_push_force", regexp.MustCompile(`(?i)git\s+push\s+--force\b`), "force push can overwrite remote history", "use --force-with-lease"},
	{"git_reset_hard", regexp.MustCompile(`(?i)git\s+reset\s+--hard`), "hard reset discards uncommitted work", "stash changes first, or use a soft/mixed reset"},
	{"git_clean_f", regexp.MustCompile(`(?i)git\s+clean\s+-f`), "force clean deletes untracked files permanently", "run git clean -n first to preview"},
	{"drop_table", regexp.MustCompile(`(?i)drop\s+table`), "drops a database table", "back up the table or rename it instead"},
	{"drop_database", regexp.MustCompile(`(?i)drop\s+database`), "drops an entire database", "back up the database first"},
	{"delete_from_where", regexp.MustCompile(`(?i)delete\s+from\s+\w+\s+where`), "unbounded row deletion", "select the rows first to confirm scope"},
	{"chmod_777", regexp.MustCompile(`(?i)chmod\s+777`), "world-writable permissions", "use the narrowest permission bits that work"},
	{"chown", regexp.MustCompile(`(?i)\bchown\b`), "ownership change can lock out other processes", "confirm the target uid/gid first"},
	{"shutdown", regexp.MustCompile(`(?i)\bshutdown\b`), "shuts down the host", "schedule a maintenance window instead"},
	{"reboot", regexp.MustCompile(`(?i)\breboot\b`), "reboots the host", "schedule a maintenance window instead"},
	{"kill_9", regexp.MustCompile(`(?i)kill\s+-9`), "SIGKILL skips graceful shutdown", "try a plain kill/SIGTERM first"},
	{"npm_install", regexp.MustCompile(`(?i)npm\s+(install|i)\b`), "installs packages, which can run arbitrary postinstall scripts", "use npm install --dry-run to preview first"},
	{"pip_install", regexp.MustCompile(`(?i)pip\d?\s+install\b`), "installs packages, which can run arbitrary setup code", "use pip install --dry-run to preview first"},
	{"package_add", regexp.MustCompile(`(?i)\b(yarn|pnpm)\s+add\b`), "installs packages, which can run arbitrary postinstall scripts", "preview with a lockfile diff before installing"},
}

// safePatterns lists known-benign commands checked after the destructive
// table. A match here does not prevent the destructive table from matching
// first if both apply to the same string.
var safePatterns = []pattern{
	{"git_status", regexp.MustCompile(`(?i)^\s*git\s+status\b`), "", ""},
	{"git_diff", regexp.MustCompile(`(?i)^\s*git\s+diff\b`), "", ""},
	{"git_log", regexp.MustCompile(`(?i)^\s*git\s+log\b`), "", ""},
	{"ls", regexp.MustCompile(`(?i)^\s*ls\b`), "", ""},
	{"cat", regexp.MustCompile(`(?i)^\s*cat\b`), "", ""},
	{"echo", regexp.MustCompile(`(?i)^\s*echo\b`), "", ""},
	{"pwd", regexp.MustCompile(`(?i)^\s*pwd\b`), "", ""},
	{"grep", regexp.MustCompile(`(?i)^\s*grep\b`), "", ""},
}

// Classify classifies a shell command string. Destructive patterns are
// consulted before the safe list, so a command matching both (e.g. a
// crafted "git status; rm -rf /") is correctly flagged destructive.
func Classify(command string) domain.CommandClassification {
	for _, p := range destructivePatterns {
		if p.re.MatchString(command) {
			return domain.CommandClassification{
				Risk:                 domain.RiskDestructive,
				MatchedPattern:       p.name,
				SuggestedAlternative: p.alternative,
			}
		}
	}
	for _, p := range safePatterns {
		if p.re.MatchString(command) {
			return domain.CommandClassification{Risk: domain.RiskSafe, MatchedPattern: p.name}
		}
	}
	return domain.CommandClassification{Risk: domain.RiskUnknown}
}

// Reason returns the human-readable reason a destructive pattern was
// flagged, or "" if name does not match a known pattern.
func Reason(name string) string {
	for _, p := range destructivePatterns {
		if p.name == name {
			return p.reason
		}
	}
	return ""
}
