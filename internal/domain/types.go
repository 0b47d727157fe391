// Package domain holds the shared types passed between intentguard's
// interceptor components: intents, sessions, locks, trace records, and the
// hook context threaded through the pipeline.
package domain

import "time"

// IntentStatus is the lifecycle state of a declared Intent.
type IntentStatus string

const (
	IntentActive    IntentStatus = "ACTIVE"
	IntentCompleted IntentStatus = "COMPLETED"
	IntentPaused    IntentStatus = "PAUSED"
)

// Intent is a declared, scoped unit of work loaded from the declarative
// store. Intents are read-only at runtime.
type Intent struct {
	// ID is the stable, unique identifier (e.g. "INT-001").
	ID string `yaml:"id" json:"id"`

	// Name is the human-readable intent name.
	Name string `yaml:"name" json:"name"`

	// Status is the current lifecycle state.
	Status IntentStatus `yaml:"status" json:"status"`

	// OwnedScope lists glob patterns the intent may mutate.
	// An empty scope means the intent is read-only: no path matches.
	OwnedScope []string `yaml:"owned_scope" json:"owned_scope"`

	// Constraints are free-text rules the agent must respect.
	Constraints []string `yaml:"constraints" json:"constraints"`

	// AcceptanceCriteria are free-text completion conditions.
	AcceptanceCriteria []string `yaml:"acceptance_criteria" json:"acceptance_criteria"`

	// CreatedAt and UpdatedAt are optional declaration timestamps.
	CreatedAt *time.Time `yaml:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt *time.Time `yaml:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// IgnoreRuleKind classifies an IgnoreRule's effect.
type IgnoreRuleKind string

const (
	IgnoreExclude         IgnoreRuleKind = "exclude"
	IgnoreAllowDestructive IgnoreRuleKind = "allow_destructive"
	IgnoreRequireApproval  IgnoreRuleKind = "require_approval"
)

// IgnoreRule is a single exclusion/policy line, optionally scoped to one
// intent. Intent-less rules are global.
type IgnoreRule struct {
	IntentID string         // empty means global
	Pattern  string
	Kind     IgnoreRuleKind
}

// Session is per-agent runtime state tracked by the SessionRegistry.
// Read-version bookkeeping lives in the lock manager, keyed by (path,
// session id), so sessions and locks never hold references to each other.
type Session struct {
	ID             string
	IntentID       string // empty means no intent selected yet
	ModelID        string
	ConversationID string
	CreatedAt      time.Time
	LastActivityAt time.Time
}

// FileLock is the exclusive holder record for one normalized path.
type FileLock struct {
	Holder     string
	AcquiredAt time.Time
}

// MutationClass is the closed taxonomy of change categories.
type MutationClass string

const (
	MutationASTRefactor     MutationClass = "AST_REFACTOR"
	MutationIntentEvolution MutationClass = "INTENT_EVOLUTION"
	MutationBugFix          MutationClass = "BUG_FIX"
	MutationPerfImprovement MutationClass = "PERF_IMPROVEMENT"
	MutationDocsUpdate      MutationClass = "DOCS_UPDATE"
)

// CommandRisk is the classification risk tier for a shell command.
type CommandRisk string

const (
	RiskSafe        CommandRisk = "safe"
	RiskDestructive CommandRisk = "destructive"
	RiskUnknown     CommandRisk = "unknown"
)

// CommandClassification is the result of classifying a shell command.
type CommandClassification struct {
	Risk             CommandRisk
	MatchedPattern   string
	SuggestedAlternative string
}

// ContributorKind classifies who authored a conversation in a TraceRecord.
type ContributorKind string

const (
	ContributorHuman   ContributorKind = "Human"
	ContributorAI      ContributorKind = "AI"
	ContributorMixed   ContributorKind = "Mixed"
	ContributorUnknown ContributorKind = "Unknown"
)

// Contributor identifies who produced a conversation's changes.
type Contributor struct {
	Kind      ContributorKind `json:"kind"`
	ModelID   string          `json:"model_id,omitempty"`
	SessionID string          `json:"session_id,omitempty"`
}

// Range is a content-addressed line span within a file.
type Range struct {
	StartLine     int           `json:"start_line"`
	EndLine       int           `json:"end_line"`
	ContentHash   string        `json:"content_hash"`
	MutationClass MutationClass `json:"mutation_class,omitempty"`
	Confidence    *float64      `json:"confidence,omitempty"`
}

// RelatedKind classifies a TraceRecord's related-entity links.
type RelatedKind string

const (
	RelatedSpecification RelatedKind = "specification"
	RelatedIssue         RelatedKind = "issue"
	RelatedPR            RelatedKind = "pr"
	RelatedDiscussion    RelatedKind = "discussion"
	RelatedDesignDoc     RelatedKind = "design_doc"
	RelatedContentHash   RelatedKind = "content_hash"
)

// Related links a conversation or file entry to an external entity.
type Related struct {
	Kind  RelatedKind `json:"kind"`
	Value string      `json:"value"`
	URL   string       `json:"url,omitempty"`
}

// Conversation groups the ranges produced by one contributor within a file.
type Conversation struct {
	Contributor Contributor `json:"contributor"`
	Ranges      []Range     `json:"ranges"`
	Related     []Related   `json:"related,omitempty"`
}

// FileEntry is one file's worth of conversations within a TraceRecord.
type FileEntry struct {
	RelativePath  string         `json:"relative_path"`
	Conversations []Conversation `json:"conversations"`
}

// VcsSnapshot is the revision metadata attached to a TraceRecord.
type VcsSnapshot struct {
	RevisionID string `json:"revision_id"`
	Branch     string `json:"branch,omitempty"`
	Dirty      *bool  `json:"dirty,omitempty"`
}

// TraceMetadata carries optional session/tag bookkeeping for a TraceRecord.
type TraceMetadata struct {
	SessionID string   `json:"session_id,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// TraceRecord is one append-only entry in the trace journal.
type TraceRecord struct {
	UUID          string        `json:"uuid"`
	Timestamp     time.Time     `json:"timestamp"`
	Vcs           VcsSnapshot   `json:"vcs"`
	Files         []FileEntry   `json:"files"`
	MutationClass MutationClass `json:"mutation_class,omitempty"`
	Metadata      TraceMetadata `json:"metadata,omitempty"`
}

// ErrorKind is the closed taxonomy of wire error constants.
type ErrorKind string

const (
	ErrorIntentRequired    ErrorKind = "INTENT_REQUIRED"
	ErrorScopeViolation    ErrorKind = "SCOPE_VIOLATION"
	ErrorDestructiveCmd    ErrorKind = "DESTRUCTIVE_COMMAND"
	ErrorStaleFile         ErrorKind = "STALE_FILE"
	ErrorFileLocked        ErrorKind = "FILE_LOCKED"
	ErrorFileExcluded      ErrorKind = "FILE_EXCLUDED"
	ErrorCommandExcluded   ErrorKind = "COMMAND_EXCLUDED"
	ErrorMissingIntent     ErrorKind = "MISSING_INTENT"
	ErrorHookError         ErrorKind = "HOOK_ERROR"
)

// HookError is the structured error attached to a blocked HookContext.
type HookError struct {
	Type       ErrorKind      `json:"type"`
	Message    string         `json:"message"`
	Suggestion string         `json:"suggestion,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
}

// RecoveryPayload is the full machine-parseable error envelope returned to
// the agent for a blocked or failed call.
type RecoveryPayload struct {
	Status string `json:"status"`
	Error  struct {
		Type        ErrorKind      `json:"type"`
		Message     string         `json:"message"`
		Recoverable bool           `json:"recoverable"`
		Suggestion  string         `json:"suggestion,omitempty"`
		Details     map[string]any `json:"details,omitempty"`
	} `json:"error"`
	Recovery struct {
		Instruction      string   `json:"instruction"`
		Retry            bool     `json:"retry"`
		SuggestedActions []string `json:"suggested_actions"`
	} `json:"_recovery"`
}

// HookContext is threaded through the pipeline for a single tool call.
type HookContext struct {
	ToolName     string
	Args         map[string]any
	Session      *Session
	Blocked      bool
	Error        *HookError
	LLMError     *RecoveryPayload
	UserFeedback string
}

// Block marks the context blocked with the given error, unless it is
// already blocked (the flag is monotonic: once set, later hooks may not
// clear it).
func (c *HookContext) Block(err HookError) {
	if c.Blocked {
		return
	}
	c.Blocked = true
	c.Error = &err
}

// Result is what Pipeline.Execute returns to the caller.
type Result struct {
	Success  bool
	Value    any
	Error    *HookError
	LLMError *RecoveryPayload
}
