// Package mutation classifies the change between two versions of a text
// blob into a fixed taxonomy with a confidence value, using a structural
// comparison where possible and an ordered textual fallback otherwise.
package mutation

import (
	"regexp"
	"strings"

	"github.com/agentflow/intentguard/internal/domain"
)

// Change describes one detected edit. Classify does not fill
// Result.Changes; the list it returns is always empty.
type Change struct {
	Description string
}

// Result is the output of Classify.
type Result struct {
	Class      domain.MutationClass
	Confidence float64
	Changes    []Change
}

var (
	todoPattern         = regexp.MustCompile(`(?i)\b(TODO|FIXME)\b`)
	annotationPattern   = regexp.MustCompile(`(?m)^\s*(//|#|\*)\s*@(param|returns|throws)\b`)
	blockCommentPattern = regexp.MustCompile(`/\*.*?\*/`)
)

// token is a structural node type: an identifier, literal, or comment is
// discarded, only the shape of the construct survives.
type token string

// tokenize reduces a blob to a language-agnostic sequence of structural
// node types. It is intentionally shallow: it classifies each non-blank
// line by its leading shape rather than building a real parse tree, which
// is enough to notice whether two blobs have the same structural skeleton.
// Comments never contribute tokens: comment-only lines are skipped and
// trailing comments are stripped from code lines, so shape reflects code
// structure only.
func tokenize(blob string) []token {
	var tokens []token
	for _, line := range strings.Split(blob, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || isCommentLine(trimmed) {
			continue
		}
		code := strings.TrimSpace(stripTrailingComment(trimmed))
		if code == "" {
			continue
		}
		tokens = append(tokens, shapeOf(code))
	}
	return tokens
}

func isCommentLine(line string) bool {
	return strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") ||
		strings.HasPrefix(line, "/*") || strings.HasPrefix(line, "*")
}

// stripTrailingComment removes inline block comments and a trailing line
// comment. It does not understand string literals; close enough for a
// shape comparison.
func stripTrailingComment(line string) string {
	line = blockCommentPattern.ReplaceAllString(line, " ")
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}
	if i := strings.Index(line, " #"); i >= 0 {
		line = line[:i]
	}
	return line
}

func shapeOf(line string) token {
	switch {
	case strings.HasSuffix(line, "{"):
		return "block_open"
	case line == "}" || strings.HasPrefix(line, "} "):
		return "block_close"
	case strings.Contains(line, "func ") || strings.Contains(line, "function ") || strings.Contains(line, "def "):
		return "func_decl"
	case strings.Contains(line, "if ") || strings.Contains(line, "if("):
		return "if_stmt"
	case strings.Contains(line, "for ") || strings.Contains(line, "while "):
		return "loop_stmt"
	case strings.Contains(line, "return"):
		return "return_stmt"
	case strings.Contains(line, "="):
		return "assignment"
	default:
		return "expr_stmt"
	}
}

func sameShape(a, b []token) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func hasMarker(blob string) bool {
	return todoPattern.MatchString(blob)
}

// structural attempts the primary comparison. It reports ok=false when the
// comparison is unavailable (both blobs tokenize to nothing), signalling
// callers to fall back to textual heuristics.
func structural(original, updated string) (Result, bool) {
	origTokens := tokenize(original)
	newTokens := tokenize(updated)
	if len(origTokens) == 0 && len(newTokens) == 0 {
		return Result{}, false
	}

	// Checked before the shape comparison: comments never contribute to
	// shape, so a removed TODO on an otherwise-unchanged line must not be
	// reported as a pure refactor.
	if hasMarker(original) && !hasMarker(updated) {
		return Result{Class: domain.MutationBugFix, Confidence: 0.9}, true
	}

	if sameShape(origTokens, newTokens) {
		return Result{Class: domain.MutationASTRefactor, Confidence: 0.95}, true
	}

	return Result{Class: domain.MutationIntentEvolution, Confidence: 0.85}, true
}

// textual is the fallback taken when structural comparison cannot run. The
// order of these checks is significant and callers must treat the
// resulting confidence as advisory, not exact.
func textual(original, updated string) Result {
	if !annotationPattern.MatchString(original) && annotationPattern.MatchString(updated) {
		return Result{Class: domain.MutationDocsUpdate, Confidence: 0.9}
	}

	if hasMarker(original) && !hasMarker(updated) {
		return Result{Class: domain.MutationBugFix, Confidence: 0.8}
	}

	origLines := strings.Split(original, "\n")
	newLines := strings.Split(updated, "\n")
	lineDelta := abs(len(origLines) - len(newLines))
	charDelta := abs(len(original) - len(updated))
	if lineDelta > 20 || charDelta > 500 {
		return Result{Class: domain.MutationIntentEvolution, Confidence: 0.85}
	}

	return Result{Class: domain.MutationASTRefactor, Confidence: 0.65}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Classify classifies the change from original to updated.
func Classify(original, updated string) Result {
	if result, ok := structural(original, updated); ok {
		return result
	}
	return textual(original, updated)
}
