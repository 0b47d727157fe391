// Package vcs implements ports.VcsProbe by shelling out to git with
// context-bounded exec.CommandContext calls, degrading gracefully on a
// detached HEAD or a non-repo directory.
package vcs

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentflow/intentguard/internal/ports"
)

// DefaultTimeout bounds every git subprocess this probe shells out to.
const DefaultTimeout = 2 * time.Second

// unknownRevision is reported whenever any underlying git call fails; a
// VcsProbe must never propagate an error into the hot path of a tool call.
const unknownRevision = "unknown"

// GitProbe implements ports.VcsProbe against a working directory using the
// git binary on PATH.
type GitProbe struct {
	repoRoot string
	timeout  time.Duration
	log      zerolog.Logger
}

// New creates a GitProbe rooted at repoRoot. timeout <= 0 uses DefaultTimeout.
func New(repoRoot string, timeout time.Duration, log zerolog.Logger) *GitProbe {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &GitProbe{repoRoot: repoRoot, timeout: timeout, log: log.With().Str("component", "vcs").Logger()}
}

// Revision reports the current HEAD commit, branch (empty on detached
// HEAD), and working-tree dirty flag. Any failure degrades to
// {revision_id: "unknown"} rather than propagating an error.
func (p *GitProbe) Revision(ctx context.Context) ports.VcsSnapshot {
	revisionID, err := p.run(ctx, "rev-parse", "HEAD")
	if err != nil {
		p.log.Warn().Err(err).Msg("failed to resolve HEAD revision")
		return ports.VcsSnapshot{RevisionID: unknownRevision}
	}

	snapshot := ports.VcsSnapshot{RevisionID: revisionID}

	if branch, err := p.run(ctx, "rev-parse", "--abbrev-ref", "HEAD"); err == nil && branch != "HEAD" {
		snapshot.Branch = branch
	}

	dirty := p.isDirty(ctx)
	snapshot.Dirty = &dirty

	return snapshot
}

func (p *GitProbe) isDirty(ctx context.Context) bool {
	out, err := p.run(ctx, "status", "--porcelain")
	if err != nil {
		return false
	}
	return out != ""
}

func (p *GitProbe) run(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = p.repoRoot
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
