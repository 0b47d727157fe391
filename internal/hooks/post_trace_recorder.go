package hooks

import (
	"bytes"
	"context"
	"time"

	"github.com/agentflow/intentguard/internal/domain"
	"github.com/agentflow/intentguard/internal/mutation"
	"github.com/agentflow/intentguard/internal/ports"
	"github.com/agentflow/intentguard/internal/spatial"
)

// priorContentArgKey is where stale_file_detector stashes the file's
// pre-write content for trace_recorder to classify against, since the file
// on disk is already overwritten by the time a post-hook runs.
const priorContentArgKey = "_prior_content"

// TraceRecorder appends a TraceRecord for every successful write_to_file
// call: the new content's hash, its mutation classification against the
// pre-write content, and a related entry naming the session's intent.
func TraceRecorder(deps *Deps) Hook {
	return func(ctx context.Context, hctx *domain.HookContext) {
		if hctx.ToolName != WriteToFileTool || hctx.Blocked || hctx.Session == nil {
			return
		}

		path := ArgString(hctx, "path")
		content := ArgString(hctx, "content")
		priorContent, _ := hctx.Args[priorContentArgKey].(string)

		result := mutation.Classify(priorContent, content)

		confidence := result.Confidence
		lines := lineCount(content)

		record := domain.TraceRecord{
			Timestamp:     time.Now().UTC(),
			Vcs:           snapshotFrom(deps.Vcs.Revision(ctx)),
			MutationClass: result.Class,
			Metadata: domain.TraceMetadata{
				SessionID: hctx.Session.ID,
			},
			Files: []domain.FileEntry{
				{
					RelativePath: path,
					Conversations: []domain.Conversation{
						{
							Contributor: domain.Contributor{
								Kind:      domain.ContributorAI,
								ModelID:   hctx.Session.ModelID,
								SessionID: hctx.Session.ID,
							},
							Ranges: []domain.Range{
								{
									StartLine:     1,
									EndLine:       lines,
									ContentHash:   spatial.Hash(content),
									MutationClass: result.Class,
									Confidence:    &confidence,
								},
							},
							Related: []domain.Related{
								{Kind: domain.RelatedSpecification, Value: hctx.Session.IntentID},
							},
						},
					},
				},
			},
		}

		deps.Traces.Append(record)

		if deps.IntentMapPath != "" {
			if err := deps.Traces.WriteIntentMap(deps.IntentMapPath); err != nil {
				deps.Log.Warn().Err(err).Msg("failed to rewrite intent map")
			}
		}
	}
}

func lineCount(content string) int {
	if content == "" {
		return 1
	}
	return bytes.Count([]byte(content), []byte("\n")) + 1
}

func snapshotFrom(s ports.VcsSnapshot) domain.VcsSnapshot {
	return domain.VcsSnapshot{RevisionID: s.RevisionID, Branch: s.Branch, Dirty: s.Dirty}
}
