package intentstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/agentflow/intentguard/internal/domain"
)

func writeStore(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "intents.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoad_MissingFileFailsOpen(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "missing.yaml"), zerolog.Nop())
	intents := s.Load()
	require.Empty(t, intents)
}

func TestLoad_MalformedFileFailsOpen(t *testing.T) {
	path := writeStore(t, "not: [valid: yaml: at: all")
	s := New(path, zerolog.Nop())
	require.Empty(t, s.Load())
}

func TestLoad_ParsesIntents(t *testing.T) {
	path := writeStore(t, `
active_intents:
  - id: INT-001
    name: Weather API
    status: ACTIVE
    owned_scope:
      - "src/api/weather/**"
    constraints:
      - "no breaking changes"
    acceptance_criteria:
      - "tests pass"
`)
	s := New(path, zerolog.Nop())
	intents := s.Load()
	require.Len(t, intents, 1)
	require.Equal(t, "INT-001", intents[0].ID)
	require.Equal(t, domain.IntentActive, intents[0].Status)

	got, err := s.Get("INT-001")
	require.NoError(t, err)
	require.Equal(t, "Weather API", got.Name)

	_, err = s.Get("INT-999")
	require.ErrorIs(t, err, domain.ErrIntentNotFound)
}

func TestScopeMatches(t *testing.T) {
	intent := domain.Intent{OwnedScope: []string{"src/api/weather/**"}}
	require.True(t, ScopeMatches(intent, "src/api/weather/fetch.ts"))
	require.True(t, ScopeMatches(intent, "src/api/weather/nested/deep.ts"))
	require.False(t, ScopeMatches(intent, "src/other/x.ts"))

	// Pure and stable under repeated calls.
	for i := 0; i < 3; i++ {
		require.True(t, ScopeMatches(intent, "src/api/weather/fetch.ts"))
	}
}

func TestScopeMatches_EmptyScopeRejectsEverything(t *testing.T) {
	intent := domain.Intent{OwnedScope: nil}
	require.False(t, ScopeMatches(intent, "anything.ts"))
}

func TestScopeMatches_Wildcards(t *testing.T) {
	intent := domain.Intent{OwnedScope: []string{"src/*.go", "docs/?.md"}}
	require.True(t, ScopeMatches(intent, "src/main.go"))
	require.False(t, ScopeMatches(intent, "src/nested/main.go"))
	require.True(t, ScopeMatches(intent, "docs/a.md"))
	require.False(t, ScopeMatches(intent, "docs/ab.md"))
}
