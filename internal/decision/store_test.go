package decision

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SAIKIRANREDDY98/JH/api/schemas"
)

func tempStore(t *testing.T) *PrefStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "preferences.json")
	store, err := NewPrefStore(path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, store.Load())
	return store
}

func TestPrefStoreMissingFileIsEmpty(t *testing.T) {
	store := tempStore(t)
	_, ok := store.Choice("application_method")
	assert.False(t, ok)
	assert.Empty(t, store.CustomDefinitions())
}

func TestPrefStoreChoiceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.json")
	store, err := NewPrefStore(path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, store.Load())

	require.NoError(t, store.SaveChoice("application_method", "autofill_with_resume"))

	// A fresh store over the same file sees the persisted choice.
	reloaded, err := NewPrefStore(path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, reloaded.Load())
	choice, ok := reloaded.Choice("application_method")
	require.True(t, ok)
	assert.Equal(t, "autofill_with_resume", choice)
}

func TestPrefStoreCustomDefinitionsPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.json")
	store, err := NewPrefStore(path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, store.Load())

	def := schemas.DecisionPoint{
		Name:           "language_selection",
		TextIndicators: []string{"choose your language"},
		ButtonTexts:    []string{"english", "deutsch"},
		Options: []schemas.DecisionOption{
			{Name: "english", Selectors: []string{"button[lang='en']"}, Preferred: true},
		},
	}
	require.NoError(t, store.AddCustomDefinition(def))

	// Re-registering the same name replaces, never duplicates.
	def.Description = "updated"
	require.NoError(t, store.AddCustomDefinition(def))

	reloaded, err := NewPrefStore(path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, reloaded.Load())
	defs := reloaded.CustomDefinitions()
	require.Len(t, defs, 1)
	assert.Equal(t, "updated", defs[0].Description)
}

func TestPrefStoreFileShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.json")
	store, err := NewPrefStore(path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, store.SaveChoice("resume_parse_confirmation", "continue"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"decisions"`)
	assert.Contains(t, string(data), `"custom_decision_definitions"`)
}
