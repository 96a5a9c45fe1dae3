package analyzer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAIKIRANREDDY98/JH/api/schemas"
)

func TestResolveConflictsElementClaimsOneType(t *testing.T) {
	// One element scoring for two types must end up mapped to exactly one.
	candidates := []candidate{
		{Selector: "#contact", Type: schemas.FieldEmail, Confidence: 0.82, Kind: schemas.KindTextLike},
		{Selector: "#contact", Type: schemas.FieldFullName, Confidence: 0.51, Kind: schemas.KindTextLike},
	}

	resolved := resolveConflicts(candidates, 0.40)
	require.Len(t, resolved, 1)
	desc, ok := resolved[schemas.FieldEmail]
	require.True(t, ok)
	assert.Equal(t, "#contact", desc.Selector)
	assert.InDelta(t, 0.82, desc.Confidence, 0.0001)
}

func TestResolveConflictsTypeClaimsOneElement(t *testing.T) {
	// Two elements both claiming email: the stronger one wins, the weaker is
	// dropped rather than reassigned.
	candidates := []candidate{
		{Selector: "#primary-email", Type: schemas.FieldEmail, Confidence: 0.90, Kind: schemas.KindTextLike},
		{Selector: "#newsletter-email", Type: schemas.FieldEmail, Confidence: 0.61, Kind: schemas.KindTextLike},
	}

	resolved := resolveConflicts(candidates, 0.40)
	require.Len(t, resolved, 1)
	assert.Equal(t, "#primary-email", resolved[schemas.FieldEmail].Selector)
}

func TestResolveConflictsUniquenessBothDirections(t *testing.T) {
	candidates := []candidate{
		{Selector: "#a", Type: schemas.FieldEmail, Confidence: 0.90, Kind: schemas.KindTextLike},
		{Selector: "#a", Type: schemas.FieldFullName, Confidence: 0.55, Kind: schemas.KindTextLike},
		{Selector: "#b", Type: schemas.FieldEmail, Confidence: 0.70, Kind: schemas.KindTextLike},
		{Selector: "#b", Type: schemas.FieldFirstName, Confidence: 0.65, Kind: schemas.KindTextLike},
		{Selector: "#c", Type: schemas.FieldLastName, Confidence: 0.80, Kind: schemas.KindTextLike},
	}

	resolved := resolveConflicts(candidates, 0.40)

	seenSelectors := make(map[string]schemas.FieldType)
	for ft, desc := range resolved {
		prev, dup := seenSelectors[desc.Selector]
		require.False(t, dup, "selector %s mapped to both %s and %s", desc.Selector, prev, ft)
		seenSelectors[desc.Selector] = ft
	}

	assert.Equal(t, "#a", resolved[schemas.FieldEmail].Selector)
	assert.Equal(t, "#c", resolved[schemas.FieldLastName].Selector)
	// #b's best type was email, which #a won; #b must not reappear under its
	// second-best type.
	_, ok := resolved[schemas.FieldFirstName]
	assert.False(t, ok)
}

func TestResolveConflictsIsDeterministic(t *testing.T) {
	candidates := []candidate{
		{Selector: "#email", Type: schemas.FieldEmail, Confidence: 0.70, Kind: schemas.KindTextLike},
		{Selector: "#first", Type: schemas.FieldFirstName, Confidence: 0.55, Kind: schemas.KindTextLike},
		{Selector: "#resume", Type: schemas.FieldResumeFile, Confidence: 0.88, Kind: schemas.KindFile},
	}

	expected := resolveConflicts(candidates, 0.40)
	for i := 0; i < 20; i++ {
		if diff := cmp.Diff(expected, resolveConflicts(candidates, 0.40)); diff != "" {
			t.Fatalf("resolution changed between runs (-want +got):\n%s", diff)
		}
	}
}

func TestResolveConflictsAcceptanceThreshold(t *testing.T) {
	candidates := []candidate{
		{Selector: "#weak", Type: schemas.FieldCity, Confidence: 0.22, Kind: schemas.KindTextLike},
		{Selector: "#strong", Type: schemas.FieldState, Confidence: 0.41, Kind: schemas.KindSelect},
	}

	resolved := resolveConflicts(candidates, 0.40)
	_, weakKept := resolved[schemas.FieldCity]
	assert.False(t, weakKept, "candidates below the acceptance threshold must be discarded")
	assert.Contains(t, resolved, schemas.FieldState)
}

func TestResolveConflictsEmptyInput(t *testing.T) {
	assert.Empty(t, resolveConflicts(nil, 0.40))
}
