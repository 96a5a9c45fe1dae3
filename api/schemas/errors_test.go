package schemas

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	base := errors.New("boom")

	testCases := []struct {
		name     string
		err      error
		expected ErrorKind
	}{
		{"nil", nil, ""},
		{"direct interaction error", NewInteractionError(ErrNotFound, "click", "#x", base), ErrNotFound},
		{"wrapped interaction error", fmt.Errorf("outer: %w", NewInteractionError(ErrDetached, "eval", "", base)), ErrDetached},
		{"deadline exceeded", context.DeadlineExceeded, ErrTimeout},
		{"cancellation", context.Canceled, ErrTimeout},
		{"plain error", base, ErrUnknown},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, KindOf(tc.err))
		})
	}
}

func TestIsTransient(t *testing.T) {
	base := errors.New("boom")

	assert.True(t, IsTransient(NewInteractionError(ErrNotFound, "click", "#x", base)))
	assert.True(t, IsTransient(NewInteractionError(ErrNotInteractable, "type", "#x", base)))
	assert.False(t, IsTransient(NewInteractionError(ErrTimeout, "wait", "", base)))
	assert.False(t, IsTransient(NewInteractionError(ErrDetached, "eval", "", base)))
	assert.False(t, IsTransient(base))
	assert.False(t, IsTransient(nil))
}

func TestInteractionErrorMessage(t *testing.T) {
	err := NewInteractionError(ErrNotInteractable, "click", "#submit", errors.New("covered by overlay"))
	assert.Contains(t, err.Error(), "click")
	assert.Contains(t, err.Error(), "#submit")
	assert.Contains(t, err.Error(), "not_interactable")
	assert.Equal(t, "covered by overlay", errors.Unwrap(err).Error())
}

func TestPreferredOption(t *testing.T) {
	point := DecisionPoint{
		Options: []DecisionOption{
			{Name: "a"},
			{Name: "b", Preferred: true},
		},
	}
	opt, ok := point.PreferredOption()
	assert.True(t, ok)
	assert.Equal(t, "b", opt.Name)

	// No preferred flag: first option with ok=false semantics preserved by
	// the implementation's fallback contract.
	fallback := DecisionPoint{Options: []DecisionOption{{Name: "only"}}}
	opt, ok = fallback.PreferredOption()
	assert.True(t, ok)
	assert.Equal(t, "only", opt.Name)

	_, ok = DecisionPoint{}.PreferredOption()
	assert.False(t, ok)
}
