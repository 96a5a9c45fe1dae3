package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SAIKIRANREDDY98/JH/api/schemas"
)

func TestClassifyButtonIntent(t *testing.T) {
	testCases := []struct {
		name     string
		attrs    schemas.RawAttributes
		expected schemas.ButtonIntent
	}{
		{
			name:     "apply now",
			attrs:    schemas.RawAttributes{Text: "Apply Now"},
			expected: schemas.IntentApply,
		},
		{
			name:     "submit application classifies as apply",
			attrs:    schemas.RawAttributes{Text: "Submit Application"},
			expected: schemas.IntentApply,
		},
		{
			name:     "bare apply",
			attrs:    schemas.RawAttributes{Text: "Apply"},
			expected: schemas.IntentApply,
		},
		{
			name:     "next",
			attrs:    schemas.RawAttributes{Text: "Next"},
			expected: schemas.IntentNext,
		},
		{
			name:     "next step",
			attrs:    schemas.RawAttributes{Text: "Next Step"},
			expected: schemas.IntentNext,
		},
		{
			name:     "continue",
			attrs:    schemas.RawAttributes{Text: "Continue"},
			expected: schemas.IntentNext,
		},
		{
			name:     "save and continue reclassifies to submit",
			attrs:    schemas.RawAttributes{Text: "Save and Continue"},
			expected: schemas.IntentSubmit,
		},
		{
			name:     "submit",
			attrs:    schemas.RawAttributes{Text: "Submit"},
			expected: schemas.IntentSubmit,
		},
		{
			name:     "save and exit",
			attrs:    schemas.RawAttributes{Text: "Save & Exit"},
			expected: schemas.IntentSubmit,
		},
		{
			name:     "submit input type with unrecognized value",
			attrs:    schemas.RawAttributes{InputType: "submit", Value: "Go"},
			expected: schemas.IntentSubmit,
		},
		{
			name:     "intent carried by aria label",
			attrs:    schemas.RawAttributes{AriaLabel: "Continue to next step"},
			expected: schemas.IntentNext,
		},
		{
			name:     "unrelated link text",
			attrs:    schemas.RawAttributes{Text: "Learn more about our culture"},
			expected: schemas.IntentNone,
		},
		{
			name:     "empty corpus",
			attrs:    schemas.RawAttributes{},
			expected: schemas.IntentNone,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, classifyButtonIntent(tc.attrs))
		})
	}
}
