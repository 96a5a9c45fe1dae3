package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveStepIndicator(t *testing.T) {
	testCases := []struct {
		name            string
		probes          []stepProbe
		expectMultiStep bool
		expectCurrent   int
		expectTotal     int
	}{
		{
			name:            "no indicators",
			probes:          nil,
			expectMultiStep: false,
			expectCurrent:   1,
			expectTotal:     1,
		},
		{
			name: "numeric step text wins",
			probes: []stepProbe{
				{Selector: "[class*='step']", Text: "Step 2 of 5"},
			},
			expectMultiStep: true,
			expectCurrent:   2,
			expectTotal:     5,
		},
		{
			name: "slash separated position",
			probes: []stepProbe{
				{Selector: "[class*='progress']", Text: "3 / 4 Experience"},
			},
			expectMultiStep: true,
			expectCurrent:   3,
			expectTotal:     4,
		},
		{
			name: "tablist item count fallback",
			probes: []stepProbe{
				{Selector: "[role='tablist']", Text: "Personal Experience Review Submit", ItemCount: 4},
			},
			expectMultiStep: true,
			expectCurrent:   1,
			expectTotal:     4,
		},
		{
			name: "uncountable structure only marks presence",
			probes: []stepProbe{
				{Selector: "[class*='step']", Text: "Your details", ItemCount: 3},
			},
			expectMultiStep: true,
			expectCurrent:   1,
			expectTotal:     1,
		},
		{
			name: "numeric text beats a larger item count",
			probes: []stepProbe{
				{Selector: "[role='tablist']", Text: "", ItemCount: 6},
				{Selector: "[class*='progress']", Text: "Step 1 of 3"},
			},
			expectMultiStep: true,
			expectCurrent:   1,
			expectTotal:     3,
		},
		{
			name: "total of one is not trusted",
			probes: []stepProbe{
				{Selector: "[class*='step']", Text: "1 of 1"},
			},
			expectMultiStep: true,
			expectCurrent:   1,
			expectTotal:     1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := deriveStepIndicator(tc.probes)
			assert.Equal(t, tc.expectMultiStep, got.MultiStep)
			assert.Equal(t, tc.expectCurrent, got.Current)
			assert.Equal(t, tc.expectTotal, got.Total)
		})
	}
}

func TestStepTextPatternVariants(t *testing.T) {
	for text, want := range map[string][2]string{
		"Step 2 of 5":  {"2", "5"},
		"step 1 OF 10": {"1", "10"},
		"4/6":          {"4", "6"},
		"2 from 3":     {"2", "3"},
	} {
		m := stepTextPattern.FindStringSubmatch(text)
		if assert.NotNil(t, m, "text %q", text) {
			assert.Equal(t, want[0], m[1])
			assert.Equal(t, want[1], m[2])
		}
	}
	assert.Nil(t, stepTextPattern.FindStringSubmatch("no positions here"))
}

func TestBuildStepProbeScriptEmbedsSelectors(t *testing.T) {
	script := buildStepProbeScript()
	for _, sel := range stepIndicatorSelectors {
		assert.True(t, strings.Contains(script, sel), "script missing selector %q", sel)
	}
	assert.False(t, strings.Contains(script, "%s"), "placeholder must be substituted")
}
