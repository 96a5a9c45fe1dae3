// internal/analyzer/buttons.go
package analyzer

import (
	"strings"

	"github.com/SAIKIRANREDDY98/JH/api/schemas"
)

// classifyButtonIntent maps an action-like element to an intent by matching a
// combined text corpus against the pattern families in precedence order:
// apply, then next (with the save-and-continue carve-out reclassifying to
// submit), then submit, then the raw submit input type. Returns IntentNone
// for elements that are not recognizable actions.
func classifyButtonIntent(attrs schemas.RawAttributes) schemas.ButtonIntent {
	corpus := buttonCorpus(attrs)
	if corpus == "" {
		return schemas.IntentNone
	}

	if matchAny(applyPatterns, corpus) {
		return schemas.IntentApply
	}

	if matchAny(nextPatterns, corpus) {
		// "Save and Continue" persists the step rather than advancing a
		// wizard; treat it as a submit-family action.
		if strings.Contains(corpus, "save") && strings.Contains(corpus, "continue") {
			return schemas.IntentSubmit
		}
		return schemas.IntentNext
	}

	if matchAny(submitPatterns, corpus) {
		return schemas.IntentSubmit
	}

	if strings.EqualFold(attrs.InputType, "submit") {
		return schemas.IntentSubmit
	}

	return schemas.IntentNone
}

func buttonCorpus(attrs schemas.RawAttributes) string {
	parts := make([]string, 0, 6)
	for _, s := range []string{attrs.Text, attrs.Value, attrs.AriaLabel, attrs.Name, attrs.ID, attrs.AutomationID} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.ToLower(strings.TrimSpace(strings.Join(parts, " ")))
}
