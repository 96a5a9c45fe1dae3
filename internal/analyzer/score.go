// internal/analyzer/score.go
package analyzer

import (
	"math"
	"strings"

	"github.com/SAIKIRANREDDY98/JH/api/schemas"
)

// negativeCheckCategories is the fixed set of text-bearing attributes swept by
// the negative-pattern check.
var negativeCheckCategories = []category{
	catLabel, catName, catID, catPlaceholder, catAriaLabel, catText, catAutomationID, catAutocomplete,
}

func attributeFor(attrs schemas.RawAttributes, cat category) string {
	switch cat {
	case catLabel:
		return attrs.LabelText
	case catName:
		return attrs.Name
	case catID:
		return attrs.ID
	case catPlaceholder:
		return attrs.Placeholder
	case catType:
		return attrs.InputType
	case catAutocomplete:
		return attrs.Autocomplete
	case catAutomationID:
		return attrs.AutomationID
	case catAriaLabel:
		return attrs.AriaLabel
	case catText:
		return attrs.Text
	case catClass:
		return attrs.Class
	case catContext:
		return attrs.ContextText
	}
	return ""
}

// scoreField computes the normalized confidence that attrs represents the
// given field type. Each category with at least one matching pattern
// contributes its weight once; an exact HTML input-type match adds an
// amplified bonus; a negative-pattern hit multiplies the accumulated score by
// negativeDamp. The result is normalized to [0,1] against the sum of
// applicable category weights plus a fixed slack and rounded to 3 decimals.
func scoreField(attrs schemas.RawAttributes, fieldType schemas.FieldType) float64 {
	patterns, ok := fieldPatterns[fieldType]
	if !ok {
		return 0
	}

	score := 0.0
	for cat, regexes := range patterns {
		val := attributeFor(attrs, cat)
		if val == "" {
			continue
		}
		if matchAny(regexes, strings.ToLower(val)) {
			score += categoryWeights[cat]
		}
	}

	score += exactTypeBonus(attrs, fieldType)

	if negs, ok := negativePatterns[fieldType]; ok {
	damp:
		for _, neg := range negs {
			for _, cat := range negativeCheckCategories {
				val := attributeFor(attrs, cat)
				if val != "" && neg.MatchString(strings.ToLower(val)) {
					score *= negativeDamp
					break damp
				}
			}
		}
	}

	if score <= 0 {
		return 0
	}

	denominator := normalizationSlack
	for cat := range patterns {
		denominator += categoryWeights[cat]
	}
	if _, hasType := patterns[catType]; !hasType {
		denominator += categoryWeights[catType]
	}

	normalized := math.Min(score/denominator, 1.0)
	return math.Round(normalized*1000) / 1000
}

// exactTypeBonus rewards an element whose raw HTML input type is the field's
// canonical type. Email and password carry an amplified bonus since their
// native types are near-definitive.
func exactTypeBonus(attrs schemas.RawAttributes, fieldType schemas.FieldType) float64 {
	typeWeight := categoryWeights[catType]
	switch strings.ToLower(attrs.InputType) {
	case "email":
		if fieldType == schemas.FieldEmail {
			return typeWeight * 1.5
		}
	case "password":
		if fieldType == schemas.FieldPassword {
			return typeWeight * 1.5
		}
	case "tel":
		if fieldType == schemas.FieldPhone {
			return typeWeight
		}
	case "file":
		if fieldType == schemas.FieldResumeFile || fieldType == schemas.FieldCoverLetterFile {
			return typeWeight
		}
	}
	return 0
}

// candidate is one (element, type, score) triple admitted by the floor check.
type candidate struct {
	Selector   string
	Type       schemas.FieldType
	Kind       schemas.ElementKind
	Confidence float64
	Attrs      schemas.RawAttributes
}

// scoreElement evaluates one extracted element against every classifiable
// field type and returns the candidates that clear the admission floor.
func scoreElement(el extractedElement) []candidate {
	var out []candidate
	for _, ft := range schemas.AllFieldTypes() {
		conf := scoreField(el.Attrs, ft)
		if conf <= admissionFloor {
			continue
		}
		out = append(out, candidate{
			Selector:   el.Selector,
			Type:       ft,
			Kind:       el.Kind,
			Confidence: conf,
			Attrs:      el.Attrs,
		})
	}
	return out
}
