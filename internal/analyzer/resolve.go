// internal/analyzer/resolve.go
package analyzer

import (
	"sort"

	"github.com/SAIKIRANREDDY98/JH/api/schemas"
)

// resolveConflicts collapses admitted (element, type, score) candidates into
// at most one descriptor per field type. Phase 1 keeps the best type per
// element (an element claims exactly one type); phase 2 keeps the best
// element per type and applies the acceptance threshold. Element identity is
// the stable selector.
func resolveConflicts(candidates []candidate, acceptanceThreshold float64) map[schemas.FieldType]schemas.FieldDescriptor {
	byElement := make(map[string][]candidate)
	var order []string
	for _, c := range candidates {
		if _, seen := byElement[c.Selector]; !seen {
			order = append(order, c.Selector)
		}
		byElement[c.Selector] = append(byElement[c.Selector], c)
	}

	var elementWinners []candidate
	for _, sel := range order {
		group := byElement[sel]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Confidence > group[j].Confidence
		})
		elementWinners = append(elementWinners, group[0])
	}

	byType := make(map[schemas.FieldType][]candidate)
	for _, c := range elementWinners {
		byType[c.Type] = append(byType[c.Type], c)
	}

	resolved := make(map[schemas.FieldType]schemas.FieldDescriptor)
	for ft, group := range byType {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Confidence > group[j].Confidence
		})
		best := group[0]
		if best.Confidence < acceptanceThreshold {
			continue
		}
		resolved[ft] = schemas.FieldDescriptor{
			Type:       ft,
			Kind:       best.Kind,
			Confidence: best.Confidence,
			Selector:   best.Selector,
			Label:      best.Attrs.LabelText,
			Context:    best.Attrs.ContextText,
			Attributes: best.Attrs,
		}
	}
	return resolved
}
