// internal/analyzer/steps.go
package analyzer

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/SAIKIRANREDDY98/JH/api/schemas"
)

// stepIndicatorSelectors is the fixed list of structural selectors that mark
// multi-step UI. The automation-id entries cover common ATS progress bars.
var stepIndicatorSelectors = []string{
	"[class*='step']",
	"[class*='progress']",
	"[class*='wizard']",
	"[role='tablist']",
	".breadcrumb li.active",
	".pagination .active",
	"[data-step]",
	"[aria-current='step']",
	"[data-automation-id*='progressBar'] li[data-automation-id*='selected']",
	"[data-automation-id*='stepIndicator']",
}

// stepTextPattern extracts "step X of Y" (also X/Y and X from Y) positions.
var stepTextPattern = regexp.MustCompile(`(?i)(?:step\s*)?(\d+)\s*(?:of|/|from)\s*(\d+)`)

// stepProbe is one visible structural match reported by the in-page scan:
// its originating selector, combined text + aria-label, and the number of
// list-item-like children.
type stepProbe struct {
	Selector  string `json:"selector"`
	Text      string `json:"text"`
	ItemCount int    `json:"itemCount"`
}

const stepProbeScript = `(() => {
  const selectors = %s;
  const out = [];
  const visible = (el) => {
    if (!el.getClientRects().length) return false;
    const st = window.getComputedStyle(el);
    return st.visibility !== 'hidden' && st.display !== 'none';
  };
  for (const sel of selectors) {
    let els;
    try { els = document.querySelectorAll(sel); } catch (e) { continue; }
    for (const el of els) {
      if (!visible(el)) continue;
      const text = ((el.textContent || '').trim().slice(0, 300) + ' ' + (el.getAttribute('aria-label') || '')).trim();
      const items = el.querySelectorAll("li, [role='tab'], div[class*='step-item']").length;
      out.push({ selector: sel, text: text, itemCount: items });
      if (out.length >= 40) return out;
    }
  }
  return out;
})()`

// countableSelectorMarkers: only progress/wizard/tablist/breadcrumb structures
// are trusted for the child-count fallback.
var countableSelectorMarkers = []string{"progress", "wizard", "tablist", "breadcrumb"}

// deriveStepIndicator turns the probe list into a step position. A numeric
// "X of Y" extraction wins immediately; otherwise a countable structure's
// item total is used with current defaulting to 1; bare presence still marks
// the form multi-step at 1/1.
func deriveStepIndicator(probes []stepProbe) schemas.StepIndicator {
	result := schemas.StepIndicator{MultiStep: false, Current: 1, Total: 1}
	if len(probes) == 0 {
		return result
	}
	result.MultiStep = true

	for _, p := range probes {
		if m := stepTextPattern.FindStringSubmatch(p.Text); m != nil {
			current, _ := strconv.Atoi(m[1])
			total, _ := strconv.Atoi(m[2])
			if total > 1 {
				result.Current = current
				result.Total = total
				return result
			}
		}
	}

	for _, p := range probes {
		if p.ItemCount <= 1 {
			continue
		}
		for _, marker := range countableSelectorMarkers {
			if strings.Contains(p.Selector, marker) {
				result.Total = p.ItemCount
				return result
			}
		}
	}

	return result
}

// detectStepIndicators scans the live page for multi-step UI. Failures are
// non-fatal; the zero indicator is returned.
func detectStepIndicators(ctx context.Context, session schemas.PageSession, logger *zap.Logger) schemas.StepIndicator {
	var probes []stepProbe
	script := buildStepProbeScript()
	if err := session.Evaluate(ctx, script, &probes); err != nil {
		logger.Debug("Multi-step probe failed", zap.Error(err))
		return schemas.StepIndicator{MultiStep: false, Current: 1, Total: 1}
	}
	return deriveStepIndicator(probes)
}

func buildStepProbeScript() string {
	var b strings.Builder
	b.WriteString("[")
	for i, sel := range stepIndicatorSelectors {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(strconv.Quote(sel))
	}
	b.WriteString("]")
	return strings.Replace(stepProbeScript, "%s", b.String(), 1)
}
