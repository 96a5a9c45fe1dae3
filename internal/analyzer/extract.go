// internal/analyzer/extract.go
package analyzer

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/SAIKIRANREDDY98/JH/api/schemas"
)

// containerPriority is the ordered list of containment selectors tried when
// choosing the scan scope; the first one present on the page wins.
var containerPriority = []string{
	"form[id*='application']",
	"form[data-testid*='application']",
	"form[aria-label*='application']",
	"form[id*='job-form']",
	"form[class*='job-form']",
	"form[id*='signup']",
	"form[id*='register']",
	"form",
	"div[role='form']",
	"body",
}

// rawElement mirrors the JSON objects produced by the in-page enumeration
// script, one per candidate element.
type rawElement struct {
	Tag              string `json:"tag"`
	Type             string `json:"type"`
	Name             string `json:"name"`
	ID               string `json:"id"`
	Class            string `json:"class"`
	Placeholder      string `json:"placeholder"`
	AriaLabel        string `json:"ariaLabel"`
	AriaLabelledBy   string `json:"ariaLabelledby"`
	AriaDescribedBy  string `json:"ariaDescribedby"`
	Role             string `json:"role"`
	Autocomplete     string `json:"autocomplete"`
	Value            string `json:"value"`
	Text             string `json:"text"`
	Label            string `json:"label"`
	Context          string `json:"context"`
	DataTestID       string `json:"dataTestid"`
	DataCy           string `json:"dataCy"`
	DataQa           string `json:"dataQa"`
	DataAutomationID string `json:"dataAutomationId"`
	Required         bool   `json:"required"`
	Editable         bool   `json:"editable"`
	Visible          bool   `json:"visible"`
	Enabled          bool   `json:"enabled"`
}

// extractedElement is one normalized candidate with its page-generation-scoped
// identity and interaction kind already decided.
type extractedElement struct {
	Attrs    schemas.RawAttributes
	Selector string
	Kind     schemas.ElementKind
}

// enumerationScript enumerates interactive-role elements inside the scope,
// resolves labels and surrounding context, and reports interactability. Links
// are admitted only when their text looks action-like, to bound the candidate
// set on link-heavy pages.
const enumerationScript = `(() => {
  const scope = document.querySelector(%q) || document;
  const seen = new Set();
  const out = [];
  const attr = (el, n) => el.getAttribute(n) || '';
  const visible = (el) => {
    if (!el.getClientRects().length) return false;
    const st = window.getComputedStyle(el);
    return st.visibility !== 'hidden' && st.display !== 'none';
  };
  const enabled = (el) => !el.disabled && attr(el, 'aria-disabled') !== 'true';
  const labelFor = (el) => {
    const lb = attr(el, 'aria-labelledby');
    if (lb) {
      const t = lb.split(/\s+/)
        .map(id => { const r = document.getElementById(id); return r ? r.textContent.trim() : ''; })
        .filter(Boolean).join(' ');
      if (t) return t;
    }
    if (el.id) {
      try {
        const l = document.querySelector('label[for="' + CSS.escape(el.id) + '"]');
        if (l) return l.textContent.trim();
      } catch (e) {}
    }
    const anc = el.closest('label');
    if (anc) return anc.textContent.trim();
    return '';
  };
  const contextFor = (el) => {
    let t = '';
    if (el.parentElement) t = el.parentElement.textContent.trim().slice(0, 100);
    const prev = el.previousElementSibling;
    if (prev) t += ' ' + prev.textContent.trim().slice(0, 100);
    return t.trim();
  };
  const selectors = [
    "input:not([type='hidden']):not([type='image'])", "select", "textarea", "button",
    "[role='button']", "[role='checkbox']", "[role='radio']", "[role='combobox']",
    "[role='listbox']", "[role='textbox']", "[role='spinbutton']",
    "[contenteditable='true']", "[contenteditable='']", "a[href]"
  ];
  for (const sel of selectors) {
    for (const el of scope.querySelectorAll(sel)) {
      if (seen.has(el)) continue;
      seen.add(el);
      const tag = el.tagName.toLowerCase();
      const text = (el.textContent || '').trim().slice(0, 200);
      if (tag === 'a' && !/apply|submit|next|continue|proceed/i.test(text)) continue;
      out.push({
        tag: tag,
        type: tag === 'input' ? (attr(el, 'type') || 'text') : attr(el, 'type'),
        name: attr(el, 'name'),
        id: el.id || '',
        class: attr(el, 'class'),
        placeholder: attr(el, 'placeholder'),
        ariaLabel: attr(el, 'aria-label'),
        ariaLabelledby: attr(el, 'aria-labelledby'),
        ariaDescribedby: attr(el, 'aria-describedby'),
        role: attr(el, 'role'),
        autocomplete: attr(el, 'autocomplete'),
        value: el.value !== undefined ? String(el.value).slice(0, 200) : attr(el, 'value'),
        text: text,
        label: labelFor(el),
        context: contextFor(el),
        dataTestid: attr(el, 'data-testid'),
        dataCy: attr(el, 'data-cy'),
        dataQa: attr(el, 'data-qa'),
        dataAutomationId: attr(el, 'data-automation-id'),
        required: !!el.required,
        editable: el.isContentEditable === true,
        visible: visible(el),
        enabled: enabled(el)
      });
    }
  }
  return out;
})()`

var (
	hexGeneratedValue = regexp.MustCompile(`^[a-f0-9-]{20,}$`)
	numericValue      = regexp.MustCompile(`^\d+$`)
	selectorEscaper   = regexp.MustCompile("([!\"#$%&'()*+,./:;<=>?@\\[\\\\\\]^`{|}~])")
)

// generatedClassPrefixes and genericClassNames filter class tokens that are
// build artifacts or too generic to identify anything.
var (
	generatedClassPrefixes = []string{"css-", "sc-", "styled__", "style-", "ember", "m-", "p-", "w-", "h-"}
	genericClassNames      = map[string]bool{
		"input": true, "form-control": true, "field": true,
		"button": true, "label": true, "active": true, "focus": true,
	}
)

func escapeSelectorValue(v string) string {
	return selectorEscaper.ReplaceAllString(v, `\$1`)
}

func usableAttrValue(v string) bool {
	return v != "" && !numericValue.MatchString(v) && !hexGeneratedValue.MatchString(v)
}

// buildStableSelector derives a re-acquisition selector from the attribute
// bundle, by priority: stable test/automation attribute, then id/name, then a
// placeholder-derived selector, then the first non-generated class token, then
// the bare tag.
func buildStableSelector(el rawElement) string {
	prioritized := []struct{ attr, val string }{
		{"data-testid", el.DataTestID},
		{"data-cy", el.DataCy},
		{"id", el.ID},
		{"name", el.Name},
		{"data-qa", el.DataQa},
		{"aria-label", el.AriaLabel},
		{"data-automation-id", el.DataAutomationID},
	}
	for _, p := range prioritized {
		if usableAttrValue(p.val) {
			return fmt.Sprintf("%s[%s='%s']", el.Tag, p.attr, escapeSelectorValue(p.val))
		}
	}

	if el.Tag == "input" && el.Placeholder != "" {
		inputType := el.Type
		if inputType == "" {
			inputType = "text"
		}
		placeholder := el.Placeholder
		if len(placeholder) > 30 {
			placeholder = placeholder[:30]
		}
		placeholder = strings.ReplaceAll(placeholder, "'", `\'`)
		return fmt.Sprintf("input[type='%s'][placeholder*='%s']", inputType, placeholder)
	}

	for _, cls := range strings.Fields(el.Class) {
		if len(cls) <= 3 || genericClassNames[cls] {
			continue
		}
		generated := false
		for _, prefix := range generatedClassPrefixes {
			if strings.HasPrefix(cls, prefix) {
				generated = true
				break
			}
		}
		if !generated {
			return el.Tag + "." + cls
		}
	}

	if el.Tag != "" {
		return el.Tag
	}
	return "unknown"
}

// classifyKind decides the closed interaction taxonomy for an element once,
// at extraction time.
func classifyKind(el rawElement) schemas.ElementKind {
	role := strings.ToLower(el.Role)
	inputType := strings.ToLower(el.Type)

	switch el.Tag {
	case "select":
		return schemas.KindSelect
	case "textarea":
		return schemas.KindTextLike
	case "button":
		return schemas.KindActionButton
	case "a":
		return schemas.KindActionButton
	case "input":
		switch inputType {
		case "file":
			return schemas.KindFile
		case "checkbox":
			return schemas.KindCheckbox
		case "radio":
			return schemas.KindRadio
		case "submit", "button", "reset":
			return schemas.KindActionButton
		default:
			return schemas.KindTextLike
		}
	}

	switch role {
	case "button":
		return schemas.KindActionButton
	case "checkbox":
		return schemas.KindCheckbox
	case "radio":
		return schemas.KindRadio
	case "combobox", "listbox", "spinbutton", "slider":
		return schemas.KindCustomWidget
	case "textbox":
		if el.Editable {
			return schemas.KindContentEditable
		}
		return schemas.KindCustomWidget
	}

	if el.Editable {
		return schemas.KindContentEditable
	}
	return schemas.KindCustomWidget
}

func toRawAttributes(el rawElement) schemas.RawAttributes {
	automationID := el.DataAutomationID
	if automationID == "" {
		automationID = el.DataTestID
	}
	return schemas.RawAttributes{
		Tag:             el.Tag,
		InputType:       el.Type,
		Name:            el.Name,
		ID:              el.ID,
		Class:           el.Class,
		Placeholder:     el.Placeholder,
		AriaLabel:       el.AriaLabel,
		AriaLabelledBy:  el.AriaLabelledBy,
		AriaDescribedBy: el.AriaDescribedBy,
		Role:            el.Role,
		Autocomplete:    el.Autocomplete,
		AutomationID:    automationID,
		Required:        el.Required,
		Value:           el.Value,
		Text:            el.Text,
		LabelText:       el.Label,
		ContextText:     el.Context,
		Editable:        el.Editable,
		Visible:         el.Visible,
		Enabled:         el.Enabled,
	}
}

// chooseScope picks the scan container, walking the priority list and probing
// each selector for presence.
func chooseScope(ctx context.Context, session schemas.PageSession, logger *zap.Logger) string {
	for _, sel := range containerPriority {
		var count int
		script := fmt.Sprintf(`document.querySelectorAll(%q).length`, sel)
		if err := session.Evaluate(ctx, script, &count); err != nil {
			logger.Debug("Scope probe failed", zap.String("selector", sel), zap.Error(err))
			continue
		}
		if count > 0 {
			return sel
		}
	}
	return "body"
}

// extractElements runs the enumeration script in the given scope and
// normalizes the results. A malformed element is skipped, never fatal to the
// scan.
func extractElements(ctx context.Context, session schemas.PageSession, scope string, logger *zap.Logger) ([]extractedElement, error) {
	var raw []rawElement
	script := fmt.Sprintf(enumerationScript, scope)
	if err := session.Evaluate(ctx, script, &raw); err != nil {
		return nil, fmt.Errorf("element enumeration failed in scope %q: %w", scope, err)
	}

	out := make([]extractedElement, 0, len(raw))
	for _, el := range raw {
		if el.Tag == "" {
			logger.Debug("Skipping element with no tag", zap.String("scope", scope))
			continue
		}
		out = append(out, extractedElement{
			Attrs:    toRawAttributes(el),
			Selector: buildStableSelector(el),
			Kind:     classifyKind(el),
		})
	}
	return out, nil
}
