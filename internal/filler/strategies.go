// internal/filler/strategies.go
package filler

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/SAIKIRANREDDY98/JH/api/schemas"
)

// checkUploadPath validates that the path names an existing regular file
// before any browser interaction is attempted.
func checkUploadPath(path string) error {
	if path == "" {
		return fmt.Errorf("empty upload path")
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("upload path not accessible: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("upload path is not a regular file: %s", path)
	}
	return nil
}

// forceRevealScript makes a hidden file input interactable. ATS pages often
// hide the real <input type=file> behind a styled drop zone.
func forceRevealScript(selector string) string {
	return fmt.Sprintf(`(() => {
  const el = document.querySelector(%s);
  if (!el) return 'not_found';
  el.style.display = 'block';
  el.style.visibility = 'visible';
  el.style.opacity = '1';
  el.style.position = 'static';
  el.style.width = 'auto';
  el.style.height = 'auto';
  el.removeAttribute('hidden');
  return 'ok';
})()`, strconv.Quote(selector))
}

// fillFile uploads through the input directly; on a not-interactable failure
// it force-reveals the input once and retries.
func (e *Executor) fillFile(ctx context.Context, session schemas.PageSession, field schemas.FieldDescriptor, path string) error {
	err := session.UploadFile(ctx, field.Selector, path)
	if err == nil {
		return nil
	}
	if schemas.KindOf(err) != schemas.ErrNotInteractable {
		return err
	}

	e.logger.Debug("File input not interactable; force-revealing.",
		zap.String("selector", field.Selector))
	var status string
	if evalErr := session.Evaluate(ctx, forceRevealScript(field.Selector), &status); evalErr != nil || status != "ok" {
		return fmt.Errorf("failed to reveal file input (%s): %w", status, err)
	}
	return session.UploadFile(ctx, field.Selector, path)
}

// forcedCheckScript sets the checked property directly and fires a change
// event; React-style listeners need the native setter.
func forcedCheckScript(selector string, want bool) string {
	return fmt.Sprintf(`(() => {
  const el = document.querySelector(%s);
  if (!el) return 'not_found';
  const setter = Object.getOwnPropertyDescriptor(window.HTMLInputElement.prototype, 'checked').set;
  setter.call(el, %t);
  el.dispatchEvent(new Event('change', { bubbles: true }));
  return 'ok';
})()`, strconv.Quote(selector), want)
}

// fillCheckbox toggles only when the current state differs from the desired
// one, verifies the result, and falls back to a forced state change when the
// click did not stick.
func (e *Executor) fillCheckbox(ctx context.Context, session schemas.PageSession, field schemas.FieldDescriptor, want bool) error {
	state, err := session.ElementState(ctx, field.Selector)
	if err != nil {
		return err
	}
	if state.Checked == want {
		return nil
	}

	if err := session.Click(ctx, field.Selector); err == nil {
		state, verr := session.ElementState(ctx, field.Selector)
		if verr == nil && state.Checked == want {
			return nil
		}
	}

	e.logger.Debug("Checkbox click did not take; forcing state.",
		zap.String("selector", field.Selector), zap.Bool("want", want))
	var status string
	if err := session.Evaluate(ctx, forcedCheckScript(field.Selector, want), &status); err != nil {
		return err
	}
	if status != "ok" {
		return schemas.NewInteractionError(schemas.ErrNotFound, "checkbox_force", field.Selector, fmt.Errorf("force-check returned %q", status))
	}
	state, err = session.ElementState(ctx, field.Selector)
	if err != nil {
		return err
	}
	if state.Checked != want {
		return fmt.Errorf("checkbox state did not change for %s", field.Selector)
	}
	return nil
}

// fillRadio checks the button only for a truthy value; radios are never
// unchecked since another option in the group owns that transition.
func (e *Executor) fillRadio(ctx context.Context, session schemas.PageSession, field schemas.FieldDescriptor, value schemas.FieldValue) error {
	truthy := value.Flag || strings.TrimSpace(value.Text) != ""
	if !truthy {
		return nil
	}

	state, err := session.ElementState(ctx, field.Selector)
	if err != nil {
		return err
	}
	if state.Checked {
		return nil
	}
	if err := session.Click(ctx, field.Selector); err != nil {
		return err
	}
	state, err = session.ElementState(ctx, field.Selector)
	if err == nil && !state.Checked {
		var status string
		if ferr := session.Evaluate(ctx, forcedCheckScript(field.Selector, true), &status); ferr != nil || status != "ok" {
			return fmt.Errorf("radio did not register selection for %s", field.Selector)
		}
	}
	return err
}

// selectOptionScript picks an option by exact value, then exact label, then
// case-insensitive label substring, in that order.
func selectOptionScript(selector, want string) string {
	return fmt.Sprintf(`(() => {
  const el = document.querySelector(%s);
  if (!el || el.tagName !== 'SELECT') return 'not_found';
  const want = %s;
  const opts = Array.from(el.options);
  let match = opts.find(o => o.value === want);
  if (!match) match = opts.find(o => o.text.trim() === want);
  if (!match) {
    const lower = want.toLowerCase();
    match = opts.find(o => o.text.toLowerCase().includes(lower));
  }
  if (!match) return 'no_option';
  el.value = match.value;
  el.dispatchEvent(new Event('change', { bubbles: true }));
  el.dispatchEvent(new Event('input', { bubbles: true }));
  return 'ok';
})()`, strconv.Quote(selector), strconv.Quote(want))
}

func (e *Executor) fillSelect(ctx context.Context, session schemas.PageSession, field schemas.FieldDescriptor, want string) error {
	var status string
	if err := session.Evaluate(ctx, selectOptionScript(field.Selector, want), &status); err != nil {
		return err
	}
	switch status {
	case "ok":
		return nil
	case "not_found":
		return schemas.NewInteractionError(schemas.ErrNotFound, "select", field.Selector, fmt.Errorf("select element not found"))
	case "no_option":
		return fmt.Errorf("no option matching %q in %s", want, field.Selector)
	default:
		return fmt.Errorf("unexpected select result %q", status)
	}
}

// fillTextLike clears then enters the value with human-paced typing. When
// typing fails it falls back to a bulk value set, and finally to a
// select-all-and-retype pass for editors that swallow synthetic values.
func (e *Executor) fillTextLike(ctx context.Context, session schemas.PageSession, field schemas.FieldDescriptor, text string) error {
	if err := session.Clear(ctx, field.Selector); err != nil {
		e.logger.Debug("Clear before type failed.", zap.String("selector", field.Selector), zap.Error(err))
	}
	typeErr := session.TypeHuman(ctx, field.Selector, text)
	if typeErr == nil {
		return nil
	}

	e.logger.Debug("Typed entry failed; falling back to direct value set.",
		zap.String("selector", field.Selector), zap.Error(typeErr))
	if err := session.SetValue(ctx, field.Selector, text); err == nil {
		return nil
	}

	// Last resort: wipe whatever partial state the failed attempts left and
	// retype from scratch.
	if err := session.Clear(ctx, field.Selector); err != nil {
		return typeErr
	}
	return session.TypeHuman(ctx, field.Selector, text)
}

// fillCustomWidget drives role-based comboboxes: open the widget, type into
// the inner input if one appears, commit with Enter and let the page settle.
// Falls back to setting the value directly with a change event.
func (e *Executor) fillCustomWidget(ctx context.Context, session schemas.PageSession, field schemas.FieldDescriptor, text string) error {
	if err := session.Click(ctx, field.Selector); err != nil {
		return err
	}

	// Many widgets swap in a real <input> inside the container once opened.
	innerSelector := field.Selector + " input"
	target := field.Selector
	if state, err := session.ElementState(ctx, innerSelector); err == nil && state.Exists && state.Visible {
		target = innerSelector
	}

	if err := session.TypeHuman(ctx, target, text); err != nil {
		e.logger.Debug("Widget typing failed; forcing value.",
			zap.String("selector", field.Selector), zap.Error(err))
		if serr := session.SetValue(ctx, target, text); serr != nil {
			return err
		}
		return nil
	}
	if err := session.PressEnter(ctx, target); err != nil {
		e.logger.Debug("Widget commit keypress failed.", zap.String("selector", target), zap.Error(err))
	}
	if err := session.WaitStable(ctx); err != nil {
		e.logger.Debug("Widget never settled after selection.", zap.String("selector", field.Selector), zap.Error(err))
	}
	return nil
}
