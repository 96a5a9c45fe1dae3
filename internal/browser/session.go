// internal/browser/session.go
package browser

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SAIKIRANREDDY98/JH/api/schemas"
	"github.com/SAIKIRANREDDY98/JH/internal/browser/stealth"
	"github.com/SAIKIRANREDDY98/JH/internal/config"
	"github.com/SAIKIRANREDDY98/JH/internal/humanoid"
)

// Session is one browser tab implementing schemas.PageSession. All operations
// respect both the session lifetime and the caller's context.
type Session struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger
	cfg    *config.Config

	harvester *Harvester
	stability *stabilityMonitor
	typer     *humanoid.Typer

	onClose func()

	mu       sync.Mutex
	isClosed bool
}

var _ schemas.PageSession = (*Session)(nil)

// NewSession wraps a tab context. Initialize must be called before use.
func NewSession(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, logger *zap.Logger) (*Session, error) {
	sessionID := uuid.New().String()
	sessionLogger := logger.With(zap.String("session_id", sessionID))

	s := &Session{
		id:     sessionID,
		ctx:    ctx,
		cancel: cancel,
		logger: sessionLogger,
		cfg:    cfg,
	}
	if cfg.Filler.HumanTyping {
		s.typer = humanoid.NewTyper(cfg.Filler.BaseKeyDelay, sessionLogger)
	}
	return s, nil
}

// Initialize connects the tab, starts the harvester, applies stealth
// overrides and wires the stability monitor.
func (s *Session) Initialize(ctx context.Context) error {
	if err := chromedp.Run(s.ctx); err != nil {
		return fmt.Errorf("failed to connect browser target: %w", err)
	}

	s.harvester = NewHarvester(s.ctx, s.logger)
	if err := s.harvester.Start(s.ctx); err != nil {
		return fmt.Errorf("failed to start harvester: %w", err)
	}

	if s.cfg.Browser.Stealth {
		if err := s.runActions(ctx, stealth.Apply(stealth.DefaultPersona, s.logger)); err != nil {
			return fmt.Errorf("failed to apply stealth overrides: %w", err)
		}
	}

	s.stability = newStabilityMonitor(s.cfg.Stability, s.logger, s.Evaluate, s.harvester.WaitNetworkIdle)
	return nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// CombineContext derives a context canceled when either parent is done. The
// session context carries the chromedp target, so it is always the base.
func CombineContext(sessionCtx, opCtx context.Context) (context.Context, context.CancelFunc) {
	combined, cancel := context.WithCancel(sessionCtx)
	stop := context.AfterFunc(opCtx, cancel)
	return combined, func() {
		stop()
		cancel()
	}
}

func (s *Session) runActions(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := CombineContext(s.ctx, ctx)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// Navigate loads the URL and waits for the page to settle.
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.logger.Debug("Navigating.", zap.String("url", url))

	navTimeout := s.cfg.Browser.NavigationTimeout
	if navTimeout <= 0 {
		navTimeout = 90 * time.Second
	}
	navCtx, navCancel := context.WithTimeout(ctx, navTimeout)
	defer navCancel()

	if err := s.runActions(navCtx, chromedp.Navigate(url)); err != nil {
		return s.mapError("navigate", url, navCtx, err)
	}

	if err := s.WaitStable(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Warn("Page stabilization failed after navigation (non-critical).", zap.Error(err))
	}
	return nil
}

// CurrentURL returns the page's location.
func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	var url string
	if err := s.runActions(ctx, chromedp.Location(&url)); err != nil {
		return "", s.mapError("current_url", "", ctx, err)
	}
	return url, nil
}

// Evaluate runs a script in the page, unmarshalling its result into out
// (nil discards the result).
func (s *Session) Evaluate(ctx context.Context, script string, out any) error {
	if err := s.runActions(ctx, chromedp.Evaluate(script, out)); err != nil {
		return s.mapError("evaluate", "", ctx, err)
	}
	return nil
}

// Click scrolls the element into view, waits for visibility and clicks it.
func (s *Session) Click(ctx context.Context, selector string) error {
	clickCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	err := s.runActions(clickCtx,
		chromedp.ScrollIntoView(selector, chromedp.ByQuery),
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
	)
	if err != nil {
		return s.mapError("click", selector, clickCtx, err)
	}
	return nil
}

// TypeHuman focuses the element and enters text with human pacing. Without a
// typer it degrades to plain SendKeys.
func (s *Session) TypeHuman(ctx context.Context, selector, text string) error {
	timeout := 15*time.Second + time.Duration(len(text))*400*time.Millisecond
	if timeout > 3*time.Minute {
		timeout = 3 * time.Minute
	}
	typeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var action chromedp.Action
	if s.typer != nil {
		action = chromedp.Tasks{
			chromedp.ScrollIntoView(selector, chromedp.ByQuery),
			chromedp.WaitVisible(selector, chromedp.ByQuery),
			chromedp.Click(selector, chromedp.ByQuery),
			s.typer.Type(text),
		}
	} else {
		action = chromedp.Tasks{
			chromedp.ScrollIntoView(selector, chromedp.ByQuery),
			chromedp.WaitVisible(selector, chromedp.ByQuery),
			chromedp.SendKeys(selector, text, chromedp.ByQuery),
		}
	}

	if err := s.runActions(typeCtx, action); err != nil {
		return s.mapError("type", selector, typeCtx, err)
	}
	return nil
}

// setValueScript assigns through the prototype value setter so framework
// change-tracking (React and friends) observes the write, then fires the
// standard notification events.
const setValueScript = `(() => {
  const el = document.querySelector(%s);
  if (!el) return 'not_found';
  const value = %s;
  if (el.isContentEditable) {
    el.textContent = value;
  } else {
    const tag = el.tagName.toLowerCase();
    const proto = tag === 'textarea' ? HTMLTextAreaElement.prototype
      : tag === 'select' ? HTMLSelectElement.prototype
      : HTMLInputElement.prototype;
    const desc = Object.getOwnPropertyDescriptor(proto, 'value');
    if (desc && desc.set) { desc.set.call(el, value); } else { el.value = value; }
  }
  el.dispatchEvent(new Event('input', { bubbles: true }));
  el.dispatchEvent(new Event('change', { bubbles: true }));
  el.dispatchEvent(new Event('blur', { bubbles: true }));
  return 'ok';
})()`

// SetValue writes the value directly and fires input/change/blur.
func (s *Session) SetValue(ctx context.Context, selector, value string) error {
	script := fmt.Sprintf(setValueScript, strconv.Quote(selector), strconv.Quote(value))
	var status string
	if err := s.Evaluate(ctx, script, &status); err != nil {
		return err
	}
	if status == "not_found" {
		return schemas.NewInteractionError(schemas.ErrNotFound, "set_value", selector, fmt.Errorf("no element matches selector"))
	}
	return nil
}

// Clear empties the element's value.
func (s *Session) Clear(ctx context.Context, selector string) error {
	if err := s.SetValue(ctx, selector, ""); err != nil {
		return schemas.NewInteractionError(schemas.KindOf(err), "clear", selector, err)
	}
	return nil
}

// PressEnter sends an Enter keystroke to the element.
func (s *Session) PressEnter(ctx context.Context, selector string) error {
	err := s.runActions(ctx,
		chromedp.Focus(selector, chromedp.ByQuery),
		chromedp.KeyEvent(kb.Enter),
	)
	if err != nil {
		return s.mapError("press_enter", selector, ctx, err)
	}
	return nil
}

// UploadFile attaches a local file to a file input.
func (s *Session) UploadFile(ctx context.Context, selector, path string) error {
	uploadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := s.runActions(uploadCtx, chromedp.SetUploadFiles(selector, []string{path}, chromedp.ByQuery)); err != nil {
		return s.mapError("upload", selector, uploadCtx, err)
	}
	return nil
}

const elementStateScript = `(() => {
  const el = document.querySelector(%s);
  if (!el) return { exists: false, visible: false, enabled: false, checked: false, value: '' };
  const st = window.getComputedStyle(el);
  const visible = el.getClientRects().length > 0 && st.visibility !== 'hidden' && st.display !== 'none';
  const enabled = !el.disabled && el.getAttribute('aria-disabled') !== 'true';
  return {
    exists: true,
    visible: visible,
    enabled: enabled,
    checked: !!el.checked || el.getAttribute('aria-checked') === 'true',
    value: el.value !== undefined ? String(el.value).slice(0, 500) : ''
  };
})()`

// ElementState probes existence, visibility, enablement, checked state and
// current value in one round trip.
func (s *Session) ElementState(ctx context.Context, selector string) (schemas.ElementState, error) {
	var state schemas.ElementState
	script := fmt.Sprintf(elementStateScript, strconv.Quote(selector))
	if err := s.Evaluate(ctx, script, &state); err != nil {
		return schemas.ElementState{}, schemas.NewInteractionError(schemas.KindOf(err), "element_state", selector, err)
	}
	return state, nil
}

// WaitStable delegates to the stability monitor.
func (s *Session) WaitStable(ctx context.Context) error {
	if s.stability == nil {
		return fmt.Errorf("session not initialized")
	}
	opCtx, cancel := CombineContext(s.ctx, ctx)
	defer cancel()
	return s.stability.Wait(opCtx)
}

// CaptureSnapshot grabs the current URL and outer HTML.
func (s *Session) CaptureSnapshot(ctx context.Context) (*schemas.PageSnapshot, error) {
	var url, html string
	err := s.runActions(ctx,
		chromedp.Location(&url),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, s.mapError("snapshot", "", ctx, err)
	}
	return &schemas.PageSnapshot{URL: url, HTML: html, CapturedAt: time.Now()}, nil
}

// Screenshot captures a full-page PNG.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := s.runActions(ctx, chromedp.FullScreenshot(&buf, 90)); err != nil {
		return nil, s.mapError("screenshot", "", ctx, err)
	}
	return buf, nil
}

// ConsoleLogs exposes the harvester's captured console output.
func (s *Session) ConsoleLogs() []ConsoleMessage {
	if s.harvester == nil {
		return nil
	}
	return s.harvester.ConsoleLogs()
}

// Close stops the harvester and tears the tab down. Idempotent.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.isClosed {
		s.mu.Unlock()
		return nil
	}
	s.isClosed = true
	s.mu.Unlock()

	s.logger.Debug("Closing browser session.")

	if s.harvester != nil {
		s.harvester.Stop()
	}
	if s.cancel != nil {
		s.cancel()
	}
	if s.onClose != nil {
		s.onClose()
	}
	return nil
}

// mapError converts raw chromedp failures into the closed error taxonomy.
func (s *Session) mapError(op, selector string, opCtx context.Context, err error) error {
	kind := schemas.ErrUnknown
	switch {
	case s.ctx.Err() != nil:
		kind = schemas.ErrDetached
	case opCtx != nil && opCtx.Err() == context.DeadlineExceeded:
		kind = schemas.ErrTimeout
	default:
		msg := err.Error()
		switch {
		case strings.Contains(msg, "could not find node") || strings.Contains(msg, "no nodes"):
			kind = schemas.ErrNotFound
		case strings.Contains(msg, "not visible") || strings.Contains(msg, "not clickable") || strings.Contains(msg, "disabled"):
			kind = schemas.ErrNotInteractable
		case strings.Contains(msg, "context canceled") || strings.Contains(msg, "target closed") || strings.Contains(msg, "detached"):
			kind = schemas.ErrDetached
		case strings.Contains(msg, "deadline exceeded"):
			kind = schemas.ErrTimeout
		}
	}
	return schemas.NewInteractionError(kind, op, selector, err)
}
