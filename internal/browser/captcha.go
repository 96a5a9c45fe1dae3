// internal/browser/captcha.go
package browser

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/SAIKIRANREDDY98/JH/api/schemas"
)

// captchaSelectors cover the widely-deployed challenge widgets.
var captchaSelectors = []string{
	"iframe[src*='recaptcha']",
	"iframe[src*='hcaptcha']",
	"iframe[src*='turnstile']",
	"div.g-recaptcha",
	"div.h-captcha",
	"div.cf-turnstile",
	"[data-sitekey]",
	"#captcha",
	"[class*='captcha']",
}

// DetectCaptcha reports whether a known challenge widget is visibly present.
func DetectCaptcha(ctx context.Context, session schemas.PageSession) (bool, error) {
	script := buildPresenceScript(captchaSelectors)
	var present bool
	if err := session.Evaluate(ctx, script, &present); err != nil {
		return false, fmt.Errorf("captcha probe failed: %w", err)
	}
	return present, nil
}

// WaitForManualSolve gives a human a bounded window to clear the challenge,
// polling for its disappearance. Returns an error when the window elapses
// with the challenge still present.
func WaitForManualSolve(ctx context.Context, session schemas.PageSession, window time.Duration, logger *zap.Logger) error {
	logger.Warn("CAPTCHA detected; waiting for manual solve.", zap.Duration("window", window))

	waitCtx, cancel := context.WithTimeout(ctx, window)
	defer cancel()

	ticker := time.NewTicker(3 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("captcha unsolved after %s", window)
		case <-ticker.C:
			present, err := DetectCaptcha(waitCtx, session)
			if err != nil {
				logger.Debug("Captcha re-probe failed.", zap.Error(err))
				continue
			}
			if !present {
				logger.Info("CAPTCHA cleared.")
				return nil
			}
		}
	}
}

// buildPresenceScript returns a script that is true when any of the selectors
// matches a visible element.
func buildPresenceScript(selectors []string) string {
	var quoted []string
	for _, s := range selectors {
		quoted = append(quoted, strconv.Quote(s))
	}
	return `(() => {
  const sels = [` + strings.Join(quoted, ",") + `];
  const visible = (el) => {
    if (!el.getClientRects().length) return false;
    const st = window.getComputedStyle(el);
    return st.visibility !== 'hidden' && st.display !== 'none';
  };
  for (const sel of sels) {
    let els;
    try { els = document.querySelectorAll(sel); } catch (e) { continue; }
    for (const el of els) { if (visible(el)) return true; }
  }
  return false;
})()`
}
