// internal/browser/stability.go
package browser

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/SAIKIRANREDDY98/JH/api/schemas"
	"github.com/SAIKIRANREDDY98/JH/internal/config"
)

// stabilityObserverScript installs a MutationObserver tracking critical
// mutations: any child-list addition or removal anywhere, or an attribute
// change on an interactive-role element limited to the allow-list below.
// Idempotent per document; navigation wipes it, which the poll loop detects.
const stabilityObserverScript = `(() => {
  if (window.__jhStability && window.__jhStability.installed) return 'already';
  const state = { installed: true, lastMutation: Date.now() };
  window.__jhStability = state;

  const interactive = (el) =>
    el && el.matches &&
    el.matches("input, select, textarea, button, a, [role='button'], [role='checkbox'], [role='radio'], [role='combobox'], [role='listbox'], [role='tab'], [contenteditable='true']");

  const watchedAttrs = ['disabled', 'hidden', 'style', 'class', 'value', 'checked',
    'selected', 'readonly', 'aria-disabled', 'aria-hidden'];

  try {
    const observer = new MutationObserver((mutations) => {
      for (const m of mutations) {
        if (m.type === 'childList' && (m.addedNodes.length || m.removedNodes.length)) {
          state.lastMutation = Date.now();
          return;
        }
        if (m.type === 'attributes' && interactive(m.target) && watchedAttrs.includes(m.attributeName)) {
          state.lastMutation = Date.now();
          return;
        }
      }
    });
    observer.observe(document.documentElement, {
      childList: true,
      subtree: true,
      attributes: true,
      attributeFilter: watchedAttrs
    });
    state.observer = observer;
    return 'installed';
  } catch (e) {
    delete window.__jhStability;
    return 'failed: ' + e.message;
  }
})()`

// stabilityProbeScript reports milliseconds since the last critical mutation,
// or -1 when the hook is gone (navigation or install failure).
const stabilityProbeScript = `(() => {
  if (!window.__jhStability || !window.__jhStability.installed) return -1;
  return Date.now() - window.__jhStability.lastMutation;
})()`

type evalFunc func(ctx context.Context, script string, out any) error
type networkIdleFunc func(ctx context.Context, quiet time.Duration) error

// stabilityMonitor decides when the page has settled enough to scan or
// interact: mutation-quiet for a full window, then network-idle for the same
// window. Falls back to network-idle plus a fixed delay when the observer
// cannot be installed.
type stabilityMonitor struct {
	cfg         config.StabilityConfig
	logger      *zap.Logger
	eval        evalFunc
	networkIdle networkIdleFunc
}

func newStabilityMonitor(cfg config.StabilityConfig, logger *zap.Logger, eval evalFunc, networkIdle networkIdleFunc) *stabilityMonitor {
	return &stabilityMonitor{
		cfg:         cfg,
		logger:      logger.Named("stability"),
		eval:        eval,
		networkIdle: networkIdle,
	}
}

// Wait blocks until the page is stable or the overall timeout elapses. Page
// teardown mid-wait returns a Detached error rather than hanging.
func (m *stabilityMonitor) Wait(ctx context.Context) error {
	overallCtx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	var status string
	if err := m.eval(overallCtx, stabilityObserverScript, &status); err != nil || (status != "installed" && status != "already") {
		if err != nil && ctx.Err() != nil {
			return schemas.NewInteractionError(schemas.ErrDetached, "stability_wait", "", ctx.Err())
		}
		m.logger.Debug("Mutation observer unavailable; using network-idle fallback.",
			zap.String("status", status), zap.Error(err))
		return m.fallbackWait(overallCtx)
	}

	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-overallCtx.Done():
			if ctx.Err() != nil {
				return schemas.NewInteractionError(schemas.ErrDetached, "stability_wait", "", ctx.Err())
			}
			m.logger.Debug("Stability timeout; page never went mutation-quiet.",
				zap.Duration("timeout", m.cfg.Timeout))
			return schemas.NewInteractionError(schemas.ErrTimeout, "stability_wait", "", overallCtx.Err())
		case <-ticker.C:
			var sinceMs int64
			if err := m.eval(overallCtx, stabilityProbeScript, &sinceMs); err != nil {
				// Evaluation failing mid-wait usually means the page is being
				// torn down or navigated away from.
				if overallCtx.Err() != nil {
					continue
				}
				m.logger.Debug("Stability probe failed; reinstalling after possible navigation.", zap.Error(err))
				if err := m.eval(overallCtx, stabilityObserverScript, &status); err != nil {
					return schemas.NewInteractionError(schemas.ErrDetached, "stability_wait", "", err)
				}
				continue
			}
			if sinceMs < 0 {
				// Hook vanished: a navigation replaced the document. Reinstall
				// and keep waiting within the same overall budget.
				if err := m.eval(overallCtx, stabilityObserverScript, &status); err != nil {
					return schemas.NewInteractionError(schemas.ErrDetached, "stability_wait", "", err)
				}
				continue
			}
			if time.Duration(sinceMs)*time.Millisecond >= m.cfg.QuietWindow {
				// Mutation-quiet; now require the network to be idle for the
				// same window before declaring success.
				if err := m.networkIdle(overallCtx, m.cfg.QuietWindow); err != nil {
					if ctx.Err() != nil {
						return schemas.NewInteractionError(schemas.ErrDetached, "stability_wait", "", ctx.Err())
					}
					return schemas.NewInteractionError(schemas.ErrTimeout, "stability_wait", "", err)
				}
				m.logger.Debug("Page stable.", zap.Int64("quiet_ms", sinceMs))
				return nil
			}
		}
	}
}

// fallbackWait is used when the mutation hook cannot be installed (for
// example a cross-origin navigation race): network idle plus a fixed delay.
func (m *stabilityMonitor) fallbackWait(ctx context.Context) error {
	if err := m.networkIdle(ctx, m.cfg.QuietWindow); err != nil {
		if ctx.Err() != nil {
			return schemas.NewInteractionError(schemas.ErrTimeout, "stability_fallback", "", ctx.Err())
		}
		return schemas.NewInteractionError(schemas.ErrTimeout, "stability_fallback", "", err)
	}
	timer := time.NewTimer(m.cfg.FallbackDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return schemas.NewInteractionError(schemas.ErrTimeout, "stability_fallback", "", ctx.Err())
	case <-timer.C:
		return nil
	}
}
