// internal/browser/popups.go
package browser

import (
	"context"

	"go.uber.org/zap"

	"github.com/SAIKIRANREDDY98/JH/api/schemas"
)

// dismissalSelectors are tried in order; the first visible match is clicked.
// Cookie banners first since they overlay everything else.
var dismissalSelectors = []string{
	"#onetrust-accept-btn-handler",
	"button[id*='cookie-accept']",
	"button[class*='cookie-accept']",
	"button[aria-label*='accept cookies' i]",
	"[data-testid='cookie-banner'] button",
	"button[aria-label='Close']",
	"button[aria-label='Dismiss']",
	"[class*='modal'] button[class*='close']",
	"[role='dialog'] button[aria-label*='close' i]",
	".popup-close",
}

// DismissPopups clicks through cookie banners and modal overlays. Best
// effort: failures are logged and never propagate.
func DismissPopups(ctx context.Context, session schemas.PageSession, logger *zap.Logger) int {
	dismissed := 0
	for _, sel := range dismissalSelectors {
		state, err := session.ElementState(ctx, sel)
		if err != nil || !state.Exists || !state.Visible {
			continue
		}
		if err := session.Click(ctx, sel); err != nil {
			logger.Debug("Popup dismissal click failed.", zap.String("selector", sel), zap.Error(err))
			continue
		}
		logger.Debug("Dismissed popup.", zap.String("selector", sel))
		dismissed++
	}
	return dismissed
}
