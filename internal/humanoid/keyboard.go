// internal/humanoid/keyboard.go
package humanoid

import (
	"context"
	"math"
	"math/rand"
	"strings"
	"time"
	"unicode"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// commonDigraphs are letter pairs a practiced typist rolls through faster
// than their baseline cadence.
var commonDigraphs = map[string]float64{
	"th": 0.55, "he": 0.60, "in": 0.62, "er": 0.62, "an": 0.65,
	"re": 0.68, "on": 0.70, "at": 0.70, "en": 0.72, "es": 0.72,
	"st": 0.75, "nt": 0.75, "ng": 0.78, "ou": 0.78,
}

// Typer produces human-paced keystroke sequences: jittered per-key delays,
// digraph-aware rhythm, and occasional longer hesitations.
type Typer struct {
	baseDelay time.Duration
	rng       *rand.Rand
	logger    *zap.Logger
}

// NewTyper builds a Typer with the given baseline inter-key delay.
func NewTyper(baseDelay time.Duration, logger *zap.Logger) *Typer {
	if baseDelay <= 0 {
		baseDelay = 65 * time.Millisecond
	}
	return &Typer{
		baseDelay: baseDelay,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:    logger.Named("typer"),
	}
}

// Type returns an action that sends text to the currently focused element one
// keystroke at a time. The caller is responsible for focusing the target
// first (a click does both focus and scroll-into-view).
func (t *Typer) Type(text string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		var prev rune
		for _, r := range text {
			if err := chromedp.KeyEvent(string(r)).Do(ctx); err != nil {
				return err
			}
			if err := sleepCtx(ctx, t.keyDelay(prev, r)); err != nil {
				return err
			}
			prev = r
		}
		return nil
	})
}

// keyDelay computes the pause before the next keystroke. The distribution is
// a clamped gaussian around the baseline, scaled down for common digraphs and
// up after punctuation and word boundaries, with a rare longer hesitation.
func (t *Typer) keyDelay(prev, curr rune) time.Duration {
	factor := 1.0

	if prev != 0 {
		pair := strings.ToLower(string(prev) + string(curr))
		if f, ok := commonDigraphs[pair]; ok {
			factor = f
		}
	}
	if curr == ' ' {
		factor *= 1.3
	}
	if unicode.IsPunct(prev) || unicode.IsSymbol(prev) {
		factor *= 1.5
	}
	if unicode.IsUpper(curr) {
		// Shifted characters cost an extra beat.
		factor *= 1.25
	}

	jitter := 1.0 + 0.25*t.rng.NormFloat64()
	jitter = math.Max(0.4, math.Min(jitter, 2.2))

	delay := time.Duration(float64(t.baseDelay) * factor * jitter)

	// Occasional hesitation, as if re-reading the field.
	if t.rng.Float64() < 0.012 {
		delay += time.Duration(300+t.rng.Intn(400)) * time.Millisecond
	}
	return delay
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
