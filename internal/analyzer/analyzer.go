// internal/analyzer/analyzer.go
package analyzer

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/SAIKIRANREDDY98/JH/api/schemas"
	"github.com/SAIKIRANREDDY98/JH/internal/config"
)

// Analyzer produces a PageAnalysis snapshot of the session's current page:
// extraction, scoring, conflict resolution, button intents, form purpose and
// multi-step position. One Analyzer serves a whole run; each call produces a
// fresh page-generation-scoped snapshot.
type Analyzer struct {
	cfg        config.AnalyzerConfig
	logger     *zap.Logger
	assist     schemas.FieldAssist
	generation atomic.Int64
}

var _ schemas.PageAnalyzer = (*Analyzer)(nil)

// New builds an Analyzer. assist may be nil to disable the second-opinion
// classifier.
func New(cfg config.AnalyzerConfig, logger *zap.Logger, assist schemas.FieldAssist) *Analyzer {
	return &Analyzer{
		cfg:    cfg,
		logger: logger.Named("analyzer"),
		assist: assist,
	}
}

// Analyze scans the current page and resolves its fields and action buttons.
// Individual element failures are recorded in the analysis, never fatal; only
// a failed enumeration returns an error.
func (a *Analyzer) Analyze(ctx context.Context, session schemas.PageSession) (*schemas.PageAnalysis, error) {
	generation := int(a.generation.Add(1))
	analysis := &schemas.PageAnalysis{
		Generation: generation,
		Fields:     make(map[schemas.FieldType]schemas.FieldDescriptor),
		Buttons:    make(map[schemas.ButtonIntent][]schemas.ButtonDescriptor),
		Steps:      schemas.StepIndicator{Current: 1, Total: 1},
		AnalyzedAt: time.Now(),
	}

	url, err := session.CurrentURL(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not read current URL: %w", err)
	}
	analysis.URL = url

	scope := chooseScope(ctx, session, a.logger)
	a.logger.Info("Analyzing page",
		zap.Int("generation", generation),
		zap.String("scope", scope),
		zap.String("url", truncate(url, 100)),
	)

	elements, err := extractElements(ctx, session, scope, a.logger)
	if err != nil {
		return nil, err
	}

	var candidates []candidate
	for _, el := range elements {
		if el.Kind == schemas.KindActionButton {
			if !el.Attrs.Visible {
				continue
			}
			intent := classifyButtonIntent(el.Attrs)
			if intent == schemas.IntentNone {
				continue
			}
			analysis.Buttons[intent] = append(analysis.Buttons[intent], schemas.ButtonDescriptor{
				Intent:   intent,
				Selector: el.Selector,
				Text:     truncate(el.Attrs.Text, 80),
			})
			continue
		}

		if !el.Attrs.Visible || !el.Attrs.Enabled {
			continue
		}
		candidates = append(candidates, a.scoreWithAssist(ctx, el)...)
	}

	analysis.Fields = resolveConflicts(candidates, a.cfg.AcceptanceThreshold)
	analysis.Purpose = detectFormPurpose(analysis.Fields)
	analysis.Steps = detectStepIndicators(ctx, session, a.logger)

	a.logger.Info("Page analysis complete",
		zap.Int("fields", len(analysis.Fields)),
		zap.Int("submit_buttons", len(analysis.Buttons[schemas.IntentSubmit])),
		zap.Int("next_buttons", len(analysis.Buttons[schemas.IntentNext])),
		zap.Int("apply_buttons", len(analysis.Buttons[schemas.IntentApply])),
		zap.String("purpose", string(analysis.Purpose)),
		zap.Bool("multi_step", analysis.Steps.MultiStep),
	)
	return analysis, nil
}

// scoreWithAssist scores one element and, when every admitted candidate falls
// short of the acceptance threshold, consults the optional assist classifier.
// A confirmed suggestion is promoted to exactly the acceptance threshold,
// never above it.
func (a *Analyzer) scoreWithAssist(ctx context.Context, el extractedElement) []candidate {
	cands := scoreElement(el)
	if a.assist == nil || len(cands) == 0 {
		return cands
	}

	best := 0.0
	types := make([]schemas.FieldType, 0, len(cands))
	for _, c := range cands {
		types = append(types, c.Type)
		if c.Confidence > best {
			best = c.Confidence
		}
	}
	if best >= a.cfg.AcceptanceThreshold {
		return cands
	}

	suggested, err := a.assist.SuggestType(ctx, el.Attrs, types)
	if err != nil {
		a.logger.Debug("Assist classification failed", zap.String("selector", el.Selector), zap.Error(err))
		return cands
	}
	for i := range cands {
		if cands[i].Type == suggested {
			a.logger.Debug("Assist promoted candidate",
				zap.String("selector", el.Selector),
				zap.String("type", string(suggested)),
				zap.Float64("heuristic_confidence", cands[i].Confidence),
			)
			cands[i].Confidence = a.cfg.AcceptanceThreshold
			break
		}
	}
	return cands
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
