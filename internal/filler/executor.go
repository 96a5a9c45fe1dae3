// internal/filler/executor.go
package filler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/SAIKIRANREDDY98/JH/api/schemas"
	"github.com/SAIKIRANREDDY98/JH/internal/config"
)

// Executor writes step data into the controls resolved by an analysis pass.
// It paces consecutive fields with a rate limiter and retries each field once
// on a transient interaction error.
type Executor struct {
	cfg     config.FillerConfig
	logger  *zap.Logger
	limiter *rate.Limiter
}

var _ schemas.FillExecutor = (*Executor)(nil)

func New(cfg config.FillerConfig, logger *zap.Logger) *Executor {
	fps := cfg.FieldsPerSecond
	if fps <= 0 {
		fps = 0.8
	}
	return &Executor{
		cfg:     cfg,
		logger:  logger.Named("filler"),
		limiter: rate.NewLimiter(rate.Limit(fps), 1),
	}
}

// FillStep attempts every field in data that the analysis resolved. A field
// with no resolved control is recorded as skipped, not errored: absence on
// this page is a normal multi-step condition. The method never panics past
// its boundary; per-field failures accumulate in the outcome.
func (e *Executor) FillStep(ctx context.Context, session schemas.PageSession, analysis *schemas.PageAnalysis, data schemas.StepData) schemas.FillOutcome {
	start := time.Now()
	outcome := schemas.FillOutcome{}

	if analysis == nil || len(data) == 0 {
		outcome.Result = schemas.FillNone
		outcome.Duration = time.Since(start)
		return outcome
	}

	// Deterministic fill order keeps runs reproducible and logs comparable.
	types := make([]schemas.FieldType, 0, len(data))
	for t := range data {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	for _, fieldType := range types {
		value := data[fieldType]
		field, ok := analysis.Fields[fieldType]
		if !ok {
			outcome.Skipped = append(outcome.Skipped, fieldType)
			continue
		}

		if err := validateValue(field, value); err != nil {
			outcome.Attempted++
			outcome.Errors = append(outcome.Errors, fmt.Sprintf("%s: %v", fieldType, err))
			e.logger.Warn("Rejected value for field.",
				zap.String("field", string(fieldType)), zap.Error(err))
			continue
		}

		if err := e.limiter.Wait(ctx); err != nil {
			outcome.Errors = append(outcome.Errors, fmt.Sprintf("fill pacing interrupted: %v", err))
			break
		}

		outcome.Attempted++
		err := e.fillOne(ctx, session, field, value)
		if err != nil && schemas.IsTransient(err) {
			e.logger.Debug("Transient fill error; retrying once.",
				zap.String("field", string(fieldType)), zap.Error(err))
			err = e.fillOne(ctx, session, field, value)
		}
		if err != nil {
			outcome.Errors = append(outcome.Errors, fmt.Sprintf("%s: %v", fieldType, err))
			e.logger.Warn("Field fill failed.",
				zap.String("field", string(fieldType)),
				zap.String("selector", field.Selector),
				zap.Error(err))
			continue
		}

		outcome.Filled++
		e.logger.Debug("Filled field.",
			zap.String("field", string(fieldType)),
			zap.String("kind", string(field.Kind)),
			zap.String("selector", field.Selector))
	}

	switch {
	case outcome.Attempted > 0 && outcome.Filled == outcome.Attempted:
		outcome.Result = schemas.FillFull
	case outcome.Filled > 0:
		outcome.Result = schemas.FillPartial
	default:
		outcome.Result = schemas.FillNone
	}
	outcome.Duration = time.Since(start)

	e.logger.Info("Step fill complete.",
		zap.Int("attempted", outcome.Attempted),
		zap.Int("filled", outcome.Filled),
		zap.Int("skipped", len(outcome.Skipped)),
		zap.String("result", string(outcome.Result)),
		zap.Duration("duration", outcome.Duration))
	return outcome
}

// fillOne dispatches exhaustively on the element kind decided at extraction.
func (e *Executor) fillOne(ctx context.Context, session schemas.PageSession, field schemas.FieldDescriptor, value schemas.FieldValue) error {
	switch field.Kind {
	case schemas.KindTextLike:
		return e.fillTextLike(ctx, session, field, value.Text)
	case schemas.KindContentEditable:
		return e.fillTextLike(ctx, session, field, value.Text)
	case schemas.KindCheckbox:
		return e.fillCheckbox(ctx, session, field, value.Flag)
	case schemas.KindRadio:
		return e.fillRadio(ctx, session, field, value)
	case schemas.KindSelect:
		return e.fillSelect(ctx, session, field, value.Text)
	case schemas.KindFile:
		return e.fillFile(ctx, session, field, value.Path)
	case schemas.KindCustomWidget:
		return e.fillCustomWidget(ctx, session, field, value.Text)
	case schemas.KindActionButton:
		return fmt.Errorf("refusing to fill action button %q as a data field", field.Selector)
	default:
		return fmt.Errorf("unknown element kind %q", field.Kind)
	}
}

// validateValue rejects kind/value mismatches before touching the page.
func validateValue(field schemas.FieldDescriptor, value schemas.FieldValue) error {
	switch field.Kind {
	case schemas.KindFile:
		if value.Kind != schemas.ValueFile {
			return fmt.Errorf("file input requires a file value, got %q", value.Kind)
		}
		return checkUploadPath(value.Path)
	case schemas.KindCheckbox:
		if value.Kind != schemas.ValueFlag {
			return fmt.Errorf("checkbox requires a flag value, got %q", value.Kind)
		}
	case schemas.KindRadio:
		// Radios accept a flag or a non-empty text value; both mean "check".
		if value.Kind == schemas.ValueFile {
			return fmt.Errorf("radio cannot take a file value")
		}
	default:
		if value.Kind != schemas.ValueText {
			return fmt.Errorf("%s control requires a text value, got %q", field.Kind, value.Kind)
		}
	}
	return nil
}
