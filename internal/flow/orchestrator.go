// internal/flow/orchestrator.go
package flow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SAIKIRANREDDY98/JH/api/schemas"
	"github.com/SAIKIRANREDDY98/JH/internal/browser"
	"github.com/SAIKIRANREDDY98/JH/internal/config"
)

// Orchestrator drives a full application flow over one page session:
// landing, apply hop, decision points, login, then the per-step analyze,
// fill and navigate loop. It always returns an ApplicationRun, even on the
// worst failure paths.
type Orchestrator struct {
	cfg      config.FlowConfig
	decision config.DecisionConfig
	logger   *zap.Logger

	analyzer schemas.PageAnalyzer
	filler   schemas.FillExecutor
	resolver schemas.DecisionResolver
	history  schemas.RunStore // optional
}

// New validates the required collaborators. history may be nil; runs are then
// not recorded.
func New(cfg config.FlowConfig, decisionCfg config.DecisionConfig, analyzer schemas.PageAnalyzer, filler schemas.FillExecutor, resolver schemas.DecisionResolver, history schemas.RunStore, logger *zap.Logger) (*Orchestrator, error) {
	if analyzer == nil {
		return nil, fmt.Errorf("orchestrator requires a page analyzer")
	}
	if filler == nil {
		return nil, fmt.Errorf("orchestrator requires a fill executor")
	}
	if resolver == nil {
		return nil, fmt.Errorf("orchestrator requires a decision resolver")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		cfg:      cfg,
		decision: decisionCfg,
		logger:   logger.Named("flow"),
		analyzer: analyzer,
		filler:   filler,
		resolver: resolver,
		history:  history,
	}, nil
}

// Run executes the flow against targetURL with the given profile. The
// returned run's Status is one of the terminal status codes; err is non-nil
// only when the status is a failure.
func (o *Orchestrator) Run(ctx context.Context, session schemas.PageSession, targetURL string, profile *schemas.Profile) (run *schemas.ApplicationRun, err error) {
	run = &schemas.ApplicationRun{
		ID:        uuid.NewString(),
		TargetURL: targetURL,
		StartedAt: time.Now().UTC(),
	}
	logger := o.logger.With(zap.String("run_id", run.ID))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Flow panicked.", zap.Any("panic", r))
			run.Status = schemas.StatusErrorCritical
			run.Errors = append(run.Errors, fmt.Sprintf("panic: %v", r))
			err = fmt.Errorf("flow panicked: %v", r)
		}
		run.FinishedAt = time.Now().UTC()
		o.record(run, logger)
	}()

	if profile == nil || len(profile.Steps) == 0 {
		return o.fail(ctx, session, run, 0, "empty_profile", fmt.Errorf("profile has no step data"), logger)
	}

	logger.Info("Starting application flow.",
		zap.String("url", targetURL), zap.Int("data_steps", len(profile.Steps)))

	// Landing: navigate and clear the page of overlays before any analysis.
	if navErr := session.Navigate(ctx, targetURL); navErr != nil {
		return o.fail(ctx, session, run, 0, "landing_navigation", navErr, logger)
	}
	if gateErr := o.clearGates(ctx, session, logger); gateErr != nil {
		return o.fail(ctx, session, run, 0, "captcha_unsolved", gateErr, logger)
	}

	// Apply hop: a standalone job page often needs a click through to the
	// actual form. Absence of an apply button is not a failure.
	analysis, aErr := o.analyzer.Analyze(ctx, session)
	if aErr != nil {
		return o.fail(ctx, session, run, 0, "landing_analysis", aErr, logger)
	}
	if applied := o.applyHop(ctx, session, analysis, logger); applied {
		if gateErr := o.clearGates(ctx, session, logger); gateErr != nil {
			return o.fail(ctx, session, run, 0, "captcha_unsolved", gateErr, logger)
		}
		analysis = nil
	}

	// Decision points: bounded so a misdetected page cannot loop forever.
	maxAttempts := o.decision.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 3
	}
	for attempt := 0; attempt < maxAttempts; attempt++ {
		handled, dErr := o.resolver.CheckAndResolve(ctx, session)
		if dErr != nil {
			logger.Warn("Decision resolution failed.", zap.Error(dErr))
			break
		}
		if !handled {
			break
		}
		analysis = nil
		if gateErr := o.clearGates(ctx, session, logger); gateErr != nil {
			return o.fail(ctx, session, run, 0, "captcha_unsolved", gateErr, logger)
		}
	}

	// Login: a credential wall before the form is resolved once; failing it
	// is terminal since no later state can succeed.
	if analysis == nil {
		if analysis, aErr = o.analyzer.Analyze(ctx, session); aErr != nil {
			return o.fail(ctx, session, run, 0, "pre_login_analysis", aErr, logger)
		}
	}
	if analysis.Purpose == schemas.PurposeLogin {
		if lErr := browser.PerformLogin(ctx, session, analysis, profile.LoginEmail, profile.LoginPassword, logger); lErr != nil {
			return o.fail(ctx, session, run, 0, "login", lErr, logger)
		}
		if gateErr := o.clearGates(ctx, session, logger); gateErr != nil {
			return o.fail(ctx, session, run, 0, "captcha_unsolved", gateErr, logger)
		}
		analysis = nil
	}

	return o.stepLoop(ctx, session, run, profile, analysis, logger)
}

// stepLoop walks the profile's data steps: analyze, fill, then submit or
// advance. The final data step is submitted; earlier steps navigate forward.
func (o *Orchestrator) stepLoop(ctx context.Context, session schemas.PageSession, run *schemas.ApplicationRun, profile *schemas.Profile, analysis *schemas.PageAnalysis, logger *zap.Logger) (*schemas.ApplicationRun, error) {
	for i, data := range profile.Steps {
		stepNum := i + 1
		lastStep := i == len(profile.Steps)-1

		if analysis == nil {
			var err error
			if analysis, err = o.analyzer.Analyze(ctx, session); err != nil {
				return o.fail(ctx, session, run, stepNum, "analysis", err, logger)
			}
		}
		logger.Info("Processing data step.",
			zap.Int("step", stepNum),
			zap.String("purpose", string(analysis.Purpose)),
			zap.Int("resolved_fields", len(analysis.Fields)),
			zap.Bool("multi_step_ui", analysis.Steps.MultiStep))

		outcome := o.filler.FillStep(ctx, session, analysis, data)
		run.Steps = append(run.Steps, schemas.StepOutcome{
			Index:   stepNum,
			URL:     analysis.URL,
			Purpose: analysis.Purpose,
			Outcome: outcome,
		})
		run.TotalFilled += outcome.Filled

		actionButtons := countActionButtons(analysis)
		if outcome.Attempted == 0 && actionButtons == 0 && !lastStep {
			// Nothing recognized and nowhere to go: the page does not match
			// the profile at all.
			return o.fail(ctx, session, run, stepNum, "dead_page", fmt.Errorf("no fillable fields and no action buttons"), logger)
		}
		if outcome.Result == schemas.FillNone && outcome.Attempted > 0 && !lastStep {
			// Every attempted field failed; advancing would submit an empty
			// step.
			return o.fail(ctx, session, run, stepNum, "fill_none", fmt.Errorf("attempted %d field(s), filled none", outcome.Attempted), logger)
		}

		if lastStep {
			submitted, err := o.submitStep(ctx, session, analysis, logger)
			if err != nil {
				return o.fail(ctx, session, run, stepNum, "submit", err, logger)
			}
			if submitted {
				run.Status = schemas.StatusSubmissionAttempted
			} else {
				run.Status = schemas.StatusCompletedAllDataSteps
			}
			logger.Info("Flow finished.",
				zap.String("status", run.Status), zap.Int("total_filled", run.TotalFilled))
			return run, nil
		}

		if err := o.advanceStep(ctx, session, analysis, logger); err != nil {
			return o.fail(ctx, session, run, stepNum, "navigation", err, logger)
		}
		if gateErr := o.clearGates(ctx, session, logger); gateErr != nil {
			return o.fail(ctx, session, run, stepNum, "captcha_unsolved", gateErr, logger)
		}
		analysis = nil
	}

	// Unreachable with a non-empty profile; kept so the compiler sees every
	// path produce a run.
	run.Status = schemas.StatusCompletedAllDataSteps
	return run, nil
}

// applyHop clicks an apply-intent button when the landing page has one.
func (o *Orchestrator) applyHop(ctx context.Context, session schemas.PageSession, analysis *schemas.PageAnalysis, logger *zap.Logger) bool {
	buttons := analysis.Buttons[schemas.IntentApply]
	if len(buttons) == 0 {
		return false
	}
	button := buttons[0]
	logger.Info("Clicking through to the application form.",
		zap.String("button", button.Text), zap.String("selector", button.Selector))
	if err := session.Click(ctx, button.Selector); err != nil {
		logger.Warn("Apply click failed; continuing on the current page.", zap.Error(err))
		return false
	}
	if err := session.WaitStable(ctx); err != nil {
		logger.Debug("Page never settled after apply click.", zap.Error(err))
	}
	return true
}

// advanceStep clicks the forward control for a non-final step: next intent
// first, then the submit family (multi-step flows frequently label the
// forward control Save and Continue or similar).
func (o *Orchestrator) advanceStep(ctx context.Context, session schemas.PageSession, analysis *schemas.PageAnalysis, logger *zap.Logger) error {
	button := pickButton(analysis, schemas.IntentNext, schemas.IntentSubmit)
	if button == nil {
		return fmt.Errorf("no forward control on a non-final step")
	}
	logger.Info("Advancing to the next step.",
		zap.String("button", button.Text), zap.String("selector", button.Selector))
	if err := session.Click(ctx, button.Selector); err != nil {
		return fmt.Errorf("forward click failed: %w", err)
	}
	if err := session.WaitStable(ctx); err != nil {
		logger.Debug("Page never settled after step advance.", zap.Error(err))
	}
	return nil
}

// submitStep clicks the final submission control. An apply-intent button is
// acceptable here: "Submit Application" pages classify that way. Returns
// false without error when the page has no submission control at all.
func (o *Orchestrator) submitStep(ctx context.Context, session schemas.PageSession, analysis *schemas.PageAnalysis, logger *zap.Logger) (bool, error) {
	button := pickButton(analysis, schemas.IntentSubmit, schemas.IntentApply, schemas.IntentNext)
	if button == nil {
		logger.Warn("All data entered but no submission control found.")
		return false, nil
	}
	logger.Info("Submitting application.",
		zap.String("button", button.Text), zap.String("selector", button.Selector))
	if err := session.Click(ctx, button.Selector); err != nil {
		return false, fmt.Errorf("submission click failed: %w", err)
	}
	if err := session.WaitStable(ctx); err != nil {
		logger.Debug("Page never settled after submission.", zap.Error(err))
	}
	return true, nil
}

// clearGates runs after every navigation: if a captcha is up, wait the
// configured window for a human; then sweep dismissible overlays.
func (o *Orchestrator) clearGates(ctx context.Context, session schemas.PageSession, logger *zap.Logger) error {
	present, err := browser.DetectCaptcha(ctx, session)
	if err != nil {
		logger.Debug("Captcha probe failed; assuming none.", zap.Error(err))
	} else if present {
		if err := browser.WaitForManualSolve(ctx, session, o.cfg.CaptchaWait, logger); err != nil {
			return err
		}
	}
	if dismissed := browser.DismissPopups(ctx, session, logger); dismissed > 0 {
		logger.Debug("Dismissed overlays.", zap.Int("count", dismissed))
	}
	return nil
}

// fail stamps the terminal failure status, captures artifacts and returns
// the run alongside the causing error.
func (o *Orchestrator) fail(ctx context.Context, session schemas.PageSession, run *schemas.ApplicationRun, step int, reason string, cause error, logger *zap.Logger) (*schemas.ApplicationRun, error) {
	run.Status = failStatus(step, reason)
	run.Errors = append(run.Errors, cause.Error())
	logger.Error("Flow failed.",
		zap.String("status", run.Status), zap.Error(cause))

	if session != nil && o.cfg.ArtifactsDir != "" {
		label := fmt.Sprintf("%s_%s", run.ID, reason)
		if path, err := browser.SaveScreenshot(ctx, session, o.cfg.ArtifactsDir, label); err == nil {
			run.Screenshots = append(run.Screenshots, path)
		} else {
			browser.CaptureFailureArtifacts(ctx, session, o.cfg.ArtifactsDir, label, logger)
		}
	}
	return run, cause
}

func (o *Orchestrator) record(run *schemas.ApplicationRun, logger *zap.Logger) {
	if o.history == nil {
		return
	}
	saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := o.history.SaveRun(saveCtx, run); err != nil {
		logger.Warn("Failed to record run history.", zap.Error(err))
	}
}

func pickButton(analysis *schemas.PageAnalysis, intents ...schemas.ButtonIntent) *schemas.ButtonDescriptor {
	for _, intent := range intents {
		if buttons := analysis.Buttons[intent]; len(buttons) > 0 {
			return &buttons[0]
		}
	}
	return nil
}

func countActionButtons(analysis *schemas.PageAnalysis) int {
	n := 0
	for intent, buttons := range analysis.Buttons {
		if intent == schemas.IntentNone {
			continue
		}
		n += len(buttons)
	}
	return n
}
