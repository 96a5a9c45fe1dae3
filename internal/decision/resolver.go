// internal/decision/resolver.go
package decision

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/SAIKIRANREDDY98/JH/api/schemas"
	"github.com/SAIKIRANREDDY98/JH/internal/browser"
)

// builtinDecisionPoints ship with the resolver. Custom points loaded from the
// preference store or registered at runtime are matched after these.
func builtinDecisionPoints() []schemas.DecisionPoint {
	return []schemas.DecisionPoint{
		{
			Name:        "application_method",
			Description: "Choose between resume-driven autofill and manual entry.",
			URLPatterns: []string{"apply/applicationMethod", "application-method"},
			TextIndicators: []string{
				"how would you like to apply",
				"autofill with resume",
				"apply manually",
			},
			ButtonTexts: []string{"autofill with resume", "apply manually"},
			Options: []schemas.DecisionOption{
				{
					Name:      "autofill_with_resume",
					Preferred: true,
					Selectors: []string{
						"a[data-automation-id='autofillWithResume']",
						"button[data-automation-id='autofillWithResume']",
						"[data-automation-id*='autofill']",
					},
				},
				{
					Name: "apply_manually",
					Selectors: []string{
						"a[data-automation-id='applyManually']",
						"button[data-automation-id='applyManually']",
						"[data-automation-id*='applyManually']",
					},
				},
			},
		},
		{
			Name:        "resume_parse_confirmation",
			Description: "Accept parsed resume data or re-upload.",
			TextIndicators: []string{
				"review your information",
				"we've filled in some information from your resume",
				"is this information correct",
			},
			ButtonTexts: []string{"continue", "re-upload", "upload a different"},
			Options: []schemas.DecisionOption{
				{
					Name:      "continue",
					Preferred: true,
					Selectors: []string{
						"button[data-automation-id='continueButton']",
						"button[data-automation-id='bottom-navigation-next-button']",
						"button[type='submit']",
					},
				},
				{
					Name: "reupload",
					Selectors: []string{
						"button[data-automation-id='reuploadButton']",
						"[data-automation-id*='reupload']",
					},
				},
			},
		},
	}
}

// Resolver detects known branching pages and clicks through them using
// persisted preferences, falling back to each point's default option.
type Resolver struct {
	store  schemas.PreferenceStore
	logger *zap.Logger
	points []schemas.DecisionPoint
}

var _ schemas.DecisionResolver = (*Resolver)(nil)

// NewResolver builds a resolver seeded with the built-in decision points plus
// any custom definitions already persisted in the store.
func NewResolver(store schemas.PreferenceStore, logger *zap.Logger) *Resolver {
	points := builtinDecisionPoints()
	points = append(points, store.CustomDefinitions()...)
	return &Resolver{
		store:  store,
		logger: logger.Named("decision"),
		points: points,
	}
}

// Register adds a decision point at runtime and persists it so future runs
// recognize the same page.
func (r *Resolver) Register(def schemas.DecisionPoint) error {
	if def.Name == "" {
		return fmt.Errorf("decision point must have a name")
	}
	if len(def.Options) == 0 {
		return fmt.Errorf("decision point %q has no options", def.Name)
	}
	if err := r.store.AddCustomDefinition(def); err != nil {
		return fmt.Errorf("failed to persist decision point %q: %w", def.Name, err)
	}
	for i, existing := range r.points {
		if existing.Name == def.Name {
			r.points[i] = def
			return nil
		}
	}
	r.points = append(r.points, def)
	return nil
}

// CheckAndResolve scans the current page against every known decision point
// and resolves the first match. Returns handled=true only when an option was
// actually clicked.
func (r *Resolver) CheckAndResolve(ctx context.Context, session schemas.PageSession) (bool, error) {
	snap, err := session.CaptureSnapshot(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to snapshot page for decision check: %w", err)
	}
	visibleText := strings.ToLower(browser.VisibleText(snap.HTML))
	currentURL := strings.ToLower(snap.URL)

	for _, point := range r.points {
		if !r.matches(point, currentURL, visibleText) {
			continue
		}
		r.logger.Info("Decision point detected.", zap.String("decision", point.Name))
		handled, err := r.resolve(ctx, session, point)
		if err != nil {
			return false, fmt.Errorf("failed to resolve decision %q: %w", point.Name, err)
		}
		return handled, nil
	}
	return false, nil
}

// matches requires a URL or text indicator hit plus at least half of the
// expected option button texts (minimum one) on the page.
func (r *Resolver) matches(point schemas.DecisionPoint, currentURL, visibleText string) bool {
	indicated := false
	for _, pattern := range point.URLPatterns {
		if pattern != "" && strings.Contains(currentURL, strings.ToLower(pattern)) {
			indicated = true
			break
		}
	}
	if !indicated {
		for _, ind := range point.TextIndicators {
			if ind != "" && strings.Contains(visibleText, strings.ToLower(ind)) {
				indicated = true
				break
			}
		}
	}
	if !indicated {
		return false
	}

	if len(point.ButtonTexts) == 0 {
		return true
	}
	found := 0
	for _, text := range point.ButtonTexts {
		if strings.Contains(visibleText, strings.ToLower(text)) {
			found++
		}
	}
	// Half of the expected texts, rounded up, must be visible.
	required := (len(point.ButtonTexts) + 1) / 2
	if required < 1 {
		required = 1
	}
	return found >= required
}

// resolve picks the option: stored preference first, then the point's
// default. The choice is persisted on a successful click.
func (r *Resolver) resolve(ctx context.Context, session schemas.PageSession, point schemas.DecisionPoint) (bool, error) {
	var chosen *schemas.DecisionOption
	if name, ok := r.store.Choice(point.Name); ok {
		for i := range point.Options {
			if point.Options[i].Name == name {
				chosen = &point.Options[i]
				r.logger.Debug("Using stored preference.",
					zap.String("decision", point.Name), zap.String("option", name))
				break
			}
		}
	}
	if chosen == nil {
		if opt, ok := point.PreferredOption(); ok {
			chosen = &opt
		}
	}
	if chosen == nil {
		r.logger.Warn("Decision point detected but unresolvable.",
			zap.String("decision", point.Name))
		return false, nil
	}

	clicked := false
	for _, selector := range chosen.Selectors {
		state, err := session.ElementState(ctx, selector)
		if err != nil || !state.Exists || !state.Visible || !state.Enabled {
			continue
		}
		if err := session.Click(ctx, selector); err != nil {
			r.logger.Debug("Decision option click failed; trying next candidate.",
				zap.String("selector", selector), zap.Error(err))
			continue
		}
		clicked = true
		break
	}
	if !clicked {
		return false, fmt.Errorf("no clickable selector for option %q", chosen.Name)
	}

	if err := r.store.SaveChoice(point.Name, chosen.Name); err != nil {
		r.logger.Warn("Failed to persist decision choice.",
			zap.String("decision", point.Name), zap.Error(err))
	}
	if err := session.WaitStable(ctx); err != nil {
		r.logger.Debug("Page never settled after decision click.", zap.Error(err))
	}

	r.logger.Info("Decision resolved.",
		zap.String("decision", point.Name), zap.String("option", chosen.Name))
	return true, nil
}
