// api/schemas/interfaces.go
package schemas

import "context"

// PageSession is the navigable page handle consumed by the analyzer, the fill
// executor, the decision resolver and the orchestrator. The orchestrator holds
// exclusive ownership of it for the run's duration.
type PageSession interface {
	ID() string

	Navigate(ctx context.Context, url string) error
	CurrentURL(ctx context.Context) (string, error)

	// Evaluate runs a script in the page and unmarshals its JSON result into
	// out (out may be nil to discard the result).
	Evaluate(ctx context.Context, script string, out any) error

	Click(ctx context.Context, selector string) error
	TypeHuman(ctx context.Context, selector, text string) error
	SetValue(ctx context.Context, selector, value string) error
	Clear(ctx context.Context, selector string) error
	PressEnter(ctx context.Context, selector string) error
	UploadFile(ctx context.Context, selector, path string) error

	ElementState(ctx context.Context, selector string) (ElementState, error)

	// WaitStable blocks until the page is deemed settled (mutation-quiet and
	// network-idle) or the monitor's overall timeout elapses.
	WaitStable(ctx context.Context) error

	CaptureSnapshot(ctx context.Context) (*PageSnapshot, error)
	Screenshot(ctx context.Context) ([]byte, error)

	Close(ctx context.Context) error
}

// PageAnalyzer produces a fresh PageAnalysis for the session's current page.
type PageAnalyzer interface {
	Analyze(ctx context.Context, session PageSession) (*PageAnalysis, error)
}

// FillExecutor writes one step's data into the resolved controls.
type FillExecutor interface {
	FillStep(ctx context.Context, session PageSession, analysis *PageAnalysis, data StepData) FillOutcome
}

// DecisionResolver recognizes and auto-resolves known branch pages.
type DecisionResolver interface {
	// CheckAndResolve returns (handled, err). handled is true when a decision
	// point was detected and an option was successfully clicked.
	CheckAndResolve(ctx context.Context, session PageSession) (bool, error)
	Register(def DecisionPoint) error
}

// PreferenceStore persists decision choices and custom decision definitions
// across runs. Load is called once at startup; writes persist immediately.
type PreferenceStore interface {
	Load() error
	Choice(decisionName string) (string, bool)
	SaveChoice(decisionName, optionName string) error
	CustomDefinitions() []DecisionPoint
	AddCustomDefinition(def DecisionPoint) error
}

// RunStore persists completed application runs. Implementations must be safe
// to skip entirely (history is optional).
type RunStore interface {
	SaveRun(ctx context.Context, run *ApplicationRun) error
	Close()
}

// FieldAssist is an optional second-opinion classifier consulted for elements
// whose best heuristic score lands between the admission floor and the
// acceptance threshold.
type FieldAssist interface {
	SuggestType(ctx context.Context, attrs RawAttributes, candidates []FieldType) (FieldType, error)
}
