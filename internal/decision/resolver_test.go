package decision

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SAIKIRANREDDY98/JH/api/schemas"
)

// stubPage serves a fixed snapshot and records clicks; only the selectors in
// clickable resolve to a visible element.
type stubPage struct {
	url       string
	html      string
	clickable map[string]bool
	clicks    []string
}

func (s *stubPage) ID() string                                             { return "stub" }
func (s *stubPage) Navigate(ctx context.Context, url string) error         { return nil }
func (s *stubPage) CurrentURL(ctx context.Context) (string, error)         { return s.url, nil }
func (s *stubPage) Evaluate(ctx context.Context, sc string, out any) error { return nil }
func (s *stubPage) TypeHuman(ctx context.Context, sel, t string) error     { return nil }
func (s *stubPage) SetValue(ctx context.Context, sel, v string) error      { return nil }
func (s *stubPage) Clear(ctx context.Context, sel string) error            { return nil }
func (s *stubPage) PressEnter(ctx context.Context, sel string) error       { return nil }
func (s *stubPage) UploadFile(ctx context.Context, sel, p string) error    { return nil }
func (s *stubPage) WaitStable(ctx context.Context) error                   { return nil }
func (s *stubPage) Screenshot(ctx context.Context) ([]byte, error)         { return nil, nil }
func (s *stubPage) Close(ctx context.Context) error                        { return nil }

func (s *stubPage) Click(ctx context.Context, sel string) error {
	s.clicks = append(s.clicks, sel)
	return nil
}

func (s *stubPage) ElementState(ctx context.Context, sel string) (schemas.ElementState, error) {
	if s.clickable[sel] {
		return schemas.ElementState{Exists: true, Visible: true, Enabled: true}, nil
	}
	return schemas.ElementState{}, nil
}

func (s *stubPage) CaptureSnapshot(ctx context.Context) (*schemas.PageSnapshot, error) {
	return &schemas.PageSnapshot{URL: s.url, HTML: s.html}, nil
}

const methodPageHTML = `<html><body>
  <h1>How would you like to apply?</h1>
  <a data-automation-id="autofillWithResume">Autofill with Resume</a>
  <a data-automation-id="applyManually">Apply Manually</a>
</body></html>`

func newTestResolver(t *testing.T) (*Resolver, *PrefStore) {
	t.Helper()
	store, err := NewPrefStore(filepath.Join(t.TempDir(), "prefs.json"), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, store.Load())
	return NewResolver(store, zap.NewNop()), store
}

func TestCheckAndResolveBuiltinMethodPage(t *testing.T) {
	resolver, store := newTestResolver(t)
	page := &stubPage{
		url:  "https://ats.example.com/jobs/apply/applicationMethod",
		html: methodPageHTML,
		clickable: map[string]bool{
			"a[data-automation-id='autofillWithResume']": true,
		},
	}

	handled, err := resolver.CheckAndResolve(context.Background(), page)
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, []string{"a[data-automation-id='autofillWithResume']"}, page.clicks)

	// The default choice must now be persisted for future runs.
	choice, ok := store.Choice("application_method")
	require.True(t, ok)
	assert.Equal(t, "autofill_with_resume", choice)
}

func TestCheckAndResolveStoredPreferenceWins(t *testing.T) {
	resolver, store := newTestResolver(t)
	require.NoError(t, store.SaveChoice("application_method", "apply_manually"))

	page := &stubPage{
		url:  "https://ats.example.com/jobs/apply/applicationMethod",
		html: methodPageHTML,
		clickable: map[string]bool{
			"a[data-automation-id='autofillWithResume']": true,
			"a[data-automation-id='applyManually']":      true,
		},
	}

	handled, err := resolver.CheckAndResolve(context.Background(), page)
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, []string{"a[data-automation-id='applyManually']"}, page.clicks)
}

func TestCheckAndResolveRequiresButtonQuorum(t *testing.T) {
	resolver, _ := newTestResolver(t)
	// The URL matches but neither expected option text is present.
	page := &stubPage{
		url:  "https://ats.example.com/jobs/apply/applicationMethod",
		html: `<html><body><h1>Something unrelated</h1></body></html>`,
	}

	handled, err := resolver.CheckAndResolve(context.Background(), page)
	require.NoError(t, err)
	assert.False(t, handled)
	assert.Empty(t, page.clicks)
}

func TestMatchesQuorumRoundsUp(t *testing.T) {
	resolver, _ := newTestResolver(t)
	point := schemas.DecisionPoint{
		Name:        "terms_gate",
		URLPatterns: []string{"terms-gate"},
		ButtonTexts: []string{"accept all", "decline", "customize"},
	}

	// One of three texts present: below the rounded-up half of 2.
	assert.False(t, resolver.matches(point, "https://ats.example.com/terms-gate",
		"please review accept all before continuing"))

	// Two of three present meets the quorum.
	assert.True(t, resolver.matches(point, "https://ats.example.com/terms-gate",
		"accept all or decline the optional items"))

	// A single expected text still needs that one text.
	single := schemas.DecisionPoint{
		Name:        "single",
		URLPatterns: []string{"terms-gate"},
		ButtonTexts: []string{"continue"},
	}
	assert.False(t, resolver.matches(single, "https://ats.example.com/terms-gate", "unrelated"))
	assert.True(t, resolver.matches(single, "https://ats.example.com/terms-gate", "continue below"))
}

func TestCheckAndResolveNoMatchOnOrdinaryPage(t *testing.T) {
	resolver, _ := newTestResolver(t)
	page := &stubPage{
		url:  "https://jobs.example.com/listing/123",
		html: `<html><body><form><input name="email"></form></body></html>`,
	}

	handled, err := resolver.CheckAndResolve(context.Background(), page)
	require.NoError(t, err)
	assert.False(t, handled)
}

func TestCheckAndResolveSelectorFallthrough(t *testing.T) {
	resolver, _ := newTestResolver(t)
	// The first selector candidate is absent; the second resolves.
	page := &stubPage{
		url:  "https://ats.example.com/jobs/apply/applicationMethod",
		html: methodPageHTML,
		clickable: map[string]bool{
			"button[data-automation-id='autofillWithResume']": true,
		},
	}

	handled, err := resolver.CheckAndResolve(context.Background(), page)
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, []string{"button[data-automation-id='autofillWithResume']"}, page.clicks)
}

func TestRegisterCustomDecisionPoint(t *testing.T) {
	resolver, store := newTestResolver(t)

	def := schemas.DecisionPoint{
		Name:           "cookie_choice_wall",
		TextIndicators: []string{"we value your privacy"},
		Options: []schemas.DecisionOption{
			{Name: "reject_all", Selectors: []string{"#reject-all"}, Preferred: true},
		},
	}
	require.NoError(t, resolver.Register(def))
	assert.Len(t, store.CustomDefinitions(), 1)

	page := &stubPage{
		url:       "https://example.com",
		html:      `<html><body><p>We value your privacy.</p><button id="reject-all">Reject All</button></body></html>`,
		clickable: map[string]bool{"#reject-all": true},
	}
	handled, err := resolver.CheckAndResolve(context.Background(), page)
	require.NoError(t, err)
	assert.True(t, handled)
}

func TestRegisterValidation(t *testing.T) {
	resolver, _ := newTestResolver(t)
	assert.Error(t, resolver.Register(schemas.DecisionPoint{}))
	assert.Error(t, resolver.Register(schemas.DecisionPoint{Name: "no_options"}))
}
