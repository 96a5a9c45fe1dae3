package filler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SAIKIRANREDDY98/JH/api/schemas"
	"github.com/SAIKIRANREDDY98/JH/internal/config"
)

// mockSession records interactions and lets tests script per-selector
// behavior.
type mockSession struct {
	clicks    []string
	typed     map[string]string
	setValues map[string]string
	uploads   map[string]string
	cleared   []string

	states     map[string]schemas.ElementState
	failType   map[string]error
	failClick  map[string]error
	failUpload []error // consumed in order
	evalResult string
	evalErr    error
	evalLog    []string
}

func newMockSession() *mockSession {
	return &mockSession{
		typed:     make(map[string]string),
		setValues: make(map[string]string),
		uploads:   make(map[string]string),
		states:    make(map[string]schemas.ElementState),
		failType:  make(map[string]error),
		failClick: make(map[string]error),
	}
}

func (m *mockSession) ID() string                                     { return "mock" }
func (m *mockSession) Navigate(ctx context.Context, url string) error { return nil }
func (m *mockSession) CurrentURL(ctx context.Context) (string, error) { return "https://x", nil }

func (m *mockSession) Evaluate(ctx context.Context, script string, out any) error {
	m.evalLog = append(m.evalLog, script)
	if m.evalErr != nil {
		return m.evalErr
	}
	if s, ok := out.(*string); ok {
		*s = m.evalResult
	}
	return nil
}

func (m *mockSession) Click(ctx context.Context, sel string) error {
	if err := m.failClick[sel]; err != nil {
		return err
	}
	m.clicks = append(m.clicks, sel)
	// A successful click on a togglable control flips its recorded state.
	if st, ok := m.states[sel]; ok {
		st.Checked = !st.Checked
		m.states[sel] = st
	}
	return nil
}

func (m *mockSession) TypeHuman(ctx context.Context, sel, text string) error {
	if err := m.failType[sel]; err != nil {
		delete(m.failType, sel) // fail once
		return err
	}
	m.typed[sel] = text
	return nil
}

func (m *mockSession) SetValue(ctx context.Context, sel, v string) error {
	m.setValues[sel] = v
	return nil
}

func (m *mockSession) Clear(ctx context.Context, sel string) error {
	m.cleared = append(m.cleared, sel)
	return nil
}

func (m *mockSession) PressEnter(ctx context.Context, sel string) error { return nil }

func (m *mockSession) UploadFile(ctx context.Context, sel, path string) error {
	if len(m.failUpload) > 0 {
		err := m.failUpload[0]
		m.failUpload = m.failUpload[1:]
		if err != nil {
			return err
		}
	}
	m.uploads[sel] = path
	return nil
}

func (m *mockSession) ElementState(ctx context.Context, sel string) (schemas.ElementState, error) {
	if st, ok := m.states[sel]; ok {
		return st, nil
	}
	return schemas.ElementState{Exists: true, Visible: true, Enabled: true}, nil
}

func (m *mockSession) WaitStable(ctx context.Context) error { return nil }
func (m *mockSession) CaptureSnapshot(ctx context.Context) (*schemas.PageSnapshot, error) {
	return &schemas.PageSnapshot{}, nil
}
func (m *mockSession) Screenshot(ctx context.Context) ([]byte, error) { return nil, nil }
func (m *mockSession) Close(ctx context.Context) error                { return nil }

func testExecutor() *Executor {
	return New(config.FillerConfig{FieldsPerSecond: 1000}, zap.NewNop())
}

func analysisWith(fields ...schemas.FieldDescriptor) *schemas.PageAnalysis {
	analysis := &schemas.PageAnalysis{
		Fields: make(map[schemas.FieldType]schemas.FieldDescriptor),
	}
	for _, f := range fields {
		analysis.Fields[f.Type] = f
	}
	return analysis
}

func TestFillStepFullResult(t *testing.T) {
	session := newMockSession()
	analysis := analysisWith(
		schemas.FieldDescriptor{Type: schemas.FieldEmail, Kind: schemas.KindTextLike, Selector: "#email"},
		schemas.FieldDescriptor{Type: schemas.FieldFirstName, Kind: schemas.KindTextLike, Selector: "#first"},
	)
	data := schemas.StepData{
		schemas.FieldEmail:     schemas.TextValue("a@b.com"),
		schemas.FieldFirstName: schemas.TextValue("Ada"),
	}

	outcome := testExecutor().FillStep(context.Background(), session, analysis, data)

	assert.Equal(t, schemas.FillFull, outcome.Result)
	assert.Equal(t, 2, outcome.Attempted)
	assert.Equal(t, 2, outcome.Filled)
	assert.Equal(t, "a@b.com", session.typed["#email"])
	assert.Equal(t, "Ada", session.typed["#first"])
}

func TestFillStepMissingFieldIsSkippedNotErrored(t *testing.T) {
	session := newMockSession()
	analysis := analysisWith(
		schemas.FieldDescriptor{Type: schemas.FieldEmail, Kind: schemas.KindTextLike, Selector: "#email"},
	)
	data := schemas.StepData{
		schemas.FieldEmail: schemas.TextValue("a@b.com"),
		schemas.FieldPhone: schemas.TextValue("555-0100"),
	}

	outcome := testExecutor().FillStep(context.Background(), session, analysis, data)

	assert.Equal(t, schemas.FillFull, outcome.Result,
		"a field absent from the page must not degrade the result")
	assert.Equal(t, []schemas.FieldType{schemas.FieldPhone}, outcome.Skipped)
	assert.Empty(t, outcome.Errors)
}

func TestFillStepPartialAndNone(t *testing.T) {
	session := newMockSession()
	session.failType["#broken"] = errors.New("element vanished")
	session.failType["#broken2"] = errors.New("still broken") // consumed by retry path

	analysis := analysisWith(
		schemas.FieldDescriptor{Type: schemas.FieldEmail, Kind: schemas.KindTextLike, Selector: "#email"},
		schemas.FieldDescriptor{Type: schemas.FieldCity, Kind: schemas.KindSelect, Selector: "#broken-select"},
	)
	session.evalResult = "no_option"

	data := schemas.StepData{
		schemas.FieldEmail: schemas.TextValue("a@b.com"),
		schemas.FieldCity:  schemas.TextValue("Atlantis"),
	}
	outcome := testExecutor().FillStep(context.Background(), session, analysis, data)
	assert.Equal(t, schemas.FillPartial, outcome.Result)
	assert.Equal(t, 1, outcome.Filled)
	assert.Len(t, outcome.Errors, 1)

	empty := testExecutor().FillStep(context.Background(), session, analysis, schemas.StepData{})
	assert.Equal(t, schemas.FillNone, empty.Result)
}

func TestFillStepTransientErrorRetriedOnce(t *testing.T) {
	session := newMockSession()
	session.failType["#email"] = schemas.NewInteractionError(
		schemas.ErrNotFound, "type", "#email", errors.New("could not find node"))

	analysis := analysisWith(
		schemas.FieldDescriptor{Type: schemas.FieldEmail, Kind: schemas.KindTextLike, Selector: "#email"},
	)
	outcome := testExecutor().FillStep(context.Background(), session, analysis,
		schemas.StepData{schemas.FieldEmail: schemas.TextValue("a@b.com")})

	assert.Equal(t, schemas.FillFull, outcome.Result,
		"a transient failure must be retried and succeed")
	assert.Equal(t, "a@b.com", session.typed["#email"])
}

func TestCheckboxOnlyToggledWhenStateDiffers(t *testing.T) {
	session := newMockSession()
	session.states["#terms"] = schemas.ElementState{Exists: true, Visible: true, Enabled: true, Checked: true}

	analysis := analysisWith(
		schemas.FieldDescriptor{Type: schemas.FieldGenericCheckbox, Kind: schemas.KindCheckbox, Selector: "#terms"},
	)
	outcome := testExecutor().FillStep(context.Background(), session, analysis,
		schemas.StepData{schemas.FieldGenericCheckbox: schemas.FlagValue(true)})

	assert.Equal(t, schemas.FillFull, outcome.Result)
	assert.Empty(t, session.clicks, "an already-checked box must not be clicked")

	// Now the desired state differs.
	outcome = testExecutor().FillStep(context.Background(), session, analysis,
		schemas.StepData{schemas.FieldGenericCheckbox: schemas.FlagValue(false)})
	assert.Equal(t, schemas.FillFull, outcome.Result)
	assert.Equal(t, []string{"#terms"}, session.clicks)
}

func TestRadioNeverUnchecked(t *testing.T) {
	session := newMockSession()
	session.states["#yes"] = schemas.ElementState{Exists: true, Visible: true, Enabled: true, Checked: true}

	analysis := analysisWith(
		schemas.FieldDescriptor{Type: schemas.FieldGenericRadio, Kind: schemas.KindRadio, Selector: "#yes"},
	)

	// A falsy value is a no-op, not an uncheck.
	outcome := testExecutor().FillStep(context.Background(), session, analysis,
		schemas.StepData{schemas.FieldGenericRadio: schemas.FlagValue(false)})
	assert.Equal(t, schemas.FillFull, outcome.Result)
	assert.Empty(t, session.clicks)
	assert.True(t, session.states["#yes"].Checked)
}

func TestFileValueValidation(t *testing.T) {
	session := newMockSession()
	analysis := analysisWith(
		schemas.FieldDescriptor{Type: schemas.FieldResumeFile, Kind: schemas.KindFile, Selector: "#resume"},
	)

	// Missing file: rejected before any browser interaction.
	outcome := testExecutor().FillStep(context.Background(), session, analysis,
		schemas.StepData{schemas.FieldResumeFile: schemas.FileValue("/nonexistent/resume.pdf")})
	assert.Equal(t, schemas.FillNone, outcome.Result)
	assert.Empty(t, session.uploads)

	// Wrong value kind for a file input.
	outcome = testExecutor().FillStep(context.Background(), session, analysis,
		schemas.StepData{schemas.FieldResumeFile: schemas.TextValue("resume.pdf")})
	assert.Equal(t, schemas.FillNone, outcome.Result)

	// A real file uploads.
	path := filepath.Join(t.TempDir(), "resume.pdf")
	require.NoError(t, os.WriteFile(path, []byte("pdf"), 0o644))
	outcome = testExecutor().FillStep(context.Background(), session, analysis,
		schemas.StepData{schemas.FieldResumeFile: schemas.FileValue(path)})
	assert.Equal(t, schemas.FillFull, outcome.Result)
	assert.Equal(t, path, session.uploads["#resume"])
}

func TestFileUploadForceRevealsOnNotInteractable(t *testing.T) {
	session := newMockSession()
	session.failUpload = []error{schemas.NewInteractionError(
		schemas.ErrNotInteractable, "upload", "#resume", errors.New("element not visible"))}
	session.evalResult = "ok"

	path := filepath.Join(t.TempDir(), "resume.pdf")
	require.NoError(t, os.WriteFile(path, []byte("pdf"), 0o644))

	analysis := analysisWith(
		schemas.FieldDescriptor{Type: schemas.FieldResumeFile, Kind: schemas.KindFile, Selector: "#resume"},
	)
	outcome := testExecutor().FillStep(context.Background(), session, analysis,
		schemas.StepData{schemas.FieldResumeFile: schemas.FileValue(path)})

	assert.Equal(t, schemas.FillFull, outcome.Result)
	assert.Equal(t, path, session.uploads["#resume"])
	require.NotEmpty(t, session.evalLog, "the reveal script must have run")
}

func TestTextLikeFallsBackToSetValue(t *testing.T) {
	session := newMockSession()
	// Both type attempts fail (initial and post-transient retry is not
	// triggered: plain errors are not transient).
	session.failType["#editor"] = errors.New("typing rejected")

	analysis := analysisWith(
		schemas.FieldDescriptor{Type: schemas.FieldCoverLetterText, Kind: schemas.KindContentEditable, Selector: "#editor"},
	)
	outcome := testExecutor().FillStep(context.Background(), session, analysis,
		schemas.StepData{schemas.FieldCoverLetterText: schemas.TextValue("Dear team,")})

	assert.Equal(t, schemas.FillFull, outcome.Result)
	assert.Equal(t, "Dear team,", session.setValues["#editor"])
}
