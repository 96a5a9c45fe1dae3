// api/schemas/types.go
package schemas

import (
	"time"
)

// FieldType is the closed set of semantic roles a form control can be
// classified as. The string values double as stable keys in profile files,
// preference files and the run-history store.
type FieldType string

const (
	FieldEmail           FieldType = "email"
	FieldPassword        FieldType = "password"
	FieldFirstName       FieldType = "first_name"
	FieldLastName        FieldType = "last_name"
	FieldFullName        FieldType = "full_name"
	FieldPhone           FieldType = "phone"
	FieldAddress         FieldType = "address"
	FieldCity            FieldType = "city"
	FieldState           FieldType = "state"
	FieldZipCode         FieldType = "zip_code"
	FieldCountry         FieldType = "country"
	FieldCompany         FieldType = "company"
	FieldJobTitle        FieldType = "job_title"
	FieldYearsExperience FieldType = "years_experience"
	FieldSchool          FieldType = "school"
	FieldDegree          FieldType = "degree"
	FieldFieldOfStudy    FieldType = "field_of_study"
	FieldGraduationDate  FieldType = "graduation_date"
	FieldLinkedInURL     FieldType = "linkedin_url"
	FieldPortfolioURL    FieldType = "portfolio_url"
	FieldWebsiteURL      FieldType = "website_url"
	FieldCoverLetterText FieldType = "cover_letter_text"
	FieldResumeFile      FieldType = "resume_file"
	FieldCoverLetterFile FieldType = "cover_letter_file"
	FieldGenericText     FieldType = "generic_text"
	FieldGenericSelect   FieldType = "generic_select"
	FieldGenericCheckbox FieldType = "generic_checkbox"
	FieldGenericRadio    FieldType = "generic_radio"
	FieldGenericTextarea FieldType = "generic_textarea"
	FieldSubmitButton    FieldType = "submit_button"
	FieldNextButton      FieldType = "next_button"
	FieldUnknown         FieldType = "unknown"
)

// AllFieldTypes enumerates every classifiable type, in scoring order.
// Buttons and FieldUnknown are excluded; action-like elements take the
// intent-classification path instead.
func AllFieldTypes() []FieldType {
	return []FieldType{
		FieldEmail, FieldPassword, FieldFirstName, FieldLastName, FieldFullName,
		FieldPhone, FieldAddress, FieldCity, FieldState, FieldZipCode, FieldCountry,
		FieldCompany, FieldJobTitle, FieldYearsExperience,
		FieldSchool, FieldDegree, FieldFieldOfStudy, FieldGraduationDate,
		FieldLinkedInURL, FieldPortfolioURL, FieldWebsiteURL,
		FieldCoverLetterText, FieldResumeFile, FieldCoverLetterFile,
		FieldGenericText, FieldGenericSelect, FieldGenericCheckbox,
		FieldGenericRadio, FieldGenericTextarea,
	}
}

// ElementKind is the closed interaction taxonomy decided once at extraction
// time. The fill executor dispatches exhaustively over it.
type ElementKind string

const (
	KindTextLike        ElementKind = "text_like"
	KindCheckbox        ElementKind = "checkbox"
	KindRadio           ElementKind = "radio"
	KindSelect          ElementKind = "select"
	KindFile            ElementKind = "file"
	KindCustomWidget    ElementKind = "custom_widget"
	KindContentEditable ElementKind = "content_editable"
	KindActionButton    ElementKind = "action_button"
)

// ButtonIntent classifies action-like elements.
type ButtonIntent string

const (
	IntentSubmit ButtonIntent = "submit"
	IntentNext   ButtonIntent = "next"
	IntentApply  ButtonIntent = "apply"
	IntentNone   ButtonIntent = "none"
)

// FormPurpose is the inferred overall purpose of the analyzed page.
type FormPurpose string

const (
	PurposeJobApplication FormPurpose = "job_application"
	PurposeLogin          FormPurpose = "login"
	PurposeRegistration   FormPurpose = "registration"
	PurposeContact        FormPurpose = "contact"
	PurposeGeneralForm    FormPurpose = "general_form"
)

// RawAttributes is the normalized attribute bundle extracted from one
// candidate element. All values are taken verbatim from the DOM; matching
// against them is always case-insensitive downstream.
type RawAttributes struct {
	Tag             string `json:"tag"`
	InputType       string `json:"input_type"`
	Name            string `json:"name"`
	ID              string `json:"id"`
	Class           string `json:"class"`
	Placeholder     string `json:"placeholder"`
	AriaLabel       string `json:"aria_label"`
	AriaLabelledBy  string `json:"aria_labelledby"`
	AriaDescribedBy string `json:"aria_describedby"`
	Role            string `json:"role"`
	Autocomplete    string `json:"autocomplete"`
	AutomationID    string `json:"automation_id"`
	Required        bool   `json:"required"`
	Value           string `json:"value"`
	Text            string `json:"text"`
	LabelText       string `json:"label_text"`
	ContextText     string `json:"context_text"`
	Editable        bool   `json:"editable"`
	Visible         bool   `json:"visible"`
	Enabled         bool   `json:"enabled"`
}

// FieldDescriptor is the resolved classification of one control. Identity for
// re-acquisition is Selector (scoped to Generation), never a live node
// reference; the live element is re-resolved lazily at interaction time.
type FieldDescriptor struct {
	Type       FieldType     `json:"type"`
	Kind       ElementKind   `json:"kind"`
	Confidence float64       `json:"confidence"`
	Selector   string        `json:"selector"`
	Label      string        `json:"label"`
	Context    string        `json:"context"`
	Attributes RawAttributes `json:"attributes"`
}

// ButtonDescriptor is an action-like element with a classified intent.
// Duplicate buttons with the same intent may coexist on a page.
type ButtonDescriptor struct {
	Intent   ButtonIntent `json:"intent"`
	Selector string       `json:"selector"`
	Text     string       `json:"text"`
}

// StepIndicator reports detected multi-step UI structure.
type StepIndicator struct {
	MultiStep bool `json:"multi_step"`
	Current   int  `json:"current"`
	Total     int  `json:"total"`
}

// PageAnalysis is the per-page snapshot produced by one analysis pass. It is
// the page-scoped arena: its selectors are valid only for the Generation they
// were captured in and the whole value is discarded on navigation.
type PageAnalysis struct {
	Generation int                                 `json:"generation"`
	URL        string                              `json:"url"`
	Fields     map[FieldType]FieldDescriptor       `json:"fields"`
	Buttons    map[ButtonIntent][]ButtonDescriptor `json:"buttons"`
	Purpose    FormPurpose                         `json:"purpose"`
	Steps      StepIndicator                       `json:"steps"`
	Errors     []string                            `json:"errors,omitempty"`
	AnalyzedAt time.Time                           `json:"analyzed_at"`
}

// ValueKind tags a profile value.
type ValueKind string

const (
	ValueText ValueKind = "text"
	ValueFlag ValueKind = "flag"
	ValueFile ValueKind = "file"
)

// FieldValue is one caller-supplied datum for a semantic field.
type FieldValue struct {
	Kind ValueKind `json:"kind"`
	Text string    `json:"text,omitempty"`
	Flag bool      `json:"flag,omitempty"`
	Path string    `json:"path,omitempty"`
}

func TextValue(s string) FieldValue    { return FieldValue{Kind: ValueText, Text: s} }
func FlagValue(b bool) FieldValue      { return FieldValue{Kind: ValueFlag, Flag: b} }
func FileValue(path string) FieldValue { return FieldValue{Kind: ValueFile, Path: path} }

// StepData is the data record for one page of the flow.
type StepData map[FieldType]FieldValue

// FillResult is the tri-state outcome of filling one step.
type FillResult string

const (
	FillFull    FillResult = "full"
	FillPartial FillResult = "partial"
	FillNone    FillResult = "none"
)

// FillOutcome is the per-step fill report.
type FillOutcome struct {
	Attempted int           `json:"attempted"`
	Filled    int           `json:"filled"`
	Skipped   []FieldType   `json:"skipped,omitempty"`
	Errors    []string      `json:"errors,omitempty"`
	Result    FillResult    `json:"result"`
	Duration  time.Duration `json:"duration"`
}

// StepOutcome pairs a fill outcome with its position in the flow.
type StepOutcome struct {
	Index   int         `json:"index"`
	URL     string      `json:"url"`
	Purpose FormPurpose `json:"purpose"`
	Outcome FillOutcome `json:"outcome"`
}

// Terminal status codes for an ApplicationRun.
const (
	StatusSubmissionAttempted   = "submission_attempted"
	StatusCompletedAllDataSteps = "completed_all_data_steps"
	StatusErrorCritical         = "error_critical"
)

// ApplicationRun is the aggregate result of one end-to-end flow. It is always
// returned from the entry point, never abandoned to a propagating failure.
type ApplicationRun struct {
	ID          string        `json:"id"`
	TargetURL   string        `json:"target_url"`
	Steps       []StepOutcome `json:"steps"`
	TotalFilled int           `json:"total_filled"`
	Status      string        `json:"status"`
	Errors      []string      `json:"errors,omitempty"`
	Screenshots []string      `json:"screenshots,omitempty"`
	StartedAt   time.Time     `json:"started_at"`
	FinishedAt  time.Time     `json:"finished_at"`
}

// DecisionOption is one selectable choice at a decision point.
type DecisionOption struct {
	Name      string   `json:"name"`
	Selectors []string `json:"selectors"`
	Preferred bool     `json:"preferred"`
}

// DecisionPoint describes a recognized branching page and how to resolve it.
type DecisionPoint struct {
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	URLPatterns    []string         `json:"url_patterns"`
	TextIndicators []string         `json:"text_indicators"`
	ButtonTexts    []string         `json:"button_texts"`
	Options        []DecisionOption `json:"options"`
}

// PreferredOption returns the default option for the decision point, falling
// back to the first option when none is flagged.
func (d DecisionPoint) PreferredOption() (DecisionOption, bool) {
	for _, opt := range d.Options {
		if opt.Preferred {
			return opt, true
		}
	}
	if len(d.Options) > 0 {
		return d.Options[0], true
	}
	return DecisionOption{}, false
}

// ElementState is a point-in-time interactability probe of one selector.
type ElementState struct {
	Exists  bool   `json:"exists"`
	Visible bool   `json:"visible"`
	Enabled bool   `json:"enabled"`
	Checked bool   `json:"checked"`
	Value   string `json:"value"`
}

// PageSnapshot is a best-effort capture of page state for diagnostics and
// text-indicator matching.
type PageSnapshot struct {
	URL        string    `json:"url"`
	HTML       string    `json:"html"`
	CapturedAt time.Time `json:"captured_at"`
}

// Profile is the caller-supplied applicant data: ordered step records plus
// optional credentials for login resolution.
type Profile struct {
	Steps         []StepData `json:"steps"`
	LoginEmail    string     `json:"login_email,omitempty"`
	LoginPassword string     `json:"login_password,omitempty"`
}
