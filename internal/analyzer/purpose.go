// internal/analyzer/purpose.go
package analyzer

import (
	"strings"

	"github.com/SAIKIRANREDDY98/JH/api/schemas"
)

// jobSignalTypes are field types whose presence suggests a job-application
// form; two or more of them is decisive.
var jobSignalTypes = []schemas.FieldType{
	schemas.FieldResumeFile, schemas.FieldCoverLetterFile, schemas.FieldCoverLetterText,
	schemas.FieldLinkedInURL, schemas.FieldCompany, schemas.FieldJobTitle,
	schemas.FieldYearsExperience, schemas.FieldSchool, schemas.FieldDegree,
}

var contactKeywords = []string{"message", "comment", "query", "question", "feedback"}

// detectFormPurpose infers the page's overall purpose from the resolved field
// set alone. Rules are ordered: job application, registration, login, contact,
// general form. Registration runs before login so that a name field alongside
// credentials is never mistaken for a plain sign-in page.
func detectFormPurpose(fields map[schemas.FieldType]schemas.FieldDescriptor) schemas.FormPurpose {
	has := func(ft schemas.FieldType) bool {
		_, ok := fields[ft]
		return ok
	}

	jobSignals := 0
	for _, ft := range jobSignalTypes {
		if has(ft) {
			jobSignals++
		}
	}
	if has(schemas.FieldResumeFile) ||
		(has(schemas.FieldJobTitle) && has(schemas.FieldCompany)) ||
		jobSignals >= 2 {
		return schemas.PurposeJobApplication
	}

	if has(schemas.FieldEmail) && has(schemas.FieldPassword) &&
		(has(schemas.FieldFirstName) || has(schemas.FieldFullName)) {
		return schemas.PurposeRegistration
	}

	if has(schemas.FieldEmail) && has(schemas.FieldPassword) {
		others := 0
		for ft := range fields {
			switch ft {
			case schemas.FieldEmail, schemas.FieldPassword,
				schemas.FieldSubmitButton, schemas.FieldNextButton:
			default:
				others++
			}
		}
		if others <= 1 {
			return schemas.PurposeLogin
		}
	}

	hasName := has(schemas.FieldFullName) ||
		(has(schemas.FieldFirstName) && has(schemas.FieldLastName))
	freeTextTypes := []schemas.FieldType{
		schemas.FieldGenericTextarea, schemas.FieldGenericText, schemas.FieldCoverLetterText,
	}
	hasFreeText := false
	for _, ft := range freeTextTypes {
		if has(ft) {
			hasFreeText = true
			break
		}
	}
	if has(schemas.FieldEmail) && hasName && hasFreeText {
		for _, ft := range freeTextTypes {
			desc, ok := fields[ft]
			if !ok {
				continue
			}
			corpus := strings.ToLower(desc.Label + " " + desc.Attributes.Placeholder)
			for _, kw := range contactKeywords {
				if strings.Contains(corpus, kw) {
					return schemas.PurposeContact
				}
			}
		}
		if len(fields) <= 5 {
			return schemas.PurposeContact
		}
	}

	return schemas.PurposeGeneralForm
}
