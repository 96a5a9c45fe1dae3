package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SAIKIRANREDDY98/JH/api/schemas"
)

func fieldsOf(types ...schemas.FieldType) map[schemas.FieldType]schemas.FieldDescriptor {
	out := make(map[schemas.FieldType]schemas.FieldDescriptor, len(types))
	for _, ft := range types {
		out[ft] = schemas.FieldDescriptor{Type: ft, Selector: "#" + string(ft)}
	}
	return out
}

func TestDetectFormPurpose(t *testing.T) {
	testCases := []struct {
		name     string
		fields   map[schemas.FieldType]schemas.FieldDescriptor
		expected schemas.FormPurpose
	}{
		{
			name:     "resume upload alone is decisive",
			fields:   fieldsOf(schemas.FieldResumeFile),
			expected: schemas.PurposeJobApplication,
		},
		{
			name:     "job title with company",
			fields:   fieldsOf(schemas.FieldJobTitle, schemas.FieldCompany, schemas.FieldEmail),
			expected: schemas.PurposeJobApplication,
		},
		{
			name:     "two weaker job signals",
			fields:   fieldsOf(schemas.FieldLinkedInURL, schemas.FieldYearsExperience),
			expected: schemas.PurposeJobApplication,
		},
		{
			name:     "bare credential pair is login",
			fields:   fieldsOf(schemas.FieldEmail, schemas.FieldPassword),
			expected: schemas.PurposeLogin,
		},
		{
			name:     "credentials plus identity is registration",
			fields:   fieldsOf(schemas.FieldEmail, schemas.FieldPassword, schemas.FieldFirstName, schemas.FieldLastName),
			expected: schemas.PurposeRegistration,
		},
		{
			name:     "credentials plus a single first name is registration, not login",
			fields:   fieldsOf(schemas.FieldEmail, schemas.FieldPassword, schemas.FieldFirstName),
			expected: schemas.PurposeRegistration,
		},
		{
			name:     "credentials plus full name is registration",
			fields:   fieldsOf(schemas.FieldEmail, schemas.FieldPassword, schemas.FieldFullName),
			expected: schemas.PurposeRegistration,
		},
		{
			name: "email, name and a message box is contact",
			fields: map[schemas.FieldType]schemas.FieldDescriptor{
				schemas.FieldEmail:    {Type: schemas.FieldEmail},
				schemas.FieldFullName: {Type: schemas.FieldFullName},
				schemas.FieldGenericTextarea: {
					Type:  schemas.FieldGenericTextarea,
					Label: "Your message",
				},
			},
			expected: schemas.PurposeContact,
		},
		{
			name:     "nothing recognizable",
			fields:   fieldsOf(schemas.FieldCity, schemas.FieldZipCode),
			expected: schemas.PurposeGeneralForm,
		},
		{
			name:     "empty field set",
			fields:   fieldsOf(),
			expected: schemas.PurposeGeneralForm,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, detectFormPurpose(tc.fields))
		})
	}
}
