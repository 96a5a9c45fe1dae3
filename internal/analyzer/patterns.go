// internal/analyzer/patterns.go
package analyzer

import (
	"regexp"

	"github.com/SAIKIRANREDDY98/JH/api/schemas"
)

// category names an attribute bucket that patterns match against. Weights
// reflect how trustworthy each bucket is as a semantic signal; autocomplete is
// the strongest (it is an explicit machine-readable declaration), class-derived
// and surrounding-context signals the weakest.
type category string

const (
	catLabel        category = "label"
	catName         category = "name"
	catID           category = "id"
	catPlaceholder  category = "placeholder"
	catType         category = "type"
	catAutocomplete category = "autocomplete"
	catAutomationID category = "automation_id"
	catAriaLabel    category = "aria_label"
	catText         category = "text"
	catClass        category = "class"
	catContext      category = "context"
)

var categoryWeights = map[category]float64{
	catLabel:        2.5,
	catName:         2.2,
	catID:           2.0,
	catPlaceholder:  1.8,
	catType:         3.0,
	catAutocomplete: 3.5,
	catAutomationID: 2.8,
	catAriaLabel:    1.5,
	catText:         1.0,
	catClass:        0.5,
	catContext:      0.3,
}

// normalizationSlack is added to the applicable-weight sum when normalizing a
// raw score into [0,1], so a single strong signal cannot saturate confidence.
const normalizationSlack = 2.0

// admissionFloor is the minimum normalized score for a candidate to be
// considered at all; acceptance into the final mapping uses the configured
// threshold, which is strictly higher.
const admissionFloor = 0.15

// negativeDamp is applied once when any negative pattern matches any
// text-bearing attribute (models confirm/verify false positives).
const negativeDamp = 0.3

type patternSet map[category][]*regexp.Regexp

func rx(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile(`(?i)`+e))
	}
	return out
}

// fieldPatterns maps each semantic field type to its per-category pattern
// lists. A category with at least one match contributes its weight exactly
// once. Types absent here (the generic kinds, buttons, unknown) are never
// produced by the scorer.
var fieldPatterns = map[schemas.FieldType]patternSet{
	schemas.FieldEmail: {
		catName:         rx(`email`, `e-?mail`, `user-?name`, `login`, `userPrincipalName`),
		catLabel:        rx(`email\s*address`, `e-?mail`, `your\s*email`, `user\s*name`, `login\s*id`),
		catPlaceholder:  rx(`enter\s*email`, `email`, `@`, `example@company\.com`),
		catType:         rx(`^email$`),
		catAutocomplete: rx(`email`, `username`),
		catAutomationID: rx(`email`, `username`, `userid`),
	},
	schemas.FieldPassword: {
		catName:         rx(`password`, `pass-?word`, `pwd`, `userPass`, `credentials\.password`),
		catLabel:        rx(`password`, `pass-?word`, `pincode`),
		catPlaceholder:  rx(`enter\s*password`, `password`),
		catType:         rx(`^password$`),
		catAutocomplete: rx(`current-password`, `new-password`),
		catAutomationID: rx(`password`),
	},
	schemas.FieldFirstName: {
		catName:         rx(`first-?name`, `f-?name`, `given-?name`, `forename`, `firstName`, `contact\.firstName`),
		catLabel:        rx(`first\s*name`, `given\s*name`, `forename`),
		catPlaceholder:  rx(`first\s*name`, `given\s*name`),
		catAutocomplete: rx(`given-name`, `fname`),
	},
	schemas.FieldLastName: {
		catName:         rx(`last-?name`, `l-?name`, `surname`, `family-?name`, `lastName`, `contact\.lastName`),
		catLabel:        rx(`last\s*name`, `surname`, `family\s*name`),
		catPlaceholder:  rx(`last\s*name`, `surname`),
		catAutocomplete: rx(`family-name`, `lname`),
	},
	schemas.FieldFullName: {
		catName:         rx(`full-?name`, `your-?name`, `applicant-?name`, `^name$`),
		catLabel:        rx(`full\s*name`, `your\s*name`, `^name$`),
		catPlaceholder:  rx(`full\s*name`, `your\s*name`),
		catAutocomplete: rx(`^name$`),
	},
	schemas.FieldPhone: {
		catName:         rx(`phone`, `mobile`, `cell`, `telephone`, `contact-?number`, `primaryPhone`),
		catLabel:        rx(`phone`, `mobile`, `telephone`, `contact\s*number`, `phone\s*number`),
		catPlaceholder:  rx(`phone`, `mobile`, `\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`, `phone\s*number`),
		catType:         rx(`^tel$`),
		catAutocomplete: rx(`tel`, `tel-national`),
	},
	schemas.FieldAddress: {
		catName:         rx(`address(1|Line1)?`, `street`, `addr1`),
		catLabel:        rx(`address\s*(line\s*1)?`, `street\s*address`),
		catPlaceholder:  rx(`street\s*address`, `address\s*line\s*1`),
		catAutocomplete: rx(`address-line1`, `street-address`),
	},
	schemas.FieldCity: {
		catName:         rx(`city`, `town`),
		catLabel:        rx(`city`, `town`, `suburb`),
		catPlaceholder:  rx(`city`, `town`),
		catAutocomplete: rx(`address-level2`, `city`),
	},
	schemas.FieldState: {
		catName:         rx(`state`, `province`, `region`),
		catLabel:        rx(`state`, `province`, `region`),
		catPlaceholder:  rx(`state`, `province`),
		catAutocomplete: rx(`address-level1`, `state`),
	},
	schemas.FieldZipCode: {
		catName:         rx(`zip(-?code)?`, `postal(-?code)?`, `postcode`),
		catLabel:        rx(`zip`, `postal\s*code`, `post\s*code`),
		catPlaceholder:  rx(`zip`, `postal\s*code`, `\d{5}(-\d{4})?`),
		catAutocomplete: rx(`postal-code`, `zip`),
	},
	schemas.FieldCountry: {
		catName:         rx(`country`, `nation`),
		catLabel:        rx(`country`, `nationality`),
		catPlaceholder:  rx(`country`),
		catAutocomplete: rx(`country(-name)?`),
	},
	schemas.FieldCompany: {
		catName:         rx(`company`, `employer`, `organization`, `current-?employer`, `businessName`),
		catLabel:        rx(`company`, `employer`, `organization`, `current\s*employer`, `company\s*name`),
		catPlaceholder:  rx(`company`, `employer`, `organization\s*name`),
		catAutocomplete: rx(`organization`),
	},
	schemas.FieldJobTitle: {
		catName:         rx(`job-?title`, `position`, `role`, `title`, `currentPosition`),
		catLabel:        rx(`job\s*title`, `position`, `current\s*position`, `role`, `desired\s*position`),
		catPlaceholder:  rx(`job\s*title`, `position`, `your\s*role`),
		catAutocomplete: rx(`organization-title`),
	},
	schemas.FieldYearsExperience: {
		catName:        rx(`years-?(of-?)?experience`, `experience-?years`, `yoe`),
		catLabel:       rx(`years\s*of\s*experience`, `experience\s*\(?years\)?`, `how\s*many\s*years`),
		catPlaceholder: rx(`years`, `e\.g\.\s*\d+`),
	},
	schemas.FieldSchool: {
		catName:        rx(`school`, `university`, `college`, `institution`, `alma-?mater`),
		catLabel:       rx(`school`, `university`, `college`, `institution`),
		catPlaceholder: rx(`school`, `university`, `college`),
	},
	schemas.FieldDegree: {
		catName:        rx(`degree`, `qualification`, `education-?level`),
		catLabel:       rx(`degree`, `qualification`, `education\s*level`, `highest\s*degree`),
		catPlaceholder: rx(`degree`, `e\.g\.\s*bachelor`),
	},
	schemas.FieldFieldOfStudy: {
		catName:        rx(`field-?of-?study`, `major`, `discipline`, `specialization`),
		catLabel:       rx(`field\s*of\s*study`, `major`, `discipline`, `area\s*of\s*study`),
		catPlaceholder: rx(`major`, `field\s*of\s*study`),
	},
	schemas.FieldGraduationDate: {
		catName:        rx(`graduation-?(date|year)`, `grad-?year`, `end-?date`, `completion-?date`),
		catLabel:       rx(`graduation\s*(date|year)`, `year\s*of\s*graduation`, `end\s*date`),
		catPlaceholder: rx(`graduation`, `yyyy`, `mm/yyyy`),
	},
	schemas.FieldLinkedInURL: {
		catName:         rx(`linked-?in`, `linkedinUrl`),
		catLabel:        rx(`linked\s*in`, `linkedin\s*(profile|url)`),
		catPlaceholder:  rx(`linkedin\.com`),
		catAutomationID: rx(`linkedin`),
	},
	schemas.FieldPortfolioURL: {
		catName:        rx(`portfolio`, `github`, `work-?samples`),
		catLabel:       rx(`portfolio`, `github`, `work\s*samples`),
		catPlaceholder: rx(`portfolio`, `github\.com`),
	},
	schemas.FieldWebsiteURL: {
		catName:         rx(`website`, `personal-?site`, `home-?page`, `web-?site`, `^url$`),
		catLabel:        rx(`website`, `personal\s*(web)?site`, `home\s*page`),
		catPlaceholder:  rx(`https?://`, `website`),
		catType:         rx(`^url$`),
		catAutocomplete: rx(`url`),
	},
	schemas.FieldCoverLetterText: {
		catName:  rx(`cover-?letter`, `coverLetterText`, `motivation`),
		catLabel: rx(`cover\s*letter`, `why\s*(do\s*you\s*want|are\s*you\s*interested)`, `motivation`),
	},
	schemas.FieldGenericTextarea: {
		catName:  rx(`message`, `comment`, `additional-?info`, `summary`, `description`),
		catLabel: rx(`message`, `comments`, `additional\s*information`, `tell\s*us\s*more`),
	},
	schemas.FieldResumeFile: {
		catName:         rx(`resume`, `cv`, `curriculum`, `resume-?upload`, `cv-?upload`, `attachment`),
		catLabel:        rx(`resume`, `cv`, `upload\s*resume`, `attach\s*resume`, `curriculum\s*vitae`),
		catType:         rx(`^file$`),
		catAutomationID: rx(`resumeupload`, `fileuploader`, `attachCV`),
	},
	schemas.FieldCoverLetterFile: {
		catName:  rx(`cover-?letter(-?upload)?`, `coverLetterFile`),
		catLabel: rx(`upload\s*cover\s*letter`, `attach\s*cover\s*letter`, `cover\s*letter`),
		catType:  rx(`^file$`),
	},
}

// negativePatterns damp a type's score when the element is likely a
// confirm/verify variant or an adjacent-but-different field. Matched across
// all text-bearing attributes; first match applies the damp once.
var negativePatterns = map[schemas.FieldType][]*regexp.Regexp{
	schemas.FieldEmail:           rx(`confirm`, `re-?type`, `verify`, `new\s*email`, `search`, `filter`),
	schemas.FieldPassword:        rx(`confirm`, `re-?type`, `verify`, `new\s*password`, `current\s*password`, `old\s*password`),
	schemas.FieldFirstName:       rx(`last`, `family`, `surname`, `middle`, `initial`),
	schemas.FieldLastName:        rx(`first`, `given`, `middle`, `initial`),
	schemas.FieldPhone:           rx(`extension`, `ext\.?`, `country\s*code`, `area\s*code`),
	schemas.FieldResumeFile:      rx(`cover\s*letter`),
	schemas.FieldCoverLetterFile: rx(`resume`, `\bcv\b`),
}

// Button intent patterns, in precedence order: apply phrases are checked
// before the next family, which is checked before the submit family. The
// bare "apply" pattern intentionally means "Submit Application" classifies
// as apply rather than submit.
var (
	applyPatterns  = rx(`\bapply now\b`, `\bapply for this job\b`, `\bsubmit application\b`, `\bapply\b`)
	nextPatterns   = rx(`\bnext\b`, `\bcontinue\b`, `\bproceed\b`, `\bstep \d+\b`, `\bforward\b`)
	submitPatterns = rx(`\bsubmit\b`, `\bsend\b`, `\bfinish\b`, `\bcomplete\b`, `\bdone\b`,
		`\bsave & exit\b`, `\bsave and exit\b`, `\bsave\b`)
)

func matchAny(patterns []*regexp.Regexp, s string) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}
