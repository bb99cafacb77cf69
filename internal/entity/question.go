package entity

import "fmt"

type Section string

const (
	SectionClaimant  Section = "CLAIMANT"
	SectionIncident  Section = "INCIDENT"
	SectionEvidence  Section = "EVIDENCE"
	SectionTreatment Section = "TREATMENT"
)

type QuestionType string

const (
	QuestionTypeText     QuestionType = "text"
	QuestionTypeTextarea QuestionType = "textarea"
	QuestionTypeDate     QuestionType = "date"
	QuestionTypeNumber   QuestionType = "number"
	QuestionTypeRadio    QuestionType = "radio"
	QuestionTypeYesNo    QuestionType = "yes-no"
	QuestionTypeFile     QuestionType = "file"
)

func (qt QuestionType) Validate() error {
	switch qt {
	case QuestionTypeText, QuestionTypeTextarea, QuestionTypeDate,
		QuestionTypeNumber, QuestionTypeRadio, QuestionTypeYesNo, QuestionTypeFile:
		return nil
	default:
		return fmt.Errorf("unknown question type: %s", qt)
	}
}

// DocRequirement declares which evidence combination a question accepts.
type DocRequirement string

const (
	DocNone     DocRequirement = "none"              // text answer only
	DocOptional DocRequirement = "document-optional" // text or file
	DocRequired DocRequirement = "document-required" // text and file
	DocOnly     DocRequirement = "document-only"     // file only, text ignored
)

func (dr DocRequirement) Validate() error {
	switch dr {
	case DocNone, DocOptional, DocRequired, DocOnly:
		return nil
	default:
		return fmt.Errorf("unknown doc requirement: %s", dr)
	}
}

// Question is an immutable catalog record. Options is only meaningful for
// radio questions; Tags carry routing hints for the rule table.
type Question struct {
	ID             string         `json:"id"`
	Section        Section        `json:"section"`
	Text           string         `json:"text"`
	Type           QuestionType   `json:"type"`
	Required       bool           `json:"required"`
	DocRequirement DocRequirement `json:"doc_requirement"`
	Options        []string       `json:"options,omitempty"`
	Tags           []string       `json:"tags,omitempty"`
}

func (q *Question) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("%w: question id", ErrMissingField)
	}
	if q.Text == "" {
		return fmt.Errorf("%w: question text (id %s)", ErrMissingField, q.ID)
	}
	if err := q.Type.Validate(); err != nil {
		return fmt.Errorf("question %s: %w", q.ID, err)
	}
	if err := q.DocRequirement.Validate(); err != nil {
		return fmt.Errorf("question %s: %w", q.ID, err)
	}
	if q.Type == QuestionTypeRadio && len(q.Options) == 0 {
		return fmt.Errorf("question %s: radio question without options", q.ID)
	}
	return nil
}
