package entity

import "time"

// Answer is the committed evidence for one question. Text holds the typed or
// transcribed value, DocumentID references an uploaded document. Either side
// may be empty; the document policy decides which combinations are acceptable.
type Answer struct {
	QuestionID string    `json:"question_id"`
	Text       string    `json:"text,omitempty"`
	DocumentID string    `json:"document_id,omitempty"`
	AnsweredAt time.Time `json:"answered_at"`
}

// Empty reports whether the answer carries no evidence at all.
func (a Answer) Empty() bool {
	return a.Text == "" && a.DocumentID == ""
}

// Document is metadata for an uploaded evidence file.
type Document struct {
	ID          string    `json:"id"`
	InterviewID string    `json:"interview_id"`
	QuestionID  string    `json:"question_id"`
	Filename    string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}
