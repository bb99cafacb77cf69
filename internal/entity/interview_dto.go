package entity

import (
	"mime/multipart"
	"time"
)

type StartInterviewRequest struct {
	InputMode   InputMode `json:"input_mode,omitempty"`
	CallbackURL string    `json:"callback_url,omitempty"`
}

type SubmitAnswerRequest struct {
	Text        string `json:"text"`
	CallbackURL string `json:"callback_url,omitempty"`
}

type SubmitAudioAnswerRequest struct {
	AudioFile   *multipart.FileHeader
	CallbackURL string
}

type GoToRequest struct {
	Index int `json:"index"`
}

type SetInputModeRequest struct {
	Mode InputMode `json:"mode"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type QuestionDTO struct {
	ID             string         `json:"id"`
	Section        Section        `json:"section"`
	Text           string         `json:"text"`
	Type           QuestionType   `json:"type"`
	Required       bool           `json:"required"`
	DocRequirement DocRequirement `json:"doc_requirement"`
	Options        []string       `json:"options,omitempty"`
}

// InterviewStateDTO is the navigable view of a live interview returned by
// every state-changing endpoint.
type InterviewStateDTO struct {
	ID        string          `json:"interview_id"`
	Status    InterviewStatus `json:"status"`
	Queue     []string        `json:"queue"`
	Pointer   int             `json:"pointer"`
	Frontier  int             `json:"frontier"`
	Current   *QuestionDTO    `json:"current_question,omitempty"`
	Answered  int             `json:"answered_count"`
	Complete  bool            `json:"complete"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// SubmitResultDTO reports whether a submission was accepted. A rejected
// submission is the normal "evidence not ready" state, not an error.
type SubmitResultDTO struct {
	Accepted  bool               `json:"accepted"`
	Reason    string             `json:"reason,omitempty"`
	Interview *InterviewStateDTO `json:"interview,omitempty"`
}

// VoiceStateDTO is the transient voice capture view for the current question.
type VoiceStateDTO struct {
	State          VoiceState `json:"state"`
	QuestionID     string     `json:"question_id,omitempty"`
	Mode           InputMode  `json:"input_mode"`
	FinalText      string     `json:"final_text"`
	InterimText    string     `json:"interim_text,omitempty"`
	ElapsedSeconds int        `json:"elapsed_seconds"`
	Warning        string     `json:"warning,omitempty"`
}

type DocumentDTO struct {
	ID          string `json:"id"`
	QuestionID  string `json:"question_id"`
	Filename    string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}
