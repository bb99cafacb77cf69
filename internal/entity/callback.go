package entity

// CallbackEventType represents the type of callback event
type CallbackEventType string

const (
	CallbackEventTypeInterviewComplete CallbackEventType = "interviewComplete"
	CallbackEventTypeFinalResult       CallbackEventType = "finalResult"
	CallbackEventTypeError             CallbackEventType = "error"
)

// CallbackEvent represents a callback event
type CallbackEvent struct {
	Event     CallbackEventType `json:"event"`
	Timestamp string            `json:"timestamp"` // ISO-8601 UTC
	Data      any               `json:"data"`
}

// CallbackInterviewCompleteData is the next-phase signal payload emitted once
// the last question is answered.
type CallbackInterviewCompleteData struct {
	InterviewID   string `json:"interview_id"`
	QuestionCount int    `json:"question_count"`
	AnswerCount   int    `json:"answer_count"`
}

// CallbackErrorData represents data for error event
type CallbackErrorData struct {
	Error CallbackErrorDetails `json:"error"`
}

// CallbackErrorDetails contains error information
type CallbackErrorDetails struct {
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}
