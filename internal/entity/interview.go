package entity

import "time"

type InterviewStatus string

// Interview status represents the current state of the intake interview workflow
const (
	InterviewStatusInProgress InterviewStatus = "IN_PROGRESS" // Claimant is answering questions
	InterviewStatusScoring    InterviewStatus = "SCORING"     // Answer set sent to the scoring service
	InterviewStatusDone       InterviewStatus = "DONE"        // Scoring result stored
	InterviewStatusError      InterviewStatus = "ERROR"       // Scoring failed, retry allowed
	InterviewStatusCanceled   InterviewStatus = "CANCELED"    // Interview cancelled by claimant
)

// Interview is the persisted record of one intake interview.
type Interview struct {
	ID        string          `json:"interview_id"`
	Status    InterviewStatus `json:"status"`
	Queue     []string        `json:"queue"`
	Pointer   int             `json:"pointer"`
	Result    *ScoringOutcome `json:"result,omitempty"`
	Error     *string         `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Snapshot captures the full engine state of a live session so it can be
// persisted on every commit and restored after the live cache expires.
type Snapshot struct {
	Queue   []string `json:"queue"`
	Pointer int      `json:"pointer"`
	Answers []Answer `json:"answers"`
}
