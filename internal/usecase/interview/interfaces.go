package interview

import (
	"context"

	"github.com/claimwise/intake-backend/internal/entity"
)

type SpeechConnector interface {
	TranscribeBytes(ctx context.Context, audioData []byte, filename string) (string, error)
}

type ScoringConnector interface {
	Score(ctx context.Context, req *entity.ScoringRequest) (*entity.ScoringOutcome, error)
}

type CallbackConnector interface {
	SendInterviewComplete(ctx context.Context, callbackURL string, requestID string, data *entity.CallbackInterviewCompleteData)
	SendFinalResult(ctx context.Context, callbackURL string, requestID string, data *entity.ScoringOutcome)
	SendError(ctx context.Context, callbackURL string, requestID string, message string, details map[string]any)
}
