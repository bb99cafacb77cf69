package interview

import (
	"context"
	"mime/multipart"

	"github.com/claimwise/intake-backend/internal/entity"
)

type InterviewUsecase interface {
	StartInterview(ctx context.Context, req *entity.StartInterviewRequest) (*entity.InterviewStateDTO, error)
	GetInterview(ctx context.Context, interviewID string) (*entity.InterviewStateDTO, error)
	GoTo(ctx context.Context, interviewID string, req *entity.GoToRequest) (*entity.InterviewStateDTO, error)
	SubmitTextAnswer(ctx context.Context, interviewID, questionID string, req *entity.SubmitAnswerRequest) (*entity.SubmitResultDTO, error)
	SubmitAudioAnswer(ctx context.Context, interviewID, questionID string, audioData []byte, filename, callbackURL string) (*entity.SubmitResultDTO, error)
	AttachDocument(ctx context.Context, interviewID, questionID string, file *multipart.FileHeader) (*entity.DocumentDTO, error)

	VoiceState(ctx context.Context, interviewID string) (*entity.VoiceStateDTO, error)
	StopCapture(ctx context.Context, interviewID string) (*entity.VoiceStateDTO, error)
	SetInputMode(ctx context.Context, interviewID string, req *entity.SetInputModeRequest) (*entity.VoiceStateDTO, error)
	ReplayQuestion(ctx context.Context, interviewID string) (*entity.VoiceStateDTO, error)

	GetResult(ctx context.Context, interviewID string) (*entity.ScoringOutcome, error)
	RetryScoring(ctx context.Context, interviewID string) (*entity.InterviewStateDTO, error)
	ExportResult(ctx context.Context, interviewID string, format entity.ResultFormat) ([]byte, string, string, error)
	CancelInterview(ctx context.Context, interviewID string) (*entity.InterviewStateDTO, error)
}
