package interview

import (
	"context"

	"github.com/claimwise/intake-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// VoiceState returns the transient capture state for the current question.
func (uc *InterviewUsecase) VoiceState(ctx context.Context, interviewID string) (*entity.VoiceStateDTO, error) {
	_, rt, err := uc.activeRuntime(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if rt.Voice == nil {
		return nil, entity.ErrVoiceNotActive
	}

	dto := rt.Voice.State()
	return &dto, nil
}

// StopCapture is the user-triggered stop of listening or fallback recording.
// The finalized transcript settles and auto-submits through the policy gate.
func (uc *InterviewUsecase) StopCapture(ctx context.Context, interviewID string) (*entity.VoiceStateDTO, error) {
	_, rt, err := uc.activeRuntime(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if rt.Voice == nil {
		return nil, entity.ErrVoiceNotActive
	}

	rt.Voice.StopCapture()
	ctxzap.Debug(ctx, "voice capture stop requested", zap.String("interview_id", interviewID))

	dto := rt.Voice.State()
	return &dto, nil
}

// SetInputMode switches between voice and typed input. The transcript
// collected so far is returned for the editable text field.
func (uc *InterviewUsecase) SetInputMode(ctx context.Context, interviewID string, req *entity.SetInputModeRequest) (*entity.VoiceStateDTO, error) {
	_, rt, err := uc.activeRuntime(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if rt.Voice == nil {
		return nil, entity.ErrVoiceNotActive
	}

	transcript, err := rt.Voice.SetMode(ctx, req.Mode)
	if err != nil {
		return nil, err
	}

	ctxzap.Info(ctx, "input mode changed",
		zap.String("interview_id", interviewID),
		zap.String("mode", string(req.Mode)),
		zap.Int("transcript_length", len(transcript)),
	)

	dto := rt.Voice.State()
	return &dto, nil
}

// ReplayQuestion re-arms the voice machine for the current question, speaking
// it again from the top.
func (uc *InterviewUsecase) ReplayQuestion(ctx context.Context, interviewID string) (*entity.VoiceStateDTO, error) {
	_, rt, err := uc.activeRuntime(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if rt.Voice == nil {
		return nil, entity.ErrVoiceNotActive
	}

	uc.beginCurrentQuestion(ctx, rt)

	dto := rt.Voice.State()
	return &dto, nil
}
