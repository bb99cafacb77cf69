package interview

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/claimwise/intake-backend/internal/entity"
	engine "github.com/claimwise/intake-backend/internal/interview"
	"github.com/claimwise/intake-backend/internal/policy"
	"github.com/claimwise/intake-backend/internal/store"
	"github.com/claimwise/intake-backend/internal/voice"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// runtime returns the live runtime for the interview, restoring it from the
// persisted snapshot when the cache has evicted it.
func (uc *InterviewUsecase) runtime(ctx context.Context, record *entity.Interview) (*store.Runtime, error) {
	if rt, ok := uc.live.Get(record.ID); ok {
		return rt, nil
	}

	answers, err := uc.answerRepo.ListAnswersByInterview(ctx, record.ID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}

	session, err := engine.Restore(uc.catalog, uc.rules, entity.Snapshot{
		Queue:   record.Queue,
		Pointer: record.Pointer,
		Answers: answers,
	})
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}

	rt := &store.Runtime{
		Session: session,
		Voice:   uc.newVoiceMachine(record.ID),
	}
	uc.live.Put(record.ID, rt)

	// A question became current again by the restore itself, so re-arm the
	// machine for it; completed or finished interviews stay silent.
	if record.Status == entity.InterviewStatusInProgress && !session.IsComplete() {
		uc.beginCurrentQuestion(ctx, rt)
	}

	ctxzap.Debug(ctx, "session restored from snapshot",
		zap.String("interview_id", record.ID),
		zap.Int("queue_length", len(record.Queue)),
		zap.Int("pointer", record.Pointer),
	)
	return rt, nil
}

// activeRuntime loads the interview and its runtime, rejecting interviews
// that are no longer accepting answers.
func (uc *InterviewUsecase) activeRuntime(ctx context.Context, interviewID string) (*entity.Interview, *store.Runtime, error) {
	record, err := uc.interviewRepo.GetInterviewByID(ctx, interviewID)
	if err != nil {
		return nil, nil, fmt.Errorf("get interview: %w", err)
	}

	switch record.Status {
	case entity.InterviewStatusInProgress:
	case entity.InterviewStatusCanceled:
		return nil, nil, entity.ErrInterviewCanceled
	case entity.InterviewStatusScoring, entity.InterviewStatusDone:
		return nil, nil, entity.ErrInterviewComplete
	default:
		return nil, nil, fmt.Errorf("%w: status '%s'", entity.ErrInterviewNotActive, record.Status)
	}

	rt, err := uc.runtime(ctx, record)
	if err != nil {
		return nil, nil, err
	}
	return record, rt, nil
}

func (uc *InterviewUsecase) newVoiceMachine(interviewID string) *voice.Machine {
	return voice.NewMachine(interviewID, uc.synth, uc.recognizer, uc.recorder, uc, uc.voiceCfg, uc.logger)
}

// beginCurrentQuestion arms the voice machine for whatever question the
// pointer sits on.
func (uc *InterviewUsecase) beginCurrentQuestion(ctx context.Context, rt *store.Runtime) {
	q, err := rt.Session.Current()
	if err != nil || rt.Voice == nil {
		return
	}
	rt.Voice.BeginQuestion(ctx, q)
}

func (uc *InterviewUsecase) persistSnapshot(ctx context.Context, interviewID string, session *engine.Session) error {
	if err := uc.interviewRepo.UpdateInterviewSnapshot(ctx, interviewID, session.Queue(), session.Pointer()); err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}
	return nil
}

// latestDocumentID returns the most recently attached document for the
// question, or empty when none was uploaded.
func (uc *InterviewUsecase) latestDocumentID(ctx context.Context, interviewID, questionID string) (string, error) {
	docs, err := uc.documentRepo.ListDocumentsByInterview(ctx, interviewID)
	if err != nil {
		return "", fmt.Errorf("list documents: %w", err)
	}

	id := ""
	for _, d := range docs {
		if d.QuestionID == questionID {
			id = d.ID
		}
	}
	return id, nil
}

func (uc *InterviewUsecase) policyAllows(q entity.Question, text, documentID string) bool {
	return policy.CanProceed(q.DocRequirement, strings.TrimSpace(text) != "", documentID != "")
}

func rejectionReason(req entity.DocRequirement) string {
	switch req {
	case entity.DocNone:
		return "an answer is required"
	case entity.DocOptional:
		return "an answer or a document is required"
	case entity.DocRequired:
		return "both an answer and a document are required"
	case entity.DocOnly:
		return "a document is required"
	default:
		return "submission is not ready"
	}
}

func readMultipartFile(file *multipart.FileHeader) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open uploaded file: %w", err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read uploaded file: %w", err)
	}
	return content, nil
}

// beginScoring moves a completed interview to SCORING, tears down the voice
// session, emits the completion callback, and launches the scoring call.
func (uc *InterviewUsecase) beginScoring(ctx context.Context, interviewID string, rt *store.Runtime) (*entity.Interview, error) {
	if rt.Voice != nil {
		rt.Voice.Teardown()
	}

	record, err := uc.interviewRepo.UpdateInterviewStatus(ctx, interviewID, entity.InterviewStatusScoring)
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}

	uc.callbackConnector.SendInterviewComplete(ctx, rt.CallbackURL, interviewID, &entity.CallbackInterviewCompleteData{
		InterviewID:   interviewID,
		QuestionCount: len(rt.Session.Queue()),
		AnswerCount:   rt.Session.AnsweredCount(),
	})

	go uc.score(context.WithoutCancel(ctx), interviewID, rt.CallbackURL)

	return record, nil
}

// score sends the answer set to the scoring service and records the outcome.
// Failures park the interview in ERROR so scoring can be retried.
func (uc *InterviewUsecase) score(ctx context.Context, interviewID, callbackURL string) {
	req, err := uc.buildScoringRequest(ctx, interviewID)
	if err == nil {
		var outcome *entity.ScoringOutcome
		outcome, err = uc.scoringConnector.Score(ctx, req)
		if err == nil {
			if _, err = uc.interviewRepo.UpdateInterviewResult(ctx, interviewID, entity.InterviewStatusDone, outcome, nil); err == nil {
				uc.callbackConnector.SendFinalResult(ctx, callbackURL, interviewID, outcome)
				uc.logger.Info("interview scored",
					zap.String("interview_id", interviewID),
					zap.Int("rating", outcome.Rating),
					zap.String("title", outcome.Title),
				)
				return
			}
		}
	}

	uc.logger.Error("scoring failed",
		zap.String("interview_id", interviewID),
		zap.Error(err),
	)

	msg := err.Error()
	if _, updateErr := uc.interviewRepo.UpdateInterviewResult(ctx, interviewID, entity.InterviewStatusError, nil, &msg); updateErr != nil {
		uc.logger.Error("failed to record scoring error",
			zap.String("interview_id", interviewID),
			zap.Error(updateErr),
		)
	}

	uc.callbackConnector.SendError(ctx, callbackURL, interviewID, "scoring failed", map[string]any{
		"interview_id": interviewID,
		"error":        msg,
	})
}

func (uc *InterviewUsecase) buildScoringRequest(ctx context.Context, interviewID string) (*entity.ScoringRequest, error) {
	answers, err := uc.answerRepo.ListAnswersByInterview(ctx, interviewID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	docs, err := uc.documentRepo.ListDocumentsByInterview(ctx, interviewID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	req := &entity.ScoringRequest{
		Answers: make(map[string]string, len(answers)),
	}
	for _, a := range answers {
		req.Answers[a.QuestionID] = a.Text
		if q, err := uc.catalog.Get(a.QuestionID); err == nil {
			req.Questions = append(req.Questions, q)
		}
	}
	for _, d := range docs {
		req.FileIDs = append(req.FileIDs, d.ID)
	}
	return req, nil
}

// buildSummary renders the interview as plain text for the export formatters.
func (uc *InterviewUsecase) buildSummary(record *entity.Interview, answers []entity.Answer) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Interview: %s\n", record.ID)
	fmt.Fprintf(&b, "Completed: %s\n\n", record.UpdatedAt.UTC().Format("2006-01-02 15:04 UTC"))

	if record.Result != nil {
		fmt.Fprintf(&b, "Assessment: %s (%d/5)\n", record.Result.Title, record.Result.Rating)
		fmt.Fprintf(&b, "Eligibility score: %.0f\n", record.Result.Score)
		if record.Result.ReasonSummary != "" {
			fmt.Fprintf(&b, "Summary: %s\n", record.Result.ReasonSummary)
		}
		b.WriteString("\n")
	}

	byID := make(map[string]entity.Answer, len(answers))
	for _, a := range answers {
		byID[a.QuestionID] = a
	}

	for _, id := range record.Queue {
		q, err := uc.catalog.Get(id)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "Q: %s\n", q.Text)

		a, ok := byID[id]
		switch {
		case !ok || a.Empty():
			b.WriteString("A: (not answered)\n\n")
		case a.Text == "":
			b.WriteString("A: (document provided)\n\n")
		case a.DocumentID != "":
			fmt.Fprintf(&b, "A: %s (document provided)\n\n", a.Text)
		default:
			fmt.Fprintf(&b, "A: %s\n\n", a.Text)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
