// Package interview coordinates the intake workflow: it owns the live session
// runtimes, gates every submission through the document policy, persists each
// commit, and hands the finished answer set to the scoring service.
package interview

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/claimwise/intake-backend/internal/catalog"
	"github.com/claimwise/intake-backend/internal/entity"
	engine "github.com/claimwise/intake-backend/internal/interview"
	"github.com/claimwise/intake-backend/internal/pkg/formatter"
	"github.com/claimwise/intake-backend/internal/pkg/validator"
	"github.com/claimwise/intake-backend/internal/repository"
	"github.com/claimwise/intake-backend/internal/rules"
	"github.com/claimwise/intake-backend/internal/store"
	"github.com/claimwise/intake-backend/internal/voice"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// InterviewUsecase implements the intake interview business logic
type InterviewUsecase struct {
	interviewRepo repository.InterviewRepository
	answerRepo    repository.AnswerRepository
	documentRepo  repository.DocumentRepository
	validator     *validator.Validator

	catalog    *catalog.Catalog
	rules      *rules.Engine
	live       *store.Live
	formatters *formatter.Factory

	speechConnector   SpeechConnector
	scoringConnector  ScoringConnector
	callbackConnector CallbackConnector

	synth      voice.Synthesizer
	recognizer voice.Recognizer
	recorder   voice.Recorder
	voiceCfg   voice.Config

	logger *zap.Logger
}

// NewUsecase creates a new interview use case
func NewUsecase(
	interviewRepo repository.InterviewRepository,
	answerRepo repository.AnswerRepository,
	documentRepo repository.DocumentRepository,
	validator *validator.Validator,
	cat *catalog.Catalog,
	eng *rules.Engine,
	live *store.Live,
	formatters *formatter.Factory,
	speechConnector SpeechConnector,
	scoringConnector ScoringConnector,
	callbackConnector CallbackConnector,
	synth voice.Synthesizer,
	recognizer voice.Recognizer,
	recorder voice.Recorder,
	voiceCfg voice.Config,
	logger *zap.Logger,
) *InterviewUsecase {
	return &InterviewUsecase{
		interviewRepo:     interviewRepo,
		answerRepo:        answerRepo,
		documentRepo:      documentRepo,
		validator:         validator,
		catalog:           cat,
		rules:             eng,
		live:              live,
		formatters:        formatters,
		speechConnector:   speechConnector,
		scoringConnector:  scoringConnector,
		callbackConnector: callbackConnector,
		synth:             synth,
		recognizer:        recognizer,
		recorder:          recorder,
		voiceCfg:          voiceCfg,
		logger:            logger,
	}
}

// StartInterview creates a new interview seeded with the catalog's start
// sequence and arms the voice machine for the first question.
func (uc *InterviewUsecase) StartInterview(ctx context.Context, req *entity.StartInterviewRequest) (*entity.InterviewStateDTO, error) {
	if err := uc.validator.ValidateStartInterview(req); err != nil {
		return nil, err
	}

	session, err := engine.New(uc.catalog, uc.rules, uc.catalog.StartSequence())
	if err != nil {
		return nil, fmt.Errorf("build session: %w", err)
	}

	record := entity.Interview{
		ID:      uuid.New().String(),
		Status:  entity.InterviewStatusInProgress,
		Queue:   session.Queue(),
		Pointer: session.Pointer(),
	}

	created, err := uc.interviewRepo.CreateInterview(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("create interview: %w", err)
	}

	machine := uc.newVoiceMachine(created.ID)
	if req.InputMode == entity.InputModeTyped {
		if _, err := machine.SetMode(ctx, entity.InputModeTyped); err != nil {
			return nil, fmt.Errorf("set input mode: %w", err)
		}
	}

	rt := &store.Runtime{
		Session:     session,
		Voice:       machine,
		CallbackURL: req.CallbackURL,
	}
	uc.live.Put(created.ID, rt)

	uc.beginCurrentQuestion(ctx, rt)

	ctxzap.Info(ctx, "interview started",
		zap.String("interview_id", created.ID),
		zap.Int("queue_length", len(created.Queue)),
		zap.String("input_mode", string(machine.State().Mode)),
	)

	return toStateDTO(created, session, uc.catalog), nil
}

// GetInterview returns the navigable state of an interview.
func (uc *InterviewUsecase) GetInterview(ctx context.Context, interviewID string) (*entity.InterviewStateDTO, error) {
	record, err := uc.interviewRepo.GetInterviewByID(ctx, interviewID)
	if err != nil {
		return nil, fmt.Errorf("get interview: %w", err)
	}

	if record.Status != entity.InterviewStatusInProgress {
		return toStateDTO(record, nil, uc.catalog), nil
	}

	rt, err := uc.runtime(ctx, record)
	if err != nil {
		return nil, err
	}
	return toStateDTO(record, rt.Session, uc.catalog), nil
}

// GoTo moves the pointer. Backward jumps are unconditional, forward jumps are
// clamped to one past the answered frontier; an out-of-range request clamps
// rather than errors.
func (uc *InterviewUsecase) GoTo(ctx context.Context, interviewID string, req *entity.GoToRequest) (*entity.InterviewStateDTO, error) {
	if err := uc.validator.ValidateGoTo(req); err != nil {
		return nil, err
	}

	record, rt, err := uc.activeRuntime(ctx, interviewID)
	if err != nil {
		return nil, err
	}

	before := rt.Session.Pointer()
	landed := rt.Session.GoTo(req.Index)

	if landed != before {
		if err := uc.persistSnapshot(ctx, interviewID, rt.Session); err != nil {
			return nil, err
		}
		uc.beginCurrentQuestion(ctx, rt)
	}

	ctxzap.Debug(ctx, "pointer moved",
		zap.String("interview_id", interviewID),
		zap.Int("requested", req.Index),
		zap.Int("landed", landed),
	)

	record.Queue = rt.Session.Queue()
	record.Pointer = landed
	return toStateDTO(record, rt.Session, uc.catalog), nil
}

// SubmitTextAnswer gates the typed (or transcribed) text through the document
// policy and, when accepted, commits it, persists the snapshot, and either
// advances to the next question or finalizes the interview.
func (uc *InterviewUsecase) SubmitTextAnswer(ctx context.Context, interviewID, questionID string, req *entity.SubmitAnswerRequest) (*entity.SubmitResultDTO, error) {
	if err := uc.validator.ValidateSubmitAnswer(req); err != nil {
		return nil, err
	}

	record, rt, err := uc.activeRuntime(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if req.CallbackURL != "" {
		rt.CallbackURL = req.CallbackURL
	}

	current, err := rt.Session.Current()
	if err != nil {
		return nil, fmt.Errorf("current question: %w", err)
	}
	if current.ID != questionID {
		return nil, fmt.Errorf("%w: %s", entity.ErrQuestionNotCurrent, questionID)
	}

	documentID, err := uc.latestDocumentID(ctx, interviewID, questionID)
	if err != nil {
		return nil, err
	}

	if !uc.policyAllows(current, req.Text, documentID) {
		ctxzap.Info(ctx, "submission rejected by document policy",
			zap.String("interview_id", interviewID),
			zap.String("question_id", questionID),
			zap.String("doc_requirement", string(current.DocRequirement)),
			zap.Bool("has_text", req.Text != ""),
			zap.Bool("has_file", documentID != ""),
		)
		return &entity.SubmitResultDTO{
			Accepted:  false,
			Reason:    rejectionReason(current.DocRequirement),
			Interview: toStateDTO(record, rt.Session, uc.catalog),
		}, nil
	}

	answer := entity.Answer{
		QuestionID: questionID,
		Text:       req.Text,
		DocumentID: documentID,
	}
	if err := rt.Session.Commit(questionID, answer); err != nil {
		return nil, fmt.Errorf("commit answer: %w", err)
	}

	committed, _ := rt.Session.Answer(questionID)
	if err := uc.answerRepo.UpsertAnswer(ctx, interviewID, committed); err != nil {
		return nil, fmt.Errorf("persist answer: %w", err)
	}
	if err := uc.persistSnapshot(ctx, interviewID, rt.Session); err != nil {
		return nil, err
	}
	uc.live.Touch(interviewID)

	ctxzap.Info(ctx, "answer committed",
		zap.String("interview_id", interviewID),
		zap.String("question_id", questionID),
		zap.Int("queue_length", len(rt.Session.Queue())),
		zap.Int("pointer", rt.Session.Pointer()),
	)

	if rt.Session.IsComplete() {
		record, err = uc.beginScoring(ctx, interviewID, rt)
		if err != nil {
			return nil, err
		}
		return &entity.SubmitResultDTO{
			Accepted:  true,
			Interview: toStateDTO(record, rt.Session, uc.catalog),
		}, nil
	}

	uc.beginCurrentQuestion(ctx, rt)

	record.Queue = rt.Session.Queue()
	record.Pointer = rt.Session.Pointer()
	return &entity.SubmitResultDTO{
		Accepted:  true,
		Interview: toStateDTO(record, rt.Session, uc.catalog),
	}, nil
}

// SubmitAudioAnswer transcribes an uploaded recording and submits the
// transcription as a text answer.
func (uc *InterviewUsecase) SubmitAudioAnswer(ctx context.Context, interviewID, questionID string, audioData []byte, filename, callbackURL string) (*entity.SubmitResultDTO, error) {
	transcription, err := uc.speechConnector.TranscribeBytes(ctx, audioData, filename)
	if err != nil {
		return nil, fmt.Errorf("transcribe audio answer: %w", err)
	}

	return uc.SubmitTextAnswer(ctx, interviewID, questionID, &entity.SubmitAnswerRequest{
		Text:        transcription,
		CallbackURL: callbackURL,
	})
}

// AttachDocument stores an evidence file against a question. Attaching never
// commits; the next submission for the question picks the document up.
func (uc *InterviewUsecase) AttachDocument(ctx context.Context, interviewID, questionID string, file *multipart.FileHeader) (*entity.DocumentDTO, error) {
	if err := uc.validator.ValidateDocumentFile(file); err != nil {
		return nil, err
	}

	if _, _, err := uc.activeRuntime(ctx, interviewID); err != nil {
		return nil, err
	}
	if !uc.catalog.Has(questionID) {
		return nil, fmt.Errorf("%w: %s", entity.ErrQuestionNotInCatalog, questionID)
	}

	content, err := readMultipartFile(file)
	if err != nil {
		return nil, err
	}

	doc := entity.Document{
		ID:          uuid.New().String(),
		InterviewID: interviewID,
		QuestionID:  questionID,
		Filename:    validator.SanitizeFilename(file.Filename),
		Size:        file.Size,
		ContentType: file.Header.Get("Content-Type"),
	}

	stored, err := uc.documentRepo.AddDocument(ctx, doc, content)
	if err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}
	uc.live.Touch(interviewID)

	ctxzap.Info(ctx, "document attached",
		zap.String("interview_id", interviewID),
		zap.String("question_id", questionID),
		zap.String("document_id", stored.ID),
		zap.Int64("size", stored.Size),
	)

	return toDocumentDTO(stored), nil
}

// GetResult returns the scoring outcome of a finished interview.
func (uc *InterviewUsecase) GetResult(ctx context.Context, interviewID string) (*entity.ScoringOutcome, error) {
	record, err := uc.interviewRepo.GetInterviewByID(ctx, interviewID)
	if err != nil {
		return nil, fmt.Errorf("get interview: %w", err)
	}

	if record.Status != entity.InterviewStatusDone || record.Result == nil {
		return nil, fmt.Errorf("%w: interview status is '%s'", entity.ErrNoResult, record.Status)
	}
	return record.Result, nil
}

// RetryScoring re-runs scoring for an interview whose previous attempt failed.
func (uc *InterviewUsecase) RetryScoring(ctx context.Context, interviewID string) (*entity.InterviewStateDTO, error) {
	record, err := uc.interviewRepo.GetInterviewByID(ctx, interviewID)
	if err != nil {
		return nil, fmt.Errorf("get interview: %w", err)
	}
	if record.Status != entity.InterviewStatusError {
		return nil, fmt.Errorf("%w: cannot retry scoring from status '%s'", entity.ErrInvalidParameter, record.Status)
	}

	record, err = uc.interviewRepo.UpdateInterviewStatus(ctx, interviewID, entity.InterviewStatusScoring)
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}

	callbackURL := ""
	if rt, ok := uc.live.Get(interviewID); ok {
		callbackURL = rt.CallbackURL
	}
	go uc.score(context.WithoutCancel(ctx), interviewID, callbackURL)

	return toStateDTO(record, nil, uc.catalog), nil
}

// ExportResult renders the interview summary in the requested format.
func (uc *InterviewUsecase) ExportResult(ctx context.Context, interviewID string, format entity.ResultFormat) ([]byte, string, string, error) {
	if err := format.Validate(); err != nil {
		return nil, "", "", fmt.Errorf("%w: %s", entity.ErrInvalidParameter, err)
	}

	record, err := uc.interviewRepo.GetInterviewByID(ctx, interviewID)
	if err != nil {
		return nil, "", "", fmt.Errorf("get interview: %w", err)
	}
	if record.Status != entity.InterviewStatusDone || record.Result == nil {
		return nil, "", "", fmt.Errorf("%w: interview status is '%s'", entity.ErrInterviewNotDone, record.Status)
	}

	answers, err := uc.answerRepo.ListAnswersByInterview(ctx, interviewID)
	if err != nil {
		return nil, "", "", fmt.Errorf("list answers: %w", err)
	}

	plainText := uc.buildSummary(record, answers)

	f, err := uc.formatters.Create(format)
	if err != nil {
		return nil, "", "", err
	}

	content, err := f.Format(plainText)
	if err != nil {
		return nil, "", "", fmt.Errorf("format summary: %w", err)
	}

	filename := fmt.Sprintf("claim-summary-%s.%s", interviewID, f.FileExtension())
	return content, f.ContentType(), filename, nil
}

// CancelInterview cancels an in-progress interview and tears down its voice
// session.
func (uc *InterviewUsecase) CancelInterview(ctx context.Context, interviewID string) (*entity.InterviewStateDTO, error) {
	record, err := uc.interviewRepo.GetInterviewByID(ctx, interviewID)
	if err != nil {
		return nil, fmt.Errorf("get interview: %w", err)
	}
	if record.Status == entity.InterviewStatusDone || record.Status == entity.InterviewStatusCanceled {
		return nil, fmt.Errorf("%w: cannot cancel from status '%s'", entity.ErrInvalidParameter, record.Status)
	}

	record, err = uc.interviewRepo.UpdateInterviewStatus(ctx, interviewID, entity.InterviewStatusCanceled)
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}

	if rt, ok := uc.live.Get(interviewID); ok && rt.Voice != nil {
		rt.Voice.Teardown()
	}
	uc.live.Remove(interviewID)

	ctxzap.Info(ctx, "interview cancelled", zap.String("interview_id", interviewID))
	return toStateDTO(record, nil, uc.catalog), nil
}

// AutoSubmit implements voice.SubmitSink: a settled voice transcript is
// submitted through the same policy gate as a typed answer.
func (uc *InterviewUsecase) AutoSubmit(ctx context.Context, interviewID, questionID, transcript string) {
	result, err := uc.SubmitTextAnswer(ctx, interviewID, questionID, &entity.SubmitAnswerRequest{Text: transcript})
	if err != nil {
		uc.logger.Warn("voice auto-submission failed",
			zap.String("interview_id", interviewID),
			zap.String("question_id", questionID),
			zap.Error(err),
		)
		return
	}
	if !result.Accepted {
		uc.logger.Info("voice auto-submission held by document policy",
			zap.String("interview_id", interviewID),
			zap.String("question_id", questionID),
			zap.String("reason", result.Reason),
		)
	}
}
