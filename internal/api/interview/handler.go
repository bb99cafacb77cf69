package interview

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/claimwise/intake-backend/internal/entity"
	"github.com/claimwise/intake-backend/internal/pkg/logger"
	"github.com/claimwise/intake-backend/internal/pkg/response"
	"github.com/claimwise/intake-backend/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase   InterviewUsecase
	validator *validator.Validator
}

func NewHandler(usecase InterviewUsecase, validator *validator.Validator) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
	}
}

// StartInterview handles POST /interview - start a new intake interview
func (h *Handler) StartInterview(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "StartInterview")

	var req entity.StartInterviewRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
			h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
			return
		}
	}

	state, err := h.usecase.StartInterview(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, state)
}

// GetInterview handles GET /interview/{id} - get interview state
func (h *Handler) GetInterview(w http.ResponseWriter, r *http.Request) {
	interviewID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("interview_id", interviewID),
		zap.String("action", "GetInterview"),
	)

	state, err := h.usecase.GetInterview(ctx, interviewID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, state)
}

// GoTo handles POST /interview/{id}/goto - move the question pointer
func (h *Handler) GoTo(w http.ResponseWriter, r *http.Request) {
	interviewID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("interview_id", interviewID),
		zap.String("action", "GoTo"),
	)

	var req entity.GoToRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	state, err := h.usecase.GoTo(ctx, interviewID, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, state)
}

// SubmitTextAnswer handles POST /interview/{id}/answer/{question_id}
func (h *Handler) SubmitTextAnswer(w http.ResponseWriter, r *http.Request) {
	interviewID := chi.URLParam(r, "id")
	questionID := chi.URLParam(r, "question_id")
	ctx := logger.AddFields(r.Context(),
		zap.String("interview_id", interviewID),
		zap.String("question_id", questionID),
		zap.String("action", "SubmitTextAnswer"),
	)

	var req entity.SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := h.usecase.SubmitTextAnswer(ctx, interviewID, questionID, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// SubmitAudioAnswer handles POST /interview/{id}/answer/audio/{question_id}
func (h *Handler) SubmitAudioAnswer(w http.ResponseWriter, r *http.Request) {
	interviewID := chi.URLParam(r, "id")
	questionID := chi.URLParam(r, "question_id")
	ctx := logger.AddFields(r.Context(),
		zap.String("interview_id", interviewID),
		zap.String("question_id", questionID),
		zap.String("action", "SubmitAudioAnswer"),
	)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		ctxzap.Error(ctx, "failed to parse multipart form", zap.Error(err))
		h.respondError(ctx, w, http.StatusBadRequest, "failed to parse form", err)
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		ctxzap.Error(ctx, "missing audio file", zap.Error(err))
		h.respondError(ctx, w, http.StatusBadRequest, "audio file is required", err)
		return
	}
	defer file.Close()

	if err := h.validator.ValidateAudioFile(header); err != nil {
		ctxzap.Error(ctx, "failed to validate audio file", zap.Error(err))
		h.respondError(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	audioData, err := io.ReadAll(file)
	if err != nil {
		ctxzap.Error(ctx, "failed to read audio file", zap.Error(err))
		h.respondError(ctx, w, http.StatusInternalServerError, "failed to read audio file", err)
		return
	}

	ctxzap.Info(ctx, "submitting audio answer", zap.Int64("size_bytes", header.Size))

	result, err := h.usecase.SubmitAudioAnswer(ctx, interviewID, questionID,
		audioData, header.Filename, r.FormValue("callback_url"))
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// AttachDocument handles POST /interview/{id}/document/{question_id}
func (h *Handler) AttachDocument(w http.ResponseWriter, r *http.Request) {
	interviewID := chi.URLParam(r, "id")
	questionID := chi.URLParam(r, "question_id")
	ctx := logger.AddFields(r.Context(),
		zap.String("interview_id", interviewID),
		zap.String("question_id", questionID),
		zap.String("action", "AttachDocument"),
	)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		ctxzap.Error(ctx, "failed to parse multipart form", zap.Error(err))
		h.respondError(ctx, w, http.StatusBadRequest, "failed to parse form", err)
		return
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		ctxzap.Error(ctx, "missing document file", zap.Error(err))
		h.respondError(ctx, w, http.StatusBadRequest, "document file is required", err)
		return
	}
	defer file.Close()

	doc, err := h.usecase.AttachDocument(ctx, interviewID, questionID, header)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, doc)
}

// GetVoiceState handles GET /interview/{id}/voice
func (h *Handler) GetVoiceState(w http.ResponseWriter, r *http.Request) {
	interviewID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("interview_id", interviewID),
		zap.String("action", "GetVoiceState"),
	)

	state, err := h.usecase.VoiceState(ctx, interviewID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, state)
}

// StopCapture handles POST /interview/{id}/voice/stop
func (h *Handler) StopCapture(w http.ResponseWriter, r *http.Request) {
	interviewID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("interview_id", interviewID),
		zap.String("action", "StopCapture"),
	)

	state, err := h.usecase.StopCapture(ctx, interviewID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, state)
}

// SetInputMode handles POST /interview/{id}/voice/mode
func (h *Handler) SetInputMode(w http.ResponseWriter, r *http.Request) {
	interviewID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("interview_id", interviewID),
		zap.String("action", "SetInputMode"),
	)

	var req entity.SetInputModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	state, err := h.usecase.SetInputMode(ctx, interviewID, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, state)
}

// ReplayQuestion handles POST /interview/{id}/voice/replay
func (h *Handler) ReplayQuestion(w http.ResponseWriter, r *http.Request) {
	interviewID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("interview_id", interviewID),
		zap.String("action", "ReplayQuestion"),
	)

	state, err := h.usecase.ReplayQuestion(ctx, interviewID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, state)
}

// GetResult handles GET /interview/{id}/result
func (h *Handler) GetResult(w http.ResponseWriter, r *http.Request) {
	interviewID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("interview_id", interviewID),
		zap.String("action", "GetResult"),
	)

	result, err := h.usecase.GetResult(ctx, interviewID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// RetryScoring handles POST /interview/{id}/result/retry
func (h *Handler) RetryScoring(w http.ResponseWriter, r *http.Request) {
	interviewID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("interview_id", interviewID),
		zap.String("action", "RetryScoring"),
	)

	state, err := h.usecase.RetryScoring(ctx, interviewID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusAccepted, state)
}

// ExportResult handles GET /interview/{id}/result/export?format=md|pdf|docx
func (h *Handler) ExportResult(w http.ResponseWriter, r *http.Request) {
	interviewID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("interview_id", interviewID),
		zap.String("action", "ExportResult"),
	)

	format := entity.ResultFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = entity.FormatMarkdown
	}

	content, contentType, filename, err := h.usecase.ExportResult(ctx, interviewID, format)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Attachment(w, contentType, filename, content)
}

// CancelInterview handles POST /interview/{id}/cancel
func (h *Handler) CancelInterview(w http.ResponseWriter, r *http.Request) {
	interviewID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("interview_id", interviewID),
		zap.String("action", "CancelInterview"),
	)

	state, err := h.usecase.CancelInterview(ctx, interviewID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, state)
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	ctxzap.Error(ctx, message, zap.Error(err))
	h.respondJSON(w, status, entity.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	if errors.Is(err, entity.ErrInterviewNotFound) || errors.Is(err, entity.ErrDocumentNotFound) || errors.Is(err, entity.ErrQuestionNotFound) {
		h.respondError(ctx, w, http.StatusNotFound, "resource not found", err)
	} else if errors.Is(err, entity.ErrInvalidParameter) || errors.Is(err, entity.ErrMissingField) || errors.Is(err, entity.ErrInvalidInputMode) || errors.Is(err, entity.ErrQuestionNotCurrent) || errors.Is(err, entity.ErrQuestionNotInCatalog) {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid parameter", err)
	} else if errors.Is(err, entity.ErrInterviewNotActive) || errors.Is(err, entity.ErrInterviewCanceled) || errors.Is(err, entity.ErrInterviewComplete) || errors.Is(err, entity.ErrNoResult) || errors.Is(err, entity.ErrInterviewNotDone) || errors.Is(err, entity.ErrVoiceNotActive) {
		h.respondError(ctx, w, http.StatusConflict, "invalid interview state", err)
	} else if errors.Is(err, entity.ErrInvalidExtension) || errors.Is(err, entity.ErrFileTooLarge) || errors.Is(err, entity.ErrInvalidFile) {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid file", err)
	} else {
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}
