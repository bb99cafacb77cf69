package interview

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers intake interview routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/interview", func(r chi.Router) {
		r.Post("/", h.StartInterview)
		r.Get("/{id}", h.GetInterview)
		r.Post("/{id}/goto", h.GoTo)
		r.Post("/{id}/answer/{question_id}", h.SubmitTextAnswer)
		r.Post("/{id}/answer/audio/{question_id}", h.SubmitAudioAnswer)
		r.Post("/{id}/document/{question_id}", h.AttachDocument)

		r.Get("/{id}/voice", h.GetVoiceState)
		r.Post("/{id}/voice/stop", h.StopCapture)
		r.Post("/{id}/voice/mode", h.SetInputMode)
		r.Post("/{id}/voice/replay", h.ReplayQuestion)

		r.Get("/{id}/result", h.GetResult)
		r.Post("/{id}/result/retry", h.RetryScoring)
		r.Get("/{id}/result/export", h.ExportResult)
		r.Post("/{id}/cancel", h.CancelInterview)
	})
}
