package entity

// TTSSynthesizeRequest asks the speech platform to read a question aloud.
type TTSSynthesizeRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice,omitempty"`
}

// TTSSynthesizeResponse carries the synthesized audio back to the caller.
type TTSSynthesizeResponse struct {
	Audio       string `json:"audio"` // base64 encoded
	ContentType string `json:"content_type"`
	DurationMs  int64  `json:"duration_ms"`
}

// STTTranscribeResponse is the batch transcription result for uploaded audio.
type STTTranscribeResponse struct {
	Transcription string  `json:"transcription"`
	Confidence    float64 `json:"confidence"`
}
