package entity

// VoiceState models the per-question voice capture lifecycle.
type VoiceState string

const (
	VoiceStateIdle              VoiceState = "IDLE"
	VoiceStateSpeaking          VoiceState = "SPEAKING"
	VoiceStateListening         VoiceState = "LISTENING"
	VoiceStateRecordingFallback VoiceState = "RECORDING_FALLBACK"
)

// InputMode selects between voice capture and typed answers.
type InputMode string

const (
	InputModeVoice InputMode = "VOICE"
	InputModeTyped InputMode = "TYPED"
)

func (m InputMode) Validate() error {
	switch m {
	case InputModeVoice, InputModeTyped:
		return nil
	default:
		return ErrInvalidInputMode
	}
}

// RecognitionEventKind identifies a streamed recognizer event.
type RecognitionEventKind string

const (
	RecognitionStarted RecognitionEventKind = "started"
	RecognitionInterim RecognitionEventKind = "interim"
	RecognitionFinal   RecognitionEventKind = "final"
	RecognitionError   RecognitionEventKind = "error"
	RecognitionEnded   RecognitionEventKind = "ended"
)

// RecognitionEvent is one typed event on a recognizer stream. Text is set for
// interim/final events, Reason for error events.
type RecognitionEvent struct {
	Kind   RecognitionEventKind `json:"kind"`
	Text   string               `json:"text,omitempty"`
	Reason string               `json:"reason,omitempty"`
}

// Recording is the product of the fixed-duration fallback recorder.
type Recording struct {
	Audio       []byte
	ContentType string
}
