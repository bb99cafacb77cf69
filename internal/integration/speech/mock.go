package speech

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/claimwise/intake-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector is the local-development stand-in for the speech platform.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

const mockTranscription = "I slipped on a wet floor in the warehouse and twisted my ankle. " +
	"I reported it to my supervisor the same afternoon and saw a doctor two days later."

// TranscribeBytes returns a canned transcription for any non-empty audio.
func (m *MockConnector) TranscribeBytes(ctx context.Context, audioData []byte, filename string) (string, error) {
	if len(audioData) == 0 {
		return "", fmt.Errorf("empty audio data provided")
	}

	ctxzap.Info(ctx, "[MOCK] transcribing audio",
		zap.String("filename", filename),
		zap.Int("size", len(audioData)),
	)

	return mockTranscription, nil
}

// Speak pretends to read the question aloud.
func (m *MockConnector) Speak(ctx context.Context, text string) (<-chan error, func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)

	go func() {
		defer close(done)
		select {
		case <-time.After(50 * time.Millisecond):
			m.logger.Debug("[MOCK] question spoken", zap.Int("text_length", len(text)))
			done <- nil
		case <-ctx.Done():
			done <- ctx.Err()
		}
	}()

	return done, cancel
}

// Supported reports live recognition as available.
func (m *MockConnector) Supported() bool {
	return true
}

// Start streams the canned transcription word by word as interim events,
// finalizes it, and ends. cancel ends the stream early with whatever was
// already emitted.
func (m *MockConnector) Start(ctx context.Context) (<-chan entity.RecognitionEvent, func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	events := make(chan entity.RecognitionEvent, 8)

	go func() {
		defer close(events)
		events <- entity.RecognitionEvent{Kind: entity.RecognitionStarted}

		words := strings.Fields(mockTranscription)
		var interim []string
		for _, word := range words {
			select {
			case <-ctx.Done():
				events <- entity.RecognitionEvent{Kind: entity.RecognitionEnded}
				return
			case <-time.After(20 * time.Millisecond):
			}
			interim = append(interim, word)
			events <- entity.RecognitionEvent{Kind: entity.RecognitionInterim, Text: strings.Join(interim, " ")}
		}

		events <- entity.RecognitionEvent{Kind: entity.RecognitionFinal, Text: mockTranscription}
		events <- entity.RecognitionEvent{Kind: entity.RecognitionEnded}
	}()

	return events, cancel, nil
}

// StartRecording pretends to hold the microphone until stopped.
func (m *MockConnector) StartRecording(ctx context.Context) (<-chan entity.Recording, func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	stopped := make(chan entity.Recording, 1)

	go func() {
		defer close(stopped)
		<-ctx.Done()
		stopped <- entity.Recording{Audio: []byte("mock-audio"), ContentType: "audio/wav"}
	}()

	return stopped, cancel, nil
}
