// Package speech adapts the external speech platform (text-to-speech,
// streaming recognition, batch transcription, fallback recording) to the
// interfaces the voice machine consumes.
package speech

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/avast/retry-go/v4"
	"github.com/claimwise/intake-backend/internal/config"
	"github.com/claimwise/intake-backend/internal/entity"
	"github.com/claimwise/intake-backend/internal/integration/common"
	pkghttp "github.com/claimwise/intake-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Connector struct {
	config    config.SpeechConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.SpeechConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// TranscribeBytes transcribes a complete audio recording (batch path, used
// for uploaded audio answers).
func (c *Connector) TranscribeBytes(ctx context.Context, audioData []byte, filename string) (string, error) {
	if len(audioData) == 0 {
		return "", fmt.Errorf("empty audio data provided")
	}

	hash := sha256.Sum256(audioData)
	checksum := hex.EncodeToString(hash[:])

	ctxzap.Info(ctx, "transcribing audio via speech service",
		zap.String("filename", filename),
		zap.String("checksum", checksum),
		zap.Int("size", len(audioData)),
	)

	prepareBody := func(writer *multipart.Writer) error {
		part, err := writer.CreateFormFile("file", filename)
		if err != nil {
			return fmt.Errorf("create form file: %w", err)
		}

		if _, err := part.Write(audioData); err != nil {
			return fmt.Errorf("write file content: %w", err)
		}

		if err := writer.WriteField("checksum", checksum); err != nil {
			return fmt.Errorf("write checksum field: %w", err)
		}

		return nil
	}

	var resp entity.STTTranscribeResponse
	err := retry.Do(func() error {
		return c.connector.DoMultipartRequest(ctx, http.MethodPost, c.config.TranscribeEndpoint, prepareBody, &resp)
	}, append(c.config.Retry.ToRetryOptions(), retry.Context(ctx))...)
	if err != nil {
		return "", fmt.Errorf("failed to transcribe audio: %w", err)
	}

	ctxzap.Info(ctx, "audio transcribed successfully",
		zap.Int("transcription_length", len(resp.Transcription)),
		zap.Float64("confidence", resp.Confidence),
	)

	return resp.Transcription, nil
}

// Speak implements voice.Synthesizer: the synthesize call returns once the
// platform has finished reading the question aloud.
func (c *Connector) Speak(ctx context.Context, text string) (<-chan error, func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)

	go func() {
		defer close(done)

		var resp entity.TTSSynthesizeResponse
		err := c.connector.DoRequest(ctx, http.MethodPost, c.config.SynthesizeEndpoint,
			&entity.TTSSynthesizeRequest{Text: text}, &resp)
		if err != nil {
			done <- fmt.Errorf("synthesize speech: %w", err)
			return
		}

		ctxzap.Debug(ctx, "question spoken",
			zap.Int64("duration_ms", resp.DurationMs),
		)
		done <- nil
	}()

	return done, cancel
}

// Supported implements voice.Recognizer.
func (c *Connector) Supported() bool {
	return c.config.RecognizerSupported
}

// Start implements voice.Recognizer: it opens a streaming recognition request
// and decodes newline-delimited JSON events onto the returned channel. cancel
// ends the stream; the channel always terminates with Error or Ended.
func (c *Connector) Start(ctx context.Context) (<-chan entity.RecognitionEvent, func(), error) {
	ctx, cancel := context.WithCancel(ctx)

	body, err := c.connector.DoStreamRequest(ctx, http.MethodPost, c.config.RecognizeEndpoint, nil)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("start recognition stream: %w", err)
	}

	events := make(chan entity.RecognitionEvent, 8)

	go func() {
		defer close(events)
		defer body.Close()

		decoder := json.NewDecoder(body)
		for {
			var ev entity.RecognitionEvent
			if err := decoder.Decode(&ev); err != nil {
				if err == io.EOF || ctx.Err() != nil {
					// user stop or natural end of stream
					events <- entity.RecognitionEvent{Kind: entity.RecognitionEnded}
					return
				}
				events <- entity.RecognitionEvent{Kind: entity.RecognitionError, Reason: err.Error()}
				return
			}

			switch ev.Kind {
			case entity.RecognitionError:
				events <- ev
				return
			case entity.RecognitionEnded:
				events <- ev
				return
			default:
				events <- ev
			}
		}
	}()

	return events, cancel, nil
}
