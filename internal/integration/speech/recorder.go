package speech

import (
	"context"
	"io"
	"net/http"

	"github.com/claimwise/intake-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// StartRecording implements voice.Recorder. The platform streams raw audio on
// the record endpoint until the capture is stopped; stop cancels the stream
// and whatever was received so far becomes the recording. The voice machine
// enforces its own ceiling, so the stream never runs unbounded.
func (c *Connector) StartRecording(ctx context.Context) (<-chan entity.Recording, func(), error) {
	ctx, cancel := context.WithCancel(ctx)

	body, err := c.connector.DoStreamRequest(ctx, http.MethodPost, c.config.RecordEndpoint, nil)
	if err != nil {
		cancel()
		return nil, nil, err
	}

	stopped := make(chan entity.Recording, 1)

	go func() {
		defer close(stopped)
		defer body.Close()

		audio, err := io.ReadAll(body)
		if err != nil && ctx.Err() == nil {
			ctxzap.Warn(ctx, "fallback recording stream failed", zap.Error(err))
		}

		stopped <- entity.Recording{Audio: audio, ContentType: "audio/wav"}
	}()

	return stopped, cancel, nil
}
