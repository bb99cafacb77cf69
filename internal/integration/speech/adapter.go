package speech

import (
	"context"

	"github.com/claimwise/intake-backend/internal/entity"
)

// recorderAdapter exposes the record stream under the voice.Recorder method
// set, which clashes with the recognizer's Start on the connector itself.
type recorderAdapter struct {
	start func(ctx context.Context) (<-chan entity.Recording, func(), error)
}

func (r recorderAdapter) Start(ctx context.Context) (<-chan entity.Recording, func(), error) {
	return r.start(ctx)
}

// Recorder returns the fallback recorder view of the connector.
func (c *Connector) Recorder() recorderAdapter {
	return recorderAdapter{start: c.StartRecording}
}

// Recorder returns the fallback recorder view of the mock connector.
func (m *MockConnector) Recorder() recorderAdapter {
	return recorderAdapter{start: m.StartRecording}
}
