package voice

import (
	"context"

	"github.com/claimwise/intake-backend/internal/entity"
)

// Synthesizer plays a question aloud. The returned channel delivers exactly
// one value when playback finishes (nil) or fails, then closes. cancel stops
// playback early; a cancelled synthesis still closes the channel.
type Synthesizer interface {
	Speak(ctx context.Context, text string) (done <-chan error, cancel func())
}

// Recognizer streams live speech recognition events. The stream emits
// Started, then any number of Interim/Final events, and terminates with
// either Error or Ended before closing. cancel requests an early end: the
// implementation emits Ended (with whatever was finalized) and closes.
type Recognizer interface {
	// Supported reports whether live recognition is available; when false the
	// machine takes the fixed-duration recording fallback.
	Supported() bool
	Start(ctx context.Context) (events <-chan entity.RecognitionEvent, cancel func(), err error)
}

// Recorder is the fallback capture path. The returned channel delivers the
// completed recording once the recorder stops (via stop or on its own) and
// then closes. Implementations release the audio device before delivering.
type Recorder interface {
	Start(ctx context.Context) (stopped <-chan entity.Recording, stop func(), err error)
}

// SubmitSink receives finished transcripts for auto-submission after the
// settle delay. Implementations run the document-policy gate themselves.
type SubmitSink interface {
	AutoSubmit(ctx context.Context, interviewID, questionID, transcript string)
}
