// Package voice drives the per-question capture lifecycle: speak the question
// aloud, then capture an answer through live recognition or the fixed-duration
// recording fallback. The machine is an explicit cancellable state machine; a
// generation counter invalidates callbacks from replaced sessions so a stale
// recognizer can never mutate the transcript of a newer question.
package voice

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/claimwise/intake-backend/internal/entity"
	"go.uber.org/zap"
)

const (
	// DefaultFallbackCeiling bounds how long the fallback recorder may hold
	// the audio device when the user never stops it manually.
	DefaultFallbackCeiling = 10 * time.Second

	// DefaultSettleDelay is the pause between a finished capture and the
	// auto-submission of its transcript.
	DefaultSettleDelay = 400 * time.Millisecond

	// FallbackPlaceholder stands in for a transcript on the fallback path,
	// where no live transcription is available.
	FallbackPlaceholder = "[voice answer recorded]"
)

// Config tunes machine timing. Zero values fall back to the defaults above.
type Config struct {
	FallbackCeiling time.Duration
	SettleDelay     time.Duration
}

func (c Config) withDefaults() Config {
	if c.FallbackCeiling <= 0 {
		c.FallbackCeiling = DefaultFallbackCeiling
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = DefaultSettleDelay
	}
	return c
}

// Machine is the voice capture session for one interview. Each question visit
// arms a new generation; at most one capture is active at a time.
type Machine struct {
	mu sync.Mutex

	interviewID string
	synth       Synthesizer
	recognizer  Recognizer
	recorder    Recorder
	sink        SubmitSink
	cfg         Config
	logger      *zap.Logger

	state    entity.VoiceState
	mode     entity.InputMode
	question entity.Question
	active   bool // a question has been armed

	gen          int
	finalText    string
	interim      string
	elapsed      int
	warning      string
	cancelActive func()
}

// NewMachine creates an idle machine in voice mode.
func NewMachine(
	interviewID string,
	synth Synthesizer,
	recognizer Recognizer,
	recorder Recorder,
	sink SubmitSink,
	cfg Config,
	logger *zap.Logger,
) *Machine {
	return &Machine{
		interviewID: interviewID,
		synth:       synth,
		recognizer:  recognizer,
		recorder:    recorder,
		sink:        sink,
		cfg:         cfg.withDefaults(),
		logger:      logger,
		state:       entity.VoiceStateIdle,
		mode:        entity.InputModeVoice,
	}
}

// BeginQuestion arms the machine for a new question visit. Any session still
// running for a previous question is cancelled first and its late callbacks
// are discarded. In typed mode the machine stays idle.
func (m *Machine) BeginQuestion(ctx context.Context, q entity.Question) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.replaceSessionLocked()
	m.question = q
	m.active = true
	m.finalText = ""
	m.interim = ""
	m.elapsed = 0
	m.warning = ""

	if m.mode == entity.InputModeTyped {
		return
	}

	m.startSpeakingLocked(ctx)
}

// startSpeakingLocked transitions Idle -> Speaking and plays the question.
func (m *Machine) startSpeakingLocked(ctx context.Context) {
	gen := m.gen
	m.state = entity.VoiceStateSpeaking

	done, cancel := m.synth.Speak(ctx, m.question.Text)
	m.cancelActive = cancel

	go func() {
		err := <-done

		m.mu.Lock()
		defer m.mu.Unlock()
		if gen != m.gen {
			return
		}
		m.cancelActive = nil

		if err != nil {
			m.state = entity.VoiceStateIdle
			if errors.Is(err, context.Canceled) {
				// Deliberate stop while speaking; no capture follows and
				// no warning is owed.
				return
			}
			m.logger.Warn("speech synthesis failed",
				zap.String("interview_id", m.interviewID),
				zap.String("question_id", m.question.ID),
				zap.Error(err),
			)
			m.warning = "could not play the question aloud"
			return
		}

		m.onSpeechFinishedLocked(ctx)
	}()
}

// onSpeechFinishedLocked decides the capture path after playback. A
// document-only question is spoken for guidance but never auto-captures.
func (m *Machine) onSpeechFinishedLocked(ctx context.Context) {
	if m.question.DocRequirement == entity.DocOnly {
		m.state = entity.VoiceStateIdle
		return
	}

	if m.recognizer.Supported() {
		m.startListeningLocked(ctx)
		return
	}
	m.startFallbackLocked(ctx)
}

// startListeningLocked transitions Speaking -> Listening.
func (m *Machine) startListeningLocked(ctx context.Context) {
	gen := m.gen

	events, cancel, err := m.recognizer.Start(ctx)
	if err != nil {
		m.logger.Warn("recognizer failed to start",
			zap.String("interview_id", m.interviewID),
			zap.String("question_id", m.question.ID),
			zap.Error(err),
		)
		m.state = entity.VoiceStateIdle
		m.warning = "speech recognition unavailable, try again or type your answer"
		return
	}

	m.state = entity.VoiceStateListening
	m.elapsed = 0
	m.cancelActive = cancel
	m.startElapsedTickerLocked(gen)

	go m.consumeRecognition(ctx, gen, events)
}

func (m *Machine) consumeRecognition(ctx context.Context, gen int, events <-chan entity.RecognitionEvent) {
	for ev := range events {
		m.mu.Lock()
		if gen != m.gen {
			// Session was replaced mid-flight; discard everything else.
			m.mu.Unlock()
			return
		}

		switch ev.Kind {
		case entity.RecognitionStarted:
			// informational only
		case entity.RecognitionInterim:
			m.interim = ev.Text
		case entity.RecognitionFinal:
			m.appendFinalLocked(ev.Text)
			m.interim = ""
		case entity.RecognitionError:
			m.logger.Warn("recognizer error",
				zap.String("interview_id", m.interviewID),
				zap.String("question_id", m.question.ID),
				zap.String("reason", ev.Reason),
			)
			m.cancelActive = nil
			m.state = entity.VoiceStateIdle
			m.warning = "speech recognition was interrupted"
			m.mu.Unlock()
			return
		case entity.RecognitionEnded:
			m.appendFinalLocked(m.interim)
			m.interim = ""
			m.cancelActive = nil
			m.state = entity.VoiceStateIdle
			transcript := m.finalText
			m.scheduleAutoSubmitLocked(ctx, gen, transcript)
			m.mu.Unlock()
			return
		}
		m.mu.Unlock()
	}
}

// startFallbackLocked transitions Speaking -> RecordingFallback and arms the
// hard ceiling that bounds how long the recorder may run.
func (m *Machine) startFallbackLocked(ctx context.Context) {
	gen := m.gen

	stopped, stop, err := m.recorder.Start(ctx)
	if err != nil {
		m.logger.Warn("fallback recorder failed to start",
			zap.String("interview_id", m.interviewID),
			zap.String("question_id", m.question.ID),
			zap.Error(err),
		)
		m.state = entity.VoiceStateIdle
		m.warning = "microphone unavailable, type your answer instead"
		return
	}

	m.state = entity.VoiceStateRecordingFallback
	m.elapsed = 0
	m.cancelActive = stop
	m.startElapsedTickerLocked(gen)

	ceiling := time.AfterFunc(m.cfg.FallbackCeiling, func() {
		m.mu.Lock()
		sameGen := gen == m.gen
		m.mu.Unlock()
		if sameGen {
			stop()
		}
	})

	go func() {
		rec, ok := <-stopped
		ceiling.Stop()

		m.mu.Lock()
		defer m.mu.Unlock()
		if gen != m.gen {
			return
		}
		m.cancelActive = nil
		m.state = entity.VoiceStateIdle

		if !ok {
			return
		}
		m.logger.Debug("fallback recording captured",
			zap.String("interview_id", m.interviewID),
			zap.String("question_id", m.question.ID),
			zap.Int("bytes", len(rec.Audio)),
		)

		m.appendFinalLocked(FallbackPlaceholder)
		m.scheduleAutoSubmitLocked(ctx, gen, m.finalText)
	}()
}

// StopCapture is the user-triggered stop. The recognizer/recorder is asked to
// end; the terminal event on its stream drives the transition to Idle, so
// finalized transcript is never lost.
func (m *Machine) StopCapture() {
	m.mu.Lock()
	cancel := m.cancelActive
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// SetMode switches between voice and typed input. Switching to typed cancels
// any active capture, discards its late callbacks, and returns the transcript
// collected so far for the editable text field. Switching back to voice
// re-triggers speaking for the current question.
func (m *Machine) SetMode(ctx context.Context, mode entity.InputMode) (string, error) {
	if err := mode.Validate(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if mode == m.mode {
		return m.transcriptLocked(), nil
	}
	m.mode = mode

	if mode == entity.InputModeTyped {
		m.replaceSessionLocked()
		preserved := m.transcriptLocked()
		m.interim = ""
		m.finalText = preserved
		return preserved, nil
	}

	// back to voice
	if m.active {
		m.replaceSessionLocked()
		m.startSpeakingLocked(ctx)
	}
	return m.transcriptLocked(), nil
}

// Transcript returns the committed transcript plus any trailing interim text.
func (m *Machine) Transcript() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transcriptLocked()
}

// Teardown cancels whatever is running and returns the machine to Idle. Used
// when the interview ends or the claimant navigates away.
func (m *Machine) Teardown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replaceSessionLocked()
	m.active = false
}

// State returns a snapshot for the API layer.
func (m *Machine) State() entity.VoiceStateDTO {
	m.mu.Lock()
	defer m.mu.Unlock()

	dto := entity.VoiceStateDTO{
		State:          m.state,
		Mode:           m.mode,
		FinalText:      m.finalText,
		InterimText:    m.interim,
		ElapsedSeconds: m.elapsed,
		Warning:        m.warning,
	}
	if m.active {
		dto.QuestionID = m.question.ID
	}
	return dto
}

// replaceSessionLocked bumps the generation and cancels the active
// recognizer/recorder/synthesis. Cancellation is best effort immediate: we do
// not wait for teardown, late results are discarded by the generation check.
func (m *Machine) replaceSessionLocked() {
	m.gen++
	if m.cancelActive != nil {
		m.cancelActive()
		m.cancelActive = nil
	}
	m.state = entity.VoiceStateIdle
	m.elapsed = 0
	m.warning = ""
}

func (m *Machine) appendFinalLocked(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if m.finalText == "" {
		m.finalText = text
		return
	}
	m.finalText = m.finalText + " " + text
}

func (m *Machine) transcriptLocked() string {
	if m.interim == "" {
		return m.finalText
	}
	if m.finalText == "" {
		return m.interim
	}
	return m.finalText + " " + m.interim
}

// startElapsedTickerLocked increments the elapsed counter once per second
// while the generation is still live and the machine is capturing.
func (m *Machine) startElapsedTickerLocked(gen int) {
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		for range ticker.C {
			m.mu.Lock()
			if gen != m.gen ||
				(m.state != entity.VoiceStateListening && m.state != entity.VoiceStateRecordingFallback) {
				m.mu.Unlock()
				return
			}
			m.elapsed++
			m.mu.Unlock()
		}
	}()
}

// scheduleAutoSubmitLocked hands a non-empty transcript to the submit sink
// after the settle delay, unless the session has been replaced meanwhile.
func (m *Machine) scheduleAutoSubmitLocked(ctx context.Context, gen int, transcript string) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return
	}

	questionID := m.question.ID
	time.AfterFunc(m.cfg.SettleDelay, func() {
		m.mu.Lock()
		sameGen := gen == m.gen
		m.mu.Unlock()
		if !sameGen {
			return
		}
		m.sink.AutoSubmit(context.WithoutCancel(ctx), m.interviewID, questionID, transcript)
	})
}
