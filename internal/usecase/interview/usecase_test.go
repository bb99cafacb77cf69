package interview

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"sync"
	"testing"
	"time"

	"github.com/claimwise/intake-backend/internal/catalog"
	"github.com/claimwise/intake-backend/internal/config"
	"github.com/claimwise/intake-backend/internal/entity"
	"github.com/claimwise/intake-backend/internal/pkg/formatter"
	"github.com/claimwise/intake-backend/internal/pkg/validator"
	"github.com/claimwise/intake-backend/internal/rules"
	"github.com/claimwise/intake-backend/internal/store"
	"github.com/claimwise/intake-backend/internal/voice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// --- in-memory repositories ---

type memInterviewRepo struct {
	mu    sync.Mutex
	items map[string]entity.Interview
}

func newMemInterviewRepo() *memInterviewRepo {
	return &memInterviewRepo{items: make(map[string]entity.Interview)}
}

func (r *memInterviewRepo) CreateInterview(_ context.Context, interview entity.Interview) (*entity.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	interview.CreatedAt = time.Now().UTC()
	interview.UpdatedAt = interview.CreatedAt
	r.items[interview.ID] = interview
	out := interview
	return &out, nil
}

func (r *memInterviewRepo) GetInterviewByID(_ context.Context, id string) (*entity.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, entity.ErrInterviewNotFound
	}
	out := item
	return &out, nil
}

func (r *memInterviewRepo) UpdateInterviewSnapshot(_ context.Context, id string, queue []string, pointer int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return entity.ErrInterviewNotFound
	}
	item.Queue = append([]string(nil), queue...)
	item.Pointer = pointer
	item.UpdatedAt = time.Now().UTC()
	r.items[id] = item
	return nil
}

func (r *memInterviewRepo) UpdateInterviewStatus(_ context.Context, id string, status entity.InterviewStatus) (*entity.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, entity.ErrInterviewNotFound
	}
	item.Status = status
	item.UpdatedAt = time.Now().UTC()
	r.items[id] = item
	out := item
	return &out, nil
}

func (r *memInterviewRepo) UpdateInterviewResult(_ context.Context, id string, status entity.InterviewStatus, result *entity.ScoringOutcome, errMsg *string) (*entity.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, entity.ErrInterviewNotFound
	}
	item.Status = status
	item.Result = result
	item.Error = errMsg
	item.UpdatedAt = time.Now().UTC()
	r.items[id] = item
	out := item
	return &out, nil
}

func (r *memInterviewRepo) DeleteInterview(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return entity.ErrInterviewNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *memInterviewRepo) status(id string) entity.InterviewStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[id].Status
}

type memAnswerRepo struct {
	mu    sync.Mutex
	items map[string][]entity.Answer
}

func newMemAnswerRepo() *memAnswerRepo {
	return &memAnswerRepo{items: make(map[string][]entity.Answer)}
}

func (r *memAnswerRepo) UpsertAnswer(_ context.Context, interviewID string, answer entity.Answer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing := r.items[interviewID]
	for i, a := range existing {
		if a.QuestionID == answer.QuestionID {
			existing[i] = answer
			return nil
		}
	}
	r.items[interviewID] = append(existing, answer)
	return nil
}

func (r *memAnswerRepo) ListAnswersByInterview(_ context.Context, interviewID string) ([]entity.Answer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.Answer(nil), r.items[interviewID]...), nil
}

type memDocumentRepo struct {
	mu    sync.Mutex
	items []entity.Document
}

func (r *memDocumentRepo) AddDocument(_ context.Context, doc entity.Document, _ []byte) (*entity.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc.CreatedAt = time.Now().UTC()
	r.items = append(r.items, doc)
	out := doc
	return &out, nil
}

func (r *memDocumentRepo) GetDocument(_ context.Context, id string) (*entity.Document, []byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.items {
		if d.ID == id {
			out := d
			return &out, nil, nil
		}
	}
	return nil, nil, entity.ErrDocumentNotFound
}

func (r *memDocumentRepo) ListDocumentsByInterview(_ context.Context, interviewID string) ([]entity.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Document
	for _, d := range r.items {
		if d.InterviewID == interviewID {
			out = append(out, d)
		}
	}
	return out, nil
}

// --- fake connectors ---

type fakeSpeech struct {
	transcription string
	err           error
}

func (f *fakeSpeech) TranscribeBytes(context.Context, []byte, string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.transcription, nil
}

type fakeScoring struct {
	mu      sync.Mutex
	outcome *entity.ScoringOutcome
	err     error
	calls   int
}

func (f *fakeScoring) Score(context.Context, *entity.ScoringRequest) (*entity.ScoringOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := *f.outcome
	return &out, nil
}

func (f *fakeScoring) setError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

type fakeCallback struct {
	mu     sync.Mutex
	events []entity.CallbackEventType
}

func (f *fakeCallback) SendInterviewComplete(context.Context, string, string, *entity.CallbackInterviewCompleteData) {
	f.record(entity.CallbackEventTypeInterviewComplete)
}

func (f *fakeCallback) SendFinalResult(context.Context, string, string, *entity.ScoringOutcome) {
	f.record(entity.CallbackEventTypeFinalResult)
}

func (f *fakeCallback) SendError(context.Context, string, string, string, map[string]any) {
	f.record(entity.CallbackEventTypeError)
}

func (f *fakeCallback) record(ev entity.CallbackEventType) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
}

func (f *fakeCallback) sent() []entity.CallbackEventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entity.CallbackEventType(nil), f.events...)
}

// --- minimal voice platform (typed-mode tests never reach it) ---

type countingSynth struct {
	mu     sync.Mutex
	speaks int
}

func (s *countingSynth) Speak(context.Context, string) (<-chan error, func()) {
	s.mu.Lock()
	s.speaks++
	s.mu.Unlock()

	ch := make(chan error, 1)
	ch <- nil
	close(ch)
	return ch, func() {}
}

func (s *countingSynth) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speaks
}

type nullRecognizer struct{}

func (nullRecognizer) Supported() bool { return false }
func (nullRecognizer) Start(context.Context) (<-chan entity.RecognitionEvent, func(), error) {
	return nil, nil, errors.New("recognition unavailable")
}

type nullRecorder struct{}

func (nullRecorder) Start(context.Context) (<-chan entity.Recording, func(), error) {
	return nil, nil, errors.New("recording unavailable")
}

// --- fixture ---

var ucStartIDs = []string{"A1_full_name", "A2_incident_date", "B3_mechanism", "B5_treatment", "C1_incident_report"}

func ucCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	cat, err := catalog.New([]entity.Question{
		{ID: "A1_full_name", Section: entity.SectionClaimant, Text: "What is your full name?", Type: entity.QuestionTypeText, Required: true, DocRequirement: entity.DocNone},
		{ID: "A2_incident_date", Section: entity.SectionIncident, Text: "When did the incident happen?", Type: entity.QuestionTypeDate, Required: true, DocRequirement: entity.DocNone},
		{ID: "B3_mechanism", Section: entity.SectionIncident, Text: "How were you injured?", Type: entity.QuestionTypeRadio, Required: true, DocRequirement: entity.DocNone, Options: []string{"fall", "chemical", "machinery", "other"}},
		{ID: "B5_treatment", Section: entity.SectionTreatment, Text: "What treatment did you receive?", Type: entity.QuestionTypeTextarea, Required: true, DocRequirement: entity.DocNone},
		{ID: "C1_incident_report", Section: entity.SectionEvidence, Text: "Describe or attach the incident report.", Type: entity.QuestionTypeTextarea, Required: true, DocRequirement: entity.DocOptional},
		{ID: "C2_documents_proof", Section: entity.SectionEvidence, Text: "Describe the exposure and attach proof.", Type: entity.QuestionTypeTextarea, Required: true, DocRequirement: entity.DocRequired},
		{ID: "C3_medical_records", Section: entity.SectionEvidence, Text: "Attach your medical records.", Type: entity.QuestionTypeFile, Required: true, DocRequirement: entity.DocOnly},
	}, ucStartIDs)
	require.NoError(t, err)
	return cat
}

type ucFixture struct {
	uc         *InterviewUsecase
	interviews *memInterviewRepo
	answers    *memAnswerRepo
	documents  *memDocumentRepo
	speech     *fakeSpeech
	scoring    *fakeScoring
	callbacks  *fakeCallback
	synth      *countingSynth
}

func newUCFixture(t *testing.T) *ucFixture {
	t.Helper()

	eng, err := rules.New(rules.DefaultSpecs())
	require.NoError(t, err)

	f := &ucFixture{
		interviews: newMemInterviewRepo(),
		answers:    newMemAnswerRepo(),
		documents:  &memDocumentRepo{},
		speech:     &fakeSpeech{transcription: "I was exposed to cleaning chemicals"},
		scoring: &fakeScoring{outcome: &entity.ScoringOutcome{
			Rating: 4, Title: "Strong Case", Status: "pending", Score: 74, Confidence: 0.62,
		}},
		callbacks: &fakeCallback{},
		synth:     &countingSynth{},
	}

	f.uc = NewUsecase(
		f.interviews,
		f.answers,
		f.documents,
		validator.NewValidator(config.FileUploadConfig{
			MaxFileSize:      5 << 20,
			MaxAudioFileSize: 25 << 20,
			MaxUploadSize:    32 << 20,
		}),
		ucCatalog(t),
		eng,
		store.NewLive(time.Minute),
		formatter.NewFactory(),
		f.speech,
		f.scoring,
		f.callbacks,
		f.synth,
		nullRecognizer{},
		nullRecorder{},
		voice.Config{FallbackCeiling: 50 * time.Millisecond, SettleDelay: time.Millisecond},
		zap.NewNop(),
	)
	return f
}

func startTyped(t *testing.T, f *ucFixture) *entity.InterviewStateDTO {
	t.Helper()
	state, err := f.uc.StartInterview(context.Background(), &entity.StartInterviewRequest{
		InputMode: entity.InputModeTyped,
	})
	require.NoError(t, err)
	return state
}

func submitText(t *testing.T, f *ucFixture, id, questionID, text string) *entity.SubmitResultDTO {
	t.Helper()
	result, err := f.uc.SubmitTextAnswer(context.Background(), id, questionID, &entity.SubmitAnswerRequest{Text: text})
	require.NoError(t, err)
	return result
}

func fileHeader(t *testing.T, field, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	return form.File[field][0]
}

// --- tests ---

func TestStartInterview(t *testing.T) {
	f := newUCFixture(t)
	state := startTyped(t, f)

	assert.NotEmpty(t, state.ID)
	assert.Equal(t, entity.InterviewStatusInProgress, state.Status)
	assert.Equal(t, ucStartIDs, state.Queue)
	assert.Equal(t, 0, state.Pointer)
	assert.Equal(t, -1, state.Frontier)
	require.NotNil(t, state.Current)
	assert.Equal(t, "A1_full_name", state.Current.ID)
}

func TestSubmitAdvancesAndInjects(t *testing.T) {
	f := newUCFixture(t)
	state := startTyped(t, f)

	result := submitText(t, f, state.ID, "A1_full_name", "Jordan Reyes")
	require.True(t, result.Accepted)
	assert.Equal(t, "A2_incident_date", result.Interview.Current.ID)

	submitText(t, f, state.ID, "A2_incident_date", "2026-08-12")
	result = submitText(t, f, state.ID, "B3_mechanism", "chemical")
	require.True(t, result.Accepted)

	assert.Len(t, result.Interview.Queue, 6)
	assert.Equal(t, "C2_documents_proof", result.Interview.Queue[5])

	// The snapshot is persisted on every commit.
	persisted, err := f.interviews.GetInterviewByID(context.Background(), state.ID)
	require.NoError(t, err)
	assert.Len(t, persisted.Queue, 6)
	assert.Equal(t, 3, persisted.Pointer)
}

func TestSubmitRejectsNonCurrentQuestion(t *testing.T) {
	f := newUCFixture(t)
	state := startTyped(t, f)

	_, err := f.uc.SubmitTextAnswer(context.Background(), state.ID, "B5_treatment",
		&entity.SubmitAnswerRequest{Text: "rest"})
	assert.ErrorIs(t, err, entity.ErrQuestionNotCurrent)
}

func TestSubmitUnknownInterview(t *testing.T) {
	f := newUCFixture(t)

	_, err := f.uc.SubmitTextAnswer(context.Background(), "b5dbdf6e-8d5c-4eee-9f34-0e9a3d3f8f10",
		"A1_full_name", &entity.SubmitAnswerRequest{Text: "x"})
	assert.ErrorIs(t, err, entity.ErrInterviewNotFound)
}

func TestDocumentPolicyGate(t *testing.T) {
	f := newUCFixture(t)
	state := startTyped(t, f)

	submitText(t, f, state.ID, "A1_full_name", "Jordan Reyes")
	submitText(t, f, state.ID, "A2_incident_date", "2026-08-12")
	submitText(t, f, state.ID, "B3_mechanism", "chemical")
	submitText(t, f, state.ID, "B5_treatment", "rinsed the burn at the first aid station")
	submitText(t, f, state.ID, "C1_incident_report", "supervisor filed the report")

	// Pointer now at C2_documents_proof (document-required): text alone is
	// held, not errored.
	result := submitText(t, f, state.ID, "C2_documents_proof", "exposure to degreaser")
	assert.False(t, result.Accepted)
	assert.NotEmpty(t, result.Reason)
	assert.Equal(t, "C2_documents_proof", result.Interview.Current.ID)

	// Attaching the document unblocks the same submission.
	doc, err := f.uc.AttachDocument(context.Background(), state.ID, "C2_documents_proof",
		fileHeader(t, "document", "msds-sheet.pdf", []byte("%PDF-1.4 fake")))
	require.NoError(t, err)
	assert.Equal(t, "msds-sheet.pdf", doc.Filename)

	result = submitText(t, f, state.ID, "C2_documents_proof", "exposure to degreaser")
	assert.True(t, result.Accepted)
}

func TestAttachDocumentRejectsBadExtension(t *testing.T) {
	f := newUCFixture(t)
	state := startTyped(t, f)

	_, err := f.uc.AttachDocument(context.Background(), state.ID, "A1_full_name",
		fileHeader(t, "document", "malware.exe", []byte("MZ")))
	assert.ErrorIs(t, err, entity.ErrInvalidExtension)
}

func TestGoToClamping(t *testing.T) {
	f := newUCFixture(t)
	state := startTyped(t, f)

	submitText(t, f, state.ID, "A1_full_name", "Jordan Reyes")
	submitText(t, f, state.ID, "A2_incident_date", "2026-08-12")

	// Forward past the frontier lands on frontier+1.
	after, err := f.uc.GoTo(context.Background(), state.ID, &entity.GoToRequest{Index: 4})
	require.NoError(t, err)
	assert.Equal(t, 2, after.Pointer)

	// Backward is unconditional.
	after, err = f.uc.GoTo(context.Background(), state.ID, &entity.GoToRequest{Index: 0})
	require.NoError(t, err)
	assert.Equal(t, 0, after.Pointer)
	assert.Equal(t, "A1_full_name", after.Current.ID)
}

func TestSubmitAudioAnswerTranscribes(t *testing.T) {
	f := newUCFixture(t)
	state := startTyped(t, f)

	result, err := f.uc.SubmitAudioAnswer(context.Background(), state.ID, "A1_full_name",
		[]byte("fake-wav"), "answer.wav", "")
	require.NoError(t, err)
	require.True(t, result.Accepted)

	answers, err := f.answers.ListAnswersByInterview(context.Background(), state.ID)
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.Equal(t, f.speech.transcription, answers[0].Text)
}

func completeInterview(t *testing.T, f *ucFixture) string {
	t.Helper()
	state := startTyped(t, f)

	submitText(t, f, state.ID, "A1_full_name", "Jordan Reyes")
	submitText(t, f, state.ID, "A2_incident_date", "2026-08-12")
	submitText(t, f, state.ID, "B3_mechanism", "fall")
	submitText(t, f, state.ID, "B5_treatment", "ice pack and rest")

	result := submitText(t, f, state.ID, "C1_incident_report", "report filed with supervisor")
	require.True(t, result.Accepted)
	assert.Equal(t, entity.InterviewStatusScoring, result.Interview.Status)
	return state.ID
}

func TestCompletionTriggersScoring(t *testing.T) {
	f := newUCFixture(t)
	id := completeInterview(t, f)

	require.Eventually(t, func() bool {
		return f.interviews.status(id) == entity.InterviewStatusDone
	}, time.Second, 5*time.Millisecond)

	outcome, err := f.uc.GetResult(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 4, outcome.Rating)
	assert.Equal(t, "Strong Case", outcome.Title)

	assert.Equal(t, []entity.CallbackEventType{
		entity.CallbackEventTypeInterviewComplete,
		entity.CallbackEventTypeFinalResult,
	}, f.callbacks.sent())

	// Finished interviews accept no further answers.
	_, err = f.uc.SubmitTextAnswer(context.Background(), id, "C1_incident_report",
		&entity.SubmitAnswerRequest{Text: "late edit"})
	assert.ErrorIs(t, err, entity.ErrInterviewComplete)
}

func TestScoringFailureParksInError(t *testing.T) {
	f := newUCFixture(t)
	f.scoring.setError(errors.New("scoring service unavailable"))

	id := completeInterview(t, f)

	require.Eventually(t, func() bool {
		return f.interviews.status(id) == entity.InterviewStatusError
	}, time.Second, 5*time.Millisecond)

	_, err := f.uc.GetResult(context.Background(), id)
	assert.ErrorIs(t, err, entity.ErrNoResult)

	sent := f.callbacks.sent()
	require.Len(t, sent, 2)
	assert.Equal(t, entity.CallbackEventTypeError, sent[1])

	// Retry succeeds once the service recovers.
	f.scoring.setError(nil)
	_, err = f.uc.RetryScoring(context.Background(), id)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return f.interviews.status(id) == entity.InterviewStatusDone
	}, time.Second, 5*time.Millisecond)
}

func TestGetResultBeforeCompletion(t *testing.T) {
	f := newUCFixture(t)
	state := startTyped(t, f)

	_, err := f.uc.GetResult(context.Background(), state.ID)
	assert.ErrorIs(t, err, entity.ErrNoResult)
}

func TestExportResultMarkdown(t *testing.T) {
	f := newUCFixture(t)
	id := completeInterview(t, f)

	require.Eventually(t, func() bool {
		return f.interviews.status(id) == entity.InterviewStatusDone
	}, time.Second, 5*time.Millisecond)

	content, contentType, filename, err := f.uc.ExportResult(context.Background(), id, entity.FormatMarkdown)
	require.NoError(t, err)
	assert.Contains(t, contentType, "markdown")
	assert.Contains(t, filename, ".md")
	assert.Contains(t, string(content), "Jordan Reyes")
}

func TestExportResultBeforeCompletion(t *testing.T) {
	f := newUCFixture(t)
	state := startTyped(t, f)

	_, _, _, err := f.uc.ExportResult(context.Background(), state.ID, entity.FormatMarkdown)
	assert.ErrorIs(t, err, entity.ErrInterviewNotDone)
}

func TestCancelInterview(t *testing.T) {
	f := newUCFixture(t)
	state := startTyped(t, f)

	after, err := f.uc.CancelInterview(context.Background(), state.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InterviewStatusCanceled, after.Status)

	_, err = f.uc.SubmitTextAnswer(context.Background(), state.ID, "A1_full_name",
		&entity.SubmitAnswerRequest{Text: "too late"})
	assert.ErrorIs(t, err, entity.ErrInterviewCanceled)
}

func TestRuntimeRestoreAfterEviction(t *testing.T) {
	f := newUCFixture(t)
	state := startTyped(t, f)

	submitText(t, f, state.ID, "A1_full_name", "Jordan Reyes")
	submitText(t, f, state.ID, "A2_incident_date", "2026-08-12")

	// Simulate a TTL eviction of the live runtime.
	f.uc.live.Remove(state.ID)

	restored, err := f.uc.GetInterview(context.Background(), state.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, restored.Pointer)
	assert.Equal(t, 1, restored.Frontier)
	assert.Equal(t, 2, restored.Answered)

	// Submission continues against the restored session.
	result := submitText(t, f, state.ID, "B3_mechanism", "chemical")
	require.True(t, result.Accepted)
	assert.Len(t, result.Interview.Queue, 6)
}

func TestRestoreArmsVoiceForCurrentQuestion(t *testing.T) {
	f := newUCFixture(t)

	// Voice mode is the default; starting speaks the first question.
	state, err := f.uc.StartInterview(context.Background(), &entity.StartInterviewRequest{})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return f.synth.count() == 1 }, time.Second, 5*time.Millisecond)

	f.uc.live.Remove(state.ID)

	// The restore makes the question current again, so it is re-spoken.
	_, err = f.uc.GetInterview(context.Background(), state.ID)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return f.synth.count() == 2 }, time.Second, 5*time.Millisecond)
}

func TestAutoSubmitGoesThroughPolicyGate(t *testing.T) {
	f := newUCFixture(t)
	state := startTyped(t, f)

	f.uc.AutoSubmit(context.Background(), state.ID, "A1_full_name", "Jordan Reyes")

	after, err := f.uc.GetInterview(context.Background(), state.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, after.Pointer)
	assert.Equal(t, 0, after.Frontier)
}
