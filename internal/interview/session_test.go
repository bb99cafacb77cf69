package interview

import (
	"testing"
	"time"

	"github.com/claimwise/intake-backend/internal/catalog"
	"github.com/claimwise/intake-backend/internal/entity"
	"github.com/claimwise/intake-backend/internal/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStartIDs = []string{"A1_full_name", "A2_incident_date", "B3_mechanism", "B5_treatment", "C1_incident_report"}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	cat, err := catalog.New([]entity.Question{
		{ID: "A1_full_name", Section: entity.SectionClaimant, Text: "What is your full name?", Type: entity.QuestionTypeText, Required: true, DocRequirement: entity.DocNone},
		{ID: "A2_incident_date", Section: entity.SectionIncident, Text: "When did the incident happen?", Type: entity.QuestionTypeDate, Required: true, DocRequirement: entity.DocNone},
		{ID: "B3_mechanism", Section: entity.SectionIncident, Text: "How were you injured?", Type: entity.QuestionTypeRadio, Required: true, DocRequirement: entity.DocNone, Options: []string{"fall", "chemical", "machinery", "other"}},
		{ID: "B5_treatment", Section: entity.SectionTreatment, Text: "What treatment did you receive?", Type: entity.QuestionTypeTextarea, Required: true, DocRequirement: entity.DocNone},
		{ID: "C1_incident_report", Section: entity.SectionEvidence, Text: "Describe or attach the incident report.", Type: entity.QuestionTypeTextarea, Required: true, DocRequirement: entity.DocOptional},
		{ID: "C2_documents_proof", Section: entity.SectionEvidence, Text: "Describe the exposure and attach proof.", Type: entity.QuestionTypeTextarea, Required: true, DocRequirement: entity.DocRequired},
		{ID: "C3_medical_records", Section: entity.SectionEvidence, Text: "Attach your medical records.", Type: entity.QuestionTypeFile, Required: true, DocRequirement: entity.DocOnly},
	}, testStartIDs)
	require.NoError(t, err)
	return cat
}

func testEngine(t *testing.T) *rules.Engine {
	t.Helper()
	eng, err := rules.New(rules.DefaultSpecs())
	require.NoError(t, err)
	return eng
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s, err := New(testCatalog(t), testEngine(t), testStartIDs)
	require.NoError(t, err)
	return s
}

func textAnswer(text string) entity.Answer {
	return entity.Answer{Text: text, AnsweredAt: time.Now().UTC()}
}

func TestNewValidation(t *testing.T) {
	cat := testCatalog(t)
	eng := testEngine(t)

	_, err := New(cat, eng, nil)
	assert.ErrorIs(t, err, entity.ErrEmptyStartSequence)

	_, err = New(cat, eng, []string{"A1_full_name", "unknown"})
	assert.ErrorIs(t, err, entity.ErrQuestionNotInCatalog)
}

func TestCommitAdvancesPointer(t *testing.T) {
	s := newTestSession(t)
	require.Equal(t, 0, s.Pointer())

	require.NoError(t, s.Commit("A1_full_name", textAnswer("Jordan Reyes")))
	assert.Equal(t, 1, s.Pointer())

	q, err := s.Current()
	require.NoError(t, err)
	assert.Equal(t, "A2_incident_date", q.ID)

	a, ok := s.Answer("A1_full_name")
	require.True(t, ok)
	assert.Equal(t, "Jordan Reyes", a.Text)
	assert.False(t, a.AnsweredAt.IsZero())
}

func TestCommitRejectsUnknownAndUnqueued(t *testing.T) {
	s := newTestSession(t)

	err := s.Commit("nope", textAnswer("x"))
	assert.ErrorIs(t, err, entity.ErrQuestionNotInCatalog)

	// In the catalog but not yet injected into the queue.
	err = s.Commit("C2_documents_proof", textAnswer("x"))
	assert.ErrorIs(t, err, entity.ErrQuestionNotFound)
}

func TestQueueGrowsMonotonically(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.Commit("A1_full_name", textAnswer("Jordan Reyes")))
	require.NoError(t, s.Commit("A2_incident_date", textAnswer("2026-08-12")))

	before := s.Queue()
	require.NoError(t, s.Commit("B3_mechanism", textAnswer("chemical")))
	after := s.Queue()

	// The queue only ever grows at the tail; committed prefix is untouched.
	require.Greater(t, len(after), len(before))
	assert.Equal(t, before, after[:len(before)])
	assert.Equal(t, "C2_documents_proof", after[len(after)-1])
}

func TestInjectionIsIdempotent(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.Commit("A1_full_name", textAnswer("Jordan Reyes")))
	require.NoError(t, s.Commit("A2_incident_date", textAnswer("2026-08-12")))
	require.NoError(t, s.Commit("B3_mechanism", textAnswer("chemical")))
	lenAfterFirst := len(s.Queue())

	// Go back and re-answer with the same trigger value.
	s.GoTo(2)
	require.NoError(t, s.Commit("B3_mechanism", textAnswer("chemical")))

	assert.Equal(t, lenAfterFirst, len(s.Queue()))
}

func TestInjectionSkipsUnknownQuestion(t *testing.T) {
	eng, err := rules.New([]rules.RuleSpec{
		{Trigger: "A1_full_name", Predicate: rules.PredicateMatches, Value: ".", Inject: "ghost_question"},
	})
	require.NoError(t, err)

	s, err := New(testCatalog(t), eng, testStartIDs)
	require.NoError(t, err)

	require.NoError(t, s.Commit("A1_full_name", textAnswer("Jordan Reyes")))
	assert.Len(t, s.Queue(), len(testStartIDs))
}

func TestFrontier(t *testing.T) {
	s := newTestSession(t)
	assert.Equal(t, -1, s.Frontier())

	require.NoError(t, s.Commit("A1_full_name", textAnswer("Jordan Reyes")))
	assert.Equal(t, 0, s.Frontier())

	require.NoError(t, s.Commit("A2_incident_date", textAnswer("2026-08-12")))
	assert.Equal(t, 1, s.Frontier())
}

func TestGoToBounds(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.Commit("A1_full_name", textAnswer("Jordan Reyes")))
	require.NoError(t, s.Commit("A2_incident_date", textAnswer("2026-08-12")))
	// pointer at 2, frontier at 1

	tests := []struct {
		name      string
		requested int
		want      int
	}{
		{"backward is unconditional", 0, 0},
		{"forward to frontier+1", 2, 2},
		{"forward past frontier clamps", 4, 2},
		{"negative clamps to zero", -3, 0},
		{"past tail clamps", 99, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.GoTo(tt.requested))
		})
	}
}

func TestAdvanceSkipsAnsweredQuestions(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.Commit("A1_full_name", textAnswer("Jordan Reyes")))
	require.NoError(t, s.Commit("A2_incident_date", textAnswer("2026-08-12")))
	require.NoError(t, s.Commit("B3_mechanism", textAnswer("fall")))

	// Re-answer the first question; the pointer must jump over the already
	// answered span straight to the first unanswered index.
	s.GoTo(0)
	require.NoError(t, s.Commit("A1_full_name", textAnswer("Jordan A. Reyes")))
	assert.Equal(t, 3, s.Pointer())
}

func TestIsComplete(t *testing.T) {
	s := newTestSession(t)
	assert.False(t, s.IsComplete())

	require.NoError(t, s.Commit("A1_full_name", textAnswer("Jordan Reyes")))
	require.NoError(t, s.Commit("A2_incident_date", textAnswer("2026-08-12")))
	require.NoError(t, s.Commit("B3_mechanism", textAnswer("fall")))
	require.NoError(t, s.Commit("B5_treatment", textAnswer("rested at home")))
	assert.False(t, s.IsComplete())

	require.NoError(t, s.Commit("C1_incident_report", textAnswer("report filed with supervisor")))
	assert.True(t, s.IsComplete())
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.Commit("A1_full_name", textAnswer("Jordan Reyes")))
	require.NoError(t, s.Commit("A2_incident_date", textAnswer("2026-08-12")))
	require.NoError(t, s.Commit("B3_mechanism", textAnswer("chemical")))

	snap := s.Snapshot()

	restored, err := Restore(testCatalog(t), testEngine(t), snap)
	require.NoError(t, err)

	assert.Equal(t, s.Queue(), restored.Queue())
	assert.Equal(t, s.Pointer(), restored.Pointer())
	assert.Equal(t, s.Frontier(), restored.Frontier())
	assert.Equal(t, s.AnsweredCount(), restored.AnsweredCount())

	a, ok := restored.Answer("B3_mechanism")
	require.True(t, ok)
	assert.Equal(t, "chemical", a.Text)
}

func TestRestoreRejectsBadSnapshots(t *testing.T) {
	cat := testCatalog(t)
	eng := testEngine(t)

	_, err := Restore(cat, eng, entity.Snapshot{
		Queue:   testStartIDs,
		Pointer: len(testStartIDs),
	})
	assert.ErrorContains(t, err, "pointer")

	_, err = Restore(cat, eng, entity.Snapshot{
		Queue:   testStartIDs,
		Pointer: 0,
		Answers: []entity.Answer{{QuestionID: "C2_documents_proof", Text: "x"}},
	})
	assert.ErrorContains(t, err, "unqueued")
}

// TestChemicalExposureFlow walks the reference scenario end to end: a
// chemical-exposure answer injects the proof question, hospitalization injects
// the medical-records question, and navigation stays bounded throughout.
func TestChemicalExposureFlow(t *testing.T) {
	s := newTestSession(t)
	require.Len(t, s.Queue(), 5)

	require.NoError(t, s.Commit("A1_full_name", textAnswer("Jordan Reyes")))
	require.NoError(t, s.Commit("A2_incident_date", textAnswer("2026-08-12")))

	// Chemical mechanism appends the proof follow-up at the tail.
	require.NoError(t, s.Commit("B3_mechanism", textAnswer("chemical")))
	require.Len(t, s.Queue(), 6)
	assert.Equal(t, "C2_documents_proof", s.Queue()[5])
	assert.Equal(t, 3, s.Pointer())

	// Forward navigation cannot pass frontier+1.
	assert.Equal(t, 3, s.GoTo(5))

	// Hospitalization appends the medical-records follow-up.
	require.NoError(t, s.Commit("B5_treatment", textAnswer("I was hospitalized overnight")))
	require.Len(t, s.Queue(), 7)
	assert.Equal(t, "C3_medical_records", s.Queue()[6])

	require.NoError(t, s.Commit("C1_incident_report", textAnswer("report filed")))
	require.NoError(t, s.Commit("C2_documents_proof", entity.Answer{Text: "exposure description", DocumentID: "doc-1"}))
	assert.False(t, s.IsComplete())

	require.NoError(t, s.Commit("C3_medical_records", entity.Answer{DocumentID: "doc-2"}))
	assert.True(t, s.IsComplete())
	assert.Equal(t, 7, s.AnsweredCount())
}
