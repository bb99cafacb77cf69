// Package interview implements the queue engine of one intake interview: an
// append-only question queue with conditional follow-up injection, a pointer
// with bounded forward navigation, and the answered frontier.
package interview

import (
	"fmt"
	"time"

	"github.com/claimwise/intake-backend/internal/catalog"
	"github.com/claimwise/intake-backend/internal/entity"
	"github.com/claimwise/intake-backend/internal/rules"
)

// Session owns the mutable queue, the answer map and the pointer for one
// interview. It is not safe for concurrent use; the caller serializes access.
type Session struct {
	catalog *catalog.Catalog
	rules   *rules.Engine

	queue   []string
	queued  map[string]struct{}
	answers map[string]entity.Answer
	pointer int
}

// New builds a session from the catalog's start sequence. Every start id must
// exist in the catalog.
func New(cat *catalog.Catalog, eng *rules.Engine, startIDs []string) (*Session, error) {
	if len(startIDs) == 0 {
		return nil, entity.ErrEmptyStartSequence
	}

	s := &Session{
		catalog: cat,
		rules:   eng,
		queued:  make(map[string]struct{}, len(startIDs)),
		answers: make(map[string]entity.Answer),
	}

	for _, id := range startIDs {
		if !cat.Has(id) {
			return nil, fmt.Errorf("%w: %s", entity.ErrQuestionNotInCatalog, id)
		}
		s.enqueue(id)
	}

	return s, nil
}

// Restore rebuilds a session from a persisted snapshot.
func Restore(cat *catalog.Catalog, eng *rules.Engine, snap entity.Snapshot) (*Session, error) {
	s, err := New(cat, eng, snap.Queue)
	if err != nil {
		return nil, fmt.Errorf("restore queue: %w", err)
	}

	for _, a := range snap.Answers {
		if _, ok := s.queued[a.QuestionID]; !ok {
			return nil, fmt.Errorf("snapshot answer for unqueued question %s", a.QuestionID)
		}
		s.answers[a.QuestionID] = a
	}

	if snap.Pointer < 0 || snap.Pointer >= len(s.queue) {
		return nil, fmt.Errorf("snapshot pointer %d out of range", snap.Pointer)
	}
	s.pointer = snap.Pointer

	return s, nil
}

// enqueue appends id to the tail unless it is already queued.
func (s *Session) enqueue(id string) bool {
	if _, ok := s.queued[id]; ok {
		return false
	}
	s.queue = append(s.queue, id)
	s.queued[id] = struct{}{}
	return true
}

// Current returns the question at the pointer.
func (s *Session) Current() (entity.Question, error) {
	return s.catalog.Get(s.queue[s.pointer])
}

// Pointer returns the current queue index.
func (s *Session) Pointer() int {
	return s.pointer
}

// Queue returns a copy of the question id sequence.
func (s *Session) Queue() []string {
	out := make([]string, len(s.queue))
	copy(out, s.queue)
	return out
}

// Answer returns the committed answer for id, if any.
func (s *Session) Answer(id string) (entity.Answer, bool) {
	a, ok := s.answers[id]
	return a, ok
}

// AnsweredCount returns the number of questions with non-empty answers.
func (s *Session) AnsweredCount() int {
	n := 0
	for _, a := range s.answers {
		if !a.Empty() {
			n++
		}
	}
	return n
}

// Frontier returns the highest queue index with a non-empty committed answer,
// or -1 if none. Forward navigation may never pass frontier+1.
func (s *Session) Frontier() int {
	frontier := -1
	for i, id := range s.queue {
		if a, ok := s.answers[id]; ok && !a.Empty() {
			frontier = i
		}
	}
	return frontier
}

// GoTo moves the pointer towards requested. Backward jumps are unconditional;
// forward jumps are clamped to frontier+1. A request past the frontier is a
// navigation request, not a contract violation, so it clamps silently instead
// of erroring. The resulting pointer is returned.
func (s *Session) GoTo(requested int) int {
	if requested < 0 {
		requested = 0
	}
	if requested > len(s.queue)-1 {
		requested = len(s.queue) - 1
	}

	if requested < s.pointer {
		s.pointer = requested
		return s.pointer
	}

	bound := s.Frontier() + 1
	if bound > len(s.queue)-1 {
		bound = len(s.queue) - 1
	}
	if requested > bound {
		requested = bound
	}
	s.pointer = requested
	return s.pointer
}

// Commit stores (or overwrites) the answer for questionID, runs the rule
// table over the text value, appends any injected follow-ups that are not yet
// queued, and advances the pointer to the next unanswered index at or past
// pointer+1 (or the tail when none remain). Committing an id absent from the
// catalog is a programming-error signal and leaves the session untouched.
func (s *Session) Commit(questionID string, answer entity.Answer) error {
	if !s.catalog.Has(questionID) {
		return fmt.Errorf("%w: %s", entity.ErrQuestionNotInCatalog, questionID)
	}
	if _, ok := s.queued[questionID]; !ok {
		return fmt.Errorf("%w: %s is not queued", entity.ErrQuestionNotFound, questionID)
	}

	answer.QuestionID = questionID
	if answer.AnsweredAt.IsZero() {
		answer.AnsweredAt = time.Now().UTC()
	}
	s.answers[questionID] = answer

	for _, injected := range s.rules.Evaluate(questionID, answer.Text) {
		if !s.catalog.Has(injected) {
			// Defective rule table entry; skip rather than poison the queue.
			continue
		}
		s.enqueue(injected)
	}

	s.advance()
	return nil
}

// advance moves the pointer to the next unanswered index >= pointer+1, or
// parks it at the tail when everything ahead is answered.
func (s *Session) advance() {
	for i := s.pointer + 1; i < len(s.queue); i++ {
		if a, ok := s.answers[s.queue[i]]; !ok || a.Empty() {
			s.pointer = i
			return
		}
	}
	s.pointer = len(s.queue) - 1
}

// IsComplete reports whether the pointer sits on the last queued question and
// that question has a non-empty answer. Rule injections happen inside Commit,
// so a complete session by construction produced no further follow-ups.
func (s *Session) IsComplete() bool {
	if s.pointer != len(s.queue)-1 {
		return false
	}
	a, ok := s.answers[s.queue[s.pointer]]
	return ok && !a.Empty()
}

// Snapshot captures queue, pointer and answers for persistence.
func (s *Session) Snapshot() entity.Snapshot {
	answers := make([]entity.Answer, 0, len(s.answers))
	for _, id := range s.queue {
		if a, ok := s.answers[id]; ok {
			answers = append(answers, a)
		}
	}

	return entity.Snapshot{
		Queue:   s.Queue(),
		Pointer: s.pointer,
		Answers: answers,
	}
}
