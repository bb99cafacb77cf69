// Package catalog holds the immutable question registry. It is loaded once at
// process start from a JSON file and never mutated afterwards.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/claimwise/intake-backend/internal/entity"
)

// Catalog is the read-only question registry plus the fixed start sequence.
type Catalog struct {
	questions map[string]entity.Question
	startIDs  []string
}

// catalogFile mirrors the on-disk JSON shape.
type catalogFile struct {
	StartSequence []string          `json:"start_sequence"`
	Questions     []entity.Question `json:"questions"`
}

// Load reads the catalog file and validates every record.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog JSON: %w", err)
	}

	return New(file.Questions, file.StartSequence)
}

// New builds a catalog from already-parsed records.
func New(questions []entity.Question, startIDs []string) (*Catalog, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("catalog contains no questions")
	}
	if len(startIDs) == 0 {
		return nil, entity.ErrEmptyStartSequence
	}

	byID := make(map[string]entity.Question, len(questions))
	for i := range questions {
		q := questions[i]
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("invalid catalog record: %w", err)
		}
		if _, exists := byID[q.ID]; exists {
			return nil, fmt.Errorf("duplicate question id: %s", q.ID)
		}
		byID[q.ID] = q
	}

	for _, id := range startIDs {
		if _, ok := byID[id]; !ok {
			return nil, fmt.Errorf("start sequence references unknown question: %s", id)
		}
	}

	return &Catalog{questions: byID, startIDs: startIDs}, nil
}

// Get returns the question for id.
func (c *Catalog) Get(id string) (entity.Question, error) {
	q, ok := c.questions[id]
	if !ok {
		return entity.Question{}, fmt.Errorf("%w: %s", entity.ErrQuestionNotInCatalog, id)
	}
	return q, nil
}

// Has reports whether id is a known question.
func (c *Catalog) Has(id string) bool {
	_, ok := c.questions[id]
	return ok
}

// StartSequence returns a copy of the fixed initial question order.
func (c *Catalog) StartSequence() []string {
	out := make([]string, len(c.startIDs))
	copy(out, c.startIDs)
	return out
}

// Len returns the number of registered questions.
func (c *Catalog) Len() int {
	return len(c.questions)
}
