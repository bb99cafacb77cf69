package repository

import (
	"context"
	"fmt"

	"github.com/claimwise/intake-backend/internal/entity"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AnswerRepository defines the interface for answer persistence
type AnswerRepository interface {
	UpsertAnswer(ctx context.Context, interviewID string, answer entity.Answer) error
	ListAnswersByInterview(ctx context.Context, interviewID string) ([]entity.Answer, error)
}

var _ AnswerRepository = &AnswerPostgres{}

// AnswerPostgres implements AnswerRepository using PostgreSQL
type AnswerPostgres struct {
	db *pgxpool.Pool
}

func NewAnswerPostgres(db *pgxpool.Pool) *AnswerPostgres {
	return &AnswerPostgres{db: db}
}

// UpsertAnswer writes the answer for a question, replacing any previous value.
// Re-answering after backward navigation is an overwrite, never a duplicate row.
func (r *AnswerPostgres) UpsertAnswer(ctx context.Context, interviewID string, answer entity.Answer) error {
	iid, err := parseUUID(interviewID)
	if err != nil {
		return fmt.Errorf("invalid interview ID: %w", err)
	}

	var docID *pgtype.UUID
	if answer.DocumentID != "" {
		parsed, err := parseUUID(answer.DocumentID)
		if err != nil {
			return fmt.Errorf("invalid document ID: %w", err)
		}
		docID = &parsed
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO answers (interview_id, question_id, text_value, document_id, answered_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (interview_id, question_id)
		 DO UPDATE SET text_value = EXCLUDED.text_value,
		               document_id = EXCLUDED.document_id,
		               answered_at = EXCLUDED.answered_at`,
		iid, answer.QuestionID, answer.Text, docID, answer.AnsweredAt,
	)
	if err != nil {
		return fmt.Errorf("upsert answer: %w", err)
	}
	return nil
}

func (r *AnswerPostgres) ListAnswersByInterview(ctx context.Context, interviewID string) ([]entity.Answer, error) {
	iid, err := parseUUID(interviewID)
	if err != nil {
		return nil, fmt.Errorf("invalid interview ID: %w", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT question_id, text_value, document_id, answered_at
		 FROM answers WHERE interview_id = $1 ORDER BY answered_at`, iid)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	var answers []entity.Answer
	for rows.Next() {
		var (
			answer entity.Answer
			docID  pgtype.UUID
		)
		if err := rows.Scan(&answer.QuestionID, &answer.Text, &docID, &answer.AnsweredAt); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		answer.DocumentID = uuidToString(docID)
		answers = append(answers, answer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate answers: %w", err)
	}
	return answers, nil
}

func uuidToString(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	s, err := id.Value()
	if err != nil {
		return ""
	}
	str, _ := s.(string)
	return str
}
