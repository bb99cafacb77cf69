package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/claimwise/intake-backend/internal/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InterviewRepository defines the interface for interview persistence
type InterviewRepository interface {
	CreateInterview(ctx context.Context, interview entity.Interview) (*entity.Interview, error)
	GetInterviewByID(ctx context.Context, id string) (*entity.Interview, error)
	UpdateInterviewSnapshot(ctx context.Context, id string, queue []string, pointer int) error
	UpdateInterviewStatus(ctx context.Context, id string, status entity.InterviewStatus) (*entity.Interview, error)
	UpdateInterviewResult(ctx context.Context, id string, status entity.InterviewStatus, result *entity.ScoringOutcome, errMsg *string) (*entity.Interview, error)
	DeleteInterview(ctx context.Context, id string) error
}

var _ InterviewRepository = &InterviewPostgres{}

// InterviewPostgres implements InterviewRepository using PostgreSQL
type InterviewPostgres struct {
	db *pgxpool.Pool
}

func NewInterviewPostgres(db *pgxpool.Pool) *InterviewPostgres {
	return &InterviewPostgres{db: db}
}

const interviewColumns = "id, status, queue, pointer, result, error, created_at, updated_at"

func (r *InterviewPostgres) CreateInterview(ctx context.Context, interview entity.Interview) (*entity.Interview, error) {
	id, err := parseUUID(interview.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid interview ID: %w", err)
	}

	row := r.db.QueryRow(ctx,
		`INSERT INTO interviews (id, status, queue, pointer)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+interviewColumns,
		id, string(interview.Status), interview.Queue, interview.Pointer,
	)

	return scanInterview(row)
}

func (r *InterviewPostgres) GetInterviewByID(ctx context.Context, id string) (*entity.Interview, error) {
	uid, err := parseUUID(id)
	if err != nil {
		return nil, fmt.Errorf("invalid interview ID: %w", err)
	}

	row := r.db.QueryRow(ctx,
		`SELECT `+interviewColumns+` FROM interviews WHERE id = $1`, uid)

	interview, err := scanInterview(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrInterviewNotFound
		}
		return nil, err
	}
	return interview, nil
}

func (r *InterviewPostgres) UpdateInterviewSnapshot(ctx context.Context, id string, queue []string, pointer int) error {
	uid, err := parseUUID(id)
	if err != nil {
		return fmt.Errorf("invalid interview ID: %w", err)
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE interviews SET queue = $2, pointer = $3, updated_at = now() WHERE id = $1`,
		uid, queue, pointer,
	)
	if err != nil {
		return fmt.Errorf("update interview snapshot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrInterviewNotFound
	}
	return nil
}

func (r *InterviewPostgres) UpdateInterviewStatus(ctx context.Context, id string, status entity.InterviewStatus) (*entity.Interview, error) {
	uid, err := parseUUID(id)
	if err != nil {
		return nil, fmt.Errorf("invalid interview ID: %w", err)
	}

	row := r.db.QueryRow(ctx,
		`UPDATE interviews SET status = $2, updated_at = now() WHERE id = $1
		 RETURNING `+interviewColumns,
		uid, string(status),
	)

	interview, err := scanInterview(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrInterviewNotFound
		}
		return nil, err
	}
	return interview, nil
}

func (r *InterviewPostgres) UpdateInterviewResult(ctx context.Context, id string, status entity.InterviewStatus, result *entity.ScoringOutcome, errMsg *string) (*entity.Interview, error) {
	uid, err := parseUUID(id)
	if err != nil {
		return nil, fmt.Errorf("invalid interview ID: %w", err)
	}

	var resultJSON []byte
	if result != nil {
		resultJSON, err = json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("marshal scoring outcome: %w", err)
		}
	}

	row := r.db.QueryRow(ctx,
		`UPDATE interviews SET status = $2, result = $3, error = $4, updated_at = now() WHERE id = $1
		 RETURNING `+interviewColumns,
		uid, string(status), resultJSON, errMsg,
	)

	interview, err := scanInterview(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrInterviewNotFound
		}
		return nil, err
	}
	return interview, nil
}

func (r *InterviewPostgres) DeleteInterview(ctx context.Context, id string) error {
	uid, err := parseUUID(id)
	if err != nil {
		return fmt.Errorf("invalid interview ID: %w", err)
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM interviews WHERE id = $1`, uid)
	if err != nil {
		return fmt.Errorf("delete interview: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrInterviewNotFound
	}
	return nil
}

func parseUUID(s string) (pgtype.UUID, error) {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{}, err
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}, nil
}

func scanInterview(row pgx.Row) (*entity.Interview, error) {
	var (
		id         pgtype.UUID
		status     string
		resultJSON []byte
		interview  entity.Interview
	)

	err := row.Scan(&id, &status, &interview.Queue, &interview.Pointer,
		&resultJSON, &interview.Error, &interview.CreatedAt, &interview.UpdatedAt)
	if err != nil {
		return nil, err
	}

	interview.ID = uuid.UUID(id.Bytes).String()
	interview.Status = entity.InterviewStatus(status)

	if len(resultJSON) > 0 {
		var outcome entity.ScoringOutcome
		if err := json.Unmarshal(resultJSON, &outcome); err != nil {
			return nil, fmt.Errorf("unmarshal scoring outcome: %w", err)
		}
		interview.Result = &outcome
	}

	return &interview, nil
}
