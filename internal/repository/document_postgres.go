package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/claimwise/intake-backend/internal/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DocumentRepository defines the interface for uploaded document persistence
type DocumentRepository interface {
	AddDocument(ctx context.Context, doc entity.Document, content []byte) (*entity.Document, error)
	GetDocument(ctx context.Context, id string) (*entity.Document, []byte, error)
	ListDocumentsByInterview(ctx context.Context, interviewID string) ([]entity.Document, error)
}

var _ DocumentRepository = &DocumentPostgres{}

// DocumentPostgres implements DocumentRepository using PostgreSQL
type DocumentPostgres struct {
	db *pgxpool.Pool
}

func NewDocumentPostgres(db *pgxpool.Pool) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

func (r *DocumentPostgres) AddDocument(ctx context.Context, doc entity.Document, content []byte) (*entity.Document, error) {
	id, err := parseUUID(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid document ID: %w", err)
	}
	iid, err := parseUUID(doc.InterviewID)
	if err != nil {
		return nil, fmt.Errorf("invalid interview ID: %w", err)
	}

	row := r.db.QueryRow(ctx,
		`INSERT INTO documents (id, interview_id, question_id, filename, size, content_type, content)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`,
		id, iid, doc.QuestionID, doc.Filename, doc.Size, doc.ContentType, content,
	)
	if err := row.Scan(&doc.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}
	return &doc, nil
}

func (r *DocumentPostgres) GetDocument(ctx context.Context, id string) (*entity.Document, []byte, error) {
	uid, err := parseUUID(id)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid document ID: %w", err)
	}

	var (
		doc     entity.Document
		docID   pgtype.UUID
		iid     pgtype.UUID
		content []byte
	)
	err = r.db.QueryRow(ctx,
		`SELECT id, interview_id, question_id, filename, size, content_type, content, created_at
		 FROM documents WHERE id = $1`, uid,
	).Scan(&docID, &iid, &doc.QuestionID, &doc.Filename, &doc.Size, &doc.ContentType, &content, &doc.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, entity.ErrDocumentNotFound
		}
		return nil, nil, fmt.Errorf("get document: %w", err)
	}

	doc.ID = uuid.UUID(docID.Bytes).String()
	doc.InterviewID = uuid.UUID(iid.Bytes).String()
	return &doc, content, nil
}

func (r *DocumentPostgres) ListDocumentsByInterview(ctx context.Context, interviewID string) ([]entity.Document, error) {
	iid, err := parseUUID(interviewID)
	if err != nil {
		return nil, fmt.Errorf("invalid interview ID: %w", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, interview_id, question_id, filename, size, content_type, created_at
		 FROM documents WHERE interview_id = $1 ORDER BY created_at`, iid)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []entity.Document
	for rows.Next() {
		var (
			doc   entity.Document
			docID pgtype.UUID
			intID pgtype.UUID
		)
		if err := rows.Scan(&docID, &intID, &doc.QuestionID, &doc.Filename, &doc.Size, &doc.ContentType, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc.ID = uuid.UUID(docID.Bytes).String()
		doc.InterviewID = uuid.UUID(intID.Bytes).String()
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}
