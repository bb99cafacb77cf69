package interview

import (
	"github.com/claimwise/intake-backend/internal/catalog"
	"github.com/claimwise/intake-backend/internal/entity"
	engine "github.com/claimwise/intake-backend/internal/interview"
)

// toStateDTO builds the navigable interview view. A nil session (finished or
// cancelled interview) produces a view from the persisted record alone.
func toStateDTO(record *entity.Interview, session *engine.Session, cat *catalog.Catalog) *entity.InterviewStateDTO {
	dto := &entity.InterviewStateDTO{
		ID:        record.ID,
		Status:    record.Status,
		Queue:     record.Queue,
		Pointer:   record.Pointer,
		Frontier:  -1,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}

	if session != nil {
		dto.Queue = session.Queue()
		dto.Pointer = session.Pointer()
		dto.Frontier = session.Frontier()
		dto.Answered = session.AnsweredCount()
		dto.Complete = session.IsComplete()
	}

	if dto.Pointer >= 0 && dto.Pointer < len(dto.Queue) {
		if q, err := cat.Get(dto.Queue[dto.Pointer]); err == nil {
			dto.Current = toQuestionDTO(q)
		}
	}

	return dto
}

func toQuestionDTO(q entity.Question) *entity.QuestionDTO {
	return &entity.QuestionDTO{
		ID:             q.ID,
		Section:        q.Section,
		Text:           q.Text,
		Type:           q.Type,
		Required:       q.Required,
		DocRequirement: q.DocRequirement,
		Options:        q.Options,
	}
}

func toDocumentDTO(d *entity.Document) *entity.DocumentDTO {
	return &entity.DocumentDTO{
		ID:          d.ID,
		QuestionID:  d.QuestionID,
		Filename:    d.Filename,
		Size:        d.Size,
		ContentType: d.ContentType,
	}
}
