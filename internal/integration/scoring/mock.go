package scoring

import (
	"context"

	"github.com/claimwise/intake-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector returns a fixed pending verdict for local development.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Score(ctx context.Context, req *entity.ScoringRequest) (*entity.ScoringOutcome, error) {
	ctxzap.Info(ctx, "[MOCK] scoring answers",
		zap.Int("answer_count", len(req.Answers)),
	)

	return MapOutcome(&entity.ScoringResponse{
		EligibilityStatus: "pending",
		EligibilityScore:  74,
		Confidence:        62,
		ReasonSummary:     "Claim narrative is consistent; supporting documents strengthen the case.",
	}), nil
}
