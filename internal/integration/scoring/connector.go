// Package scoring talks to the external eligibility scoring service and folds
// its verdict onto the fixed claimant-facing rating scale.
package scoring

import (
	"context"
	"fmt"
	"net/http"

	"github.com/avast/retry-go/v4"
	"github.com/claimwise/intake-backend/internal/config"
	"github.com/claimwise/intake-backend/internal/entity"
	"github.com/claimwise/intake-backend/internal/integration/common"
	pkghttp "github.com/claimwise/intake-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Connector struct {
	config    config.ScoringConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.ScoringConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// Score sends the complete answer set to the scoring service and returns the
// mapped outcome.
func (c *Connector) Score(ctx context.Context, req *entity.ScoringRequest) (*entity.ScoringOutcome, error) {
	ctxzap.Info(ctx, "requesting eligibility scoring",
		zap.Int("answer_count", len(req.Answers)),
		zap.Int("question_count", len(req.Questions)),
	)

	var resp entity.ScoringResponse
	err := retry.Do(func() error {
		return c.connector.DoRequest(ctx, http.MethodPost, c.config.ScoreEndpoint, req, &resp)
	}, append(c.config.Retry.ToRetryOptions(), retry.Context(ctx))...)
	if err != nil {
		return nil, fmt.Errorf("score answers: %w", err)
	}

	outcome := MapOutcome(&resp)

	ctxzap.Info(ctx, "eligibility scoring received",
		zap.String("status", resp.EligibilityStatus),
		zap.Float64("score", resp.EligibilityScore),
		zap.Int("rating", outcome.Rating),
	)

	return outcome, nil
}
