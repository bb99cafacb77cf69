package scoring

import (
	"testing"

	"github.com/claimwise/intake-backend/internal/entity"
	"github.com/stretchr/testify/assert"
)

func TestMapRating(t *testing.T) {
	tests := []struct {
		name      string
		status    string
		score     float64
		wantScale int
		wantTitle string
	}{
		{"approved", "approved", 55, 5, TitleLikelyApproved},
		{"eligible", "eligible", 10, 5, TitleLikelyApproved},

		{"denied low score", "denied", 39, 1, TitleLikelyDenied},
		{"denied at threshold", "denied", 40, 2, TitleWeakCase},
		{"not_eligible low score", "not_eligible", 0, 1, TitleLikelyDenied},
		{"not_eligible high score", "not_eligible", 65, 2, TitleWeakCase},

		{"pending high score", "pending", 70, 4, TitleStrongCase},
		{"pending below threshold", "pending", 69.9, 3, TitlePendingReview},
		{"likely high score", "likely", 88, 4, TitleStrongCase},
		{"likely low score", "likely", 12, 3, TitlePendingReview},

		{"unknown status", "inconclusive", 95, 3, TitleNeedsReview},
		{"empty status", "", 0, 3, TitleNeedsReview},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rating, title := mapRating(tt.status, tt.score)
			assert.Equal(t, tt.wantScale, rating)
			assert.Equal(t, tt.wantTitle, title)
		})
	}
}

func TestMapOutcomeCarriesVerdictFields(t *testing.T) {
	outcome := MapOutcome(&entity.ScoringResponse{
		EligibilityStatus: "pending",
		EligibilityScore:  74,
		Confidence:        0.62,
		ReasonSummary:     "incident documented, treatment records pending",
	})

	assert.Equal(t, 4, outcome.Rating)
	assert.Equal(t, TitleStrongCase, outcome.Title)
	assert.Equal(t, "pending", outcome.Status)
	assert.Equal(t, 74.0, outcome.Score)
	assert.Equal(t, 0.62, outcome.Confidence)
	assert.Equal(t, "incident documented, treatment records pending", outcome.ReasonSummary)
}
