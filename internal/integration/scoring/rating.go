package scoring

import "github.com/claimwise/intake-backend/internal/entity"

// Rating titles shown to the claimant.
const (
	TitleLikelyApproved = "Likely Approved"
	TitleStrongCase     = "Strong Case"
	TitlePendingReview  = "Pending Review"
	TitleWeakCase       = "Weak Case"
	TitleLikelyDenied   = "Likely Denied"
	TitleNeedsReview    = "Needs Review"
)

// MapOutcome folds a scoring response onto the fixed 1-5 rating scale. The
// threshold table is part of the wire contract with the claimant UI and must
// not drift.
func MapOutcome(resp *entity.ScoringResponse) *entity.ScoringOutcome {
	rating, title := mapRating(resp.EligibilityStatus, resp.EligibilityScore)

	return &entity.ScoringOutcome{
		Rating:        rating,
		Title:         title,
		Status:        resp.EligibilityStatus,
		Score:         resp.EligibilityScore,
		Confidence:    resp.Confidence,
		ReasonSummary: resp.ReasonSummary,
	}
}

func mapRating(status string, score float64) (int, string) {
	switch status {
	case "approved", "eligible":
		return 5, TitleLikelyApproved
	case "denied", "not_eligible":
		if score < 40 {
			return 1, TitleLikelyDenied
		}
		return 2, TitleWeakCase
	case "pending", "likely":
		if score >= 70 {
			return 4, TitleStrongCase
		}
		return 3, TitlePendingReview
	default:
		return 3, TitleNeedsReview
	}
}
