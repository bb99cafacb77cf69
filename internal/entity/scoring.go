package entity

// ScoringRequest is the payload sent to the external scoring service once the
// interview is complete.
type ScoringRequest struct {
	Answers   map[string]string `json:"answers"`
	Questions []Question        `json:"questions"`
	FileIDs   []string          `json:"file_ids,omitempty"`
}

// ScoringResponse is the opaque verdict of the scoring service.
type ScoringResponse struct {
	EligibilityStatus string         `json:"eligibility_status"`
	EligibilityScore  float64        `json:"eligibility_score"`
	Confidence        float64        `json:"confidence"`
	ReasonSummary     string         `json:"reason_summary"`
	DocumentAnalysis  map[string]any `json:"document_analysis,omitempty"`
}

// ScoringOutcome is the scoring response folded onto the fixed 1-5 rating
// scale shown to the claimant.
type ScoringOutcome struct {
	Rating        int     `json:"rating"`
	Title         string  `json:"title"`
	Status        string  `json:"eligibility_status"`
	Score         float64 `json:"eligibility_score"`
	Confidence    float64 `json:"confidence"`
	ReasonSummary string  `json:"reason_summary"`
}
