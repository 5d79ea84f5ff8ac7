package domain

type Mode string

const (
	ModeStrict     Mode = "strict"
	ModePermissive Mode = "permissive"
)

func ValidMode(s string) bool {
	switch Mode(s) {
	case ModeStrict, ModePermissive:
		return true
	}
	return false
}

// VerificationReport is the outcome of one Verify call.
type VerificationReport struct {
	Original             string                `json:"original"`
	Corrected            *string               `json:"corrected"`
	Passed               bool                  `json:"passed"`
	Hallucinations       []string              `json:"hallucinations"`
	GroundingMap         map[string]string     `json:"grounding_map"`
	Confidence           float64               `json:"confidence"`
	FactsExtracted       *Facts                `json:"facts_extracted"`
	FactsSupported       *Facts                `json:"facts_supported"`
	ContradictedClaims   []string              `json:"contradicted_claims"`
	ContradictionDetails []ContradictionDetail `json:"contradiction_details"`
	RequiresDisclosure   bool                  `json:"requires_disclosure"`
	ExpectedDisclosure   *string               `json:"expected_disclosure"`
}

// NewVerificationReport returns a passing report with empty collections.
func NewVerificationReport(original string) *VerificationReport {
	return &VerificationReport{
		Original:             original,
		Passed:               true,
		Hallucinations:       []string{},
		GroundingMap:         map[string]string{},
		Confidence:           1.0,
		FactsExtracted:       NewFacts(),
		FactsSupported:       NewFacts(),
		ContradictedClaims:   []string{},
		ContradictionDetails: []ContradictionDetail{},
	}
}

// CorrectedText returns the corrected text, or "" when none was produced.
func (r *VerificationReport) CorrectedText() string {
	if r.Corrected == nil {
		return ""
	}
	return *r.Corrected
}
