package usecase

import (
	"math"

	"github.com/mvcarvalho/docsentinel/internal/core/domain"
)

// Scoring policy. The weighting is a documented design decision, not an
// observable property of any upstream system: each flag contributes a fixed
// weight, the technical score is the capped sum, and the total blends the
// technical score with the content-model score 70/30. The mapping is
// monotonic: firing an additional flag can never lower any score.
var flagWeights = map[domain.FeatureTag]float64{
	domain.FeatureModificationAfterCreation: 15,
	domain.FeatureMultiplePDFVersions:       30,
	domain.FeatureAbnormalCompression:       20,
	domain.FeatureHiddenPages:               35,
}

const (
	technicalWeight = 0.7
	contentWeight   = 0.3

	mediumRiskFloor = 30
	highRiskFloor   = 60
)

type Scorecard struct {
	TechnicalScore float64
	IAScore        float64
	ScoreTotal     float64
	RiskLevel      domain.RiskLevel
	Recommendation string
}

// ScoreFlags combines the fired flags and the content-model score into the
// final scorecard.
func ScoreFlags(flags []domain.SuspiciousFeature, iaScore float64) Scorecard {
	technical := 0.0
	for _, f := range flags {
		technical += flagWeights[f.Tag]
	}
	technical = clampScore(technical)
	ia := clampScore(iaScore)

	total := math.Round(technicalWeight*technical + contentWeight*ia)
	level := riskLevelFor(total)

	return Scorecard{
		TechnicalScore: technical,
		IAScore:        ia,
		ScoreTotal:     total,
		RiskLevel:      level,
		Recommendation: recommendationFor(level),
	}
}

func riskLevelFor(total float64) domain.RiskLevel {
	switch {
	case total >= highRiskFloor:
		return domain.RiskHigh
	case total >= mediumRiskFloor:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}

func recommendationFor(level domain.RiskLevel) string {
	switch level {
	case domain.RiskHigh:
		return "Strong tampering signals present; request the original document from the issuer before accepting it."
	case domain.RiskMedium:
		return "Review the flagged signals manually before accepting the document."
	default:
		return "No strong tampering signals detected; the document can be accepted."
	}
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
