package models

import "time"

// Risk factor categories in weighting order.
const (
	FactorTechnical  = "technical"
	FactorGovernance = "governance"
	FactorMarket     = "market"
	FactorLiquidity  = "liquidity"
)

// Factor severity levels.
const (
	LevelHigh   = "high"
	LevelMedium = "medium"
)

// RiskFactor is one elevated factor surfaced by an assessment.
type RiskFactor struct {
	Category    string
	Score       float64
	Level       string // "high" (>70) or "medium" (>40)
	Description string
}

// RiskAssessment is one append-only assessment record for an upgrade.
// OverallScore always equals the weighted sum of the factor scores at the
// time the record was created.
type RiskAssessment struct {
	ID              string
	UpgradeID       string
	ProtocolID      string
	TechnicalScore  float64
	GovernanceScore float64
	MarketScore     float64
	LiquidityScore  float64
	OverallScore    float64
	Factors         []RiskFactor
	Recommendations []string
	CreatedAt       time.Time
}

// RiskModelParams holds the fitted linear model mapping factor scores to an
// overall score. It is an explicit value: a nil/absent params means no model
// has been trained, there is no hidden trained flag anywhere.
type RiskModelParams struct {
	Intercept float64
	Weights   [4]float64 // technical, governance, market, liquidity
	Samples   int
	TrainedAt time.Time
}
