package risk

import (
	"context"
	"math"
	"time"

	"PUM/internal/domain/models"
	"PUM/internal/domain/repository"
	"PUM/internal/services/timeseries"
	"PUM/pkg/logger"
)

// Security-relevant on-chain event types counted by the technical factor.
var securityEventTypes = []string{"Emergency_Pause", "Security_Patch"}

// Weights are the fixed factor weights for the composite score. Always 0.25
// each unless overridden by config; the weighted average is the ground truth
// for persisted records regardless of any trained model.
type Weights struct {
	Technical  float64
	Governance float64
	Market     float64
	Liquidity  float64
}

// DefaultWeights returns the equal weighting.
func DefaultWeights() Weights {
	return Weights{Technical: 0.25, Governance: 0.25, Market: 0.25, Liquidity: 0.25}
}

// Engine computes multi-factor risk assessments for protocol upgrades.
// Stateless between calls; trained model parameters are an explicit value
// handled by the caller, never hidden engine state.
type Engine struct {
	weights     Weights
	events      repository.EventReader
	upgrades    repository.UpgradeStore
	market      repository.MarketReader
	assessments repository.AssessmentStore
	log         *logger.Logger
	metrics     repository.Metrics
}

func NewEngine(
	weights Weights,
	events repository.EventReader,
	upgrades repository.UpgradeStore,
	market repository.MarketReader,
	assessments repository.AssessmentStore,
	log *logger.Logger,
	metrics repository.Metrics,
) *Engine {
	return &Engine{
		weights:     weights,
		events:      events,
		upgrades:    upgrades,
		market:      market,
		assessments: assessments,
		log:         log,
		metrics:     metrics,
	}
}

// Assess computes and persists a new assessment record for the upgrade.
// Factor failures degrade per the fallback table; only an unknown upgrade or
// a persistence failure reaches the caller. Every call appends a new record.
func (e *Engine) Assess(ctx context.Context, upgradeID string) (*models.RiskAssessment, error) {
	u, err := e.upgrades.GetUpgrade(ctx, upgradeID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, models.NotFoundError("upgrade", upgradeID)
	}

	technical := e.technicalRisk(ctx, u)
	governance := e.governanceRisk(ctx, u)
	market := e.marketRisk(ctx, u)
	liquidity := e.liquidityRisk(ctx, u)

	overall := math.Min(
		technical*e.weights.Technical+
			governance*e.weights.Governance+
			market*e.weights.Market+
			liquidity*e.weights.Liquidity,
		100,
	)

	factors := IdentifyFactors(technical, governance, market, liquidity)
	a := &models.RiskAssessment{
		UpgradeID:       u.ID,
		ProtocolID:      u.ProtocolID,
		TechnicalScore:  technical,
		GovernanceScore: governance,
		MarketScore:     market,
		LiquidityScore:  liquidity,
		OverallScore:    overall,
		Factors:         factors,
		Recommendations: Recommend(factors),
		CreatedAt:       time.Now().UTC(),
	}

	if err := e.assessments.Insert(ctx, a); err != nil {
		return nil, models.PersistenceError("insert assessment", err)
	}
	if e.metrics != nil {
		e.metrics.RecordRiskScore(u.ProtocolID, overall)
	}
	e.log.Info("risk assessment stored",
		logger.String("upgrade_id", u.ID),
		logger.String("protocol_id", u.ProtocolID),
		logger.Any("overall", overall),
	)
	return a, nil
}

func (e *Engine) degrade(factor string, err error) float64 {
	p := Fallbacks[factor]
	if err != nil {
		e.log.Warn("risk factor query failed, degrading to default",
			logger.String("factor", factor),
			logger.Error(err),
		)
		return p.OnError
	}
	if p.LogLevel == "warn" {
		e.log.Warn("risk factor has no data in window", logger.String("factor", factor))
	} else {
		e.log.Debug("risk factor has no data in window", logger.String("factor", factor))
	}
	return p.NoData
}

// technicalRisk scores recent contract activity and security events. A window
// with no activity at all carries no signal, so it degrades to the neutral
// default rather than scoring zero.
func (e *Engine) technicalRisk(ctx context.Context, u *models.Upgrade) float64 {
	now := time.Now().UTC()
	txCount, err := e.events.CountEvents(ctx, u.ProtocolAddress, "", now.AddDate(0, 0, -repository.WindowActivity))
	if err != nil {
		return e.degrade(models.FactorTechnical, err)
	}
	secCount := 0
	for _, kind := range securityEventTypes {
		n, err := e.events.CountEvents(ctx, u.ProtocolAddress, kind, now.AddDate(0, 0, -repository.WindowSecurity))
		if err != nil {
			return e.degrade(models.FactorTechnical, err)
		}
		secCount += n
	}
	if txCount == 0 && secCount == 0 {
		return e.degrade(models.FactorTechnical, nil)
	}

	complexity := math.Min(float64(txCount)/100, 1)
	security := math.Min(float64(secCount)*0.2, 1)
	return math.Min((complexity*0.6+security*0.4)*100, 100)
}

func (e *Engine) governanceRisk(ctx context.Context, u *models.Upgrade) float64 {
	since := time.Now().UTC().AddDate(0, 0, -repository.WindowGovernance)
	history, err := e.upgrades.ListByProtocol(ctx, u.ProtocolID, since)
	if err != nil {
		return e.degrade(models.FactorGovernance, err)
	}
	// Implementation and parameter upgrades say nothing about voting
	// behavior; only governance proposals count toward the history.
	var proposals []models.Upgrade
	for _, p := range history {
		if p.UpgradeType == models.UpgradeTypeGovernance {
			proposals = append(proposals, p)
		}
	}
	if len(proposals) == 0 {
		return e.degrade(models.FactorGovernance, nil)
	}

	passed := 0
	for _, p := range proposals {
		if p.Status == models.UpgradeStatusExecuted || p.Status == models.UpgradeStatusApproved {
			passed++
		}
	}
	successRate := float64(passed) / float64(len(proposals))
	perMonth := float64(len(proposals)) / 3

	score := (1-successRate)*0.5 + math.Min(perMonth/5, 1)*0.3
	if u.Status == models.UpgradeStatusPending {
		score += 0.2
	}
	return math.Min(score*100, 100)
}

func (e *Engine) marketRisk(ctx context.Context, u *models.Upgrade) float64 {
	points, err := e.market.GetLatestN(ctx, u.TokenSymbol, repository.WindowActivity)
	if err != nil {
		return e.degrade(models.FactorMarket, err)
	}
	if len(points) == 0 {
		return e.degrade(models.FactorMarket, nil)
	}

	prices := make([]float64, len(points)) // newest first, as returned
	for i := range points {
		prices[i] = points[i].Price
	}

	volScore := 0.5
	if len(prices) > 1 {
		chrono := make([]float64, len(prices))
		for i := range prices {
			chrono[i] = prices[len(prices)-1-i]
		}
		vol := timeseries.AnnualizedVol(timeseries.LogReturns(chrono))
		volScore = math.Min(vol*100, 1)
	}

	trendScore := 0.5
	if len(prices) > 7 {
		recent := timeseries.Mean(prices[:7])
		older := timeseries.Mean(prices[len(prices)-7:])
		if recent < older {
			trendScore = 1
		} else {
			trendScore = 0
		}
	}

	return math.Min((volScore*0.7+trendScore*0.3)*100, 100)
}

func (e *Engine) liquidityRisk(ctx context.Context, u *models.Upgrade) float64 {
	points, err := e.market.GetLatestN(ctx, u.TokenSymbol, repository.WindowSecurity)
	if err != nil {
		return e.degrade(models.FactorLiquidity, err)
	}

	var volumes []float64
	for _, p := range points {
		if p.Volume24h > 0 {
			volumes = append(volumes, p.Volume24h)
		}
	}
	if len(volumes) == 0 {
		return e.degrade(models.FactorLiquidity, nil)
	}

	cvScore := 0.5
	if len(volumes) > 1 {
		mean := timeseries.Mean(volumes)
		if mean > 0 {
			cvScore = math.Min(timeseries.Std(volumes)/mean, 1)
		}
	}
	lowVolume := 0.0
	if timeseries.Mean(volumes) < 1_000_000 {
		lowVolume = 1
	}

	return math.Min((cvScore*0.6+lowVolume*0.4)*100, 100)
}
