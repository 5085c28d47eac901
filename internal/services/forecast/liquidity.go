package forecast

import (
	"math"
	"time"

	"PUM/internal/domain/models"
	"PUM/internal/domain/repository"
	"PUM/internal/services/timeseries"
	"PUM/pkg/logger"
)

// LiquidityEngine produces TVL-proxy forecasts, cross-protocol flow estimates
// and liquidity regime analyses. Stateless between calls.
type LiquidityEngine struct {
	log     *logger.Logger
	metrics repository.Metrics
}

func NewLiquidityEngine(log *logger.Logger, m repository.Metrics) *LiquidityEngine {
	return &LiquidityEngine{log: log, metrics: m}
}

// Predict transforms the daily TVL-proxy series to stationarity, fits
// ARIMA(1,1,1) on the transformed series, and maps the forecast back to level
// space before computing the percent change. A failed fit falls back to the
// linear trend on the untransformed series.
func (e *LiquidityEngine) Predict(protocol, upgradeID string, tvl []float64, horizon int) (*models.LiquidityPrediction, error) {
	if len(tvl) < timeseries.MinFitPoints {
		return nil, models.InsufficientDataError("tvl series", len(tvl), timeseries.MinFitPoints)
	}
	last := tvl[len(tvl)-1]

	pred := &models.LiquidityPrediction{
		ProtocolID:  protocol,
		UpgradeID:   upgradeID,
		HorizonDays: horizon,
		CreatedAt:   time.Now().UTC(),
	}

	st := timeseries.MakeStationary(tvl)
	m, err := FitARIMA(st.Values)
	if err != nil {
		trend, terr := FitLinearTrend(tvl)
		if terr != nil {
			return nil, models.InsufficientDataError("tvl series", len(tvl), 2)
		}
		pred.Model = models.ModelLinearTrend
		pred.Forecast = trend.Forecast(horizon)
		if e.metrics != nil {
			e.metrics.RecordFallback(models.ModelLinearTrend)
		}
		e.log.Warn("arima fit failed, using linear-trend fallback",
			logger.String("protocol", protocol),
			logger.Int("differences", st.Differences),
		)
	} else {
		pred.Model = models.ModelARIMA
		pred.Order = m.Order()
		pred.AIC = m.AIC
		pred.Forecast = st.Integrate(m.Forecast(horizon))
	}

	pred.PredictedValue = pred.Forecast[len(pred.Forecast)-1]
	if last != 0 {
		pred.ChangePct = (pred.PredictedValue - last) / last * 100
	}

	spread := ciZ * timeseries.Std(tvl)
	pred.ConfidenceLower = pred.PredictedValue - spread
	pred.ConfidenceUpper = pred.PredictedValue + spread
	return pred, nil
}

// Flow combines two independent predictions into a directional liquidity
// migration estimate between protocols sharing an upgrade event.
func (e *LiquidityEngine) Flow(source, target *models.LiquidityPrediction) *models.CrossProtocolFlow {
	flow := target.ChangePct - source.ChangePct
	direction := "outflow"
	if flow > 0 {
		direction = "inflow"
	}
	return &models.CrossProtocolFlow{
		SourceProtocol:  source.ProtocolID,
		TargetProtocol:  target.ProtocolID,
		UpgradeID:       target.UpgradeID,
		SourceChangePct: source.ChangePct,
		TargetChangePct: target.ChangePct,
		FlowPct:         flow,
		Direction:       direction,
		Magnitude:       math.Abs(flow),
		HorizonDays:     target.HorizonDays,
	}
}

// Regime classifies liquidity behavior around an upgrade from the observed
// windows on each side of the anchor.
func (e *LiquidityEngine) Regime(protocol string, upgrade *models.Upgrade, pre, post []models.MarketPoint) (*models.LiquidityRegime, error) {
	preDaily, err := timeseries.DailyTVL(pre, 2)
	if err != nil {
		return nil, err
	}
	postDaily, err := timeseries.DailyTVL(post, 2)
	if err != nil {
		return nil, err
	}

	preMean, postMean := timeseries.Mean(preDaily), timeseries.Mean(postDaily)
	preStd, postStd := timeseries.Std(preDaily), timeseries.Std(postDaily)
	if preMean == 0 {
		return nil, models.InsufficientDataError("pre-upgrade tvl", len(preDaily), 2)
	}

	tvlChange := (postMean - preMean) / preMean * 100
	volChange := 0.0
	if preStd > 0 {
		volChange = (postStd - preStd) / preStd * 100
	} else if postStd > 0 {
		volChange = 100
	}

	return &models.LiquidityRegime{
		ProtocolID:     protocol,
		UpgradeID:      upgrade.ID,
		PreMeanTVL:     preMean,
		PostMeanTVL:    postMean,
		TVLChangePct:   tvlChange,
		PreVolatility:  preStd,
		PostVolatility: postStd,
		VolChangePct:   volChange,
		Regime:         classifyLiqRegime(tvlChange, volChange),
		WindowDays:     repository.WindowRegime,
		AnchorTime:     upgrade.AnchorTime(),
	}, nil
}

func classifyLiqRegime(tvlChangePct, volChangePct float64) string {
	switch {
	case tvlChangePct > 10 && volChangePct < 10:
		return "stable_growth"
	case tvlChangePct > 10:
		return "volatile_growth"
	case tvlChangePct < -10 && volChangePct < 10:
		return "stable_decline"
	case tvlChangePct < -10:
		return "volatile_decline"
	case volChangePct > 10:
		return "high_volatility_stable"
	default:
		return "stable"
	}
}
