package forecast

import (
	"math"
	"time"

	"PUM/internal/domain/models"
	"PUM/internal/domain/repository"
	"PUM/internal/services/timeseries"
	"PUM/pkg/logger"
)

// ciZ is the 95% normal quantile used by all interval constructions.
const ciZ = 1.96

// ConstantVol is the volatility fallback: the sample std of the returns held
// flat over the horizon.
type ConstantVol struct {
	Sigma float64
}

func (c *ConstantVol) Forecast(horizon int) []float64 {
	out := make([]float64, horizon)
	for i := range out {
		out[i] = c.Sigma
	}
	return out
}

// VolatilityEngine produces volatility forecasts and regime analyses. It is
// stateless between calls; persistence is the caller's concern.
type VolatilityEngine struct {
	log     *logger.Logger
	metrics repository.Metrics
}

func NewVolatilityEngine(log *logger.Logger, m repository.Metrics) *VolatilityEngine {
	return &VolatilityEngine{log: log, metrics: m}
}

// Predict fits GARCH(1,1) (or EGARCH(1,1,1) when asymmetric is set) to the
// daily price series and forecasts the volatility path. A failed fit is
// absorbed into the constant-volatility fallback and never surfaces as an
// error; only insufficient input does.
func (e *VolatilityEngine) Predict(token, upgradeID string, prices []float64, horizon int, asymmetric bool) (*models.VolatilityPrediction, error) {
	if len(prices) < timeseries.MinFitPoints {
		return nil, models.InsufficientDataError("price series", len(prices), timeseries.MinFitPoints)
	}
	returns := timeseries.LogReturns(prices)

	pred := &models.VolatilityPrediction{
		TokenSymbol: token,
		UpgradeID:   upgradeID,
		HorizonDays: horizon,
		CreatedAt:   time.Now().UTC(),
	}

	switch {
	case asymmetric:
		m, err := FitEGARCH(returns)
		if err != nil {
			e.fallback(pred, returns, horizon, models.ModelEGARCH)
		} else {
			pred.Model = models.ModelEGARCH
			pred.Forecast = m.Forecast(horizon)
			pred.Params = m.Params()
		}
	default:
		m, err := FitGARCH(returns)
		if err != nil {
			e.fallback(pred, returns, horizon, models.ModelGARCH)
		} else {
			pred.Model = models.ModelGARCH
			pred.Forecast = m.Forecast(horizon)
			pred.Params = m.Params()
		}
	}

	pred.PredictedValue = pred.Forecast[len(pred.Forecast)-1]
	e.interval(pred, returns)
	return pred, nil
}

func (e *VolatilityEngine) fallback(pred *models.VolatilityPrediction, returns []float64, horizon int, wanted string) {
	sigma := timeseries.Std(returns)
	cv := &ConstantVol{Sigma: sigma}
	pred.Model = models.ModelConstantVol
	pred.Forecast = cv.Forecast(horizon)
	pred.Params = map[string]float64{"sigma": sigma}
	if e.metrics != nil {
		e.metrics.RecordFallback(models.ModelConstantVol)
	}
	e.log.Warn("volatility fit failed, using constant-vol fallback",
		logger.String("token", pred.TokenSymbol),
		logger.String("wanted", wanted),
	)
}

// interval sets the 95% bounds on the terminal forecast. EGARCH keeps the
// source convention of a fixed 20% band; the symmetric models use the
// standard error of the mean return, clipped at zero below.
func (e *VolatilityEngine) interval(pred *models.VolatilityPrediction, returns []float64) {
	last := pred.PredictedValue
	if pred.Model == models.ModelEGARCH {
		pred.ConfidenceLower = 0.8 * last
		pred.ConfidenceUpper = 1.2 * last
		return
	}
	se := timeseries.Std(returns) / math.Sqrt(float64(len(returns)))
	pred.ConfidenceLower = math.Max(0, last-ciZ*se)
	pred.ConfidenceUpper = last + ciZ*se
}

// Regime classifies volatility behavior around an upgrade from the observed
// windows on each side of the anchor.
func (e *VolatilityEngine) Regime(token string, upgrade *models.Upgrade, pre, post []models.MarketPoint) (*models.VolatilityRegime, error) {
	preDaily, err := timeseries.DailyPrices(pre, 2)
	if err != nil {
		return nil, err
	}
	postDaily, err := timeseries.DailyPrices(post, 2)
	if err != nil {
		return nil, err
	}

	preVol := timeseries.AnnualizedVol(timeseries.LogReturns(preDaily))
	postVol := timeseries.AnnualizedVol(timeseries.LogReturns(postDaily))
	if preVol == 0 {
		return nil, models.InsufficientDataError("pre-upgrade returns", len(preDaily), timeseries.MinFitPoints)
	}

	change := (postVol - preVol) / preVol * 100
	return &models.VolatilityRegime{
		TokenSymbol:    token,
		UpgradeID:      upgrade.ID,
		PreVol:         preVol,
		PostVol:        postVol,
		ChangePct:      change,
		Regime:         classifyVolRegime(change),
		WindowDays:     repository.WindowRegime,
		AnchorTime:     upgrade.AnchorTime(),
		PrePointCount:  len(pre),
		PostPointCount: len(post),
	}, nil
}

func classifyVolRegime(changePct float64) string {
	switch {
	case changePct > 50:
		return "high_volatility_regime"
	case changePct > 10:
		return "moderate_volatility_increase"
	case changePct >= -10:
		return "stable_volatility"
	case changePct >= -50:
		return "moderate_volatility_decrease"
	default:
		return "low_volatility_regime"
	}
}
