package forecast

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"PUM/internal/domain/models"
	"PUM/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stdout"})
	require.NoError(t, err)
	return l
}

// deterministic price path with daily moves around 2%
func noisyPrices(n int) []float64 {
	out := make([]float64, n)
	p := 100.0
	for i := range out {
		p *= math.Exp(0.02 * math.Sin(float64(i*i)+0.3))
		out[i] = p
	}
	return out
}

func constantPrices(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100
	}
	return out
}

func TestPredictInsufficientData(t *testing.T) {
	e := NewVolatilityEngine(testLogger(t), nil)
	_, err := e.Predict("WETH", "u-1", noisyPrices(10), 7, false)
	require.True(t, errors.Is(err, models.ErrInsufficientData))
}

func TestPredictMinimumObservations(t *testing.T) {
	// 30 daily prices (29 returns) is the minimum accepted input; the
	// observation count gates, not the derived return count.
	e := NewVolatilityEngine(testLogger(t), nil)
	pred, err := e.Predict("WETH", "u-1", noisyPrices(30), 7, false)
	require.NoError(t, err)
	require.Len(t, pred.Forecast, 7)

	_, err = e.Predict("WETH", "u-1", noisyPrices(29), 7, false)
	require.True(t, errors.Is(err, models.ErrInsufficientData))
}

func TestPredictConstantSeriesFallsBack(t *testing.T) {
	e := NewVolatilityEngine(testLogger(t), nil)
	pred, err := e.Predict("WETH", "u-1", constantPrices(40), 7, false)
	require.NoError(t, err)
	require.Equal(t, models.ModelConstantVol, pred.Model)
	require.Len(t, pred.Forecast, 7)
	for _, v := range pred.Forecast {
		require.Equal(t, 0.0, v)
	}
	require.Equal(t, 0.0, pred.ConfidenceLower)
	require.Equal(t, 0.0, pred.ConfidenceUpper)
}

func TestPredictSymmetric(t *testing.T) {
	e := NewVolatilityEngine(testLogger(t), nil)
	pred, err := e.Predict("WETH", "u-1", noisyPrices(90), 7, false)
	require.NoError(t, err)

	require.Contains(t, []string{models.ModelGARCH, models.ModelConstantVol}, pred.Model)
	require.Len(t, pred.Forecast, 7)
	for _, v := range pred.Forecast {
		require.GreaterOrEqual(t, v, 0.0)
	}
	require.Equal(t, pred.Forecast[6], pred.PredictedValue)
	require.GreaterOrEqual(t, pred.ConfidenceUpper, pred.PredictedValue)
	require.LessOrEqual(t, pred.ConfidenceLower, pred.PredictedValue)
	require.GreaterOrEqual(t, pred.ConfidenceLower, 0.0)
	require.NotEmpty(t, pred.Params)

	if pred.Model == models.ModelGARCH {
		require.Greater(t, pred.Params["omega"], 0.0)
		require.Less(t, pred.Params["alpha"]+pred.Params["beta"], 0.999)
	}
}

func TestPredictAsymmetric(t *testing.T) {
	e := NewVolatilityEngine(testLogger(t), nil)
	pred, err := e.Predict("WETH", "u-1", noisyPrices(90), 5, true)
	require.NoError(t, err)

	require.Contains(t, []string{models.ModelEGARCH, models.ModelConstantVol}, pred.Model)
	require.Len(t, pred.Forecast, 5)
	if pred.Model == models.ModelEGARCH {
		require.InDelta(t, 0.8*pred.PredictedValue, pred.ConfidenceLower, 1e-9)
		require.InDelta(t, 1.2*pred.PredictedValue, pred.ConfidenceUpper, 1e-9)
	}
}

func TestRegimeVolatilityDrop(t *testing.T) {
	e := NewVolatilityEngine(testLogger(t), nil)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	pre := make([]models.MarketPoint, 0, 30)
	for i := 0; i < 30; i++ {
		price := 100.0
		if i%2 == 1 {
			price = 110.0
		}
		pre = append(pre, models.MarketPoint{Price: price, Timestamp: base.AddDate(0, 0, i)})
	}
	post := make([]models.MarketPoint, 0, 30)
	for i := 0; i < 30; i++ {
		post = append(post, models.MarketPoint{Price: 100, Timestamp: base.AddDate(0, 0, 40+i)})
	}

	u := &models.Upgrade{ID: "u-1", CreatedAt: base.AddDate(0, 0, 35)}
	regime, err := e.Regime("WETH", u, pre, post)
	require.NoError(t, err)
	require.Greater(t, regime.PreVol, 0.0)
	require.Equal(t, 0.0, regime.PostVol)
	require.InDelta(t, -100, regime.ChangePct, 1e-9)
	require.Equal(t, "low_volatility_regime", regime.Regime)
}

func TestRegimeFlatPreWindowInsufficient(t *testing.T) {
	e := NewVolatilityEngine(testLogger(t), nil)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	flat := make([]models.MarketPoint, 0, 10)
	for i := 0; i < 10; i++ {
		flat = append(flat, models.MarketPoint{Price: 100, Timestamp: base.AddDate(0, 0, i)})
	}
	u := &models.Upgrade{ID: "u-1", CreatedAt: base}
	_, err := e.Regime("WETH", u, flat, flat)
	require.True(t, errors.Is(err, models.ErrInsufficientData))
}

func TestClassifyVolRegime(t *testing.T) {
	cases := []struct {
		change float64
		want   string
	}{
		{80, "high_volatility_regime"},
		{20, "moderate_volatility_increase"},
		{0, "stable_volatility"},
		{-30, "moderate_volatility_decrease"},
		{-80, "low_volatility_regime"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, classifyVolRegime(c.change))
	}
}
