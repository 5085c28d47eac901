package models

import "time"

// Forecasting model identifiers. Fallback variants are distinct names so the
// active model is always visible in persisted predictions and API responses.
const (
	ModelGARCH       = "GARCH(1,1)"
	ModelEGARCH      = "EGARCH(1,1,1)"
	ModelConstantVol = "constant_volatility"
	ModelARIMA       = "ARIMA"
	ModelLinearTrend = "linear_trend"
)

// VolatilityPrediction is one stored volatility forecast.
type VolatilityPrediction struct {
	ID              string
	TokenSymbol     string
	UpgradeID       string
	Model           string
	HorizonDays     int
	Forecast        []float64 // daily volatility path, len == HorizonDays
	PredictedValue  float64   // terminal value of the path
	ConfidenceLower float64
	ConfidenceUpper float64
	Params          map[string]float64 // fitted parameters (omega, alpha, beta, gamma)
	CreatedAt       time.Time
}

// LiquidityPrediction is one stored liquidity (TVL proxy) forecast.
type LiquidityPrediction struct {
	ID              string
	ProtocolID      string
	UpgradeID       string
	Model           string
	Order           [3]int // (p, d, q); zero for the trend fallback
	HorizonDays     int
	Forecast        []float64 // level-space path, len == HorizonDays
	PredictedValue  float64
	ChangePct       float64 // predicted percent change vs the last observation
	ConfidenceLower float64
	ConfidenceUpper float64
	AIC             float64
	CreatedAt       time.Time
}

// VolatilityRegime describes volatility behavior around an upgrade.
type VolatilityRegime struct {
	TokenSymbol    string
	UpgradeID      string
	PreVol         float64 // annualized, 30d before the anchor
	PostVol        float64 // annualized, 30d after the anchor
	ChangePct      float64
	Regime         string // "high_volatility_regime" ... "low_volatility_regime"
	WindowDays     int
	AnchorTime     time.Time
	PrePointCount  int
	PostPointCount int
}

// LiquidityRegime describes liquidity behavior around an upgrade.
type LiquidityRegime struct {
	ProtocolID     string
	UpgradeID      string
	PreMeanTVL     float64
	PostMeanTVL    float64
	TVLChangePct   float64
	PreVolatility  float64 // std of the daily proxy in the window
	PostVolatility float64
	VolChangePct   float64
	Regime         string // "stable_growth", "volatile_growth", ...
	WindowDays     int
	AnchorTime     time.Time
}

// CrossProtocolFlow is the predicted liquidity migration between two protocols
// around a shared upgrade event.
type CrossProtocolFlow struct {
	SourceProtocol  string
	TargetProtocol  string
	UpgradeID       string
	SourceChangePct float64
	TargetChangePct float64
	FlowPct         float64 // target - source
	Direction       string  // "inflow" | "outflow"
	Magnitude       float64 // absolute flow
	HorizonDays     int
}

// ModelPerformance summarizes realized accuracy for a model over a lookback
// window. Sufficient is false when there is not enough history to judge.
type ModelPerformance struct {
	Model         string
	Sufficient    bool
	Predictions   int
	ValidPairs    int
	MSE           float64
	RMSE          float64
	MAE           float64
	MeanActual    float64
	MeanPredicted float64
	WindowDays    int
}
