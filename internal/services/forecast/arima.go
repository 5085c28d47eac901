package forecast

import (
	"math"

	"gonum.org/v1/gonum/optimize"

	"PUM/internal/services/timeseries"
)

// ARIMA is a fitted ARIMA(1,1,1) model estimated by conditional sum of
// squares. The single internal difference is re-integrated by Forecast, so
// forecasts come back in the space of the series handed to FitARIMA.
type ARIMA struct {
	C, Phi, Theta float64
	AIC           float64

	series []float64 // as fitted, before the internal difference
	w      []float64 // internally differenced series
	resid  []float64
}

// Order reports (p, d, q).
func (a *ARIMA) Order() [3]int { return [3]int{1, 1, 1} }

func arimaCSS(w []float64, c, phi, theta float64) float64 {
	if math.Abs(phi) >= 0.999 || math.Abs(theta) >= 0.999 {
		return math.Inf(1)
	}
	rss := 0.0
	prevW, prevE := 0.0, 0.0
	for i, wt := range w {
		pred := c
		if i > 0 {
			pred = c + phi*prevW + theta*prevE
		}
		e := wt - pred
		rss += e * e
		prevW, prevE = wt, e
	}
	return rss
}

// FitARIMA estimates ARIMA(1,1,1) on the given series. The series must be at
// least timeseries.MinFitPoints long; optimizer failures surface as a fit
// error for the engine to absorb into the trend fallback.
func FitARIMA(series []float64) (*ARIMA, error) {
	if len(series) < timeseries.MinFitPoints {
		return nil, errFitFailed
	}
	w := timeseries.Diff(series)
	if len(w) < 3 {
		return nil, errFitFailed
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 { return arimaCSS(w, x[0], x[1], x[2]) },
	}
	x0 := []float64{timeseries.Mean(w), 0.1, 0.1}
	result, err := optimize.Minimize(problem, x0, &optimize.Settings{
		MajorIterations: 500,
		Converger:       &optimize.FunctionConverge{Absolute: 1e-10, Iterations: 100},
	}, &optimize.NelderMead{})
	if err != nil || result == nil || math.IsInf(result.F, 1) || math.IsNaN(result.F) {
		return nil, errFitFailed
	}

	c, phi, theta := result.X[0], result.X[1], result.X[2]
	if math.Abs(phi) >= 0.999 || math.Abs(theta) >= 0.999 {
		return nil, errFitFailed
	}

	a := &ARIMA{C: c, Phi: phi, Theta: theta, series: series, w: w}
	a.resid = make([]float64, len(w))
	prevW, prevE := 0.0, 0.0
	for i, wt := range w {
		pred := c
		if i > 0 {
			pred = c + phi*prevW + theta*prevE
		}
		e := wt - pred
		a.resid[i] = e
		prevW, prevE = wt, e
	}

	n := float64(len(w))
	sigma2 := result.F / n
	if sigma2 <= 0 {
		return nil, errFitFailed
	}
	a.AIC = n*math.Log(sigma2) + 2*4 // c, phi, theta, sigma
	return a, nil
}

// Forecast iterates the ARMA recursion on the differenced series with future
// shocks at zero, then cumulates back through the internal difference.
func (a *ARIMA) Forecast(horizon int) []float64 {
	prevW := a.w[len(a.w)-1]
	prevE := a.resid[len(a.resid)-1]

	level := a.series[len(a.series)-1]
	out := make([]float64, 0, horizon)
	for k := 0; k < horizon; k++ {
		wNext := a.C + a.Phi*prevW + a.Theta*prevE
		level += wNext
		out = append(out, level)
		prevW, prevE = wNext, 0
	}
	return out
}

// LinearTrend is the fallback liquidity model: a degree-1 least-squares fit
// extrapolated forward from the last observation.
type LinearTrend struct {
	Slope float64
	last  float64
}

// FitLinearTrend always succeeds for two or more points.
func FitLinearTrend(series []float64) (*LinearTrend, error) {
	n := len(series)
	if n < 2 {
		return nil, errFitFailed
	}
	// closed-form OLS slope against index 0..n-1
	meanX := float64(n-1) / 2
	meanY := timeseries.Mean(series)
	num, den := 0.0, 0.0
	for i, y := range series {
		dx := float64(i) - meanX
		num += dx * (y - meanY)
		den += dx * dx
	}
	slope := 0.0
	if den > 0 {
		slope = num / den
	}
	return &LinearTrend{Slope: slope, last: series[n-1]}, nil
}

// Forecast extrapolates last + slope*step.
func (t *LinearTrend) Forecast(horizon int) []float64 {
	out := make([]float64, horizon)
	for k := 0; k < horizon; k++ {
		out[k] = t.last + t.Slope*float64(k+1)
	}
	return out
}
