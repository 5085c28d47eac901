package forecast

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/optimize"

	"PUM/internal/services/timeseries"
)

// returnScale rescales log returns before fitting so the likelihood surface
// is well conditioned for crypto-sized daily moves.
const returnScale = 1e4

// errFitFailed marks an optimizer failure. It never leaves this package:
// engines convert it into a fallback model.
var errFitFailed = errors.New("fit did not converge")

// GARCH is a fitted GARCH(1,1) model over scaled, demeaned log returns.
type GARCH struct {
	Omega, Alpha, Beta float64
	NLL                float64

	scaled []float64
	h      []float64 // conditional variances over the sample
}

func scaleReturns(returns []float64) []float64 {
	scaled := make([]float64, len(returns))
	for i, r := range returns {
		scaled[i] = r * returnScale
	}
	return timeseries.Demean(scaled)
}

func sampleVariance(xs []float64) float64 {
	s := timeseries.Std(xs)
	return s * s
}

// garchNLL is the negative Gaussian log likelihood (constant dropped).
// Out-of-bound parameters get a large penalty so Nelder-Mead backs off.
func garchNLL(eps []float64, omega, alpha, beta float64) float64 {
	if omega <= 0 || alpha < 0 || beta < 0 || alpha+beta >= 0.999 {
		return math.Inf(1)
	}
	h := sampleVariance(eps)
	if h <= 0 {
		return math.Inf(1)
	}
	nll := 0.0
	for _, e := range eps {
		nll += math.Log(h) + e*e/h
		h = omega + alpha*e*e + beta*h
		if h <= 0 || math.IsNaN(h) {
			return math.Inf(1)
		}
	}
	return 0.5 * nll
}

// FitGARCH fits GARCH(1,1) by maximum likelihood. The caller must hand in the
// returns of at least timeseries.MinFitPoints observations; optimizer failures
// come back as an opaque fit error for the engine to absorb.
func FitGARCH(returns []float64) (*GARCH, error) {
	if len(returns) < timeseries.MinFitPoints-1 {
		return nil, errFitFailed
	}
	eps := scaleReturns(returns)
	v := sampleVariance(eps)
	if v <= 0 {
		return nil, errFitFailed
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 { return garchNLL(eps, x[0], x[1], x[2]) },
	}
	x0 := []float64{0.1 * v, 0.1, 0.8}
	result, err := optimize.Minimize(problem, x0, &optimize.Settings{
		MajorIterations: 500,
		Converger:       &optimize.FunctionConverge{Absolute: 1e-8, Iterations: 100},
	}, &optimize.NelderMead{})
	if err != nil || result == nil || math.IsInf(result.F, 1) || math.IsNaN(result.F) {
		return nil, errFitFailed
	}

	omega, alpha, beta := result.X[0], result.X[1], result.X[2]
	if omega <= 0 || alpha < 0 || beta < 0 || alpha+beta >= 0.999 {
		return nil, errFitFailed
	}

	g := &GARCH{Omega: omega, Alpha: alpha, Beta: beta, NLL: result.F, scaled: eps}
	g.h = make([]float64, len(eps))
	h := v
	for i, e := range eps {
		g.h[i] = h
		h = omega + alpha*e*e + beta*h
	}
	return g, nil
}

// Forecast returns the daily volatility path for the next horizon steps, in
// unscaled return units.
func (g *GARCH) Forecast(horizon int) []float64 {
	lastEps := g.scaled[len(g.scaled)-1]
	lastH := g.h[len(g.h)-1]

	out := make([]float64, 0, horizon)
	h := g.Omega + g.Alpha*lastEps*lastEps + g.Beta*lastH
	for k := 0; k < horizon; k++ {
		if k > 0 {
			h = g.Omega + (g.Alpha+g.Beta)*h
		}
		out = append(out, math.Sqrt(h)/returnScale)
	}
	return out
}

// Params exposes the fitted coefficients for persistence.
func (g *GARCH) Params() map[string]float64 {
	return map[string]float64{"omega": g.Omega, "alpha": g.Alpha, "beta": g.Beta}
}
