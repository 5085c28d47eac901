package forecast

import (
	"math"

	"gonum.org/v1/gonum/optimize"

	"PUM/internal/services/timeseries"
)

// expAbsZ is E|z| for standard normal z, used by the EGARCH news term.
var expAbsZ = math.Sqrt(2 / math.Pi)

// EGARCH is a fitted EGARCH(1,1,1) model. The gamma term captures the
// asymmetric response to negative shocks that plain GARCH misses.
type EGARCH struct {
	Omega, Alpha, Beta, Gamma float64
	NLL                       float64

	scaled []float64
	logH   []float64
}

func egarchNLL(eps []float64, omega, alpha, beta, gamma float64) float64 {
	if math.Abs(beta) >= 0.999 {
		return math.Inf(1)
	}
	v := sampleVariance(eps)
	if v <= 0 {
		return math.Inf(1)
	}
	logH := math.Log(v)
	nll := 0.0
	for _, e := range eps {
		h := math.Exp(logH)
		if h <= 0 || math.IsInf(h, 0) || math.IsNaN(h) {
			return math.Inf(1)
		}
		nll += logH + e*e/h
		z := e / math.Sqrt(h)
		logH = omega + beta*logH + alpha*(math.Abs(z)-expAbsZ) + gamma*z
	}
	return 0.5 * nll
}

// FitEGARCH fits EGARCH(1,1,1) by maximum likelihood.
func FitEGARCH(returns []float64) (*EGARCH, error) {
	if len(returns) < timeseries.MinFitPoints-1 {
		return nil, errFitFailed
	}
	eps := scaleReturns(returns)
	v := sampleVariance(eps)
	if v <= 0 {
		return nil, errFitFailed
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 { return egarchNLL(eps, x[0], x[1], x[2], x[3]) },
	}
	x0 := []float64{0.1 * math.Log(v), 0.1, 0.9, -0.05}
	result, err := optimize.Minimize(problem, x0, &optimize.Settings{
		MajorIterations: 800,
		Converger:       &optimize.FunctionConverge{Absolute: 1e-8, Iterations: 150},
	}, &optimize.NelderMead{})
	if err != nil || result == nil || math.IsInf(result.F, 1) || math.IsNaN(result.F) {
		return nil, errFitFailed
	}

	omega, alpha, beta, gamma := result.X[0], result.X[1], result.X[2], result.X[3]
	if math.Abs(beta) >= 0.999 {
		return nil, errFitFailed
	}

	m := &EGARCH{Omega: omega, Alpha: alpha, Beta: beta, Gamma: gamma, NLL: result.F, scaled: eps}
	m.logH = make([]float64, len(eps))
	logH := math.Log(v)
	for i, e := range eps {
		m.logH[i] = logH
		z := e / math.Exp(logH/2)
		logH = omega + beta*logH + alpha*(math.Abs(z)-expAbsZ) + gamma*z
	}
	return m, nil
}

// Forecast returns the daily volatility path in unscaled return units. Beyond
// one step the shock terms are at their zero expectation except the |z| news
// term, which keeps its mean.
func (m *EGARCH) Forecast(horizon int) []float64 {
	lastEps := m.scaled[len(m.scaled)-1]
	lastLogH := m.logH[len(m.logH)-1]
	z := lastEps / math.Exp(lastLogH/2)

	out := make([]float64, 0, horizon)
	logH := m.Omega + m.Beta*lastLogH + m.Alpha*(math.Abs(z)-expAbsZ) + m.Gamma*z
	for k := 0; k < horizon; k++ {
		if k > 0 {
			logH = m.Omega + m.Beta*logH
		}
		out = append(out, math.Exp(logH/2)/returnScale)
	}
	return out
}

func (m *EGARCH) Params() map[string]float64 {
	return map[string]float64{"omega": m.Omega, "alpha": m.Alpha, "beta": m.Beta, "gamma": m.Gamma}
}
