package repository

// Lookback windows (in days) used by the analytics read paths.
const (
	WindowRegime     = 30  // before/after window around an upgrade anchor
	WindowFitHistory = 90  // price history pulled for model fitting
	WindowGovernance = 90  // proposal lookback for governance risk
	WindowActivity   = 30  // transaction lookback for technical risk
	WindowSecurity   = 7   // security event lookback for technical risk
	WindowEvaluation = 90  // default prediction-history lookback
)

// ClampDays bounds a caller-supplied lookback to [1, max], substituting def
// for non-positive input.
func ClampDays(days, def, max int) int {
	if days <= 0 {
		return def
	}
	if days > max {
		return max
	}
	return days
}
