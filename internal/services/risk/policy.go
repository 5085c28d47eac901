package risk

import "PUM/internal/domain/models"

// FallbackPolicy documents how a factor degrades when its inputs are missing
// or its query fails. Centralizing the defaults here keeps the degradation
// deterministic and testable instead of scattered per method.
type FallbackPolicy struct {
	NoData   float64 // score when the window holds no rows at all
	OnError  float64 // score when the underlying query fails
	LogLevel string  // "warn" for query errors, "info" for expected no-data
}

// Fallbacks is the per-factor degradation table. Every factor calculation
// error is absorbed here; an assessment always produces a full score set.
var Fallbacks = map[string]FallbackPolicy{
	models.FactorTechnical:  {NoData: 50.0, OnError: 50.0, LogLevel: "warn"},
	models.FactorGovernance: {NoData: 75.0, OnError: 50.0, LogLevel: "info"},
	models.FactorMarket:     {NoData: 60.0, OnError: 50.0, LogLevel: "info"},
	models.FactorLiquidity:  {NoData: 70.0, OnError: 50.0, LogLevel: "info"},
}
