package risk

import "PUM/internal/domain/models"

// Factor tier thresholds.
const (
	highThreshold   = 70
	mediumThreshold = 40
)

var descriptions = map[string]map[string]string{
	models.FactorTechnical: {
		models.LevelHigh:   "High smart contract complexity or recent security events",
		models.LevelMedium: "Moderate technical complexity",
	},
	models.FactorGovernance: {
		models.LevelHigh:   "Low governance participation or proposal success rate",
		models.LevelMedium: "Moderate governance risk",
	},
	models.FactorMarket: {
		models.LevelHigh:   "High price volatility or negative price trend",
		models.LevelMedium: "Moderate market volatility",
	},
	models.FactorLiquidity: {
		models.LevelHigh:   "Low trading volume or high volume volatility",
		models.LevelMedium: "Moderate liquidity risk",
	},
}

// IdentifyFactors returns the elevated factors for a score set: >70 is high,
// >40 is medium, at or below 40 contributes nothing.
func IdentifyFactors(technical, governance, market, liquidity float64) []models.RiskFactor {
	var out []models.RiskFactor
	add := func(category string, score float64) {
		var level string
		switch {
		case score > highThreshold:
			level = models.LevelHigh
		case score > mediumThreshold:
			level = models.LevelMedium
		default:
			return
		}
		out = append(out, models.RiskFactor{
			Category:    category,
			Score:       score,
			Level:       level,
			Description: descriptions[category][level],
		})
	}
	add(models.FactorTechnical, technical)
	add(models.FactorGovernance, governance)
	add(models.FactorMarket, market)
	add(models.FactorLiquidity, liquidity)
	return out
}

var recommendations = map[string]map[string][]string{
	models.FactorTechnical: {
		models.LevelHigh: {
			"Conduct thorough smart contract audit before upgrade",
			"Implement emergency pause functionality",
		},
		models.LevelMedium: {"Monitor smart contract events closely"},
	},
	models.FactorGovernance: {
		models.LevelHigh: {
			"Increase governance participation incentives",
			"Extend proposal voting period",
		},
		models.LevelMedium: {"Monitor governance proposal outcomes"},
	},
	models.FactorMarket: {
		models.LevelHigh: {
			"Consider hedging strategies for price volatility",
			"Monitor market sentiment closely",
		},
		models.LevelMedium: {"Track price movements during upgrade"},
	},
	models.FactorLiquidity: {
		models.LevelHigh: {
			"Ensure sufficient liquidity before upgrade",
			"Monitor trading volume patterns",
		},
		models.LevelMedium: {"Watch for unusual trading activity"},
	},
}

// Recommend maps elevated factors to mitigation advice: two actions for high
// factors, one monitoring suggestion for medium ones.
func Recommend(factors []models.RiskFactor) []string {
	var out []string
	for _, f := range factors {
		out = append(out, recommendations[f.Category][f.Level]...)
	}
	if len(out) == 0 {
		out = append(out, "Continue monitoring all risk factors")
	}
	return out
}
