package risk

import (
	"testing"

	"github.com/stretchr/testify/require"

	"PUM/internal/domain/models"
)

func TestIdentifyFactorsTiers(t *testing.T) {
	factors := IdentifyFactors(85, 55, 40, 10)
	require.Len(t, factors, 2)
	require.Equal(t, models.FactorTechnical, factors[0].Category)
	require.Equal(t, models.LevelHigh, factors[0].Level)
	require.Equal(t, "High smart contract complexity or recent security events", factors[0].Description)
	require.Equal(t, models.FactorGovernance, factors[1].Category)
	require.Equal(t, models.LevelMedium, factors[1].Level)
	require.Equal(t, "Moderate governance risk", factors[1].Description)
}

func TestIdentifyFactorsBoundaries(t *testing.T) {
	// thresholds are strict: exactly 70 is medium, exactly 40 is nothing
	factors := IdentifyFactors(70, 40, 0, 0)
	require.Len(t, factors, 1)
	require.Equal(t, models.LevelMedium, factors[0].Level)
}

func TestRecommendHighAndMedium(t *testing.T) {
	recs := Recommend([]models.RiskFactor{
		{Category: models.FactorTechnical, Level: models.LevelHigh},
		{Category: models.FactorLiquidity, Level: models.LevelMedium},
	})
	require.Equal(t, []string{
		"Conduct thorough smart contract audit before upgrade",
		"Implement emergency pause functionality",
		"Watch for unusual trading activity",
	}, recs)
}

func TestRecommendEmpty(t *testing.T) {
	recs := Recommend(nil)
	require.Equal(t, []string{"Continue monitoring all risk factors"}, recs)
}
