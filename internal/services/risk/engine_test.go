package risk

import (
	"context"
	"errors"
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

type fakeEvents struct {
	tx  int
	sec map[string]int
	err error
}

func (f *fakeEvents) CountEvents(_ context.Context, _, eventType string, _ time.Time) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	if eventType == "" {
		return f.tx, nil
	}
	return f.sec[eventType], nil
}

type fakeUpgrades struct {
	upgrade   *models.Upgrade
	proposals []models.Upgrade
	err       error
}

func (f *fakeUpgrades) GetUpgrade(_ context.Context, id string) (*models.Upgrade, error) {
	if f.upgrade == nil {
		return nil, models.NotFoundError("upgrade", id)
	}
	return f.upgrade, nil
}

func (f *fakeUpgrades) ListByProtocol(_ context.Context, _ string, _ time.Time) ([]models.Upgrade, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.proposals, nil
}

type fakeMarket struct {
	points []models.MarketPoint
	err    error
}

func (f *fakeMarket) GetRange(_ context.Context, _ string, _, _ time.Time) ([]models.MarketPoint, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.points, nil
}

func (f *fakeMarket) GetLatestN(_ context.Context, _ string, n int) ([]models.MarketPoint, error) {
	if f.err != nil {
		return nil, f.err
	}
	if n > len(f.points) {
		n = len(f.points)
	}
	return f.points[:n], nil
}

type fakeAssessments struct {
	inserted []*models.RiskAssessment
	history  []models.RiskAssessment
	insErr   error
}

func (f *fakeAssessments) Insert(_ context.Context, a *models.RiskAssessment) error {
	if f.insErr != nil {
		return f.insErr
	}
	f.inserted = append(f.inserted, a)
	return nil
}

func (f *fakeAssessments) ListByProtocol(_ context.Context, _ string, _ time.Time) ([]models.RiskAssessment, error) {
	return f.history, nil
}

func (f *fakeAssessments) ListRecent(_ context.Context, limit int) ([]models.RiskAssessment, error) {
	if limit > len(f.history) {
		limit = len(f.history)
	}
	return f.history[:limit], nil
}

func testUpgrade() *models.Upgrade {
	return &models.Upgrade{
		ID:              "u-1",
		ProtocolID:      "uniswap",
		ProtocolAddress: "0xabc",
		TokenSymbol:     "UNI",
		Status:          models.UpgradeStatusPending,
		CreatedAt:       time.Now().UTC().AddDate(0, 0, -3),
	}
}

func newTestEngine(ev *fakeEvents, up *fakeUpgrades, mk *fakeMarket, as *fakeAssessments, t *testing.T) *Engine {
	return NewEngine(DefaultWeights(), ev, up, mk, as, testLogger(t), nil)
}

func TestAssessUnknownUpgrade(t *testing.T) {
	e := newTestEngine(&fakeEvents{}, &fakeUpgrades{}, &fakeMarket{}, &fakeAssessments{}, t)
	_, err := e.Assess(context.Background(), "missing")
	require.True(t, errors.Is(err, models.ErrNotFound))
}

func TestAssessNoDataDefaults(t *testing.T) {
	as := &fakeAssessments{}
	e := newTestEngine(&fakeEvents{}, &fakeUpgrades{upgrade: testUpgrade()}, &fakeMarket{}, as, t)

	a, err := e.Assess(context.Background(), "u-1")
	require.NoError(t, err)
	require.Equal(t, 50.0, a.TechnicalScore)
	require.Equal(t, 75.0, a.GovernanceScore)
	require.Equal(t, 60.0, a.MarketScore)
	require.Equal(t, 70.0, a.LiquidityScore)
	require.InDelta(t, 63.75, a.OverallScore, 1e-9)

	// governance high, the other three medium
	require.Len(t, a.Factors, 4)
	require.Contains(t, a.Recommendations, "Increase governance participation incentives")
	require.Contains(t, a.Recommendations, "Extend proposal voting period")
	require.Len(t, a.Recommendations, 5)

	require.Len(t, as.inserted, 1)
	require.Equal(t, "uniswap", as.inserted[0].ProtocolID)
}

func TestAssessQueryErrorsDegradeTo50(t *testing.T) {
	boom := errors.New("clickhouse down")
	e := newTestEngine(
		&fakeEvents{err: boom},
		&fakeUpgrades{upgrade: testUpgrade(), err: boom},
		&fakeMarket{err: boom},
		&fakeAssessments{},
		t,
	)

	a, err := e.Assess(context.Background(), "u-1")
	require.NoError(t, err)
	require.Equal(t, 50.0, a.TechnicalScore)
	require.Equal(t, 50.0, a.GovernanceScore)
	require.Equal(t, 50.0, a.MarketScore)
	require.Equal(t, 50.0, a.LiquidityScore)
	require.InDelta(t, 50, a.OverallScore, 1e-9)
}

func TestAssessPersistFailure(t *testing.T) {
	as := &fakeAssessments{insErr: errors.New("insert failed")}
	e := newTestEngine(&fakeEvents{}, &fakeUpgrades{upgrade: testUpgrade()}, &fakeMarket{}, as, t)

	_, err := e.Assess(context.Background(), "u-1")
	require.True(t, errors.Is(err, models.ErrPersistence))
}

func TestGovernanceRiskFromProposals(t *testing.T) {
	u := testUpgrade()
	proposals := []models.Upgrade{
		{UpgradeType: models.UpgradeTypeGovernance, Status: models.UpgradeStatusExecuted},
		{UpgradeType: models.UpgradeTypeGovernance, Status: models.UpgradeStatusApproved},
		{UpgradeType: models.UpgradeTypeGovernance, Status: models.UpgradeStatusFailed},
		{UpgradeType: models.UpgradeTypeGovernance, Status: models.UpgradeStatusPending},
		// not proposals, must not dilute the success rate
		{UpgradeType: models.UpgradeTypeImplementation, Status: models.UpgradeStatusExecuted},
		{UpgradeType: models.UpgradeTypeParameter, Status: models.UpgradeStatusExecuted},
	}
	e := newTestEngine(&fakeEvents{}, &fakeUpgrades{upgrade: u, proposals: proposals}, &fakeMarket{}, &fakeAssessments{}, t)

	// success rate 0.5, 4 proposals over 3 months, pending adds 0.2:
	// (0.5*0.5 + min(4/3/5,1)*0.3 + 0.2) * 100
	got := e.governanceRisk(context.Background(), u)
	require.InDelta(t, (0.25+4.0/15*0.3+0.2)*100, got, 1e-9)
}

func TestGovernanceRiskIgnoresNonProposalUpgrades(t *testing.T) {
	u := testUpgrade()
	history := []models.Upgrade{
		{UpgradeType: models.UpgradeTypeImplementation, Status: models.UpgradeStatusExecuted},
		{UpgradeType: models.UpgradeTypeImplementation, Status: models.UpgradeStatusExecuted},
	}
	e := newTestEngine(&fakeEvents{}, &fakeUpgrades{upgrade: u, proposals: history}, &fakeMarket{}, &fakeAssessments{}, t)

	// no governance proposals at all, so the no-history default applies
	got := e.governanceRisk(context.Background(), u)
	require.InDelta(t, 75, got, 1e-9)
}

func TestTechnicalRiskActivity(t *testing.T) {
	u := testUpgrade()
	ev := &fakeEvents{tx: 250, sec: map[string]int{"Emergency_Pause": 1, "Security_Patch": 2}}
	e := newTestEngine(ev, &fakeUpgrades{upgrade: u}, &fakeMarket{}, &fakeAssessments{}, t)

	// complexity capped at 1, security 3*0.2=0.6: (1*0.6 + 0.6*0.4)*100
	got := e.technicalRisk(context.Background(), u)
	require.InDelta(t, 84, got, 1e-9)
}

func TestLiquidityRiskLowVolume(t *testing.T) {
	u := testUpgrade()
	points := []models.MarketPoint{
		{Volume24h: 100}, {Volume24h: 100}, {Volume24h: 100},
	}
	e := newTestEngine(&fakeEvents{}, &fakeUpgrades{upgrade: u}, &fakeMarket{points: points}, &fakeAssessments{}, t)

	// cv 0, low volume indicator on: (0*0.6 + 1*0.4)*100
	got := e.liquidityRisk(context.Background(), u)
	require.InDelta(t, 40, got, 1e-9)
}

func TestMarketRiskDowntrend(t *testing.T) {
	u := testUpgrade()
	// newest first: recent prices lower than older ones
	points := make([]models.MarketPoint, 0, 30)
	for i := 0; i < 30; i++ {
		points = append(points, models.MarketPoint{Price: 100 + float64(i)})
	}
	e := newTestEngine(&fakeEvents{}, &fakeUpgrades{upgrade: u}, &fakeMarket{points: points}, &fakeAssessments{}, t)

	got := e.marketRisk(context.Background(), u)
	// trend score 1 (declining), volatility component small but positive
	require.Greater(t, got, 30.0)
	require.LessOrEqual(t, got, 100.0)
}
