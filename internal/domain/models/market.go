package models

import "time"

// MarketPoint is a single market-data observation for a token.
type MarketPoint struct {
	TokenAddress string
	TokenSymbol  string
	Price        float64
	MarketCap    float64
	Volume24h    float64
	Source       string // "coingecko", "defillama", "feed"
	Timestamp    time.Time
}

// TVLProxy returns the best available liquidity proxy for the point:
// market cap when present, then 24h volume, then a fixed floor.
func (p *MarketPoint) TVLProxy() float64 {
	if p.MarketCap > 0 {
		return p.MarketCap
	}
	if p.Volume24h > 0 {
		return p.Volume24h
	}
	return 1_000_000
}

// ChainEvent is an on-chain event observed for a protocol contract.
type ChainEvent struct {
	ProtocolAddress string
	EventType       string // "transaction", "upgrade_executed", "admin_change", ...
	TxHash          string
	BlockNumber     uint64
	Timestamp       time.Time
}

// Upgrade statuses as they move through governance.
const (
	UpgradeStatusPending   = "pending"
	UpgradeStatusApproved  = "approved"
	UpgradeStatusExecuted  = "executed"
	UpgradeStatusFailed    = "failed"
	UpgradeStatusCancelled = "cancelled"
)

// Upgrade types.
const (
	UpgradeTypeGovernance     = "governance_proposal"
	UpgradeTypeImplementation = "implementation_upgrade"
	UpgradeTypeParameter      = "parameter_change"
	UpgradeTypeEmergencyPause = "emergency_pause"
)

// Upgrade is a protocol upgrade proposal tracked by the monitor.
type Upgrade struct {
	ID              string
	ProtocolID      string
	ProtocolAddress string
	TokenSymbol     string
	UpgradeType     string // UpgradeTypeGovernance etc.
	Title           string
	Status          string
	StartTime       time.Time
	EndTime         time.Time
	ExecutionTime   *time.Time
	CreatedAt       time.Time
}

// AnchorTime is the reference moment for before/after analyses:
// the execution time when known, otherwise the proposal creation time.
func (u *Upgrade) AnchorTime() time.Time {
	if u.ExecutionTime != nil {
		return *u.ExecutionTime
	}
	return u.CreatedAt
}
