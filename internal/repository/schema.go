package repository

import "fmt"

// SchemaStatements returns the idempotent DDL for the analytics store. All
// tables are append-only MergeTree; "current" state is always the most recent
// row by created_at.
func SchemaStatements(db string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.market_data (
			token_address String,
			token_symbol String,
			price Float64,
			market_cap Float64,
			volume_24h Float64,
			source String,
			ts DateTime64(3)
		) ENGINE=MergeTree ORDER BY (token_symbol, ts)`, db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.chain_events (
			protocol_address String,
			event_type String,
			tx_hash String,
			block_number UInt64,
			ts DateTime64(3)
		) ENGINE=MergeTree ORDER BY (protocol_address, event_type, ts)`, db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.protocol_upgrades (
			id String,
			protocol_id String,
			protocol_address String,
			token_symbol String,
			upgrade_type String,
			title String,
			status String,
			start_time DateTime64(3),
			end_time DateTime64(3),
			execution_time Nullable(DateTime64(3)),
			created_at DateTime64(3)
		) ENGINE=ReplacingMergeTree(created_at) ORDER BY id`, db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.risk_assessments (
			id String DEFAULT generateUUIDv4(),
			upgrade_id String,
			protocol_id String,
			technical_score Float64,
			governance_score Float64,
			market_score Float64,
			liquidity_score Float64,
			overall_score Float64,
			factors String,
			recommendations String,
			created_at DateTime64(3)
		) ENGINE=MergeTree ORDER BY (protocol_id, created_at)`, db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.volatility_predictions (
			id String DEFAULT generateUUIDv4(),
			token_symbol String,
			upgrade_id String,
			model String,
			horizon_days Int32,
			forecast String,
			predicted_value Float64,
			ci_lower Float64,
			ci_upper Float64,
			params String,
			created_at DateTime64(3)
		) ENGINE=MergeTree ORDER BY (token_symbol, created_at)`, db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.liquidity_predictions (
			id String DEFAULT generateUUIDv4(),
			protocol_id String,
			upgrade_id String,
			model String,
			p Int32, d Int32, q Int32,
			horizon_days Int32,
			forecast String,
			predicted_value Float64,
			change_pct Float64,
			ci_lower Float64,
			ci_upper Float64,
			aic Float64,
			created_at DateTime64(3)
		) ENGINE=MergeTree ORDER BY (protocol_id, created_at)`, db),
	}
}
