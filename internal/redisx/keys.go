package redisx

import "time"

const (
	// ChannelSettlements carries session ids published by the webhook
	// ingest when an order lands: settlements
	ChannelSettlements = "settlements"

	// KeyDedupSettlement guards confirmation side effects across restarts:
	// dedup:settlement:{session_id}
	KeyDedupSettlement = "dedup:settlement:%s"
)

var (
	TTLDedup = 48 * time.Hour
)
