package security

import (
	"crypto/sha256"
	"fmt"

	"github.com/rs/zerolog/log"
)

const bytesPerGB = 1_000_000_000.0
const bigQueryCostPerTB = 5.0 // USD

// CostTracker caps bytes scanned per warehouse query and logs the cost.
type CostTracker struct {
	maxBytes int64
}

func NewCostTracker(maxBytes int64) *CostTracker {
	return &CostTracker{maxBytes: maxBytes}
}

// CheckLimits reports whether totalBytesProcessed is within the cap, with a
// message when it is not.
func (ct *CostTracker) CheckLimits(totalBytesProcessed int64) (bool, string) {
	if ct.maxBytes <= 0 || totalBytesProcessed <= ct.maxBytes {
		return true, ""
	}
	return false, fmt.Sprintf(
		"query cost limit exceeded: processed %.2fGB, limit %.2fGB",
		float64(totalBytesProcessed)/bytesPerGB, float64(ct.maxBytes)/bytesPerGB,
	)
}

// LogQueryCost logs the scanned bytes and estimated price of a query.
func (ct *CostTracker) LogQueryCost(sql string, totalBytesProcessed int64, durationMs int64) {
	processedGB := float64(totalBytesProcessed) / bytesPerGB
	costUSD := processedGB / 1000.0 * bigQueryCostPerTB

	log.Info().
		Str("event", "query_cost").
		Str("sql_hash", shortHash(sql)).
		Float64("cost_gb", processedGB).
		Float64("cost_usd", costUSD).
		Int64("duration_ms", durationMs).
		Msgf("query cost: %.4fGB ($%.4f) in %dms", processedGB, costUSD, durationMs)
}

func hashStr(s string) string {
	h := sha256.Sum256([]byte(s))
	return fmt.Sprintf("%x", h)
}
