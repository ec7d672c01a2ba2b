package features

import "github.com/coinlens/signalcore/internal/stats"

// pctChangeAtOffset compares the newest close against the close `offset`
// rows back in a newest-first series. The offset counts rows, not time: a
// gappy series silently shifts the horizon, matching the upstream
// dashboard's behavior.
func pctChangeAtOffset(closes []*float64, offset int) *float64 {
	if offset <= 0 || offset >= len(closes) {
		return nil
	}
	return stats.PercentChange(closes[0], closes[offset])
}
