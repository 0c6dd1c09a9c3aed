// Package aggregate reduces game results to the set of hours during which
// the player historically loses rating.
package aggregate

import (
	"fmt"
	"io"

	"github.com/iwanhae/rating-tourniquet/types"
)

// Totals sums the rating deltas of results per hour of the day.
func Totals(results []types.GameResult) [24]int {
	var totals [24]int
	for _, r := range results {
		if r.Hour < 0 || r.Hour > 23 {
			continue
		}
		totals[r.Hour] += r.RatingDelta
	}
	return totals
}

// Banned returns the hours whose total is strictly below -threshold.
func Banned(totals [24]int, threshold int) types.BannedHours {
	var banned types.BannedHours
	for h, total := range totals {
		if total < -threshold {
			banned.Ban(h)
		}
	}
	return banned
}

// BannedHours computes the banned hours for results and, if report is not
// nil, writes a line for each of them.
func BannedHours(results []types.GameResult, threshold int, report io.Writer) types.BannedHours {
	totals := Totals(results)
	banned := Banned(totals, threshold)
	if report != nil {
		WriteReport(report, totals, banned)
	}
	return banned
}

// WriteReport writes the human-readable loss report for banned.
func WriteReport(w io.Writer, totals [24]int, banned types.BannedHours) {
	fmt.Fprintln(w, "Lichess will be blocked for periods during which you lose rating:")
	for _, h := range banned.Hours() {
		fmt.Fprintf(w, "%s (rating net loss: %d)\n", HourRange(h), totals[h])
	}
}

// HourRange formats the hour starting at h, e.g. "09:00 to 10:00".
// The last hour of the day ends at 00:00.
func HourRange(h int) string {
	return fmt.Sprintf("%02d:00 to %02d:00", h, (h+1)%24)
}
