package types

import (
	"strconv"
	"strings"
	"time"
)

// BannedHours keeps a set of banned hours of the day.
// The zero value is an empty set.
type BannedHours struct {
	banned [24]bool
}

// Ban adds h to the set. Hours outside 0..23 are ignored.
func (b *BannedHours) Ban(h int) {
	if h < 0 || h > 23 {
		return
	}
	b.banned[h] = true
}

func (b BannedHours) IsBanned(h int) bool {
	if h < 0 || h > 23 {
		return false
	}
	return b.banned[h]
}

// Hours returns the banned hours in ascending order.
func (b BannedHours) Hours() []int {
	var out []int
	for h, ok := range b.banned {
		if ok {
			out = append(out, h)
		}
	}
	return out
}

func (b BannedHours) Len() int {
	n := 0
	for _, ok := range b.banned {
		if ok {
			n++
		}
	}
	return n
}

func (b BannedHours) String() string {
	hours := b.Hours()
	parts := make([]string, len(hours))
	for i, h := range hours {
		parts[i] = strconv.Itoa(h)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// HourOf converts a millisecond Unix timestamp to the wall-clock hour in loc.
func HourOf(ms int64, loc *time.Location) int {
	if loc == nil {
		loc = time.Local
	}
	return time.Unix(ms/1000, 0).In(loc).Hour()
}
