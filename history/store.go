// Package history collects the game results of one run.
package history

import (
	"time"

	"github.com/iwanhae/rating-tourniquet/lichess"
	"github.com/iwanhae/rating-tourniquet/types"
)

// Store is a container for the game results of a single run.
type Store interface {
	Init() error
	Append(r types.GameResult) error
	Totals() ([24]int, error)
	Count() (int, error)
	Close() error
}

// Source yields raw game records, like *lichess.GameStream.
type Source interface {
	Next() bool
	Game() *lichess.Game
	Err() error
}

// Collect drains src into store. Records without a rating change for
// username are skipped and counted in skipped.
func Collect(src Source, username string, loc *time.Location, store Store) (kept, skipped int, err error) {
	for src.Next() {
		r, ok := src.Game().Result(username, loc)
		if !ok {
			skipped++
			continue
		}
		if err := store.Append(r); err != nil {
			return kept, skipped, err
		}
		kept++
	}
	return kept, skipped, src.Err()
}
