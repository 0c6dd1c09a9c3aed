package history

import (
	"errors"
	"testing"
	"time"

	"github.com/iwanhae/rating-tourniquet/lichess"
	"github.com/iwanhae/rating-tourniquet/types"
)

type sliceSource struct {
	games []lichess.Game
	i     int
	err   error
}

func (s *sliceSource) Next() bool {
	if s.i >= len(s.games) {
		return false
	}
	s.i++
	return true
}

func (s *sliceSource) Game() *lichess.Game { return &s.games[s.i-1] }
func (s *sliceSource) Err() error          { return s.err }

func game(createdAt int64, white string, whiteDiff *int, black string, blackDiff *int) lichess.Game {
	var g lichess.Game
	g.CreatedAt = createdAt
	g.Players.White = lichess.Player{User: &lichess.User{Name: white}, RatingDiff: whiteDiff}
	g.Players.Black = lichess.Player{User: &lichess.User{Name: black}, RatingDiff: blackDiff}
	return g
}

func intp(v int) *int { return &v }

// hourMs returns a timestamp at the given UTC hour on 2024-09-26.
func hourMs(h int) int64 {
	return time.Date(2024, 9, 26, h, 30, 0, 0, time.UTC).UnixMilli()
}

func stores(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := NewSQLiteStore()
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	out := map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
	for name, s := range out {
		if err := s.Init(); err != nil {
			t.Fatalf("%s Init: %v", name, err)
		}
		t.Cleanup(func() { s.Close() })
	}
	return out
}

func TestStoresTotals(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for _, r := range []types.GameResult{
				{RatingDelta: -5, Hour: 10},
				{RatingDelta: 3, Hour: 10},
				{RatingDelta: -4, Hour: 14},
				{RatingDelta: 9, Hour: 23},
			} {
				if err := s.Append(r); err != nil {
					t.Fatalf("Append: %v", err)
				}
			}
			totals, err := s.Totals()
			if err != nil {
				t.Fatalf("Totals: %v", err)
			}
			if totals[10] != -2 || totals[14] != -4 || totals[23] != 9 || totals[0] != 0 {
				t.Fatalf("unexpected totals %v", totals)
			}
			n, err := s.Count()
			if err != nil || n != 4 {
				t.Fatalf("Count = %d, %v; want 4", n, err)
			}
		})
	}
}

func TestStoresEmpty(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			totals, err := s.Totals()
			if err != nil {
				t.Fatalf("Totals: %v", err)
			}
			if totals != [24]int{} {
				t.Fatalf("expected zero totals, got %v", totals)
			}
		})
	}
}

func TestCollectSkipsIncompleteRecords(t *testing.T) {
	src := &sliceSource{games: []lichess.Game{
		game(hourMs(10), "me", intp(-5), "opp", intp(5)),
		game(hourMs(10), "opp", intp(3), "me", intp(3)),
		game(hourMs(14), "me", nil, "opp", nil),
		game(hourMs(14), "opp", intp(4), "me", intp(-4)),
	}}
	store := NewMemoryStore()

	kept, skipped, err := Collect(src, "me", time.UTC, store)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if kept != 3 || skipped != 1 {
		t.Fatalf("kept=%d skipped=%d, want 3/1", kept, skipped)
	}
	totals, _ := store.Totals()
	if totals[10] != -2 || totals[14] != -4 {
		t.Fatalf("unexpected totals %v", totals)
	}
	if got := len(store.Results()); got != 3 {
		t.Fatalf("Results() has %d entries, want 3", got)
	}
}

func TestCollectReturnsSourceError(t *testing.T) {
	want := errors.New("connection reset")
	src := &sliceSource{games: []lichess.Game{game(hourMs(1), "me", intp(1), "opp", intp(-1))}, err: want}

	kept, _, err := Collect(src, "me", time.UTC, NewMemoryStore())
	if !errors.Is(err, want) {
		t.Fatalf("expected source error, got %v", err)
	}
	if kept != 1 {
		t.Fatalf("kept = %d, want 1", kept)
	}
}
