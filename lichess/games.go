package lichess

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/iwanhae/rating-tourniquet/types"
)

type User struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

type Player struct {
	User       *User `json:"user"`
	Rating     int   `json:"rating"`
	RatingDiff *int  `json:"ratingDiff"`
}

// Game is one record of a user's game export. Fields the export may omit
// are pointers.
type Game struct {
	ID        string `json:"id"`
	Rated     bool   `json:"rated"`
	Speed     string `json:"speed"`
	CreatedAt int64  `json:"createdAt"`
	Players   struct {
		White Player `json:"white"`
		Black Player `json:"black"`
	} `json:"players"`
}

// Color returns "white" if username played white in g and "black" otherwise.
func (g *Game) Color(username string) string {
	if u := g.Players.White.User; u != nil && (strings.EqualFold(u.Name, username) || strings.EqualFold(u.ID, username)) {
		return "white"
	}
	return "black"
}

// Result derives the GameResult of username from g. It reports false if
// the record has no rating change for that side.
func (g *Game) Result(username string, loc *time.Location) (types.GameResult, bool) {
	p := g.Players.Black
	if g.Color(username) == "white" {
		p = g.Players.White
	}
	if p.RatingDiff == nil {
		return types.GameResult{}, false
	}
	return types.GameResult{
		RatingDelta: *p.RatingDiff,
		Hour:        types.HourOf(g.CreatedAt, loc),
	}, true
}

// GameStream reads newline-delimited game records one at a time.
type GameStream struct {
	body io.ReadCloser
	dec  *json.Decoder
	game Game
	err  error
}

func newGameStream(body io.ReadCloser) *GameStream {
	return &GameStream{body: body, dec: json.NewDecoder(body)}
}

// Next decodes the next game. It returns false at the end of the stream or
// on error; check Err afterwards.
func (s *GameStream) Next() bool {
	if s.err != nil {
		return false
	}
	s.game = Game{}
	if err := s.dec.Decode(&s.game); err != nil {
		if !errors.Is(err, io.EOF) {
			s.err = err
		}
		return false
	}
	return true
}

// Game returns the current record. It is overwritten by the next call to Next.
func (s *GameStream) Game() *Game {
	return &s.game
}

func (s *GameStream) Err() error {
	return s.err
}

func (s *GameStream) Close() error {
	return s.body.Close()
}
