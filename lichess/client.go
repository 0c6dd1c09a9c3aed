// Package lichess is a small read-only client for the lichess.org API.
package lichess

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/iwanhae/rating-tourniquet/types"
)

const DefaultBaseURL = "https://lichess.org"

var ErrUserNotFound = errors.New("user not found")

type Client struct {
	base      string
	h         *http.Client
	userAgent string
}

func New(base string) *Client {
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		base:      base,
		h:         &http.Client{Timeout: 30 * time.Second},
		userAgent: "rating-tourniquet",
	}
}

// Perf is the rating summary of one category.
type Perf struct {
	Games  int `json:"games"`
	Rating int `json:"rating"`
}

type Profile struct {
	ID       string          `json:"id"`
	Username string          `json:"username"`
	Disabled bool            `json:"disabled"`
	Closed   bool            `json:"closed"`
	Perfs    map[string]Perf `json:"perfs"`
}

// Rating returns the current rating of p in category c.
func (p *Profile) Rating(c types.Category) (int, bool) {
	perf, ok := p.Perfs[c.PerfType()]
	if !ok {
		return 0, false
	}
	return perf.Rating, true
}

// FetchProfile calls GET /api/user/{username}.
func (c *Client) FetchProfile(ctx context.Context, username string) (*Profile, error) {
	resp, err := c.get(ctx, "/api/user/"+url.PathEscape(username), nil, "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var p Profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode profile of %s: %w", username, err)
	}
	if p.Disabled || p.Closed {
		return nil, fmt.Errorf("%s: %w", username, ErrUserNotFound)
	}
	return &p, nil
}

// FetchGames calls GET /api/games/user/{username} and returns a stream over
// at most max games of category cat, most recent first. The caller must
// Close the stream.
func (c *Client) FetchGames(ctx context.Context, username string, max int, cat types.Category) (*GameStream, error) {
	q := url.Values{}
	if max > 0 {
		q.Set("max", strconv.Itoa(max))
	}
	q.Set("perfType", cat.PerfType())
	q.Set("moves", "false")

	resp, err := c.get(ctx, "/api/games/user/"+url.PathEscape(username), q, "application/x-ndjson")
	if err != nil {
		return nil, err
	}
	return newGameStream(resp.Body), nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, accept string) (*http.Response, error) {
	u, err := url.Parse(c.base + path)
	if err != nil {
		return nil, err
	}
	if q != nil {
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.h.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, fmt.Errorf("lichess %s: %w", u.Path, ErrUserNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("lichess %s returned %d: %s", u.String(), resp.StatusCode, string(b))
	}
	return resp, nil
}
