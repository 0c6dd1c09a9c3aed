package types

import (
	"fmt"
	"strings"
)

// GameResult is the rating change of one game and the hour it started.
type GameResult struct {
	RatingDelta int
	Hour        int
}

// Category is a time-control class used to filter games.
type Category string

const (
	Bullet   Category = "bullet"
	Blitz    Category = "blitz"
	Rapid    Category = "rapid"
	Standard Category = "standard"
)

var Categories = []Category{Bullet, Blitz, Rapid, Standard}

func ParseCategory(s string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case Bullet, Blitz, Rapid, Standard:
		return c, nil
	case "classical":
		return Standard, nil
	}
	return "", fmt.Errorf("invalid category %q (want one of bullet, blitz, rapid, standard)", s)
}

// PerfType returns the key the rating service uses for c.
func (c Category) PerfType() string {
	if c == Standard {
		return "classical"
	}
	return string(c)
}
