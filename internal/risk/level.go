package risk

import (
	"errors"
	"fmt"
	"strings"
)

type Level string

const (
	LevelLow      Level = "low"
	LevelModerate Level = "moderate"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
)

var ErrInvalidLevel = errors.New("invalid risk level")

// Levels lists every level from least to most severe.
var Levels = []Level{LevelLow, LevelModerate, LevelHigh, LevelCritical}

// Rank orders levels low(1) < moderate(2) < high(3) < critical(4); unknown levels rank 0.
func (l Level) Rank() int {
	switch l {
	case LevelLow:
		return 1
	case LevelModerate:
		return 2
	case LevelHigh:
		return 3
	case LevelCritical:
		return 4
	default:
		return 0
	}
}

func (l Level) Valid() bool { return l.Rank() > 0 }

// AtLeast reports whether l is as severe as min or more.
func (l Level) AtLeast(min Level) bool { return l.Rank() >= min.Rank() }

func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToLower(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
	return l, nil
}
