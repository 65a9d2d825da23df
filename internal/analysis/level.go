package analysis

import (
	"fmt"
	"strings"
)

// Level is a work-item abstraction depth.
type Level string

const (
	LevelStory         Level = "story"
	LevelEpic          Level = "epic"
	LevelFeature       Level = "feature"
	LevelInitiative    Level = "initiative"
	LevelBusinessBrief Level = "business-brief"
)

// levelOrder lists levels from narrowest to broadest.
var levelOrder = []Level{LevelStory, LevelEpic, LevelFeature, LevelInitiative, LevelBusinessBrief}

// Levels returns all levels from narrowest to broadest.
func Levels() []Level {
	return append([]Level(nil), levelOrder...)
}

// ParseLevel converts raw into a known level.
func ParseLevel(raw string) (Level, error) {
	candidate := Level(strings.ToLower(strings.TrimSpace(raw)))
	if candidate.Valid() {
		return candidate, nil
	}
	return "", fmt.Errorf("unknown analysis level %q", raw)
}

// Valid reports whether l is a known level.
func (l Level) Valid() bool {
	return l.rank() >= 0
}

func (l Level) rank() int {
	for i, candidate := range levelOrder {
		if candidate == l {
			return i
		}
	}
	return -1
}

// Includes reports whether a request at level l covers other.
func (l Level) Includes(other Level) bool {
	r := l.rank()
	return r >= 0 && other.rank() >= 0 && other.rank() <= r
}

func (l Level) String() string {
	return string(l)
}
