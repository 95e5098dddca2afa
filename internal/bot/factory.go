package bot

import "fmt"

// Level selects a computer opponent difficulty.
type Level int32

const (
	// LevelRandom plays uniformly at random.
	LevelRandom Level = iota
	// LevelSharp plays a simple value heuristic.
	LevelSharp
)

// NewBrain creates a computer opponent brain for the given level.
func NewBrain(level Level) (Brain, error) {
	switch level {
	case LevelRandom:
		return &RandomBrain{}, nil
	case LevelSharp:
		return &SharpBrain{}, nil
	default:
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
}
