// Package heuristic scores non-terminal states for the search engine's depth
// cutoff. Evaluators are interchangeable strategies; the engine never knows
// which one it is running.
package heuristic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/soledad-ai/soledad/board"
	"github.com/soledad-ai/soledad/game"
)

// An Evaluator estimates the value of a state for one player. Implementations
// must be total, zero-sum (Evaluate(s, p) == -Evaluate(s, p.Opponent())) and
// sign-aligned with game utilities: more negative is worse for p.
type Evaluator interface {
	Evaluate(s game.State, p game.PlayerID) float32
	Type() string
}

// MobilityDiff scores by knight-mobility difference: how many moves p has
// minus how many the opponent has. The default evaluator.
type MobilityDiff struct{}

func (MobilityDiff) Evaluate(s game.State, p game.PlayerID) float32 {
	return float32(s.Mobility(p) - s.Mobility(p.Opponent()))
}

func (MobilityDiff) Type() string { return "mobility" }

// BoxLiberties scores by the difference in open cells within the square box
// of the given radius around each player. Radius 2 is the classic 5x5
// "liberties" count, radius 1 its 3x3 variant. A player that has not entered
// the board yet counts a full box.
type BoxLiberties struct {
	Radius int
}

func (b BoxLiberties) Evaluate(s game.State, p game.PlayerID) float32 {
	return float32(b.liberties(s, p) - b.liberties(s, p.Opponent()))
}

func (b BoxLiberties) liberties(s game.State, p game.PlayerID) int {
	loc := s.PlayerLocation(p)
	if loc == board.NoSquare {
		side := 2*b.Radius + 1
		return side*side - 1
	}
	return s.Geometry().Box(loc, b.Radius).AndNot(s.Occupied()).Count()
}

func (b BoxLiberties) Type() string {
	if b.Radius == 1 {
		return "box3"
	}
	return "box5"
}

var registry = map[string]func() Evaluator{
	"mobility": func() Evaluator { return MobilityDiff{} },
	"box5":     func() Evaluator { return BoxLiberties{Radius: 2} },
	"box3":     func() Evaluator { return BoxLiberties{Radius: 1} },
}

// Named returns a fresh evaluator registered under name.
func Named(name string) (Evaluator, error) {
	mk, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown evaluator %q (have: %s)",
			name, strings.Join(Names(), ", "))
	}
	return mk(), nil
}

// Names lists the registered evaluator names, sorted.
func Names() []string {
	names := lo.Keys(registry)
	sort.Strings(names)
	return names
}
