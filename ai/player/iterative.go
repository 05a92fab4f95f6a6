package player

import (
	"context"
	"math/rand"

	"github.com/rs/zerolog/log"

	"github.com/soledad-ai/soledad/game"
	"github.com/soledad-ai/soledad/heuristic"
	"github.com/soledad-ai/soledad/search"
)

// IterativeSearchPlayer runs the deepening alpha-beta searcher for every
// move. Before the search starts it publishes a random legal move to the
// record, so a deadline that fires inside the first depth still finds an
// answer there.
type IterativeSearchPlayer struct {
	solver *search.Solver
	rng    *rand.Rand
	name   string
}

// NewIterativeSearchPlayer creates a search player cutting off at ev. A nil
// rng gets a fresh cryptographically seeded source for the fallback move.
func NewIterativeSearchPlayer(ev heuristic.Evaluator, rng *rand.Rand) (*IterativeSearchPlayer, error) {
	solver := &search.Solver{}
	if err := solver.Init(ev); err != nil {
		return nil, err
	}
	if rng == nil {
		seed, source := seededRandSource()
		log.Debug().Msgf("Random seed for this player was %v", seed)
		rng = source
	}
	return &IterativeSearchPlayer{
		solver: solver,
		rng:    rng,
		name:   "search-" + ev.Type(),
	}, nil
}

// Solver exposes the underlying searcher so callers can flip its
// optimization toggles before play.
func (p *IterativeSearchPlayer) Solver() *search.Solver {
	return p.solver
}

func (p *IterativeSearchPlayer) Name() string { return p.name }

func (p *IterativeSearchPlayer) GetAction(ctx context.Context, st game.State, rec *search.Record) error {
	actions := st.Actions()
	if len(actions) == 0 {
		return game.ErrNoLegalMoves
	}
	rec.Put(search.Result{Move: actions[p.rng.Intn(len(actions))]})
	return p.solver.SolveWithRecord(ctx, st, 0, rec)
}
