package player

import (
	"context"

	"github.com/soledad-ai/soledad/game"
	"github.com/soledad-ai/soledad/heuristic"
	"github.com/soledad-ai/soledad/search"
)

// GreedyPlayer maximizes an evaluator exactly one ply ahead, keeping the
// first of any tied moves. It does no look-ahead beyond that.
type GreedyPlayer struct {
	evaluator heuristic.Evaluator
}

func NewGreedyPlayer(ev heuristic.Evaluator) *GreedyPlayer {
	return &GreedyPlayer{evaluator: ev}
}

func (p *GreedyPlayer) Name() string { return "greedy-" + p.evaluator.Type() }

func (p *GreedyPlayer) GetAction(ctx context.Context, st game.State, rec *search.Record) error {
	actions := st.Actions()
	if len(actions) == 0 {
		return game.ErrNoLegalMoves
	}
	me := st.OnTurn()
	bestValue := -game.Infinity
	bestMove := actions[0]
	for _, m := range actions {
		child, err := st.Result(m)
		if err != nil {
			return err
		}
		var v float32
		if child.Terminal() {
			v = child.Utility(me)
		} else {
			v = p.evaluator.Evaluate(child, me)
		}
		if v > bestValue {
			bestValue = v
			bestMove = m
		}
	}
	rec.Put(search.Result{Move: bestMove, Value: bestValue, Depth: 1})
	return nil
}
