package player

import (
	"context"
	"errors"

	"github.com/soledad-ai/soledad/game"
	"github.com/soledad-ai/soledad/move"
	"github.com/soledad-ai/soledad/search"
)

// ChooseMove is a useful utility function for shells and autoplaying. It
// runs a single GetAction episode against a fresh record and returns
// whatever move ended up on it.
func ChooseMove(ctx context.Context, p Player, st game.State) (move.Move, error) {
	rec := search.NewRecord()
	if err := p.GetAction(ctx, st, rec); err != nil {
		return move.Move{}, err
	}
	res, ok := rec.Latest()
	if !ok {
		return move.Move{}, errors.New("player: no move was published")
	}
	return res.Move, nil
}
