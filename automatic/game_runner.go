// Package automatic contains all the logic for playing computer vs computer
// games of knight's Isolation, one at a time or in bulk series.
package automatic

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/soledad-ai/soledad/ai/player"
	"github.com/soledad-ai/soledad/board"
	"github.com/soledad-ai/soledad/game"
	"github.com/soledad-ai/soledad/move"
	"github.com/soledad-ai/soledad/search"
	"github.com/soledad-ai/soledad/stats"
)

// GameStatus says how an automatic game ended.
type GameStatus int

const (
	// StatusGameOver is the regular ending: the player on turn had no move.
	StatusGameOver GameStatus = iota
	// StatusTimeout means a move budget expired with nothing on the
	// record. The offender loses.
	StatusTimeout
	// StatusInvalidMove means a player published an illegal move. The
	// offender loses.
	StatusInvalidMove
	// StatusError means GetAction failed outright. The offender loses.
	StatusError
)

func (gs GameStatus) String() string {
	switch gs {
	case StatusGameOver:
		return "game-over"
	case StatusTimeout:
		return "timeout"
	case StatusInvalidMove:
		return "invalid-move"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// GameResult is the outcome of a single automatic game. Winner and
// MeanDepths are indexed by seat.
type GameResult struct {
	ID     string
	Winner game.PlayerID
	Status GameStatus
	Plies  int
	Moves  []move.Move
	// MeanDepths is the mean published search depth per seat.
	MeanDepths [2]float64
	Err        error
}

// GameRunner is the master struct here for the automatic game logic. It
// pits two contenders against each other, alternating seats between games.
type GameRunner struct {
	geo        *board.Geometry
	budget     time.Duration
	contenders [2]player.Player
	logchan    chan string
}

// NewGameRunner just instantiates and initializes a game runner.
func NewGameRunner(a, b player.Player, geo *board.Geometry, budget time.Duration,
	logchan chan string) *GameRunner {
	return &GameRunner{
		geo:        geo,
		budget:     budget,
		contenders: [2]player.Player{a, b},
		logchan:    logchan,
	}
}

// PlayGame plays game number gidx to its end. The first contender takes the
// first seat in even-numbered games, the second seat in odd ones, so a
// series splits any first-move advantage. A violation of the move contract
// ends the game as the offender's loss, not as an error; the returned error
// is non-nil only when ctx was canceled from outside, and the result means
// nothing then.
func (r *GameRunner) PlayGame(ctx context.Context, gidx int) (GameResult, error) {
	seats := [2]player.Player{r.contenders[gidx%2], r.contenders[(gidx+1)%2]}
	st := game.NewInitialState(r.geo)
	res := GameResult{ID: uuid.New().String()}
	var depths [2]stats.Statistic

	finish := func(status GameStatus, winner game.PlayerID, err error) GameResult {
		res.Status = status
		res.Winner = winner
		res.Err = err
		res.Plies = st.Ply()
		res.MeanDepths = [2]float64{depths[0].Mean(), depths[1].Mean()}
		log.Debug().Msgf("Game %v over. Status %v, winner %v after %v plies",
			res.ID, status, winner, res.Plies)
		return res
	}

	for !st.Terminal() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		seat := st.OnTurn()
		rec := search.NewRecord()
		moveCtx, cancel := context.WithTimeout(ctx, r.budget)
		err := seats[seat].GetAction(moveCtx, st, rec)
		cancel()
		if err != nil {
			return finish(StatusError, seat.Opponent(), err), nil
		}
		chosen, ok := rec.Latest()
		if !ok {
			return finish(StatusTimeout, seat.Opponent(), nil), nil
		}
		next, err := st.Result(chosen.Move)
		if err != nil {
			return finish(StatusInvalidMove, seat.Opponent(), err), nil
		}
		depths[seat].Push(float64(chosen.Depth))
		if r.logchan != nil {
			r.logchan <- fmt.Sprintf("%v-%v,%v,%v,%v,%.3f,%v\n",
				seats[seat].Name(), int(seat)+1,
				res.ID,
				st.Ply(),
				chosen.Move.ShortDescription(r.geo),
				chosen.Value,
				chosen.Depth)
		}
		res.Moves = append(res.Moves, chosen.Move)
		st = next
	}
	return finish(StatusGameOver, st.OnTurn().Opponent(), nil), nil
}
