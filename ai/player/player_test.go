package player

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/soledad-ai/soledad/board"
	"github.com/soledad-ai/soledad/game"
	"github.com/soledad-ai/soledad/heuristic"
	"github.com/soledad-ai/soledad/move"
	"github.com/soledad-ai/soledad/search"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

// threeByThree puts p1 in the top-left and p2 in the bottom-right corner of
// an otherwise open 3x3 board, p1 to move.
func threeByThree(t *testing.T) game.State {
	t.Helper()
	var occ board.Bitboard
	st, err := game.NewStateFromPosition(board.MustGeometry(3, 3), occ, 0, 8, game.Player1)
	if err != nil {
		t.Fatal(err)
	}
	return st
}

func isLegal(st game.State, m move.Move) bool {
	for _, a := range st.Actions() {
		if a.Equals(m) {
			return true
		}
	}
	return false
}

func TestRandomPlayerLegal(t *testing.T) {
	is := is.New(t)
	p := NewRandomPlayer(rand.New(rand.NewSource(42)))
	is.Equal(p.Name(), "random")

	st := threeByThree(t)
	for i := 0; i < 25; i++ {
		rec := search.NewRecord()
		is.NoErr(p.GetAction(context.Background(), st, rec))
		res, ok := rec.Latest()
		is.True(ok)
		is.Equal(res.Depth, 0)
		is.Equal(rec.Publishes(), 1)
		is.True(isLegal(st, res.Move))
	}
}

func TestGreedyMatchesOnePlyArgmax(t *testing.T) {
	is := is.New(t)
	ev := heuristic.MobilityDiff{}
	p := NewGreedyPlayer(ev)
	is.Equal(p.Name(), "greedy-mobility")

	geo := board.MustGeometry(5, 5)
	rng := rand.New(rand.NewSource(11))
	for g := 0; g < 5; g++ {
		st := game.NewInitialState(geo)
		for !st.Terminal() {
			actions := st.Actions()
			me := st.OnTurn()
			wantValue := -game.Infinity
			wantMove := actions[0]
			for _, m := range actions {
				child, err := st.Result(m)
				is.NoErr(err)
				var v float32
				if child.Terminal() {
					v = child.Utility(me)
				} else {
					v = ev.Evaluate(child, me)
				}
				if v > wantValue {
					wantValue = v
					wantMove = m
				}
			}

			rec := search.NewRecord()
			is.NoErr(p.GetAction(context.Background(), st, rec))
			res, ok := rec.Latest()
			is.True(ok)
			is.True(res.Move.Equals(wantMove))
			is.Equal(res.Value, wantValue)
			is.Equal(res.Depth, 1)

			next, err := st.Result(actions[rng.Intn(len(actions))])
			is.NoErr(err)
			st = next
		}
	}
}

func TestIterativeSearchPlayerForcedWin(t *testing.T) {
	is := is.New(t)
	p, err := NewIterativeSearchPlayer(heuristic.MobilityDiff{}, rand.New(rand.NewSource(1)))
	is.NoErr(err)
	is.Equal(p.Name(), "search-mobility")

	// p1 at a1 has one open knight move, b3; taking it strands p2.
	var occ board.Bitboard
	occ.Set(1)
	occ.Set(3)
	occ.Set(5)
	st, err := game.NewStateFromPosition(board.MustGeometry(3, 3), occ, 0, 8, game.Player1)
	is.NoErr(err)

	rec := search.NewRecord()
	is.NoErr(p.GetAction(context.Background(), st, rec))
	res, ok := rec.Latest()
	is.True(ok)
	is.True(res.Move.Equals(move.New(0, 7)))
	is.Equal(res.Value, game.Infinity)
	is.True(res.Depth >= 1)
}

func TestIterativeSearchPlayerInstantDeadline(t *testing.T) {
	is := is.New(t)
	p, err := NewIterativeSearchPlayer(heuristic.MobilityDiff{}, rand.New(rand.NewSource(2)))
	is.NoErr(err)

	st := game.NewInitialState(board.Default())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The fallback beat the cancellation, so the episode still succeeds.
	rec := search.NewRecord()
	is.NoErr(p.GetAction(ctx, st, rec))
	res, ok := rec.Latest()
	is.True(ok)
	is.Equal(res.Depth, 0)
	is.Equal(rec.Publishes(), 1)
	is.True(isLegal(st, res.Move))
}

func TestPlayersRejectTerminalRoot(t *testing.T) {
	is := is.New(t)
	var occ board.Bitboard
	for _, sq := range []board.Square{1, 3, 5, 7} {
		occ.Set(sq)
	}
	st, err := game.NewStateFromPosition(board.MustGeometry(3, 3), occ, 0, 8, game.Player1)
	is.NoErr(err)
	is.True(st.Terminal())

	searcher, err := NewIterativeSearchPlayer(heuristic.MobilityDiff{}, nil)
	is.NoErr(err)
	for _, p := range []Player{NewRandomPlayer(nil), NewGreedyPlayer(heuristic.MobilityDiff{}), searcher} {
		rec := search.NewRecord()
		err := p.GetAction(context.Background(), st, rec)
		is.True(errors.Is(err, game.ErrNoLegalMoves))
		is.Equal(rec.Publishes(), 0)
	}
}

func TestChooseMove(t *testing.T) {
	is := is.New(t)
	st := threeByThree(t)

	// Both of p1's moves tie on mobility difference; the first generated
	// one wins the tie.
	m, err := ChooseMove(context.Background(), NewGreedyPlayer(heuristic.MobilityDiff{}), st)
	is.NoErr(err)
	is.True(m.Equals(move.New(0, 5)))
}

func TestChooseMoveTerminal(t *testing.T) {
	is := is.New(t)
	var occ board.Bitboard
	for _, sq := range []board.Square{1, 3, 5, 7} {
		occ.Set(sq)
	}
	st, err := game.NewStateFromPosition(board.MustGeometry(3, 3), occ, 0, 8, game.Player1)
	is.NoErr(err)

	_, err = ChooseMove(context.Background(), NewRandomPlayer(nil), st)
	is.True(errors.Is(err, game.ErrNoLegalMoves))
}
