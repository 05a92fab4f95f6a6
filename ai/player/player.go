// Package player is an automatic player of knight's Isolation, using various
// forms of AI.
package player

import (
	"context"
	crypto_rand "crypto/rand"
	"encoding/binary"
	"math/rand"

	"github.com/rs/zerolog/log"

	"github.com/soledad-ai/soledad/game"
	"github.com/soledad-ai/soledad/search"
)

// A Player picks a move for the position it is handed. GetAction publishes
// its choice, and any later revisions, to rec; the caller reads rec.Latest()
// once ctx is done or GetAction returns. Handing a player a terminal
// position is a contract violation and fails with game.ErrNoLegalMoves
// before anything is published.
type Player interface {
	GetAction(ctx context.Context, st game.State, rec *search.Record) error
	Name() string
}

func seededRandSource() (int64, *rand.Rand) {
	var b [8]byte
	_, err := crypto_rand.Read(b[:])
	if err != nil {
		panic("cannot seed math/rand package with cryptographically secure random number generator")
	}

	randSeed := int64(binary.LittleEndian.Uint64(b[:]))
	randSource := rand.New(rand.NewSource(randSeed))

	return randSeed, randSource
}

// RandomPlayer plays a uniformly random legal move. It is the baseline
// opponent for harness runs.
type RandomPlayer struct {
	rng *rand.Rand
}

// NewRandomPlayer creates a random player. A nil rng gets a fresh
// cryptographically seeded source.
func NewRandomPlayer(rng *rand.Rand) *RandomPlayer {
	if rng == nil {
		seed, source := seededRandSource()
		log.Debug().Msgf("Random seed for this player was %v", seed)
		rng = source
	}
	return &RandomPlayer{rng: rng}
}

func (p *RandomPlayer) Name() string { return "random" }

func (p *RandomPlayer) GetAction(ctx context.Context, st game.State, rec *search.Record) error {
	actions := st.Actions()
	if len(actions) == 0 {
		return game.ErrNoLegalMoves
	}
	rec.Put(search.Result{Move: actions[p.rng.Intn(len(actions))]})
	return nil
}
