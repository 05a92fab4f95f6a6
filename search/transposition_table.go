package search

import (
	"errors"
	"math/bits"
	"sync/atomic"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"
)

const (
	TTInvalid uint8 = iota
	TTExact
	TTLower
	TTUpper
)

const (
	defaultTTMemFraction = 0.25

	// Entry verification covers hash bits 16 and up; the rest are implied
	// by the entry's index, so the table must span at least 16 index bits.
	minTTElems = 1 << 16

	entrySize = 12
)

type tableEntry struct {
	hashHigh uint32
	hashMid  uint16
	flag     uint8
	depth    uint8
	score    float32
}

func (e tableEntry) valid() bool {
	return e.flag != TTInvalid
}

// A TranspositionTable caches search values by zobrist key. Within one
// search its hits are always depth-exact: each ply blocks exactly one new
// cell, so the remaining depth at a position is a function of the position
// itself, no matter the move order that reached it.
type TranspositionTable struct {
	table    []tableEntry
	sizeMask uint64

	created atomic.Uint64
	lookups atomic.Uint64
	hits    atomic.Uint64
}

// Reset sizes the table to a fraction of system memory, rounded down to a
// power of two of entries, and clears it. An existing allocation is reused
// when the size comes out the same.
func (t *TranspositionTable) Reset(fractionOfMemory float64) error {
	if fractionOfMemory <= 0 {
		return errors.New("search: ttable memory fraction must be positive")
	}
	desired := uint64(float64(memory.TotalMemory()) * fractionOfMemory / entrySize)
	numElems := uint64(minTTElems)
	if desired > numElems {
		numElems = uint64(1) << (bits.Len64(desired) - 1)
	}
	if uint64(len(t.table)) == numElems {
		clear(t.table)
	} else {
		t.table = make([]tableEntry, numElems)
	}
	t.sizeMask = numElems - 1
	t.created.Store(0)
	t.lookups.Store(0)
	t.hits.Store(0)
	log.Debug().Uint64("num-elems", numElems).
		Uint64("bytes", numElems*entrySize).
		Msg("ttable-resize")
	return nil
}

func (t *TranspositionTable) lookup(key uint64) (tableEntry, bool) {
	t.lookups.Add(1)
	e := t.table[key&t.sizeMask]
	if !e.valid() || e.hashHigh != uint32(key>>32) || e.hashMid != uint16(key>>16) {
		return tableEntry{}, false
	}
	t.hits.Add(1)
	return e, true
}

// store records a value computed for key at the given remaining depth. The
// flag classifies the value against the window the search ran with: inside
// it the value is exact, at or below alpha an upper bound, at or above beta
// a lower bound. Entries are always replaced.
func (t *TranspositionTable) store(key uint64, score float32, depth int, alphaOrig, betaOrig float32) {
	flag := TTExact
	if score <= alphaOrig {
		flag = TTUpper
	} else if score >= betaOrig {
		flag = TTLower
	}
	t.table[key&t.sizeMask] = tableEntry{
		hashHigh: uint32(key >> 32),
		hashMid:  uint16(key >> 16),
		flag:     flag,
		depth:    uint8(depth),
		score:    score,
	}
	t.created.Add(1)
}

// cutoff consults the table for key. It may narrow alpha and beta in place;
// when ok is true the caller can return score without searching the node.
func (t *TranspositionTable) cutoff(key uint64, depth int, alpha, beta *float32) (float32, bool) {
	e, ok := t.lookup(key)
	if !ok || int(e.depth) < depth {
		return 0, false
	}
	switch e.flag {
	case TTExact:
		return e.score, true
	case TTLower:
		*alpha = max(*alpha, e.score)
	case TTUpper:
		*beta = min(*beta, e.score)
	}
	if *alpha >= *beta {
		return e.score, true
	}
	return 0, false
}
