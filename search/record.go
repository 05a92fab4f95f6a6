package search

import (
	"sync"

	"github.com/soledad-ai/soledad/move"
)

// A Result is the outcome of one completed search depth. Depth 0 marks a
// fallback published before any search ran.
type Result struct {
	Move  move.Move
	Value float32
	Depth int
}

// A Record is the reporting channel between a search and its caller. The
// engine publishes one Result per completed depth; the caller cancels the
// search whenever it likes and reads the latest publish. Readers always see
// a whole Result, never a partially written one. Use a fresh Record for
// every search episode.
type Record struct {
	mu        sync.Mutex
	latest    Result
	publishes int
}

func NewRecord() *Record {
	return &Record{}
}

// Put publishes res, replacing any earlier publish.
func (r *Record) Put(res Result) {
	r.mu.Lock()
	r.latest = res
	r.publishes++
	r.mu.Unlock()
}

// Latest returns the most recently published result; ok is false while
// nothing has been published.
func (r *Record) Latest() (Result, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest, r.publishes > 0
}

// Publishes counts the results published so far.
func (r *Record) Publishes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.publishes
}
