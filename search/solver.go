// Package search implements the adversarial engine: depth-limited minimax
// with alpha-beta pruning, run under an iterative-deepening driver that
// publishes the best move of every completed depth to a Record.
//
// The driver never reads a clock. The caller owns the time budget through
// the context: cancel it and the search stops between two node evaluations,
// with the Record still holding the result of the last fully completed
// depth. See https://en.wikipedia.org/wiki/Alpha%E2%80%93beta_pruning for
// the pruning scheme maxValue and minValue implement.
package search

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/soledad-ai/soledad/game"
	"github.com/soledad-ai/soledad/heuristic"
	"github.com/soledad-ai/soledad/move"
	"github.com/soledad-ai/soledad/zobrist"
)

const nodeLogInterval = 1 * time.Second

// Solver searches one position at a time. It is not safe for concurrent
// use; give each goroutine its own.
type Solver struct {
	evaluator heuristic.Evaluator
	zobrist   *zobrist.Zobrist
	ttable    *TranspositionTable

	iterativeDeepeningOptim bool
	transpositionTableOptim bool
	pruningDisabled         bool
	ttMemFraction           float64

	rootPlayer game.PlayerID
	nodes      atomic.Uint64
	logStream  io.Writer
}

// LogIteration is one completed depth in the optional YAML search log.
type LogIteration struct {
	Depth int     `json:"depth" yaml:"depth"`
	Move  string  `json:"move" yaml:"move"`
	Value float32 `json:"value" yaml:"value"`
	Nodes uint64  `json:"nodes" yaml:"nodes"`
}

// Init readies the solver with the evaluator used at the depth cutoff.
// Iterative deepening starts on; the transposition table starts off.
func (s *Solver) Init(ev heuristic.Evaluator) error {
	if ev == nil {
		return errors.New("search: an evaluator is required")
	}
	s.evaluator = ev
	s.iterativeDeepeningOptim = true
	s.transpositionTableOptim = false
	s.pruningDisabled = false
	s.ttMemFraction = defaultTTMemFraction
	return nil
}

func (s *Solver) SetIterativeDeepening(id bool) {
	s.iterativeDeepeningOptim = id
}

// SetPruningDisabled turns alpha-beta cutoffs off, searching the full
// minimax tree. Results must not change, only the node count; the toggle
// exists so tests can verify exactly that.
func (s *Solver) SetPruningDisabled(disabled bool) {
	s.pruningDisabled = disabled
}

// SetTranspositionTableOptim toggles position caching between searches of
// the same episode.
func (s *Solver) SetTranspositionTableOptim(tt bool) {
	s.transpositionTableOptim = tt
}

// SetTTMemFraction overrides the fraction of system memory the transposition
// table gets when it is enabled.
func (s *Solver) SetTTMemFraction(f float64) {
	s.ttMemFraction = f
}

// SetLogStream directs a YAML record of every completed depth to w.
func (s *Solver) SetLogStream(w io.Writer) {
	s.logStream = w
}

// Nodes returns the node count of the last search.
func (s *Solver) Nodes() uint64 {
	return s.nodes.Load()
}

// Solve searches st and returns the value and move of the deepest completed
// depth. plies caps the depth; zero or negative means search until the
// position is exhausted or ctx is canceled.
func (s *Solver) Solve(ctx context.Context, st game.State, plies int) (float32, move.Move, error) {
	rec := NewRecord()
	if err := s.SolveWithRecord(ctx, st, plies, rec); err != nil {
		return 0, move.Move{}, err
	}
	res, ok := rec.Latest()
	if !ok {
		return 0, move.Move{}, errors.New("search: no depth completed")
	}
	return res.Value, res.Move, nil
}

// SolveWithRecord runs the deepening loop against rec, one publish per
// completed depth, never a partial one. It returns nil when the search ran
// to its horizon, and nil on cancellation too as long as rec holds at least
// one result; a cancellation that beat every publish comes back as the
// context's error. A terminal root is the caller's contract violation and
// fails with game.ErrNoLegalMoves before anything is published.
func (s *Solver) SolveWithRecord(ctx context.Context, st game.State, plies int, rec *Record) error {
	if s.evaluator == nil {
		return errors.New("search: solver not initialized")
	}
	if rec == nil {
		return errors.New("search: a record is required")
	}
	if st.Terminal() {
		return game.ErrNoLegalMoves
	}
	s.rootPlayer = st.OnTurn()
	s.nodes.Store(0)
	tstart := time.Now()

	// Searching past the open-cell count cannot change anything: every line
	// reaches a terminal before a deeper cutoff could bite.
	horizon := st.OpenCount()
	if plies <= 0 || plies > horizon {
		plies = horizon
	}
	log.Debug().Int("plies", plies).Str("evaluator", s.evaluator.Type()).
		Msg("solve-config")

	var rootKey uint64
	if s.transpositionTableOptim {
		if s.zobrist == nil {
			s.zobrist = &zobrist.Zobrist{}
		}
		s.zobrist.Initialize(st.Geometry().NumCells())
		if s.ttable == nil {
			s.ttable = &TranspositionTable{}
		}
		if err := s.ttable.Reset(s.ttMemFraction); err != nil {
			return err
		}
		rootKey = s.zobrist.Hash(st)
	}

	g := &errgroup.Group{}
	done := make(chan bool)

	g.Go(func() error {
		ticker := time.NewTicker(nodeLogInterval)
		defer ticker.Stop()
		var lastNodes uint64
		for {
			select {
			case <-done:
				return nil
			case <-ticker.C:
				nodes := s.nodes.Load()
				log.Debug().Uint64("nps", nodes-lastNodes).Msg("nodes-per-second")
				lastNodes = nodes
			}
		}
	})

	g.Go(func() error {
		err := s.iterativelyDeepen(ctx, st, rootKey, plies, rec)
		done <- true
		return err
	})
	err := g.Wait()

	if s.transpositionTableOptim {
		log.Debug().
			Uint64("ttable-created", s.ttable.created.Load()).
			Uint64("ttable-lookups", s.ttable.lookups.Load()).
			Uint64("ttable-hits", s.ttable.hits.Load()).
			Msg("ttable-stats")
	}
	log.Debug().
		Uint64("nodes", s.nodes.Load()).
		Int("publishes", rec.Publishes()).
		Float64("time-elapsed-sec", time.Since(tstart).Seconds()).
		Msg("solve-returning")
	return err
}

func (s *Solver) iterativelyDeepen(ctx context.Context, st game.State, rootKey uint64, plies int, rec *Record) error {
	start := 1
	if !s.iterativeDeepeningOptim {
		start = plies
	}
	for p := start; p <= plies; p++ {
		v, m, err := s.decision(ctx, st, rootKey, p)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				if rec.Publishes() > 0 {
					return nil
				}
			}
			return err
		}
		rec.Put(Result{Move: m, Value: v, Depth: p})
		log.Debug().Int("depth", p).
			Float32("value", v).
			Str("move", m.ShortDescription(st.Geometry())).
			Uint64("nodes", s.nodes.Load()).
			Msg("deepening-iteratively")
		if s.logStream != nil {
			out, err := yaml.Marshal(LogIteration{
				Depth: p,
				Move:  m.ShortDescription(st.Geometry()),
				Value: v,
				Nodes: s.nodes.Load(),
			})
			if err != nil {
				log.Err(err).Msg("marshalling-log-iteration")
			} else {
				s.logStream.Write(out)
			}
		}
	}
	return nil
}

// decision evaluates the root moves at exactly one depth. The first move
// achieving the maximum is kept; later equal scores never displace it.
// alpha rises after every branch so later siblings prune against the best
// score so far. There is no beta cutoff at the root.
func (s *Solver) decision(ctx context.Context, st game.State, key uint64, depth int) (float32, move.Move, error) {
	actions := st.Actions()
	if len(actions) == 0 {
		return 0, move.Move{}, game.ErrNoLegalMoves
	}
	s.nodes.Add(1)
	bestValue := -game.Infinity
	bestMove := actions[0]
	alpha, beta := -game.Infinity, game.Infinity
	for _, m := range actions {
		if err := ctx.Err(); err != nil {
			return 0, move.Move{}, err
		}
		child, err := st.Result(m)
		if err != nil {
			return 0, move.Move{}, err
		}
		v, err := s.minValue(ctx, child, s.childKey(key, st.OnTurn(), m), depth-1, alpha, beta)
		if err != nil {
			return 0, move.Move{}, err
		}
		if v > bestValue {
			bestValue = v
			bestMove = m
		}
		alpha = max(alpha, v)
	}
	return bestValue, bestMove, nil
}

func (s *Solver) childKey(key uint64, p game.PlayerID, m move.Move) uint64 {
	if !s.transpositionTableOptim {
		return 0
	}
	return s.zobrist.AddMove(key, p, m)
}

func (s *Solver) maxValue(ctx context.Context, st game.State, key uint64, depth int, alpha, beta float32) (float32, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.nodes.Add(1)
	if st.Terminal() {
		return st.Utility(s.rootPlayer), nil
	}
	if depth <= 0 {
		return s.evaluator.Evaluate(st, s.rootPlayer), nil
	}
	alphaOrig, betaOrig := alpha, beta
	if s.transpositionTableOptim {
		if v, ok := s.ttable.cutoff(key, depth, &alpha, &beta); ok {
			return v, nil
		}
	}
	value := -game.Infinity
	for _, m := range st.Actions() {
		child, err := st.Result(m)
		if err != nil {
			return 0, err
		}
		v, err := s.minValue(ctx, child, s.childKey(key, st.OnTurn(), m), depth-1, alpha, beta)
		if err != nil {
			return 0, err
		}
		value = max(value, v)
		if !s.pruningDisabled {
			if value >= beta {
				break
			}
			alpha = max(alpha, value)
		}
	}
	if s.transpositionTableOptim {
		s.ttable.store(key, value, depth, alphaOrig, betaOrig)
	}
	return value, nil
}

func (s *Solver) minValue(ctx context.Context, st game.State, key uint64, depth int, alpha, beta float32) (float32, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.nodes.Add(1)
	if st.Terminal() {
		return st.Utility(s.rootPlayer), nil
	}
	if depth <= 0 {
		return s.evaluator.Evaluate(st, s.rootPlayer), nil
	}
	alphaOrig, betaOrig := alpha, beta
	if s.transpositionTableOptim {
		if v, ok := s.ttable.cutoff(key, depth, &alpha, &beta); ok {
			return v, nil
		}
	}
	value := game.Infinity
	for _, m := range st.Actions() {
		child, err := st.Result(m)
		if err != nil {
			return 0, err
		}
		v, err := s.maxValue(ctx, child, s.childKey(key, st.OnTurn(), m), depth-1, alpha, beta)
		if err != nil {
			return 0, err
		}
		value = min(value, v)
		if !s.pruningDisabled {
			if value <= alpha {
				break
			}
			beta = min(beta, value)
		}
	}
	if s.transpositionTableOptim {
		s.ttable.store(key, value, depth, alphaOrig, betaOrig)
	}
	return value, nil
}
