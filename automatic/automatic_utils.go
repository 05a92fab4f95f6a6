package automatic

// Data collection for automatic games. Allow computer vs computer series, etc.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/soledad-ai/soledad/ai/player"
	"github.com/soledad-ai/soledad/board"
	"github.com/soledad-ai/soledad/heuristic"
	"github.com/soledad-ai/soledad/stats"
)

// PlayerFactory builds a fresh player for one series worker. Players from
// separate calls must not share mutable state.
type PlayerFactory func() (player.Player, error)

// BotFactory returns a factory for one of the named bots: random, greedy or
// search. The greedy and search bots cut off with the named evaluator.
func BotFactory(botName, evaluatorName string) (PlayerFactory, error) {
	switch botName {
	case "random":
		return func() (player.Player, error) {
			return player.NewRandomPlayer(nil), nil
		}, nil
	case "greedy":
		ev, err := heuristic.Named(evaluatorName)
		if err != nil {
			return nil, err
		}
		return func() (player.Player, error) {
			return player.NewGreedyPlayer(ev), nil
		}, nil
	case "search":
		ev, err := heuristic.Named(evaluatorName)
		if err != nil {
			return nil, err
		}
		return func() (player.Player, error) {
			return player.NewIterativeSearchPlayer(ev, nil)
		}, nil
	}
	return nil, fmt.Errorf("automatic: unknown bot %q; pick random, greedy or search", botName)
}

// SeriesConfig drives StartSeries. Budget is each player's move allowance.
type SeriesConfig struct {
	Games    int
	Threads  int
	Budget   time.Duration
	Geometry *board.Geometry
	PlayerA  PlayerFactory
	PlayerB  PlayerFactory
	// LogWriter, when set, receives one CSV line per move across all games.
	LogWriter io.Writer
}

// SeriesResult aggregates a finished series. Wins and Depths are indexed by
// contender (A is 0), never by seat; seats alternate between games.
type SeriesResult struct {
	Names        [2]string
	Games        int
	Wins         [2]int
	Timeouts     int
	InvalidMoves int
	Errors       int

	Depths [2]stats.Statistic
	Plies  stats.Statistic

	winRates [2]stats.Statistic
}

// WinRate returns the contender's share of aggregated games, 0 to 1.
func (sr *SeriesResult) WinRate(contender int) float64 {
	return sr.winRates[contender].Mean()
}

// WinRateCI returns the half-width of the win rate's confidence interval at
// the given percent level.
func (sr *SeriesResult) WinRateCI(contender int, level float64) float64 {
	return sr.winRates[contender].ConfidenceInterval(level)
}

// Summary renders the series for the shell.
func (sr *SeriesResult) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d games\n", sr.Games)
	for c := 0; c < 2; c++ {
		fmt.Fprintf(&sb, "%-24s %4d wins (%.1f%% +/- %.1f%%), mean depth %.1f\n",
			sr.Names[c], sr.Wins[c], 100*sr.WinRate(c), 100*sr.WinRateCI(c, 95),
			sr.Depths[c].Mean())
	}
	fmt.Fprintf(&sb, "plies: mean %.1f, min %.0f, max %.0f\n",
		sr.Plies.Mean(), sr.Plies.Min(), sr.Plies.Max())
	if sr.Timeouts+sr.InvalidMoves+sr.Errors > 0 {
		fmt.Fprintf(&sb, "timeouts %d, invalid moves %d, errors %d\n",
			sr.Timeouts, sr.InvalidMoves, sr.Errors)
	}
	return sb.String()
}

type seriesGame struct {
	idx int
	res GameResult
}

// StartSeries plays cfg.Games games between the two contenders, fanned out
// over cfg.Threads workers. Every worker gets its own pair of players from
// the factories. Canceling ctx stops the series early; whatever finished by
// then is still aggregated and returned without an error.
func StartSeries(ctx context.Context, cfg SeriesConfig) (*SeriesResult, error) {
	if cfg.PlayerA == nil || cfg.PlayerB == nil {
		return nil, errors.New("automatic: both player factories are required")
	}
	if cfg.Games <= 0 {
		return nil, errors.New("automatic: a series needs at least one game")
	}
	if cfg.Budget <= 0 {
		return nil, errors.New("automatic: a series needs a positive move budget")
	}
	threads := cfg.Threads
	if threads <= 0 {
		threads = 1
	}
	geo := cfg.Geometry
	if geo == nil {
		geo = board.Default()
	}
	log.Debug().Msgf("Starting %v games, %v threads", cfg.Games, threads)

	var logChan chan string
	if cfg.LogWriter != nil {
		logChan = make(chan string, 100)
	}
	runners := make([]*GameRunner, threads)
	for t := range runners {
		a, err := cfg.PlayerA()
		if err != nil {
			return nil, err
		}
		b, err := cfg.PlayerB()
		if err != nil {
			return nil, err
		}
		runners[t] = NewGameRunner(a, b, geo, cfg.Budget, logChan)
	}
	sr := &SeriesResult{
		Names: [2]string{
			runners[0].contenders[0].Name(),
			runners[0].contenders[1].Name(),
		},
	}

	jobs := make(chan int, 100)
	results := make(chan seriesGame, 100)

	writer := errgroup.Group{}
	if cfg.LogWriter != nil {
		writer.Go(func() error {
			io.WriteString(cfg.LogWriter, "playerID,gameID,ply,play,value,depth\n")
			for msg := range logChan {
				io.WriteString(cfg.LogWriter, msg)
			}
			return nil
		})
	}

	g := errgroup.Group{}
	for t := 0; t < threads; t++ {
		runner := runners[t]
		g.Go(func() error {
			for i := range jobs {
				res, err := runner.PlayGame(ctx, i)
				if err != nil {
					return err
				}
				results <- seriesGame{idx: i, res: res}
			}
			return nil
		})
	}

	var workerErr error
	go func() {
	gameLoop:
		for i := 0; i < cfg.Games; i++ {
			select {
			case jobs <- i:
			case <-ctx.Done():
				log.Info().Msg("Got stop signal, exiting soon...")
				break gameLoop
			}
		}
		close(jobs)
		workerErr = g.Wait()
		close(results)
		if logChan != nil {
			close(logChan)
		}
	}()

	for sg := range results {
		sr.Games++
		winner := (int(sg.res.Winner) + sg.idx) % 2
		sr.Wins[winner]++
		sr.winRates[winner].Push(1)
		sr.winRates[1-winner].Push(0)
		switch sg.res.Status {
		case StatusGameOver:
			sr.Plies.Push(float64(sg.res.Plies))
			for seat := 0; seat < 2; seat++ {
				sr.Depths[(seat+sg.idx)%2].Push(sg.res.MeanDepths[seat])
			}
		case StatusTimeout:
			sr.Timeouts++
		case StatusInvalidMove:
			sr.InvalidMoves++
		case StatusError:
			sr.Errors++
		}
	}
	if cfg.LogWriter != nil {
		writer.Wait()
	}
	if workerErr != nil && !errors.Is(workerErr, context.Canceled) &&
		!errors.Is(workerErr, context.DeadlineExceeded) {
		return sr, workerErr
	}
	return sr, nil
}
