package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/soledad-ai/soledad/ai/player"
	"github.com/soledad-ai/soledad/automatic"
	"github.com/soledad-ai/soledad/board"
	"github.com/soledad-ai/soledad/config"
	"github.com/soledad-ai/soledad/game"
	"github.com/soledad-ai/soledad/heuristic"
	"github.com/soledad-ai/soledad/move"
	"github.com/soledad-ai/soledad/search"
)

type Response struct {
	message string
}

func msg(message string) *Response {
	return &Response{message: message}
}

type CmdOptions map[string][]string

func (c CmdOptions) String(key string) string {
	v := c[key]
	if len(v) > 0 {
		return v[0]
	}
	return ""
}

func (c CmdOptions) Int(key string) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return 0, errors.New(key + " not found in options")
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) IntDefault(key string, defaultI int) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultI, nil
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) Bool(key string) bool {
	v := c[key]
	if len(v) == 0 {
		return false
	}
	return strings.ToLower(v[0]) == "true"
}

var errSolving = errors.New("a solve is running; stop it with `solve stop` first")

// boardGeometry is the geometry of the current game, or one built from the
// configured dimensions when nothing is loaded yet.
func (sc *ShellController) boardGeometry() (*board.Geometry, error) {
	if sc.geo != nil {
		return sc.geo, nil
	}
	return board.NewGeometry(
		sc.config.GetInt(config.BoardWidth),
		sc.config.GetInt(config.BoardHeight))
}

func (sc *ShellController) pushState(next game.State) {
	sc.history = append(sc.history, *sc.cur)
	sc.cur = &next
}

func parseDims(s string) (int, int, error) {
	parts := strings.Split(strings.ToLower(s), "x")
	if len(parts) != 2 {
		return 0, 0, errors.New("dimensions look like 11x9, width then height")
	}
	w, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, err
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return w, h, nil
}

// parseBudget reads a bare number as seconds and anything else as a
// time.Duration string, so both `engine 2` and `engine 500ms` work.
func parseBudget(s string) (time.Duration, error) {
	if secs, err := strconv.Atoi(s); err == nil {
		if secs <= 0 {
			return 0, errors.New("the time budget must be positive")
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, errors.New("the time budget must be positive")
	}
	return d, nil
}

func (sc *ShellController) newGame(cmd *shellcmd) (*Response, error) {
	w := sc.config.GetInt(config.BoardWidth)
	h := sc.config.GetInt(config.BoardHeight)
	if len(cmd.args) > 0 {
		var err error
		w, h, err = parseDims(cmd.args[0])
		if err != nil {
			return nil, err
		}
	}
	geo, err := board.NewGeometry(w, h)
	if err != nil {
		return nil, err
	}
	sc.geo = geo
	st := game.NewInitialState(geo)
	sc.cur = &st
	sc.history = sc.history[:0]
	return msg(st.ToDisplayText()), nil
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	if sc.cur == nil {
		return nil, errNoGame
	}
	return msg(sc.cur.ToDisplayText()), nil
}

func (sc *ShellController) moves(cmd *shellcmd) (*Response, error) {
	if sc.cur == nil {
		return nil, errNoGame
	}
	actions := sc.cur.Actions()
	if len(actions) == 0 {
		return msg("no legal moves; the game is over"), nil
	}
	geo := sc.cur.Geometry()
	var sb strings.Builder
	for i, m := range actions {
		fmt.Fprintf(&sb, "%3d: %-8s", i+1, m.ShortDescription(geo))
		if (i+1)%6 == 0 {
			sb.WriteByte('\n')
		}
	}
	return msg(strings.TrimRight(sb.String(), " \n")), nil
}

func (sc *ShellController) play(cmd *shellcmd) (*Response, error) {
	if sc.cur == nil {
		return nil, errNoGame
	}
	if len(cmd.args) != 1 {
		return nil, errors.New("play takes one destination, like `play d4` or `play #3`")
	}
	arg := cmd.args[0]
	var m move.Move
	if strings.HasPrefix(arg, "#") {
		idx, err := strconv.Atoi(arg[1:])
		if err != nil {
			return nil, err
		}
		actions := sc.cur.Actions()
		if idx < 1 || idx > len(actions) {
			return nil, fmt.Errorf("move #%d is out of range; `moves` lists %d", idx, len(actions))
		}
		m = actions[idx-1]
	} else {
		to, err := sc.cur.Geometry().ParseSquare(arg)
		if err != nil {
			return nil, err
		}
		if to == board.NoSquare {
			return nil, errors.New("play needs a real square")
		}
		m = move.New(sc.cur.PlayerLocation(sc.cur.OnTurn()), to)
	}
	next, err := sc.cur.Result(m)
	if err != nil {
		return nil, err
	}
	sc.pushState(next)
	return msg(next.ToDisplayText()), nil
}

func (sc *ShellController) undo(cmd *shellcmd) (*Response, error) {
	if sc.cur == nil {
		return nil, errNoGame
	}
	if len(sc.history) == 0 {
		return nil, errors.New("nothing to undo")
	}
	last := sc.history[len(sc.history)-1]
	sc.history = sc.history[:len(sc.history)-1]
	sc.cur = &last
	return msg(last.ToDisplayText()), nil
}

func (sc *ShellController) position(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) < 2 {
		return nil, errors.New(
			"position takes two player squares (- for an unplaced player), " +
				"optionally whose turn it is, then blocked squares: `position b3 f5 p2 c4 d6`")
	}
	geo, err := sc.boardGeometry()
	if err != nil {
		return nil, err
	}
	loc1, err := geo.ParseSquare(cmd.args[0])
	if err != nil {
		return nil, err
	}
	loc2, err := geo.ParseSquare(cmd.args[1])
	if err != nil {
		return nil, err
	}
	onturn := game.Player1
	rest := cmd.args[2:]
	if len(rest) > 0 && (rest[0] == "p1" || rest[0] == "p2") {
		if rest[0] == "p2" {
			onturn = game.Player2
		}
		rest = rest[1:]
	}
	var blocked board.Bitboard
	for _, name := range rest {
		sq, err := geo.ParseSquare(name)
		if err != nil {
			return nil, err
		}
		if sq == board.NoSquare {
			return nil, errors.New("blocked squares must be real squares")
		}
		blocked.Set(sq)
	}
	st, err := game.NewStateFromPosition(geo, blocked, loc1, loc2, onturn)
	if err != nil {
		return nil, err
	}
	sc.geo = geo
	sc.cur = &st
	sc.history = sc.history[:0]
	return msg(st.ToDisplayText()), nil
}

// buildSolver makes a solver with the configured evaluator and toggles.
func (sc *ShellController) buildSolver() (*search.Solver, error) {
	ev, err := heuristic.Named(sc.config.GetString(config.Heuristic))
	if err != nil {
		return nil, err
	}
	s := &search.Solver{}
	if err := s.Init(ev); err != nil {
		return nil, err
	}
	s.SetTranspositionTableOptim(sc.config.GetBool(config.TTable))
	s.SetTTMemFraction(sc.config.GetFloat64(config.TTableMemFraction))
	s.SetPruningDisabled(sc.config.GetBool(config.PruningDisabled))
	return s, nil
}

func (sc *ShellController) buildEngine() (*player.IterativeSearchPlayer, error) {
	ev, err := heuristic.Named(sc.config.GetString(config.Heuristic))
	if err != nil {
		return nil, err
	}
	var rng *rand.Rand
	if seed := sc.config.GetInt64(config.Seed); seed != 0 {
		rng = rand.New(rand.NewSource(seed))
	}
	p, err := player.NewIterativeSearchPlayer(ev, rng)
	if err != nil {
		return nil, err
	}
	s := p.Solver()
	s.SetTranspositionTableOptim(sc.config.GetBool(config.TTable))
	s.SetTTMemFraction(sc.config.GetFloat64(config.TTableMemFraction))
	s.SetPruningDisabled(sc.config.GetBool(config.PruningDisabled))
	return p, nil
}

// engine thinks for the move-time budget (or the given time) and plays the
// best move it found.
func (sc *ShellController) engine(cmd *shellcmd) (*Response, error) {
	if sc.cur == nil {
		return nil, errNoGame
	}
	if sc.solving.Load() {
		return nil, errSolving
	}
	if sc.cur.Terminal() {
		return nil, errors.New("the game is over")
	}
	budget := sc.config.GetDuration(config.MoveTime)
	if len(cmd.args) > 0 {
		var err error
		budget, err = parseBudget(cmd.args[0])
		if err != nil {
			return nil, err
		}
	}
	p, err := sc.buildEngine()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), budget)
	defer cancel()
	rec := search.NewRecord()
	tstart := time.Now()
	if err := p.GetAction(ctx, *sc.cur, rec); err != nil {
		return nil, err
	}
	elapsed := time.Since(tstart)
	res, ok := rec.Latest()
	if !ok {
		return nil, errors.New("the engine did not produce a move")
	}
	geo := sc.cur.Geometry()
	next, err := sc.cur.Result(res.Move)
	if err != nil {
		return nil, err
	}
	sc.pushState(next)
	return msg(fmt.Sprintf("engine plays %s (value %.2f, depth %d, %d nodes in %v)\n\n%s",
		res.Move.ShortDescription(geo), res.Value, res.Depth,
		p.Solver().Nodes(), elapsed.Round(time.Millisecond),
		next.ToDisplayText())), nil
}

func (sc *ShellController) solve(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) > 0 {
		return sc.solveControlArguments(cmd.args)
	}
	if sc.cur == nil {
		return nil, errNoGame
	}
	if sc.solving.Load() {
		return nil, errSolving
	}
	if sc.cur.Terminal() {
		return nil, errors.New("the game is over; there is nothing to solve")
	}
	solver, err := sc.buildSolver()
	if err != nil {
		return nil, err
	}
	if sc.solveLogFile != nil {
		solver.SetLogStream(sc.solveLogFile)
	}
	sc.startSolve(solver, *sc.cur)
	return nil, nil
}

func (sc *ShellController) startSolve(solver *search.Solver, st game.State) {
	sc.solveCtx, sc.solveCancel = context.WithCancel(context.Background())
	sc.solveTicker = time.NewTicker(10 * time.Second)
	sc.solveTickerDone = make(chan bool)
	sc.solveRec = search.NewRecord()
	sc.solving.Store(true)
	sc.showMessage("Solve started. It deepens until the position is exhausted; `solve stop` ends it early.")

	geo := st.Geometry()
	go func() {
		err := solver.SolveWithRecord(sc.solveCtx, st, 0, sc.solveRec)
		sc.solveTicker.Stop()
		sc.solveTickerDone <- true
		sc.solving.Store(false)
		if err != nil {
			sc.showError(err)
			return
		}
		if res, ok := sc.solveRec.Latest(); ok {
			sc.showMessage(fmt.Sprintf("solve finished: %s (value %.2f, depth %d, %d nodes)",
				res.Move.ShortDescription(geo), res.Value, res.Depth, solver.Nodes()))
		}
		log.Debug().Msg("solver thread exiting...")
	}()

	go func() {
		for {
			select {
			case <-sc.solveTickerDone:
				log.Debug().Msg("ticker thread exiting...")
				return
			case <-sc.solveTicker.C:
				if res, ok := sc.solveRec.Latest(); ok {
					log.Info().Msgf("Solver is at depth %d (%s, value %.2f, %d nodes)...",
						res.Depth, res.Move.ShortDescription(geo), res.Value, solver.Nodes())
				} else {
					log.Info().Msgf("Solver is on its first depth (%d nodes)...", solver.Nodes())
				}
			}
		}
	}()
}

func (sc *ShellController) solveControlArguments(args []string) (*Response, error) {
	var err error
	switch args[0] {
	case "log":
		if sc.solving.Load() {
			return nil, errors.New("please stop the solve before making any log changes")
		}
		sc.solveLogFile, err = os.Create(SolveLog)
		if err != nil {
			return nil, err
		}
		return msg("solve will log to " + SolveLog), nil
	case "stop":
		if !sc.solving.Load() {
			return nil, errors.New("no running solve to stop")
		}
		sc.solveCancel()
		return nil, nil
	}
	return nil, errors.New("solve argument " + args[0] + " not recognized; try `solve`, `solve stop` or `solve log`")
}

func (sc *ShellController) autoplay(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("autoplay takes a game count, like `autoplay 200 search random`")
	}
	games, err := strconv.Atoi(cmd.args[0])
	if err != nil {
		return nil, err
	}
	botA, botB := "search", "random"
	if len(cmd.args) > 1 {
		botA = cmd.args[1]
	}
	if len(cmd.args) > 2 {
		botB = cmd.args[2]
	}
	evname := sc.config.GetString(config.Heuristic)
	pa, err := automatic.BotFactory(botA, evname)
	if err != nil {
		return nil, err
	}
	pb, err := automatic.BotFactory(botB, evname)
	if err != nil {
		return nil, err
	}
	threads, err := cmd.options.IntDefault("threads", max(runtime.NumCPU()-1, 1))
	if err != nil {
		return nil, err
	}
	var logWriter io.Writer
	if path := cmd.options.String("log"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		logWriter = f
		sc.showMessage("logging each move to " + path)
	}
	geo, err := sc.boardGeometry()
	if err != nil {
		return nil, err
	}
	sc.showMessage(fmt.Sprintf("playing %d games of %s vs %s...", games, botA, botB))
	sr, err := automatic.StartSeries(context.Background(), automatic.SeriesConfig{
		Games:     games,
		Threads:   threads,
		Budget:    sc.config.GetDuration(config.MoveTime),
		Geometry:  geo,
		PlayerA:   pa,
		PlayerB:   pb,
		LogWriter: logWriter,
	})
	if err != nil {
		return nil, err
	}
	return msg(sr.Summary()), nil
}

func (sc *ShellController) autoAnalyze(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("please provide a log file to analyze")
	}
	analysis, err := automatic.AnalyzeLogFile(cmd.args[0])
	if err != nil {
		return nil, err
	}
	return msg(analysis), nil
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	all := sc.config.AllSettings()
	if len(cmd.args) == 0 {
		keys := make([]string, 0, len(all))
		for k := range all {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var sb strings.Builder
		for _, k := range keys {
			fmt.Fprintf(&sb, "%-22s %v\n", k, all[k])
		}
		return msg(strings.TrimRight(sb.String(), "\n")), nil
	}
	key := cmd.args[0]
	if _, ok := all[key]; !ok {
		return nil, fmt.Errorf("no setting named %q; `set` alone lists them", key)
	}
	if len(cmd.args) == 1 {
		return msg(fmt.Sprintf("%s: %v", key, all[key])), nil
	}
	sc.config.Set(key, strings.Join(cmd.args[1:], " "))
	return msg(fmt.Sprintf("set %s to %v", key, sc.config.AllSettings()[key])), nil
}

func (sc *ShellController) help(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return usage("standard")
	}
	return usageTopic(cmd.args[0])
}
