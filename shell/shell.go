// Package shell implements a readline loop for playing and analyzing games
// of knight's Isolation interactively.
package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog/log"

	"github.com/soledad-ai/soledad/board"
	"github.com/soledad-ai/soledad/config"
	"github.com/soledad-ai/soledad/game"
	"github.com/soledad-ai/soledad/search"
)

// SolveLog is where the solve command's -log option writes its iteration
// dumps.
const SolveLog = "/tmp/solvelog"

type ShellController struct {
	l      *readline.Instance
	config *config.Config

	geo     *board.Geometry
	cur     *game.State
	history []game.State

	solving         atomic.Bool
	solveCtx        context.Context
	solveCancel     context.CancelFunc
	solveTicker     *time.Ticker
	solveTickerDone chan bool
	solveRec        *search.Record
	solveLogFile    *os.File
}

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("options need values after them")
	errNoGame            = errors.New("please start a game first with the `new` command")
	errQuit              = errors.New("sending quit signal")
)

type shellcmd struct {
	cmd     string
	args    []string
	options CmdOptions
}

// extractFields splits a command line into the command, its positional
// arguments, and its -key value options. Negative numbers do not start an
// option.
func extractFields(line string) (*shellcmd, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := make(CmdOptions)
	lastWasOption := false
	lastOption := ""
	for _, field := range fields[1:] {
		if strings.HasPrefix(field, "-") && len(field) > 1 && (field[1] < '0' || field[1] > '9') {
			lastWasOption = true
			lastOption = field[1:]
			continue
		}
		if lastWasOption {
			options[lastOption] = append(options[lastOption], field)
			lastWasOption = false
		} else {
			args = append(args, field)
		}
	}
	if lastWasOption {
		return nil, errWrongOptionSyntax
	}
	return &shellcmd{cmd: cmd, args: args, options: options}, nil
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

var completer = readline.NewPrefixCompleter(
	readline.PcItem("autoanalyze"),
	readline.PcItem("autoplay"),
	readline.PcItem("engine"),
	readline.PcItem("exit"),
	readline.PcItem("help"),
	readline.PcItem("moves"),
	readline.PcItem("new"),
	readline.PcItem("play"),
	readline.PcItem("position"),
	readline.PcItem("set"),
	readline.PcItem("show"),
	readline.PcItem("solve", readline.PcItem("stop")),
	readline.PcItem("undo"),
)

func NewShellController(cfg *config.Config) *ShellController {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[31msoledad>\033[0m ",
		HistoryFile:     "/tmp/soledad-readline.tmp",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",
		AutoComplete:    completer,

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})

	if err != nil {
		panic(err)
	}
	return &ShellController{l: l, config: cfg}
}

func (sc *ShellController) showMessage(msg string) {
	showMessage(msg, sc.l.Stderr())
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

func (sc *ShellController) standardModeSwitch(line string, sig chan os.Signal) (*Response, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return nil, err
	}
	switch cmd.cmd {
	case "new":
		return sc.newGame(cmd)
	case "show":
		return sc.show(cmd)
	case "moves":
		return sc.moves(cmd)
	case "play":
		return sc.play(cmd)
	case "undo":
		return sc.undo(cmd)
	case "position":
		return sc.position(cmd)
	case "engine":
		return sc.engine(cmd)
	case "solve":
		return sc.solve(cmd)
	case "autoplay":
		return sc.autoplay(cmd)
	case "autoanalyze":
		return sc.autoAnalyze(cmd)
	case "set":
		return sc.set(cmd)
	case "help":
		return sc.help(cmd)
	case "exit", "quit", "bye":
		sig <- syscall.SIGINT
		return nil, errQuit
	default:
		return nil, errors.New("command " + cmd.cmd + " not found; try `help`")
	}
}

func (sc *ShellController) Loop(sig chan os.Signal) {

	defer sc.l.Close()

	for {

		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		resp, err := sc.standardModeSwitch(line, sig)
		if errors.Is(err, errQuit) {
			break
		}
		if err != nil {
			sc.showError(err)
		} else if resp != nil {
			sc.showMessage(resp.message)
		}

	}
	log.Debug().Msgf("Exiting readline loop...")
}

// Execute runs a single command line and returns, for one-shot invocations
// from the command line.
func (sc *ShellController) Execute(sig chan os.Signal, line string) {
	defer sc.l.Close()
	resp, err := sc.standardModeSwitch(line, sig)
	if err != nil && !errors.Is(err, errQuit) {
		sc.showError(err)
	} else if resp != nil {
		sc.showMessage(resp.message)
	}
}

func (sc *ShellController) Cleanup() {
	if sc.solving.Load() && sc.solveCancel != nil {
		sc.solveCancel()
	}
	if sc.solveLogFile != nil {
		sc.solveLogFile.Close()
	}
}
