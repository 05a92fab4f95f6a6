package automatic

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/soledad-ai/soledad/board"
	"github.com/soledad-ai/soledad/stats"
)

func TestStartSeries(t *testing.T) {
	is := is.New(t)
	greedy, err := BotFactory("greedy", "mobility")
	is.NoErr(err)
	random, err := BotFactory("random", "")
	is.NoErr(err)

	sr, err := StartSeries(context.Background(), SeriesConfig{
		Games:    8,
		Threads:  2,
		Budget:   100 * time.Millisecond,
		Geometry: board.MustGeometry(5, 5),
		PlayerA:  greedy,
		PlayerB:  random,
	})
	is.NoErr(err)
	is.Equal(sr.Games, 8)
	is.Equal(sr.Wins[0]+sr.Wins[1], 8)
	is.Equal(sr.Names, [2]string{"greedy-mobility", "random"})
	is.Equal(sr.Timeouts, 0)
	is.Equal(sr.InvalidMoves, 0)
	is.Equal(sr.Errors, 0)
	is.Equal(sr.Plies.Iterations(), 8)
	// The greedy bot publishes every move at depth 1, the random one at 0.
	is.True(stats.FuzzyEqual(sr.Depths[0].Mean(), 1))
	is.True(stats.FuzzyEqual(sr.Depths[1].Mean(), 0))
	is.True(stats.FuzzyEqual(sr.WinRate(0)+sr.WinRate(1), 1))

	sum := sr.Summary()
	is.True(strings.Contains(sum, "8 games"))
	is.True(strings.Contains(sum, "greedy-mobility"))
	is.True(strings.Contains(sum, "random"))
}

func TestStartSeriesLogWriter(t *testing.T) {
	is := is.New(t)
	random, err := BotFactory("random", "")
	is.NoErr(err)

	var buf bytes.Buffer
	sr, err := StartSeries(context.Background(), SeriesConfig{
		Games:     2,
		Budget:    100 * time.Millisecond,
		Geometry:  board.MustGeometry(4, 4),
		PlayerA:   random,
		PlayerB:   random,
		LogWriter: &buf,
	})
	is.NoErr(err)
	is.Equal(sr.Games, 2)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	is.Equal(lines[0], "playerID,gameID,ply,play,value,depth")
	is.Equal(len(lines)-1, int(sr.Plies.Mean()*2))
	for _, line := range lines[1:] {
		is.Equal(len(strings.Split(line, ",")), 6)
	}
}

func TestStartSeriesCanceled(t *testing.T) {
	is := is.New(t)
	random, err := BotFactory("random", "")
	is.NoErr(err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sr, err := StartSeries(ctx, SeriesConfig{
		Games:   100,
		Threads: 2,
		Budget:  50 * time.Millisecond,
		PlayerA: random,
		PlayerB: random,
	})
	is.NoErr(err)
	is.Equal(sr.Games, 0)
}

func TestStartSeriesValidation(t *testing.T) {
	is := is.New(t)
	random, err := BotFactory("random", "")
	is.NoErr(err)

	cases := []SeriesConfig{
		{Games: 1, Budget: time.Second},
		{Games: 0, Budget: time.Second, PlayerA: random, PlayerB: random},
		{Games: 1, PlayerA: random, PlayerB: random},
	}
	for _, cfg := range cases {
		_, err := StartSeries(context.Background(), cfg)
		is.True(err != nil)
	}
}

func TestBotFactory(t *testing.T) {
	is := is.New(t)
	for name, want := range map[string]string{
		"random": "random",
		"greedy": "greedy-box3",
		"search": "search-box3",
	} {
		f, err := BotFactory(name, "box3")
		is.NoErr(err)
		p, err := f()
		is.NoErr(err)
		is.Equal(p.Name(), want)
	}

	_, err := BotFactory("alphazero", "mobility")
	is.True(err != nil)
	_, err = BotFactory("greedy", "nonsense")
	is.True(err != nil)
}
