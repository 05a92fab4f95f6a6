package automatic

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/soledad-ai/soledad/stats"
)

type playerStats struct {
	moves  int
	values *stats.Statistic
	depths *stats.Statistic
}

// AnalyzeLogFile reads a move log written by an autoplay session
// (see StartSeries) and returns a human-readable summary: how many
// games and moves it covers, the distribution of game lengths, and
// per-player mean move value and search depth.
func AnalyzeLogFile(filepath string) (string, error) {
	f, err := os.Open(filepath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return "", err
	}

	players := map[string]*playerStats{}
	lastPly := map[string]int{}
	moves := 0

	for _, record := range records {
		if record[0] == "playerID" {
			// header line
			continue
		}
		value, err := strconv.ParseFloat(record[4], 64)
		if err != nil {
			return "", err
		}
		depth, err := strconv.Atoi(record[5])
		if err != nil {
			return "", err
		}
		ply, err := strconv.Atoi(record[2])
		if err != nil {
			return "", err
		}
		p := players[record[0]]
		if p == nil {
			p = &playerStats{values: &stats.Statistic{}, depths: &stats.Statistic{}}
			players[record[0]] = p
		}
		p.moves++
		p.values.Push(value)
		p.depths.Push(float64(depth))
		gameID := record[1]
		if ply+1 > lastPly[gameID] {
			lastPly[gameID] = ply + 1
		}
		moves++
	}

	plies := &stats.Statistic{}
	for _, l := range lastPly {
		plies.Push(float64(l))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d games, %d moves\n", len(lastPly), moves)
	if plies.Iterations() > 0 {
		fmt.Fprintf(&sb, "game length (plies): mean %.2f  min %v  max %v\n",
			plies.Mean(), plies.Min(), plies.Max())
	}
	names := lo.Keys(players)
	sort.Strings(names)
	for _, name := range names {
		p := players[name]
		fmt.Fprintf(&sb, "%-24s %6d moves, mean value %.3f, mean depth %.1f\n",
			name, p.moves, p.values.Mean(), p.depths.Mean())
	}
	return sb.String(), nil
}
