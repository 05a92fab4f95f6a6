package config

import (
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Keys for every setting the flag set, the environment and the shell's set
// command share. Environment variables use the SOLEDAD_ prefix with dashes
// as underscores, so MoveTime is SOLEDAD_MOVE_TIME.
const (
	BoardWidth        = "board-width"
	BoardHeight       = "board-height"
	MoveTime          = "move-time"
	Heuristic         = "heuristic"
	Seed              = "seed"
	TTable            = "ttable"
	TTableMemFraction = "ttable-mem-fraction"
	PruningDisabled   = "pruning-disabled"
	Debug             = "debug"
	CPUProfile        = "cpu-profile"
	MemProfile        = "mem-profile"
)

// Config carries all settings, resolved in viper's order: explicit Set
// first, then command-line flags, then environment, then flag defaults.
type Config struct {
	v  *viper.Viper
	fs *pflag.FlagSet
}

func (c *Config) Load(args []string) error {
	c.v = viper.New()
	fs := pflag.NewFlagSet("soledad", pflag.ContinueOnError)
	// Parsing stops at the first non-flag argument, which the caller may
	// treat as a one-shot shell command.
	fs.SetInterspersed(false)
	fs.Int(BoardWidth, 11, "board width in cells")
	fs.Int(BoardHeight, 9, "board height in cells")
	fs.Duration(MoveTime, 150*time.Millisecond, "time budget for each engine move")
	fs.String(Heuristic, "mobility", "boundary evaluator: mobility, box3 or box5")
	fs.Int64(Seed, 0, "fixed seed for the engine's fallback moves; 0 draws one")
	fs.Bool(TTable, false, "cache positions in a transposition table during search")
	fs.Float64(TTableMemFraction, 0.25, "fraction of system memory the transposition table may take")
	fs.Bool(PruningDisabled, false, "search without alpha-beta cutoffs (slow, for analysis)")
	fs.Bool(Debug, false, "debug logging")
	fs.String(CPUProfile, "", "write cpu profile to file")
	fs.String(MemProfile, "", "write memory profile to file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	c.fs = fs
	c.v.SetEnvPrefix("soledad")
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()
	return c.v.BindPFlags(fs)
}

// Args returns the arguments left over after flag parsing.
func (c *Config) Args() []string {
	return c.fs.Args()
}

func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

func (c *Config) GetInt64(key string) int64 {
	return c.v.GetInt64(key)
}

func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

func (c *Config) GetDuration(key string) time.Duration {
	return c.v.GetDuration(key)
}

// Set pins a key to a value, overriding flags and environment. The shell's
// set command goes through here.
func (c *Config) Set(key string, value any) {
	c.v.Set(key, value)
}

func (c *Config) AllSettings() map[string]any {
	return c.v.AllSettings()
}
