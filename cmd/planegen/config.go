package main

import (
	"errors"
	"flag"
	"fmt"
	"math"
	"time"

	"gopkg.in/gcfg.v1"
)

// GeneratorConfig holds the defaults for generated functions. Angles are
// in radians.
type GeneratorConfig struct {
	Seed int64

	MinZ, MaxZ         float64
	MinAngle, MaxAngle float64

	DeltaZ, DeltaAngle float64
	Neighbours         int
}

type ServerConfig struct {
	Addr string

	// WalkInterval is the time between two /events/walk steps in
	// milliseconds.
	WalkInterval int
}

// Config is read from an INI file such as
//
//	[Generator]
//	MinZ = -1
//	MaxZ = 1
//	MaxAngle = 0.5
//
//	[Server]
//	Addr = :9092
type Config struct {
	Generator GeneratorConfig
	Server    ServerConfig
}

func defaultConfig() Config {
	return Config{
		Generator: GeneratorConfig{
			MinZ:       -1,
			MaxZ:       1,
			MinAngle:   0,
			MaxAngle:   math.Pi / 6,
			DeltaZ:     0.1,
			DeltaAngle: 0.05,
			Neighbours: 5,
		},
		Server: ServerConfig{
			WalkInterval: 1000,
		},
	}
}

func (cfg Config) validate() error {
	if cfg.Generator.Neighbours < 0 {
		return errors.New("neighbours must not be negative")
	}
	g := cfg.Generator
	for _, v := range []float64{g.MinZ, g.MaxZ, g.MinAngle, g.MaxAngle, g.DeltaZ, g.DeltaAngle} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New("generator values must be finite")
		}
	}
	if cfg.Server.WalkInterval <= 0 {
		return errors.New("walk interval must be positive")
	}
	return nil
}

func (cfg Config) walkInterval() time.Duration {
	return time.Duration(cfg.Server.WalkInterval) * time.Millisecond
}

// readConfig overlays the values found in the INI file fname on cfg.
func readConfig(fname string, cfg *Config) error {
	err := gcfg.ReadFileInto(cfg, fname)
	if err != nil {
		return fmt.Errorf("read config '%s': %w", fname, err)
	}
	return nil
}

// bindFlags registers flags for the settings most often changed from the
// command line. Only flags that were set override the config file.
func bindFlags(fs *flag.FlagSet, cfg *Config) func() {
	seed := fs.Int64("seed", cfg.Generator.Seed, "Random seed (0 uses the current time).")
	addr := fs.String("addr", cfg.Server.Addr, "Address to serve the HTTP API on. If empty, functions are printed and the program exits.")
	n := fs.Int("n", cfg.Generator.Neighbours, "Number of neighbour functions to print.")
	deltaZ := fs.Float64("deltaZ", cfg.Generator.DeltaZ, "Max height deviation of neighbours.")
	deltaAngle := fs.Float64("deltaAngle", cfg.Generator.DeltaAngle, "Max normal deviation of neighbours, in radians.")

	return func() {
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "seed":
				cfg.Generator.Seed = *seed
			case "addr":
				cfg.Server.Addr = *addr
			case "n":
				cfg.Generator.Neighbours = *n
			case "deltaZ":
				cfg.Generator.DeltaZ = *deltaZ
			case "deltaAngle":
				cfg.Generator.DeltaAngle = *deltaAngle
			}
		})
	}
}
