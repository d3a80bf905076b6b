package main

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"runtime"
	"syscall"
	"time"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/chazu/voxelize/pkg/engine"
	"github.com/chazu/voxelize/pkg/export"
	"github.com/chazu/voxelize/pkg/kernel/sdfx"
	"github.com/chazu/voxelize/pkg/voxel"
	"github.com/segmentio/encoding/json"
)

// The voxelize version number. Set at build.
var version = "v0.1.0"

// Keeps the config field names readable by the cli package under garble.
var _ = reflect.TypeOf(config{})

type config struct {
	Scene       string        `cli:""        env:"VOXELIZE_SCENE"        help:"The scene script to voxelize."`
	Out         string        `cli:""        env:"VOXELIZE_OUT"          help:"The directory where outputs are written."`
	Formats     string        `cli:""        env:"VOXELIZE_FORMATS"      help:"Comma separated output formats (stl|glb|json|yaml|pcd)."`
	Solids      []string      `cli:""        env:"VOXELIZE_SOLIDS"       help:"Comma separated names of the solids to voxelize. Empty means all."`
	CellSize    float64       `cli:""        env:"VOXELIZE_CELL_SIZE"    help:"Recommended voxel size. Overrides the scene cell size when positive."`
	Workers     int           `cli:""        env:"VOXELIZE_WORKERS"      help:"The number of goroutines classifying a grid."`
	MaxCells    int           `cli:""        env:"VOXELIZE_MAX_CELLS"    help:"The largest grid allowed, in cells. 0 disables the limit."`
	Tolerance   float64       `cli:",hidden" env:"VOXELIZE_TOLERANCE"    help:"Distance from a surface within which a point is on the boundary."`
	EvalTimeout time.Duration `cli:",hidden" env:"VOXELIZE_EVAL_TIMEOUT" help:"The time limit for evaluating the scene script."`
	LogLevel    string        `cli:""        env:"VOXELIZE_LOG_LEVEL"    help:"Log level (debug|info|warning|error)."`
	LogIndent   bool          `cli:""        env:"VOXELIZE_LOG_INDENT"   help:"Indent logs."`
	Version     bool          `cli:""        env:"-"                     help:"Show version."`
	Help        bool          `cli:""        env:"-"                     help:"Show help."`
}

func defaultConfig() config {
	return config{
		Out:         "out",
		Formats:     "stl,json",
		Workers:     runtime.GOMAXPROCS(0),
		MaxCells:    voxel.DefaultMaxCells,
		Tolerance:   sdfx.DefaultTolerance,
		EvalTimeout: engine.EvalTimeout,
		LogLevel:    logs.InfoLevel.String(),
	}
}

func main() {
	conf := defaultConfig()

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Voxelizes the solids of a scene script.").
		Options(&conf)
	cli.Load()

	if conf.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	if err := validateConfig(conf); err != nil {
		logs.Fatal(err)
	}

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	if conf.LogIndent {
		logs.Encoder = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		}
	}

	errors.Encoder = json.Marshal

	summaries, err := run(ctx, conf)
	if err != nil {
		logs.Fatal(err)
	}

	logs.WithTag("scene", conf.Scene).
		WithTag("solids", len(summaries)).
		WithTag("out", conf.Out).
		Info("voxelization done")
}

func validateConfig(conf config) error {
	if conf.Scene == "" {
		return errors.New("a scene script is required")
	}

	if conf.Out == "" {
		return errors.New("an output directory is required")
	}

	formats, err := export.ParseFormats(conf.Formats)
	if err != nil {
		return errors.New("invalid output formats").Wrap(err)
	}
	if len(formats) == 0 {
		return errors.New("at least one output format is required")
	}

	if conf.CellSize < 0 {
		return errors.Newf("cell size must not be negative, got %g", conf.CellSize)
	}

	if conf.Tolerance < 0 {
		return errors.Newf("tolerance must not be negative, got %g", conf.Tolerance)
	}

	if conf.EvalTimeout <= 0 {
		return errors.New("eval timeout must be positive")
	}

	return nil
}
