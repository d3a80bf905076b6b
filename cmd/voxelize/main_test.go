package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/stretchr/testify/require"
)

const testScene = `
(defsolid "cube" (box 2 2 2))
(defsolid "ball" (sphere 1) :cell-size 0.5)
`

func writeScene(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.lisp")
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	return path
}

func testConfig(t *testing.T, source string) config {
	conf := defaultConfig()
	conf.Scene = writeScene(t, source)
	conf.Out = filepath.Join(t.TempDir(), "out")
	conf.Formats = "json"
	conf.Workers = 2
	return conf
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config)
		valid  bool
	}{
		{
			name:   "defaults with scene",
			modify: func(c *config) {},
			valid:  true,
		},
		{
			name:   "missing scene",
			modify: func(c *config) { c.Scene = "" },
		},
		{
			name:   "missing output directory",
			modify: func(c *config) { c.Out = "" },
		},
		{
			name:   "no formats",
			modify: func(c *config) { c.Formats = " , " },
		},
		{
			name:   "unknown format",
			modify: func(c *config) { c.Formats = "stl,obj" },
		},
		{
			name:   "negative cell size",
			modify: func(c *config) { c.CellSize = -1 },
		},
		{
			name:   "zero cell size uses the scene",
			modify: func(c *config) { c.CellSize = 0 },
			valid:  true,
		},
		{
			name:   "negative tolerance",
			modify: func(c *config) { c.Tolerance = -0.1 },
		},
		{
			name:   "zero eval timeout",
			modify: func(c *config) { c.EvalTimeout = 0 },
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			conf := defaultConfig()
			conf.Scene = "scene.lisp"
			test.modify(&conf)

			err := validateConfig(conf)
			if test.valid {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
		})
	}
}

func TestRun(t *testing.T) {
	var b strings.Builder
	logs.SetInlineEncoder()
	logs.SetLogger(func(e logs.Entry) {
		fmt.Fprint(&b, e)
	})

	conf := testConfig(t, testScene)
	summaries, err := run(context.Background(), conf)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	cube := summaries[0]
	require.Equal(t, "cube", cube.Name)
	require.False(t, cube.Skipped)
	require.Equal(t, 2, cube.Stats.EdgeCount)
	require.Equal(t, 1.0, cube.Stats.EdgeLength)
	require.Equal(t, 8, cube.Stats.IntersectingCells)
	require.Equal(t, []string{filepath.Join(conf.Out, "cube.json")}, cube.Outputs)

	ball := summaries[1]
	require.Equal(t, "ball", ball.Name)
	require.Equal(t, 4, ball.Stats.EdgeCount)
	require.Equal(t, 0.5, ball.Stats.EdgeLength)
	require.FileExists(t, filepath.Join(conf.Out, "ball.json"))

	require.Contains(t, b.String(), `"solid":"cube"`)
	require.Contains(t, b.String(), "solid voxelized")
}

func TestRunCellSizeOverride(t *testing.T) {
	conf := testConfig(t, testScene)
	conf.CellSize = 0.25

	summaries, err := run(context.Background(), conf)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	require.Equal(t, 8, summaries[0].Stats.EdgeCount)
	require.Equal(t, 8, summaries[1].Stats.EdgeCount)
}

func TestRunSelectedSolids(t *testing.T) {
	conf := testConfig(t, testScene)
	conf.Solids = []string{"ball"}

	summaries, err := run(context.Background(), conf)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.Equal(t, "ball", summaries[0].Name)
	require.NoFileExists(t, filepath.Join(conf.Out, "cube.json"))
}

func TestRunUnknownSolid(t *testing.T) {
	conf := testConfig(t, testScene)
	conf.Solids = []string{"ball", "ghost"}

	_, err := run(context.Background(), conf)
	require.Error(t, err)
}

func TestRunSceneErrors(t *testing.T) {
	conf := testConfig(t, `(defsolid "flat" (box 1 1 0))`)

	_, err := run(context.Background(), conf)
	require.Error(t, err)
	require.NoDirExists(t, conf.Out)
}

func TestRunMissingScene(t *testing.T) {
	conf := testConfig(t, testScene)
	conf.Scene = filepath.Join(t.TempDir(), "missing.lisp")

	_, err := run(context.Background(), conf)
	require.Error(t, err)
}

func TestRunGridTooLarge(t *testing.T) {
	conf := testConfig(t, testScene)
	conf.CellSize = 0.01
	conf.MaxCells = 1000

	_, err := run(context.Background(), conf)
	require.Error(t, err)
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summaries, err := run(ctx, testConfig(t, testScene))
	require.Error(t, err)
	require.Empty(t, summaries)
}
