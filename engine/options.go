package engine

import (
	"flag"

	"github.com/vectra-gfx/vectra/common"
	"github.com/vectra-gfx/vectra/engine/ui"
)

// Options is the configuration surface of the demo app.
type Options struct {
	// Jobs sizes the scene build pool: 0 uses all available execution units,
	// 1 forces strictly sequential builds.
	Jobs int

	// Mode is the starting camera mode.
	Mode common.Mode

	// Pipeline enables the one-frame build lookahead. On by default.
	Pipeline bool

	// UI is the starting overlay visibility level.
	UI ui.Visibility

	// Background is the starting clear color scheme.
	Background ui.Background

	// InputPath is the scene file to load. Empty loads the built-in scene.
	InputPath string
}

// DefaultOptions returns the options used when no flags are given.
func DefaultOptions() Options {
	return Options{
		Mode:       common.ModeTwoD,
		Pipeline:   true,
		UI:         ui.VisibilityAll,
		Background: ui.BackgroundLight,
	}
}

// ParseFlags builds Options from the command line. The last positional
// argument, if present, is the input scene path.
//
// Returns:
//   - Options: the parsed options
func ParseFlags() Options {
	o := DefaultOptions()

	jobs := flag.Int("jobs", 0, "number of scene build jobs (0 = all cores, 1 = sequential)")
	threeD := flag.Bool("3d", false, "start in 3D camera mode")
	vr := flag.Bool("vr", false, "start in VR camera mode (implies two viewports)")
	uiLevel := flag.String("ui", "all", "overlay visibility: none, stats, or all")
	bg := flag.String("bg", "light", "background: none, dark, or light")
	pipeline := flag.Bool("pipeline", true, "overlap drawing with the next frame's build")
	flag.Parse()

	o.Jobs = *jobs
	o.Pipeline = *pipeline

	if *vr {
		o.Mode = common.ModeVR
	} else if *threeD {
		o.Mode = common.ModeThreeD
	}

	switch *uiLevel {
	case "none":
		o.UI = ui.VisibilityNone
	case "stats":
		o.UI = ui.VisibilityStats
	default:
		o.UI = ui.VisibilityAll
	}

	switch *bg {
	case "none":
		o.Background = ui.BackgroundNone
	case "dark":
		o.Background = ui.BackgroundDark
	default:
		o.Background = ui.BackgroundLight
	}

	if flag.NArg() > 0 {
		o.InputPath = flag.Arg(flag.NArg() - 1)
	}

	return o
}
