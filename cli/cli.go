package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/perfgo/gfxtrace/session"
	"github.com/perfgo/gfxtrace/settings"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

const AppName = "gfxtrace"

type App struct {
	logger zerolog.Logger
	cli    *cli.App

	stdin  io.Reader
	stdout io.Writer

	// runner replaces the local tracer when set
	runner session.Runner
}

func New() *App {

	// Set default log level to info
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	logger :=
		log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339Nano,
		})

	app := &App{
		logger: logger,
		stdin:  os.Stdin,
		stdout: os.Stdout,
		cli: &cli.App{
			Name:  AppName,
			Usage: "Capture graphics traces of Android and desktop applications",
			Authors: []*cli.Author{
				{Name: "Christian Simon", Email: fmt.Sprintf("simon+%s@swine.de", AppName)},
			},
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "verbose",
					Usage: "Enable verbose (debug) logging",
				},
				&cli.StringFlag{
					Name:    "settings",
					Usage:   "Settings file holding the defaults remembered from the last trace",
					Value:   settings.DefaultPath(),
					EnvVars: []string{"GFXTRACE_SETTINGS"},
				},
			},
			Before: func(ctx *cli.Context) error {
				if ctx.Bool("verbose") {
					zerolog.SetGlobalLevel(zerolog.DebugLevel)
				}
				return nil
			},
		},
	}
	app.cli.Writer = app.stdout

	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:  "trace",
		Usage: "Capture a graphics trace",
		Subcommands: []*cli.Command{
			{
				Name:   "android",
				Usage:  "Trace an application on an Android device",
				Action: app.traceAndroid,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    "device",
						Aliases: []string{"d"},
						Usage:   "Serial of the device to trace on",
					},
					&cli.StringFlag{
						Name:    "target",
						Aliases: []string{"t"},
						Usage:   "Package to trace, or ACTION:PACKAGE/ACTIVITY to launch a specific activity",
					},
					&cli.StringFlag{
						Name:  "api",
						Usage: "Graphics API to trace (gles or vulkan)",
					},
					&cli.StringFlag{
						Name:  "args",
						Usage: "Additional intent arguments",
					},
					&cli.BoolFlag{
						Name:  "clear-cache",
						Usage: "Clear the package data before tracing",
					},
					&cli.BoolFlag{
						Name:  "disable-pcs",
						Usage: "Disable pre-compiled shaders, which are not supported in the replay",
					},
					&cli.StringFlag{
						Name:  "adb",
						Usage: "Path to adb (default: from settings or PATH)",
					},
				}, sharedTraceFlags()...),
			},
			{
				Name:   "desktop",
				Usage:  "Trace a Vulkan application on this machine",
				Action: app.traceDesktop,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    "exe",
						Aliases: []string{"e"},
						Usage:   "Executable to trace",
					},
					&cli.StringFlag{
						Name:  "args",
						Usage: "Command line arguments of the executable",
					},
					&cli.StringFlag{
						Name:  "cwd",
						Usage: "Working directory (default: the executable's directory)",
					},
				}, sharedTraceFlags()...),
			},
		},
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "list",
		Usage:  "List previous trace runs",
		Action: app.list,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of runs to show (0 for all)",
				Value:   10,
			},
			&cli.BoolFlag{
				Name:  "failed",
				Usage: "Only show failed runs",
			},
		},
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:            "view",
		Usage:           "Show a previous trace run, or open its capture with the tracer",
		ArgsUsage:       "[ID|INDEX] [-- TRACER-ARGS]",
		Action:          app.view,
		SkipFlagParsing: true,
		Description: `Show a previous trace run with the tracer output.

Arguments:
  0           View the last trace run (default)
  -1          View the 2nd last trace run
  -2          View the 3rd last trace run
  <hex-id>    View the trace run matching the hex ID prefix

Any arguments after the run (or after --) are passed to the tracer together
with the capture file, e.g. "gfxtrace view -1 -- stats".`,
	})
	return app
}

// sharedTraceFlags returns the flags common to all trace targets.
func sharedTraceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "out-dir",
			Aliases: []string{"o"},
			Usage:   "Directory to write the capture to",
		},
		&cli.StringFlag{
			Name:  "out-file",
			Usage: "Capture file name (default: derived from the target and the current time)",
		},
		&cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to capture (0 to capture until stopped)",
		},
		&cli.BoolFlag{
			Name:  "from-beginning",
			Usage: "Capture from application start instead of waiting for Enter",
		},
		&cli.BoolFlag{
			Name:  "no-buffer",
			Usage: "Write the capture without buffering",
		},
		&cli.StringFlag{
			Name:  "tracer",
			Usage: "Tracer binary (default: from settings)",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Print the tracer command instead of running it",
		},
	}
}

func (a *App) Run(args []string) error {
	return a.cli.Run(args)
}

// SetVersion sets the version information for the CLI application
func (a *App) SetVersion(version, commit, date string) {
	a.cli.Version = version
	if commit != "none" && len(commit) >= 8 {
		a.cli.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit[:8], date)
	}
}
