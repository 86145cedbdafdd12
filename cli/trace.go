package cli

// This file contains the trace commands, which configure a trace from the
// remembered settings and flags and supervise the tracer until it finishes.

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"time"

	"github.com/perfgo/gfxtrace/draft"
	"github.com/perfgo/gfxtrace/history"
	"github.com/perfgo/gfxtrace/model"
	"github.com/perfgo/gfxtrace/runner"
	"github.com/perfgo/gfxtrace/session"
	"github.com/perfgo/gfxtrace/settings"
	"github.com/urfave/cli/v2"
)

// errCancelled is returned when the user interrupts a mid-execution trace
// before it started.
var errCancelled = errors.New("trace cancelled")

func (a *App) traceAndroid(ctx *cli.Context) error {
	return a.runTrace(ctx, model.Android)
}

func (a *App) traceDesktop(ctx *cli.Context) error {
	return a.runTrace(ctx, model.Desktop)
}

func (a *App) runTrace(ctx *cli.Context, platform model.Platform) error {
	startTime := time.Now()

	settingsPath := ctx.String("settings")
	s, err := settings.Load(settingsPath)
	if err != nil {
		return err
	}

	d := s.NewDraft(platform, startTime)
	if err := applyTraceFlags(ctx, d); err != nil {
		return err
	}

	req, err := draft.Finalize(d)
	if err != nil {
		return err
	}

	tracer := s.Tracer
	if ctx.IsSet("tracer") {
		tracer = ctx.String("tracer")
	}
	adb := s.ADB
	if ctx.IsSet("adb") {
		adb = ctx.String("adb")
	}

	if ctx.Bool("dry-run") {
		fmt.Fprintln(a.stdout, runner.BuildTraceCommand(tracer, req, runner.Options{ADB: adb}))
		return nil
	}

	a.warn(d, adb)

	s.Remember(d)
	if err := s.Save(settingsPath); err != nil {
		a.logger.Warn().Err(err).Str("path", settingsPath).Msg("Failed to remember trace settings")
	}

	r := a.runner
	if r == nil {
		r = runner.NewLocal(a.logger, tracer, runner.WithADB(adb))
	}

	sess := session.New(req, r,
		session.WithLogger(a.logger),
		session.WithObserver(func(line string) {
			fmt.Fprintln(a.stdout, line)
		}),
	)

	fmt.Fprintf(a.stdout, "%s\n", req.Title())
	stopErr := a.superviseTrace(ctx.Context, sess)
	if errors.Is(stopErr, errCancelled) {
		return stopErr
	}

	h := &model.History{
		ID:        history.NewID(),
		Timestamp: startTime,
		Args:      os.Args,
		Duration:  time.Since(startTime),
		Failed:    sess.Failed() || stopErr != nil,
		Request:   model.NewTraceRecord(req),
	}
	if root, err := history.Root(); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to record trace run")
	} else if _, err := history.Record(a.logger, root, h, sess.Log()); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to record trace run")
	}

	if stopErr != nil {
		return stopErr
	}
	if sess.Failed() {
		return fmt.Errorf("tracing %s failed", req.Options().Output)
	}
	fmt.Fprintf(a.stdout, "Trace written to %s\n", req.Options().Output)
	return nil
}

// applyTraceFlags overrides the remembered draft values with the flags given
// on the command line.
func applyTraceFlags(ctx *cli.Context, d *draft.Draft) error {
	if ctx.IsSet("api") {
		api := model.ParseApi(ctx.String("api"))
		if api == model.ApiUnspecified {
			return fmt.Errorf("unknown API %q (use gles or vulkan)", ctx.String("api"))
		}
		d.Api = api
	}
	if ctx.IsSet("device") {
		d.Device = ctx.String("device")
	}
	if ctx.IsSet("target") {
		d.SetTarget(ctx.String("target"))
	}
	if ctx.IsSet("exe") {
		d.SetExecutable(ctx.String("exe"))
	}
	if ctx.IsSet("args") {
		d.Arguments = ctx.String("args")
	}
	if ctx.IsSet("cwd") {
		d.SetWorkingDir(ctx.String("cwd"))
	}
	if ctx.IsSet("out-dir") {
		d.OutputDir = ctx.String("out-dir")
	}
	if ctx.IsSet("out-file") {
		d.SetOutputFile(ctx.String("out-file"))
	}
	if ctx.IsSet("frames") {
		frames := ctx.Int("frames")
		if frames < 0 {
			return fmt.Errorf("invalid frame count %d", frames)
		}
		d.FrameCount = frames
	}
	if ctx.IsSet("from-beginning") {
		d.MidExecution = !ctx.Bool("from-beginning")
	}
	if ctx.IsSet("no-buffer") {
		d.DisableBuffering = ctx.Bool("no-buffer")
	}
	if ctx.IsSet("clear-cache") {
		d.ClearCache = ctx.Bool("clear-cache")
	}
	if ctx.IsSet("disable-pcs") {
		d.DisablePcs = ctx.Bool("disable-pcs")
	}
	return nil
}

func (a *App) warn(d *draft.Draft, adb string) {
	if draft.MidExecutionWarning(d) {
		a.logger.Warn().Msg("Mid-execution capture for GLES is experimental")
	}
	if draft.PrecompiledShaderWarning(d) {
		a.logger.Warn().Msg("Pre-compiled shaders are not supported in the replay, consider --disable-pcs")
	}
	if d.Platform == model.Android && adb == "" {
		if _, err := exec.LookPath("adb"); err != nil {
			a.logger.Warn().Msg("Path to adb missing, set it with --adb or in the settings file")
		}
	}
}

// superviseTrace starts the session and waits until the tracer finishes. A
// mid-execution trace starts on the first Enter. Enter or an interrupt stops
// a running trace.
func (a *App) superviseTrace(ctx context.Context, sess *session.Session) error {
	interrupted, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	lines := make(chan struct{})
	go func() {
		scanner := bufio.NewScanner(a.stdin)
		for scanner.Scan() {
			select {
			case lines <- struct{}{}:
			case <-sess.Done():
				return
			}
		}
	}()

	if sess.Request().Options().MidExecution {
		fmt.Fprintln(a.stdout, "Press Enter to start capturing")
		select {
		case <-lines:
		case <-interrupted.Done():
			return errCancelled
		}
	}

	// The tracer outlives an interrupt so that Stop can end it gracefully
	if err := sess.Start(context.WithoutCancel(ctx)); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "Press Enter or Ctrl-C to stop capturing")

	select {
	case <-sess.Done():
		return nil
	case <-lines:
	case <-interrupted.Done():
	}
	return sess.Stop(context.Background())
}
