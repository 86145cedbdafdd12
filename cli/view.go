package cli

// This file contains the view command for displaying trace runs from history.

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/perfgo/gfxtrace/history"
	"github.com/perfgo/gfxtrace/model"
	"github.com/perfgo/gfxtrace/settings"
	"github.com/urfave/cli/v2"
)

func removeFirstDashDash(in []string) []string {
	if len(in) > 0 && in[0] == "--" {
		return in[1:]
	}
	return in
}

func parseViewArgs(in []string) (idArg string, tracerArgs []string) {
	if len(in) == 0 {
		return "0", nil
	}

	// If first arg is "--", use default "0" and rest are tracer args
	if in[0] == "--" {
		return "0", in[1:]
	}

	// Check if first arg looks like a tracer flag instead of an ID
	// A negative index is: "-" followed by only digits (e.g., "-1", "-2")
	// A tracer flag is: "-" followed by non-digit or equals (e.g., "-json", "-verbose=true")
	if len(in[0]) > 1 && in[0][0] == '-' {
		if _, err := strconv.ParseInt(in[0], 10, 64); err != nil {
			return "0", in
		}
	}

	// First arg is the ID/index, rest are tracer args (with optional "--" removed)
	return in[0], removeFirstDashDash(in[1:])
}

func (a *App) view(ctx *cli.Context) error {
	arg, tracerArgs := parseViewArgs(ctx.Args().Slice())

	historyRoot, err := history.Root()
	if err != nil {
		return err
	}

	historyEntries, err := history.LoadEntries(a.logger, historyRoot)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	entry, err := history.Find(historyEntries, arg)
	if err != nil {
		return err
	}

	if len(tracerArgs) > 0 {
		s, err := settings.Load(ctx.String("settings"))
		if err != nil {
			return err
		}
		return a.openCapture(entry, s.Tracer, tracerArgs)
	}
	return a.displayHistoryEntry(entry)
}

func (a *App) displayHistoryEntry(entry *history.Entry) error {
	h := entry.History
	req := h.Request

	fmt.Fprintf(a.stdout, "=== Trace Run: %s ===\n", shortID(h.ID))
	fmt.Fprintf(a.stdout, "Time: %s\n", h.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(a.stdout, "Duration: %s\n", h.Duration)
	if h.Failed {
		fmt.Fprintln(a.stdout, "Status: failed")
	} else {
		fmt.Fprintln(a.stdout, "Status: ok")
	}
	fmt.Fprintf(a.stdout, "Platform: %s\n", req.Platform)
	fmt.Fprintf(a.stdout, "API: %s\n", displayApi(req.Api))
	if req.Device != "" {
		fmt.Fprintf(a.stdout, "Device: %s\n", req.Device)
	}
	fmt.Fprintf(a.stdout, "Target: %s\n", req.Target)
	if req.Arguments != "" {
		fmt.Fprintf(a.stdout, "Arguments: %s\n", req.Arguments)
	}
	if req.WorkingDirectory != "" {
		fmt.Fprintf(a.stdout, "Working Dir: %s\n", req.WorkingDirectory)
	}
	if req.FrameCount > 0 {
		fmt.Fprintf(a.stdout, "Frames: %d\n", req.FrameCount)
	} else {
		fmt.Fprintln(a.stdout, "Frames: until stopped")
	}
	fmt.Fprintf(a.stdout, "Mid-execution: %t\n", req.MidExecution)
	fmt.Fprintf(a.stdout, "Output: %s\n", req.Output)
	fmt.Fprintln(a.stdout)

	logPath := entry.LogPath()
	fmt.Fprintf(a.stdout, "Tracer Output: %s\n", logPath)
	data, err := os.ReadFile(logPath)
	if err != nil {
		return fmt.Errorf("failed to read tracer output: %w", err)
	}
	fmt.Fprint(a.stdout, string(data))
	return nil
}

// openCapture runs the tracer with args on the capture of the entry, e.g.
// "gapit stats".
func (a *App) openCapture(entry *history.Entry, tracer string, args []string) error {
	var capture *model.Artifact
	for i := range entry.History.Artifacts {
		if entry.History.Artifacts[i].Type == model.ArtifactTypeCapture {
			capture = &entry.History.Artifacts[i]
		}
	}
	if capture == nil {
		return fmt.Errorf("trace run %s has no capture", shortID(entry.History.ID))
	}
	fmt.Fprintf(a.stdout, "Capture: %s (%.1f KB)\n", capture.File, float64(capture.Size)/1024)

	cmdArgs := append(append([]string{}, args...), capture.File)
	a.logger.Debug().Str("tracer", tracer).Strs("args", cmdArgs).Msg("Opening capture")

	cmd := exec.Command(tracer, cmdArgs...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = a.stdout
	cmd.Stderr = os.Stderr
	cmd.Dir = entry.FullPath

	return cmd.Run()
}
