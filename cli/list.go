package cli

// This file contains the list command for displaying previous trace runs.

import (
	"fmt"
	"time"

	"github.com/perfgo/gfxtrace/history"
	"github.com/perfgo/gfxtrace/model"
	"github.com/urfave/cli/v2"
)

func (a *App) list(ctx *cli.Context) error {
	onlyFailed := ctx.Bool("failed")
	limit := ctx.Int("limit")

	historyRoot, err := history.Root()
	if err != nil {
		return err
	}

	// Load all history entries, newest first
	historyEntries, err := history.LoadEntries(a.logger, historyRoot)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	var filteredEntries []history.Entry
	for _, entry := range historyEntries {
		if !onlyFailed || entry.History.Failed {
			filteredEntries = append(filteredEntries, entry)
		}
	}

	if len(filteredEntries) == 0 {
		if onlyFailed {
			fmt.Fprintln(a.stdout, "No failed trace runs found")
		} else {
			fmt.Fprintln(a.stdout, "No trace runs found")
		}
		return nil
	}

	// Apply limit
	displayRuns := filteredEntries
	if limit > 0 && limit < len(displayRuns) {
		displayRuns = displayRuns[:limit]
	}

	fmt.Fprintf(a.stdout, "\n=== History (%d total) ===\n\n", len(filteredEntries))

	for _, entry := range displayRuns {
		h := entry.History
		req := h.Request
		timestamp := h.Timestamp.Format("2006-01-02 15:04:05")
		duration := h.Duration.Round(time.Millisecond)

		status := "✓"
		if h.Failed {
			status = "✗"
		}

		fmt.Fprintf(a.stdout, "%s  %s  [%s]  %s/%s  id=%s\n", status, timestamp, duration, req.Platform, displayApi(req.Api), shortID(h.ID))
		fmt.Fprintf(a.stdout, "   Target: %s\n", req.Target)
		if req.Device != "" {
			fmt.Fprintf(a.stdout, "   Device: %s\n", req.Device)
		}
		for _, artifact := range h.Artifacts {
			if artifact.Type == model.ArtifactTypeCapture {
				fmt.Fprintf(a.stdout, "   %s: %s (%.1f KB)\n", artifact.Type, artifact.File, float64(artifact.Size)/1024)
			}
		}
		fmt.Fprintf(a.stdout, "   %s\n", entry.FullPath)
		fmt.Fprintln(a.stdout)
	}

	fmt.Fprintf(a.stdout, "\nView a trace run: %s view <ID>\n", AppName)
	fmt.Fprintf(a.stdout, "Open a capture: %s view <ID> -- <TRACER-ARGS>\n", AppName)

	return nil
}

// shortID returns the first 8 characters of a run ID.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func displayApi(name string) string {
	return model.ParseApi(name).DisplayName()
}
