package history

// This file contains shared history utilities for recording, loading and
// looking up trace runs.

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/perfgo/gfxtrace/model"
	"github.com/rs/zerolog"
)

const (
	historyFile = "history.json"
	// LogFile is the name of the tracer output file inside a run directory.
	LogFile = "trace.log"
)

type Entry struct {
	History  model.History
	FullPath string
}

// LogPath returns the path of the tracer output of the run.
func (e Entry) LogPath() string {
	return filepath.Join(e.FullPath, LogFile)
}

// Root returns the directory holding trace run history.
func Root() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to find history directory: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "gfxtrace", "history"), nil
}

// NewID returns a random run ID (16 bytes, hex encoded).
func NewID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

// Record writes the run metadata and tracer output to a new directory under
// root and returns that directory. The capture file is registered as an
// artifact when the tracer produced one.
func Record(logger zerolog.Logger, root string, h *model.History, lines []string) (string, error) {
	timestamp := h.Timestamp.Format("20060102-150405")
	shortID := h.ID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}

	runDir := filepath.Join(root, fmt.Sprintf("%s-%s", timestamp, shortID))
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create run directory: %w", err)
	}

	if output := h.Request.Output; output != "" {
		if abs, err := filepath.Abs(output); err == nil {
			output = abs
		}
		if info, err := os.Stat(output); err == nil && !info.IsDir() {
			h.Artifacts = append(h.Artifacts, model.Artifact{
				Type: model.ArtifactTypeCapture,
				Size: uint64(info.Size()),
				File: output,
			})
		} else {
			logger.Debug().Str("output", output).Msg("No capture file written")
		}
	}

	var log strings.Builder
	for _, line := range lines {
		log.WriteString(line)
		log.WriteByte('\n')
	}
	if err := os.WriteFile(filepath.Join(runDir, LogFile), []byte(log.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write trace log: %w", err)
	}
	h.Artifacts = append(h.Artifacts, model.Artifact{
		Type: model.ArtifactTypeLog,
		Size: uint64(log.Len()),
		File: LogFile,
	})

	metadata, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal history: %w", err)
	}
	if err := os.WriteFile(filepath.Join(runDir, historyFile), metadata, 0644); err != nil {
		return "", fmt.Errorf("failed to write history: %w", err)
	}

	logger.Debug().Str("dir", runDir).Str("id", h.ID).Msg("Recorded trace run")
	return runDir, nil
}

// LoadEntries loads all history entries under root, newest first. A missing
// root yields no entries.
func LoadEntries(logger zerolog.Logger, root string) ([]Entry, error) {
	var entries []Entry

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == root && errors.Is(err, os.ErrNotExist) {
				return filepath.SkipDir
			}
			return err
		}

		if d.IsDir() {
			historyPath := filepath.Join(path, historyFile)
			if _, err := os.Stat(historyPath); err == nil {
				history, err := parseHistoryJSON(historyPath)
				if err != nil {
					logger.Warn().Err(err).Str("path", historyPath).Msg("Failed to parse history.json")
					return nil
				}

				entries = append(entries, Entry{
					History:  history,
					FullPath: path,
				})
			}
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to walk history directory: %w", err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].History.Timestamp.After(entries[j].History.Timestamp)
	})
	return entries, nil
}

// Find selects an entry from entries sorted newest first. arg is either an
// index (0 for the newest, -1 for the one before, ...) or a hex ID prefix.
func Find(entries []Entry, arg string) (*Entry, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("no history entries found")
	}

	if parsed, err := strconv.ParseInt(arg, 10, 64); err == nil && parsed <= 0 {
		if parsed <= -int64(len(entries)) {
			return nil, fmt.Errorf("index %s out of range (only %d history entries)", arg, len(entries))
		}
		return &entries[-parsed], nil
	}

	hexID := strings.ToLower(arg)
	if _, err := hex.DecodeString(hexID + strings.Repeat("0", len(hexID)%2)); err != nil || hexID == "" {
		return nil, fmt.Errorf("invalid index or ID: %s (use 0 for last, -1 for second-to-last, or an ID prefix)", arg)
	}
	for i := range entries {
		if strings.HasPrefix(strings.ToLower(entries[i].History.ID), hexID) {
			return &entries[i], nil
		}
	}
	return nil, fmt.Errorf("no history entry found matching ID: %s", arg)
}

// parseHistoryJSON parses a history.json file.
func parseHistoryJSON(historyPath string) (model.History, error) {
	data, err := os.ReadFile(historyPath)
	if err != nil {
		return model.History{}, err
	}

	var history model.History
	if err := json.Unmarshal(data, &history); err != nil {
		return model.History{}, err
	}

	return history, nil
}
