package runner

// local.go runs the tracer as a local child process and streams its output
// into a trace session.

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/perfgo/gfxtrace/model"
	"github.com/perfgo/gfxtrace/session"
	"github.com/rs/zerolog"
)

// Local launches the tracer binary on this machine.
type Local struct {
	logger zerolog.Logger
	tracer string
	opts   Options
}

// LocalOption configures a Local runner.
type LocalOption func(*Local)

// WithADB sets the adb path passed to the tracer for Android captures.
func WithADB(path string) LocalOption {
	return func(l *Local) {
		l.opts.ADB = path
	}
}

// NewLocal creates a runner using the given tracer binary. An empty tracer
// uses DefaultTracer from PATH.
func NewLocal(logger zerolog.Logger, tracer string, opts ...LocalOption) *Local {
	if tracer == "" {
		tracer = DefaultTracer
	}
	l := &Local{
		logger: logger,
		tracer: tracer,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Command returns the shell command line Launch would run for req.
func (l *Local) Command(req model.TraceRequest) string {
	return BuildTraceCommand(l.tracer, req, l.opts)
}

// Launch starts the tracer for req. Each line the tracer prints is reported
// through l.OnProgress; a non-zero exit that was not requested through the
// returned handle is reported through l.OnFailure.
func (l *Local) Launch(ctx context.Context, req model.TraceRequest, listener session.Listener) (session.Handle, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}

	output := req.Options().Output
	if dir := filepath.Dir(output); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	args := BuildTraceArgs(req, l.opts)
	cmd := exec.CommandContext(ctx, l.tracer, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}

	// Merge stdout and stderr into a single line stream
	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	l.logger.Debug().
		Str("command", l.Command(req)).
		Msg("Launching tracer")

	if err := cmd.Start(); err != nil {
		pw.Close()
		return nil, fmt.Errorf("failed to start tracer: %w", err)
	}

	p := &process{
		cmd:   cmd,
		stdin: stdin,
		done:  make(chan struct{}),
	}

	if req.Options().MidExecution {
		// The user already confirmed the start, so begin capturing at once
		if err := p.sendEnter(); err != nil {
			l.logger.Warn().Err(err).Msg("Failed to begin deferred capture")
		}
	}

	var scanned sync.WaitGroup
	scanned.Add(1)
	go func() {
		defer scanned.Done()
		l.streamLines(pr, listener)
	}()

	go func() {
		defer close(p.done)
		err := cmd.Wait()
		pw.Close()
		scanned.Wait()

		if failure := p.exitFailure(err); failure != nil {
			l.logger.Info().Err(failure).Msg("Tracer failed")
			listener.OnFailure(failure)
			return
		}
		l.logger.Info().Str("output", output).Msg("Tracer finished")
	}()

	return p, nil
}

// maxLineLength bounds a single progress line. Longer tracer output is
// reported in chunks of this size.
const maxLineLength = 1024 * 1024

// lineTooLong precedes the chunks of a split output line.
const lineTooLong = "tracer output line too long, split into chunks"

// streamLines reports every line read from r until EOF.
func (l *Local) streamLines(r io.Reader, listener session.Listener) {
	reader := bufio.NewReaderSize(r, maxLineLength)
	continued := false
	for {
		line, isPrefix, err := reader.ReadLine()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				l.logger.Warn().Err(err).Msg("Failed to read tracer output")
			}
			// Keep draining so the tracer never blocks on a full pipe
			_, _ = io.Copy(io.Discard, r)
			return
		}

		switch {
		case isPrefix && !continued:
			l.logger.Warn().Int("limit", maxLineLength).Msg("Tracer output line too long, splitting it")
			listener.OnProgress(lineTooLong)
		case continued && !isPrefix && len(line) == 0:
			// The previous chunk ended exactly at the line break
			continued = false
			continue
		}
		listener.OnProgress(string(line))
		continued = isPrefix
	}
}

// checkRequest verifies at launch time what finalization leaves unchecked.
func checkRequest(req model.TraceRequest) error {
	r, ok := req.(model.DesktopTraceRequest)
	if !ok {
		return nil
	}
	if _, err := os.Stat(r.Executable); err != nil {
		return fmt.Errorf("executable %s: %w", r.Executable, err)
	}
	if r.WorkingDirectory != "" {
		info, err := os.Stat(r.WorkingDirectory)
		if err != nil {
			return fmt.Errorf("working directory %s: %w", r.WorkingDirectory, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("working directory %s is not a directory", r.WorkingDirectory)
		}
	}
	return nil
}

// process is the handle of a running tracer.
type process struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	done  chan struct{}

	stdinMu    sync.Mutex
	terminated atomic.Bool
	killed     atomic.Bool
}

func (p *process) Done() <-chan struct{} {
	return p.done
}

// Terminate presses enter on the tracer, which ends the capture.
func (p *process) Terminate() error {
	p.terminated.Store(true)
	return p.sendEnter()
}

func (p *process) Kill() error {
	p.killed.Store(true)
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("failed to kill tracer: %w", err)
	}
	return nil
}

func (p *process) sendEnter() error {
	p.stdinMu.Lock()
	defer p.stdinMu.Unlock()
	if _, err := io.WriteString(p.stdin, "\n"); err != nil {
		return fmt.Errorf("failed to write to tracer: %w", err)
	}
	return nil
}

// exitFailure maps the tracer's exit status to a capture failure.
func (p *process) exitFailure(err error) error {
	if p.killed.Load() {
		return fmt.Errorf("tracer was killed before it finished writing the capture")
	}
	if err == nil || p.terminated.Load() {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Errorf("tracer exited with code %d", exitErr.ExitCode())
	}
	return fmt.Errorf("failed to run tracer: %w", err)
}
