// Package session supervises a single trace capture from start to finish and
// keeps the progress log the tracer produced along the way.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/perfgo/gfxtrace/model"
	"github.com/rs/zerolog"
)

// DefaultStopTimeout bounds each wait for the tracer to exit after Stop.
const DefaultStopTimeout = 5 * time.Second

var (
	// ErrAlreadyStarted is returned by a second call to Start.
	ErrAlreadyStarted = errors.New("trace session already started")
	// ErrNotStarted is returned by Stop before Start was called.
	ErrNotStarted = errors.New("trace session not started")
	// ErrStopTimeout is returned by Stop when the tracer survived being killed.
	ErrStopTimeout = errors.New("tracer did not exit")
)

// State is the lifecycle state of a Session.
type State int

const (
	Configured State = iota
	Running
	Stopping
	Finished
)

func (s State) String() string {
	switch s {
	case Configured:
		return "configured"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Finished:
		return "finished"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// FormatFailure renders a capture failure as a single log entry.
func FormatFailure(err error) string {
	return fmt.Sprintf("Tracing failed:\n%+v", err)
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used for lifecycle events.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithStopTimeout sets how long Stop waits for the tracer to exit, once after
// asking it to terminate and once more after killing it.
func WithStopTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.stopTimeout = d
	}
}

// WithObserver registers a function called with every line appended to the
// log, in order.
func WithObserver(fn func(line string)) Option {
	return func(s *Session) {
		s.observer = fn
	}
}

// Session owns one trace request, the ordered progress log and the failure
// flag of its capture.
type Session struct {
	logger      zerolog.Logger
	runner      Runner
	request     model.TraceRequest
	stopTimeout time.Duration
	observer    func(string)

	mu     sync.RWMutex
	state  State
	log    []string
	failed bool
	handle Handle
	done   chan struct{}
}

// New creates a session in the Configured state.
func New(req model.TraceRequest, runner Runner, opts ...Option) *Session {
	s := &Session{
		logger:      zerolog.Nop(),
		runner:      runner,
		request:     req,
		stopTimeout: DefaultStopTimeout,
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Request returns the request the session was created with.
func (s *Session) Request() model.TraceRequest {
	return s.request
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Log returns a copy of the progress log.
func (s *Session) Log() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.log...)
}

// Failed reports whether the capture failed. It is final once the session
// is Finished.
func (s *Session) Failed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failed
}

// Done is closed when the session reaches Finished.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the session is Finished or ctx is done.
func (s *Session) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start hands the request to the runner and returns without waiting for the
// capture. It may only be called once. A launch error is recorded as a capture
// failure, not returned.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != Configured {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.state = Running
	s.mu.Unlock()

	opts := s.request.Options()
	s.logger.Info().
		Str("platform", string(s.request.Platform())).
		Str("api", opts.Api.String()).
		Str("output", opts.Output).
		Bool("mid_execution", opts.MidExecution).
		Msg("Starting trace")

	h, err := s.runner.Launch(ctx, s.request, listener{s})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to launch tracer")
		s.onFailure(err)
		s.finish()
		return nil
	}

	s.mu.Lock()
	s.handle = h
	s.mu.Unlock()

	go func() {
		<-h.Done()
		s.finish()
	}()
	return nil
}

// Stop ends a running capture. The tracer is asked to terminate; if it has
// not exited within the stop timeout it is killed. Stop on a finished session
// does nothing.
func (s *Session) Stop(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case Configured:
		s.mu.Unlock()
		return ErrNotStarted
	case Stopping, Finished:
		s.mu.Unlock()
		return nil
	}
	s.state = Stopping
	h := s.handle
	s.mu.Unlock()

	defer s.finish()
	if h == nil {
		return nil
	}

	s.logger.Info().Msg("Stopping trace")
	if err := h.Terminate(); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to request tracer termination")
	}
	if s.await(ctx, h) {
		return nil
	}

	s.logger.Warn().Dur("timeout", s.stopTimeout).Msg("Tracer did not exit in time, killing it")
	if err := h.Kill(); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to kill tracer")
	}
	if s.await(ctx, h) {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to stop trace: %w", err)
	}
	return fmt.Errorf("failed to stop trace: %w", ErrStopTimeout)
}

// await waits up to the stop timeout for the handle to finish.
func (s *Session) await(ctx context.Context, h Handle) bool {
	timer := time.NewTimer(s.stopTimeout)
	defer timer.Stop()
	select {
	case <-h.Done():
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}

func (s *Session) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Finished {
		return
	}
	s.state = Finished
	close(s.done)
	s.logger.Debug().Bool("failed", s.failed).Int("lines", len(s.log)).Msg("Trace session finished")
}

func (s *Session) append(line string, failure bool) {
	s.mu.Lock()
	if s.state == Finished || (failure && s.failed) {
		s.mu.Unlock()
		return
	}
	s.log = append(s.log, line)
	if failure {
		s.failed = true
	}
	observer := s.observer
	s.mu.Unlock()

	if observer != nil {
		observer(line)
	}
}

func (s *Session) onProgress(line string) {
	s.append(line, false)
}

func (s *Session) onFailure(err error) {
	s.append(FormatFailure(err), true)
}

// listener keeps the callback methods off the Session's exported API.
type listener struct {
	s *Session
}

func (l listener) OnProgress(line string) { l.s.onProgress(line) }
func (l listener) OnFailure(err error)    { l.s.onFailure(err) }
