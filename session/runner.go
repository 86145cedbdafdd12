package session

import (
	"context"

	"github.com/perfgo/gfxtrace/model"
)

// Listener receives the events of a running capture. Implementations may be
// called from any goroutine, but never concurrently.
type Listener interface {
	// OnProgress reports one line of tracer output.
	OnProgress(line string)
	// OnFailure reports that the capture failed. It is called at most once.
	OnFailure(err error)
}

// Handle controls a launched capture.
type Handle interface {
	// Done is closed once the capture process has exited and all of its
	// events have been delivered.
	Done() <-chan struct{}
	// Terminate asks the capture to finish and write its output.
	Terminate() error
	// Kill ends the capture immediately.
	Kill() error
}

// Runner performs the platform specific capture for a request.
type Runner interface {
	// Launch starts the capture and returns without waiting for it to finish.
	Launch(ctx context.Context, req model.TraceRequest, l Listener) (Handle, error)
}
