package model

import "fmt"

// LaunchTarget describes how an Android application is launched for tracing.
// It is either an ActivityLaunch or a BareLaunch.
type LaunchTarget interface {
	fmt.Stringer
	isLaunchTarget()
}

// ActivityLaunch starts a specific activity of a package with an intent action.
type ActivityLaunch struct {
	Action   string
	Package  string
	Activity string
}

// BareLaunch is a target that did not match ACTION:PACKAGE/ACTIVITY, usually a
// bare package name.
type BareLaunch struct {
	Target string
}

func (ActivityLaunch) isLaunchTarget() {}
func (BareLaunch) isLaunchTarget()     {}

func (a ActivityLaunch) String() string {
	return a.Action + ":" + a.Package + "/" + a.Activity
}

func (b BareLaunch) String() string {
	return b.Target
}

// TraceOptions are the options shared by every trace request.
type TraceOptions struct {
	Api              Api
	Output           string // Path of the capture file to write
	FrameCount       int    // Frames to capture, 0 for unlimited
	MidExecution     bool   // Capture starts on request instead of at launch
	DisableBuffering bool
}

// TraceRequest is a finalized, immutable request to capture a trace. It is
// either an AndroidTraceRequest or a DesktopTraceRequest.
type TraceRequest interface {
	Options() TraceOptions
	Platform() Platform
	// Title is the line shown above the progress log.
	Title() string
}

// AndroidTraceRequest traces an application on an Android device.
type AndroidTraceRequest struct {
	TraceOptions
	Device     string // Device serial
	Target     LaunchTarget
	Arguments  string // Intent arguments
	ClearCache bool
	DisablePcs bool
}

// DesktopTraceRequest traces a local executable.
type DesktopTraceRequest struct {
	TraceOptions
	Executable       string
	Arguments        string
	WorkingDirectory string // Empty when none was given
}

func (r AndroidTraceRequest) Options() TraceOptions { return r.TraceOptions }
func (r AndroidTraceRequest) Platform() Platform    { return Android }

func (r AndroidTraceRequest) Title() string {
	return fmt.Sprintf("Capturing %s trace of %s on %s", r.Api.DisplayName(), r.Target, r.Device)
}

func (r DesktopTraceRequest) Options() TraceOptions { return r.TraceOptions }
func (r DesktopTraceRequest) Platform() Platform    { return Desktop }

func (r DesktopTraceRequest) Title() string {
	return fmt.Sprintf("Capturing %s trace of %s", r.Api.DisplayName(), r.Executable)
}
