package runner

// args.go contains utilities for building gapit trace command lines from
// trace requests.

import (
	"fmt"
	"strings"

	"al.essio.dev/pkg/shellescape"
	"github.com/perfgo/gfxtrace/model"
)

// DefaultTracer is the tracer binary used when none is configured.
const DefaultTracer = "gapit"

// Options contains settings that are not part of the request itself.
type Options struct {
	ADB string // Path to adb, empty to let the tracer search for it
}

// BuildTraceArgs builds the gapit trace arguments for a request.
func BuildTraceArgs(req model.TraceRequest, opts Options) []string {
	common := req.Options()
	args := []string{"trace"}

	if api := common.Api.String(); api != "" {
		args = append(args, "-api", api)
	}
	args = append(args, "-out", common.Output)

	// Add frame limit - 0 means capture until stopped
	if common.FrameCount > 0 {
		args = append(args, "-capture-frames", fmt.Sprintf("%d", common.FrameCount))
	}
	if common.MidExecution {
		args = append(args, "-start-defer")
	}
	if common.DisableBuffering {
		args = append(args, "-no-buffer")
	}

	switch r := req.(type) {
	case model.AndroidTraceRequest:
		args = append(args, "-gapii-device", r.Device)
		if opts.ADB != "" {
			args = append(args, "-adb", opts.ADB)
		}
		if r.ClearCache {
			args = append(args, "-clear-cache")
		}
		// gapit disables pre-compiled shaders unless told otherwise
		args = append(args, fmt.Sprintf("-disable-pcs=%t", r.DisablePcs))
		if r.Arguments != "" {
			args = append(args, "-additionalargs", r.Arguments)
		}
		switch t := r.Target.(type) {
		case model.ActivityLaunch:
			args = append(args,
				"-android-package", t.Package,
				"-android-activity", t.Activity,
				"-android-action", t.Action,
				t.Package,
			)
		case model.BareLaunch:
			args = append(args, t.Target)
		}
	case model.DesktopTraceRequest:
		args = append(args, "-gapii-device", "host", "-local-app", r.Executable)
		if r.Arguments != "" {
			args = append(args, "-local-args", r.Arguments)
		}
		if r.WorkingDirectory != "" {
			args = append(args, "-local-workingdir", r.WorkingDirectory)
		}
		args = append(args, r.Executable)
	}

	return args
}

// BuildTraceCommand builds the full tracer command line as a shell string,
// for display and for copy-pasting into a terminal.
func BuildTraceCommand(tracer string, req model.TraceRequest, opts Options) string {
	if tracer == "" {
		tracer = DefaultTracer
	}
	args := BuildTraceArgs(req, opts)

	parts := make([]string, 0, len(args)+1)
	parts = append(parts, shellescape.Quote(tracer))
	for _, arg := range args {
		parts = append(parts, shellescape.Quote(arg))
	}

	return strings.Join(parts, " ")
}
