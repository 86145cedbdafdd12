package draft

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/perfgo/gfxtrace/model"
	"github.com/perfgo/gfxtrace/target"
)

// ErrNotReady is returned when finalizing a draft that IsReady rejects.
var ErrNotReady = errors.New("trace configuration is not ready")

// Names of required fields as reported by Missing.
const (
	FieldApi        = "api"
	FieldOutputFile = "output file"
	FieldOutputDir  = "output directory"
	FieldFrameCount = "frame count"
	FieldDevice     = "device"
	FieldTarget     = "launch target"
	FieldExecutable = "executable"
)

type requirement struct {
	field string
	met   func(d *Draft) bool
}

// platformRules is the per platform part of readiness, naming and
// finalization.
type platformRules struct {
	required []requirement
	baseName func(d *Draft) string
	finalize func(d *Draft, opts model.TraceOptions) model.TraceRequest
}

var sharedRequirements = []requirement{
	{FieldApi, func(d *Draft) bool { return d.Api != model.ApiUnspecified }},
	{FieldOutputFile, func(d *Draft) bool { return d.outputFile != "" }},
	{FieldOutputDir, func(d *Draft) bool { return d.OutputDir != "" }},
	// 0 captures until stopped
	{FieldFrameCount, func(d *Draft) bool { return d.FrameCount >= 0 }},
}

var rules = map[model.Platform]platformRules{
	model.Android: {
		required: []requirement{
			{FieldDevice, func(d *Draft) bool { return d.Device != "" }},
			{FieldTarget, func(d *Draft) bool { return d.target != "" }},
		},
		baseName: func(d *Draft) string { return AndroidBaseName(d.target) },
		finalize: finalizeAndroid,
	},
	model.Desktop: {
		required: []requirement{
			{FieldExecutable, func(d *Draft) bool { return d.executable != "" }},
		},
		baseName: func(d *Draft) string { return DesktopBaseName(d.executable) },
		finalize: finalizeDesktop,
	},
}

func rulesFor(p model.Platform) platformRules {
	if r, ok := rules[p]; ok {
		return r
	}
	return platformRules{
		required: []requirement{{"platform", func(*Draft) bool { return false }}},
		baseName: func(*Draft) string { return "" },
	}
}

// Missing returns the names of the required fields that are still empty, in a
// stable order. It returns nil for a ready draft.
func Missing(d *Draft) []string {
	var missing []string
	for _, reqs := range [][]requirement{sharedRequirements, rulesFor(d.Platform).required} {
		for _, r := range reqs {
			if !r.met(d) {
				missing = append(missing, r.field)
			}
		}
	}
	return missing
}

// IsReady reports whether every field required by the draft's platform is
// filled in. It has no side effects and is meant to be called after every
// edit.
func IsReady(d *Draft) bool {
	return len(Missing(d)) == 0
}

// MidExecutionWarning reports the experimental combination of a GLES trace on
// Android that does not start from the beginning.
func MidExecutionWarning(d *Draft) bool {
	return d.Platform == model.Android && d.Api == model.ApiGLES && d.MidExecution
}

// PrecompiledShaderWarning reports that pre-compiled shaders are left enabled
// on Android, which replay does not support.
func PrecompiledShaderWarning(d *Draft) bool {
	return d.Platform == model.Android && !d.DisablePcs
}

// Finalize builds the immutable request from a ready draft. Callers must check
// IsReady first; a draft that is not ready yields ErrNotReady.
func Finalize(d *Draft) (model.TraceRequest, error) {
	if missing := Missing(d); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing or invalid %s", ErrNotReady, strings.Join(missing, ", "))
	}
	opts := model.TraceOptions{
		Api:              d.Api,
		Output:           filepath.Join(d.OutputDir, d.outputFile),
		FrameCount:       d.FrameCount,
		MidExecution:     d.MidExecution,
		DisableBuffering: d.DisableBuffering,
	}
	return rulesFor(d.Platform).finalize(d, opts), nil
}

func finalizeAndroid(d *Draft, opts model.TraceOptions) model.TraceRequest {
	return model.AndroidTraceRequest{
		TraceOptions: opts,
		Device:       d.Device,
		Target:       target.Resolve(d.target),
		Arguments:    d.Arguments,
		ClearCache:   d.ClearCache,
		DisablePcs:   d.DisablePcs,
	}
}

func finalizeDesktop(d *Draft, opts model.TraceOptions) model.TraceRequest {
	return model.DesktopTraceRequest{
		TraceOptions:     opts,
		Executable:       d.executable,
		Arguments:        d.Arguments,
		WorkingDirectory: d.workingDir,
	}
}
