// Package draft holds the mutable trace configuration edited before a trace is
// confirmed, decides whether it can be launched and finalizes it into an
// immutable request.
package draft

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/perfgo/gfxtrace/model"
)

// Override records whether a derived field still follows its source or was
// edited by the user.
type Override int

const (
	Derived Override = iota
	UserOverridden
)

func (o Override) String() string {
	if o == UserOverridden {
		return "user-overridden"
	}
	return "derived"
}

// Draft is a possibly incomplete trace configuration. Fields that feed
// derived values are only reachable through methods.
type Draft struct {
	Platform model.Platform
	Api      model.Api

	// Device serial (Android)
	Device string
	// Intent arguments (Android) or command line arguments (Desktop)
	Arguments string

	OutputDir        string
	FrameCount       int
	MidExecution     bool
	DisableBuffering bool

	// Android only
	ClearCache bool
	DisablePcs bool

	target     string
	executable string
	outputFile string
	workingDir string

	outputFileState Override
	workingDirState Override

	created time.Time
}

// New creates an empty draft for the platform. now is the timestamp used in
// derived output file names for the lifetime of the draft.
func New(platform model.Platform, now time.Time) *Draft {
	d := &Draft{
		Platform: platform,
		Api:      model.ApiGLES,
		created:  now,
	}
	if platform == model.Desktop {
		d.Api = model.ApiVulkan
	}
	d.deriveOutputFile()
	return d
}

// Created returns the draft creation time.
func (d *Draft) Created() time.Time {
	return d.created
}

// Target returns the raw Android launch target.
func (d *Draft) Target() string {
	return d.target
}

// SetTarget sets the Android launch target and re-derives the output file name
// unless the user has overridden it.
func (d *Draft) SetTarget(raw string) {
	d.target = raw
	d.deriveOutputFile()
}

// Executable returns the desktop executable path.
func (d *Draft) Executable() string {
	return d.executable
}

// SetExecutable sets the desktop executable and re-derives the output file
// name and the working directory unless the user has overridden them.
func (d *Draft) SetExecutable(exe string) {
	d.executable = exe
	d.deriveOutputFile()
	d.deriveWorkingDir()
}

// OutputFile returns the output file name.
func (d *Draft) OutputFile() string {
	return d.outputFile
}

// OutputFileState reports whether the output file name is still derived.
func (d *Draft) OutputFileState() Override {
	return d.outputFileState
}

// SetOutputFile records a user edit of the output file name. Derivation stops
// until ResetOutputFile is called.
func (d *Draft) SetOutputFile(name string) {
	d.outputFile = name
	d.outputFileState = UserOverridden
}

// ResetOutputFile discards the user's file name and derives it again.
func (d *Draft) ResetOutputFile() {
	d.outputFileState = Derived
	d.deriveOutputFile()
}

// WorkingDir returns the desktop working directory.
func (d *Draft) WorkingDir() string {
	return d.workingDir
}

// WorkingDirState reports whether the working directory is still derived.
func (d *Draft) WorkingDirState() Override {
	return d.workingDirState
}

// SetWorkingDir records a user edit of the working directory.
func (d *Draft) SetWorkingDir(dir string) {
	d.workingDir = dir
	d.workingDirState = UserOverridden
}

// SeedWorkingDir writes the working directory without marking it as edited,
// e.g. when restoring a remembered value. A later executable change may
// replace it.
func (d *Draft) SeedWorkingDir(dir string) {
	if d.workingDirState == Derived {
		d.workingDir = dir
	}
}

// ResetWorkingDir discards the user's working directory and derives it again.
func (d *Draft) ResetWorkingDir() {
	d.workingDirState = Derived
	d.workingDir = ""
	d.deriveWorkingDir()
}

// OutputPath returns the full path of the capture file.
func (d *Draft) OutputPath() string {
	if d.OutputDir == "" {
		return d.outputFile
	}
	return filepath.Join(d.OutputDir, d.outputFile)
}

func (d *Draft) deriveOutputFile() {
	if d.outputFileState == UserOverridden {
		return
	}
	d.outputFile = DeriveOutputName(rulesFor(d.Platform).baseName(d), d.created)
}

// deriveWorkingDir uses the executable's directory when it exists.
func (d *Draft) deriveWorkingDir() {
	if d.workingDirState == UserOverridden || d.Platform != model.Desktop {
		return
	}
	if !strings.ContainsAny(d.executable, `/\`) {
		return
	}
	dir := filepath.Dir(d.executable)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	d.workingDir = dir
}
