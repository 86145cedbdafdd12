package draft

// filename.go contains the default output file naming used while the user has
// not typed a file name of their own.

import (
	"strings"
	"time"

	"github.com/perfgo/gfxtrace/target"
)

const (
	DefaultTraceName = "trace"
	TraceExtension   = ".gfxtrace"
	traceDateFormat  = "_20060102_1504"
)

// DeriveOutputName returns base followed by the timestamp suffix and the trace
// extension, e.g. "bar_20240131_0915.gfxtrace".
func DeriveOutputName(base string, t time.Time) string {
	if base == "" {
		base = DefaultTraceName
	}
	return base + t.Format(traceDateFormat) + TraceExtension
}

// AndroidBaseName returns the last dot separated component of the package the
// launch target refers to.
func AndroidBaseName(raw string) string {
	pkg := target.Package(target.Resolve(raw))
	return pkg[strings.LastIndex(pkg, ".")+1:]
}

// DesktopBaseName returns the executable file name without directory and
// extension.
func DesktopBaseName(exe string) string {
	if sep := strings.LastIndexAny(exe, `/\`); sep >= 0 {
		exe = exe[sep+1:]
	}
	if ext := strings.LastIndex(exe, "."); ext > 0 {
		exe = exe[:ext]
	}
	return exe
}
