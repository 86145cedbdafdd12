package model

import "time"

// History represents a single recorded trace session.
type History struct {
	// Unique ID for this session (16 random bytes, hex encoded)
	ID string `json:"id"`
	// Timestamp when the session started
	Timestamp time.Time `json:"timestamp"`
	// Command-line arguments (including command name)
	Args []string `json:"args"`
	// Duration of the session
	Duration time.Duration `json:"duration"`
	// Whether the tracer reported a failure
	Failed bool `json:"failed"`
	// Trace request the session was started with
	Request TraceRecord `json:"request"`
	// Artifacts generated during this session
	Artifacts []Artifact `json:"artifacts,omitempty"`
}

// TraceRecord is the serializable form of a TraceRequest.
type TraceRecord struct {
	Platform         Platform `json:"platform"`
	Api              string   `json:"api"`
	Output           string   `json:"output"`
	FrameCount       int      `json:"frame_count,omitempty"`
	MidExecution     bool     `json:"mid_execution,omitempty"`
	DisableBuffering bool     `json:"disable_buffering,omitempty"`
	// Device serial (Android only)
	Device string `json:"device,omitempty"`
	// Launch target (Android) or executable (Desktop)
	Target           string `json:"target"`
	Arguments        string `json:"arguments,omitempty"`
	WorkingDirectory string `json:"working_directory,omitempty"`
	ClearCache       bool   `json:"clear_cache,omitempty"`
	DisablePcs       bool   `json:"disable_pcs,omitempty"`
}

// NewTraceRecord flattens a request for storage.
func NewTraceRecord(req TraceRequest) TraceRecord {
	opts := req.Options()
	rec := TraceRecord{
		Platform:         req.Platform(),
		Api:              opts.Api.String(),
		Output:           opts.Output,
		FrameCount:       opts.FrameCount,
		MidExecution:     opts.MidExecution,
		DisableBuffering: opts.DisableBuffering,
	}
	switch r := req.(type) {
	case AndroidTraceRequest:
		rec.Device = r.Device
		if r.Target != nil {
			rec.Target = r.Target.String()
		}
		rec.Arguments = r.Arguments
		rec.ClearCache = r.ClearCache
		rec.DisablePcs = r.DisablePcs
	case DesktopTraceRequest:
		rec.Target = r.Executable
		rec.Arguments = r.Arguments
		rec.WorkingDirectory = r.WorkingDirectory
	}
	return rec
}

// ArtifactType identifies the type of artifact
type ArtifactType uint8

const (
	ArtifactTypeCapture ArtifactType = iota
	ArtifactTypeLog
)

func (t ArtifactType) String() string {
	switch t {
	case ArtifactTypeCapture:
		return "capture"
	case ArtifactTypeLog:
		return "log"
	}
	return "unknown"
}

// Artifact represents a file generated during a session
type Artifact struct {
	Type ArtifactType `json:"type"`
	Size uint64       `json:"size"`
	// Relative to the run dir for logs, absolute for captures
	File string `json:"file"`
}
