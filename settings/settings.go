// Package settings stores the values a user confirmed for their last trace so
// the next trace starts from them.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/perfgo/gfxtrace/draft"
	"github.com/perfgo/gfxtrace/model"
	"gopkg.in/yaml.v3"
)

const fileName = "settings.yaml"

// Settings holds remembered trace defaults. Every key can be overridden from
// the environment.
type Settings struct {
	TraceApi              string `yaml:"trace_api" env:"GFXTRACE_TRACE_API"`
	TraceOutDir           string `yaml:"trace_out_dir" env:"GFXTRACE_TRACE_OUT_DIR" env-default:"."`
	TraceFrameCount       int    `yaml:"trace_frame_count" env:"GFXTRACE_TRACE_FRAME_COUNT"`
	TraceMidExecution     bool   `yaml:"trace_mid_execution" env:"GFXTRACE_TRACE_MID_EXECUTION"`
	TraceWithoutBuffering bool   `yaml:"trace_without_buffering" env:"GFXTRACE_TRACE_WITHOUT_BUFFERING"`

	// Android
	TraceDevice     string `yaml:"trace_device" env:"GFXTRACE_TRACE_DEVICE"`
	TracePackage    string `yaml:"trace_package" env:"GFXTRACE_TRACE_PACKAGE"`
	TraceIntentArgs string `yaml:"trace_intent_args" env:"GFXTRACE_TRACE_INTENT_ARGS"`
	TraceClearCache bool   `yaml:"trace_clear_cache" env:"GFXTRACE_TRACE_CLEAR_CACHE"`
	TraceDisablePcs bool   `yaml:"trace_disable_pcs" env:"GFXTRACE_TRACE_DISABLE_PCS"`

	// Desktop
	TraceExecutable string `yaml:"trace_executable" env:"GFXTRACE_TRACE_EXECUTABLE"`
	TraceArgs       string `yaml:"trace_args" env:"GFXTRACE_TRACE_ARGS"`
	TraceCwd        string `yaml:"trace_cwd" env:"GFXTRACE_TRACE_CWD"`

	// Tools
	ADB    string `yaml:"adb" env:"GFXTRACE_ADB"`
	Tracer string `yaml:"tracer" env:"GFXTRACE_TRACER" env-default:"gapit"`
}

// DefaultPath returns the settings file location.
func DefaultPath() string {
	// Prefer XDG_CONFIG_HOME, then ~/.config
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		if home, err := os.UserHomeDir(); err == nil {
			configHome = filepath.Join(home, ".config")
		}
	}
	if configHome == "" {
		configHome = os.TempDir()
	}
	return filepath.Join(configHome, "gfxtrace", fileName)
}

// Load reads the settings file at path and applies environment overrides. A
// missing file yields the defaults.
func Load(path string) (*Settings, error) {
	var s Settings

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := cleanenv.ReadEnv(&s); err != nil {
			return nil, fmt.Errorf("failed to read settings from environment: %w", err)
		}
		return &s, nil
	}

	if err := cleanenv.ReadConfig(path, &s); err != nil {
		return nil, fmt.Errorf("failed to read settings %s: %w", path, err)
	}
	return &s, nil
}

// Save writes the settings to path, creating its directory.
func (s *Settings) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// NewDraft creates a draft for platform seeded with the remembered values.
func (s *Settings) NewDraft(platform model.Platform, now time.Time) *draft.Draft {
	d := draft.New(platform, now)
	d.OutputDir = s.TraceOutDir
	d.FrameCount = s.TraceFrameCount
	d.MidExecution = s.TraceMidExecution
	d.DisableBuffering = s.TraceWithoutBuffering

	switch platform {
	case model.Android:
		if api := model.ParseApi(s.TraceApi); api != model.ApiUnspecified {
			d.Api = api
		}
		d.Device = s.TraceDevice
		d.Arguments = s.TraceIntentArgs
		d.ClearCache = s.TraceClearCache
		d.DisablePcs = s.TraceDisablePcs
		d.SetTarget(s.TracePackage)
	case model.Desktop:
		d.Arguments = s.TraceArgs
		d.SetExecutable(s.TraceExecutable)
		if s.TraceCwd != "" {
			d.SeedWorkingDir(s.TraceCwd)
		}
	}
	return d
}

// Remember stores the values of a confirmed draft.
func (s *Settings) Remember(d *draft.Draft) {
	s.TraceOutDir = d.OutputDir
	s.TraceFrameCount = d.FrameCount
	s.TraceMidExecution = d.MidExecution
	s.TraceWithoutBuffering = d.DisableBuffering

	switch d.Platform {
	case model.Android:
		s.TraceApi = d.Api.String()
		s.TraceDevice = d.Device
		s.TracePackage = d.Target()
		s.TraceIntentArgs = d.Arguments
		s.TraceClearCache = d.ClearCache
		s.TraceDisablePcs = d.DisablePcs
	case model.Desktop:
		s.TraceExecutable = d.Executable()
		s.TraceArgs = d.Arguments
		s.TraceCwd = d.WorkingDir()
	}
}
