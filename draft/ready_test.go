package draft

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/perfgo/gfxtrace/model"
	"github.com/stretchr/testify/require"
)

// field toggles one required draft field between empty and filled.
type field struct {
	name string
	set  func(d *Draft, filled bool)
}

var (
	apiField = field{FieldApi, func(d *Draft, filled bool) {
		d.Api = model.ApiUnspecified
		if filled {
			d.Api = model.ApiVulkan
		}
	}}
	outputFileField = field{FieldOutputFile, func(d *Draft, filled bool) {
		if filled {
			d.SetOutputFile("out.gfxtrace")
		} else {
			d.SetOutputFile("")
		}
	}}
	outputDirField = field{FieldOutputDir, func(d *Draft, filled bool) {
		d.OutputDir = ""
		if filled {
			d.OutputDir = "/captures"
		}
	}}
	frameCountField = field{FieldFrameCount, func(d *Draft, filled bool) {
		d.FrameCount = -1
		if filled {
			d.FrameCount = 0
		}
	}}
	deviceField = field{FieldDevice, func(d *Draft, filled bool) {
		d.Device = ""
		if filled {
			d.Device = "emulator-5554"
		}
	}}
	targetField = field{FieldTarget, func(d *Draft, filled bool) {
		d.target = ""
		if filled {
			d.target = "com.example.game"
		}
	}}
	executableField = field{FieldExecutable, func(d *Draft, filled bool) {
		d.executable = ""
		if filled {
			d.executable = "/usr/bin/vkcube"
		}
	}}
)

func TestIsReadyExhaustive(t *testing.T) {
	platforms := map[model.Platform][]field{
		model.Android: {apiField, outputFileField, outputDirField, frameCountField, deviceField, targetField},
		model.Desktop: {apiField, outputFileField, outputDirField, frameCountField, executableField},
	}

	for platform, fields := range platforms {
		for mask := 0; mask < 1<<len(fields); mask++ {
			d := New(platform, stamp)
			want := true
			var wantMissing []string
			for i, f := range fields {
				filled := mask&(1<<i) != 0
				f.set(d, filled)
				want = want && filled
				if !filled {
					wantMissing = append(wantMissing, f.name)
				}
			}
			require.Equal(t, want, IsReady(d), "platform %s mask %b", platform, mask)
			require.Equal(t, wantMissing, Missing(d), "platform %s mask %b", platform, mask)
		}
	}
}

func TestFinalizeRejectsNegativeFrameCount(t *testing.T) {
	d := New(model.Desktop, stamp)
	d.OutputDir = "/captures"
	d.SetExecutable("vkcube")
	d.FrameCount = -5

	req, err := Finalize(d)
	require.ErrorIs(t, err, ErrNotReady)
	require.ErrorContains(t, err, FieldFrameCount)
	require.Nil(t, req)

	d.FrameCount = 5
	req, err = Finalize(d)
	require.NoError(t, err)
	require.Equal(t, 5, req.Options().FrameCount)
}

func TestIsReadyIgnoresOtherPlatformFields(t *testing.T) {
	d := New(model.Desktop, stamp)
	d.OutputDir = "/captures"
	d.Device = "emulator-5554"
	d.target = "com.example.game"
	require.False(t, IsReady(d))
	require.Equal(t, []string{FieldExecutable}, Missing(d))
}

func TestUnknownPlatformIsNeverReady(t *testing.T) {
	d := New(model.Platform("fuchsia"), stamp)
	d.OutputDir = "/captures"
	require.False(t, IsReady(d))

	_, err := Finalize(d)
	require.ErrorIs(t, err, ErrNotReady)
}

func TestMidExecutionWarning(t *testing.T) {
	tests := []struct {
		name         string
		platform     model.Platform
		api          model.Api
		midExecution bool
		want         bool
	}{
		{"android gles mid-execution", model.Android, model.ApiGLES, true, true},
		{"android gles from beginning", model.Android, model.ApiGLES, false, false},
		{"android vulkan mid-execution", model.Android, model.ApiVulkan, true, false},
		{"desktop gles mid-execution", model.Desktop, model.ApiGLES, true, false},
		{"desktop vulkan mid-execution", model.Desktop, model.ApiVulkan, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(tt.platform, stamp)
			d.Api = tt.api
			d.MidExecution = tt.midExecution
			require.Equal(t, tt.want, MidExecutionWarning(d))
		})
	}
}

func TestPrecompiledShaderWarning(t *testing.T) {
	d := New(model.Android, stamp)
	require.True(t, PrecompiledShaderWarning(d))
	d.DisablePcs = true
	require.False(t, PrecompiledShaderWarning(d))
	require.False(t, PrecompiledShaderWarning(New(model.Desktop, stamp)))
}

func TestFinalizeNotReady(t *testing.T) {
	d := New(model.Android, stamp)
	_, err := Finalize(d)
	require.True(t, errors.Is(err, ErrNotReady))
	require.Contains(t, err.Error(), FieldDevice)
	require.Contains(t, err.Error(), FieldTarget)
}

func TestFinalizeAndroid(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   model.LaunchTarget
	}{
		{"bare launch", "com.example.game", model.BareLaunch{Target: "com.example.game"}},
		{"activity launch", "android.intent.action.MAIN:com.example.game/.Main",
			model.ActivityLaunch{Action: "android.intent.action.MAIN", Package: "com.example.game", Activity: ".Main"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(model.Android, stamp)
			d.Device = "emulator-5554"
			d.SetTarget(tt.target)
			d.Arguments = "--es mode bench"
			d.OutputDir = "/captures"
			d.FrameCount = 10
			d.MidExecution = true
			d.DisableBuffering = true
			d.ClearCache = true

			req, err := Finalize(d)
			require.NoError(t, err)

			want := model.AndroidTraceRequest{
				TraceOptions: model.TraceOptions{
					Api:              model.ApiGLES,
					Output:           filepath.Join("/captures", "game_20240131_0905.gfxtrace"),
					FrameCount:       10,
					MidExecution:     true,
					DisableBuffering: true,
				},
				Device:     "emulator-5554",
				Target:     tt.want,
				Arguments:  "--es mode bench",
				ClearCache: true,
			}
			if diff := cmp.Diff(model.TraceRequest(want), req); diff != "" {
				t.Errorf("Finalize() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFinalizeDesktop(t *testing.T) {
	d := New(model.Desktop, stamp)
	d.SetExecutable("/opt/does-not-exist/vkcube")
	d.Arguments = "--validate"
	d.OutputDir = "/captures"
	d.FrameCount = 3

	req, err := Finalize(d)
	require.NoError(t, err)
	desktop, ok := req.(model.DesktopTraceRequest)
	require.True(t, ok)
	require.Equal(t, model.Desktop, req.Platform())
	require.Equal(t, "/opt/does-not-exist/vkcube", desktop.Executable)
	require.Equal(t, "--validate", desktop.Arguments)
	require.Equal(t, "", desktop.WorkingDirectory)

	d.SetWorkingDir("/also/missing")
	req, err = Finalize(d)
	require.NoError(t, err)
	require.Equal(t, "/also/missing", req.(model.DesktopTraceRequest).WorkingDirectory)
}

func TestFinalizeEchoesCommonFields(t *testing.T) {
	android := New(model.Android, stamp)
	android.Device = "serial"
	android.SetTarget("com.foo")

	desktop := New(model.Desktop, stamp)
	desktop.SetExecutable("/bin/app")

	for _, d := range []*Draft{android, desktop} {
		for _, mid := range []bool{false, true} {
			for _, noBuffer := range []bool{false, true} {
				d.OutputDir = "/out"
				d.FrameCount = 42
				d.MidExecution = mid
				d.DisableBuffering = noBuffer

				req, err := Finalize(d)
				require.NoError(t, err)
				require.Equal(t, model.TraceOptions{
					Api:              d.Api,
					Output:           d.OutputPath(),
					FrameCount:       42,
					MidExecution:     mid,
					DisableBuffering: noBuffer,
				}, req.Options())
			}
		}
	}
}
