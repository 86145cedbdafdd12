package runner

import (
	"testing"

	"github.com/perfgo/gfxtrace/model"
	"github.com/stretchr/testify/require"
)

func TestBuildTraceArgs(t *testing.T) {
	tests := []struct {
		name string
		req  model.TraceRequest
		opts Options
		want []string
	}{
		{
			name: "android bare launch",
			req: model.AndroidTraceRequest{
				TraceOptions: model.TraceOptions{Api: model.ApiGLES, Output: "/out/game.gfxtrace"},
				Device:       "emulator-5554",
				Target:       model.BareLaunch{Target: "com.example.game"},
			},
			want: []string{"trace", "-api", "gles", "-out", "/out/game.gfxtrace",
				"-gapii-device", "emulator-5554", "-disable-pcs=false", "com.example.game"},
		},
		{
			name: "android activity launch with every option",
			req: model.AndroidTraceRequest{
				TraceOptions: model.TraceOptions{
					Api:              model.ApiVulkan,
					Output:           "/out/game.gfxtrace",
					FrameCount:       25,
					MidExecution:     true,
					DisableBuffering: true,
				},
				Device:     "R58M",
				Target:     model.ActivityLaunch{Action: "android.intent.action.MAIN", Package: "com.example.game", Activity: ".Main"},
				Arguments:  "--es level 3",
				ClearCache: true,
				DisablePcs: true,
			},
			opts: Options{ADB: "/sdk/platform-tools/adb"},
			want: []string{"trace", "-api", "vulkan", "-out", "/out/game.gfxtrace",
				"-capture-frames", "25", "-start-defer", "-no-buffer",
				"-gapii-device", "R58M", "-adb", "/sdk/platform-tools/adb", "-clear-cache", "-disable-pcs=true",
				"-additionalargs", "--es level 3",
				"-android-package", "com.example.game", "-android-activity", ".Main",
				"-android-action", "android.intent.action.MAIN", "com.example.game"},
		},
		{
			name: "desktop without working directory",
			req: model.DesktopTraceRequest{
				TraceOptions: model.TraceOptions{Api: model.ApiVulkan, Output: "/out/cube.gfxtrace"},
				Executable:   "/usr/bin/vkcube",
			},
			opts: Options{ADB: "/ignored/adb"},
			want: []string{"trace", "-api", "vulkan", "-out", "/out/cube.gfxtrace",
				"-gapii-device", "host", "-local-app", "/usr/bin/vkcube", "/usr/bin/vkcube"},
		},
		{
			name: "desktop with arguments and working directory",
			req: model.DesktopTraceRequest{
				TraceOptions:     model.TraceOptions{Api: model.ApiVulkan, Output: "/out/cube.gfxtrace", FrameCount: 1},
				Executable:       "/usr/bin/vkcube",
				Arguments:        "--c 100",
				WorkingDirectory: "/tmp",
			},
			want: []string{"trace", "-api", "vulkan", "-out", "/out/cube.gfxtrace", "-capture-frames", "1",
				"-gapii-device", "host", "-local-app", "/usr/bin/vkcube", "-local-args", "--c 100",
				"-local-workingdir", "/tmp", "/usr/bin/vkcube"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, BuildTraceArgs(tt.req, tt.opts))
		})
	}
}

func TestBuildTraceCommand(t *testing.T) {
	req := model.DesktopTraceRequest{
		TraceOptions: model.TraceOptions{Api: model.ApiVulkan, Output: "/my captures/cube.gfxtrace"},
		Executable:   "/usr/bin/vkcube",
		Arguments:    "--c 100",
	}

	want := "gapit trace -api vulkan -out '/my captures/cube.gfxtrace' -gapii-device host " +
		"-local-app /usr/bin/vkcube -local-args '--c 100' /usr/bin/vkcube"
	require.Equal(t, want, BuildTraceCommand("", req, Options{}))
}
