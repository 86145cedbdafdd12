package draft

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var stamp = time.Date(2024, time.January, 31, 9, 5, 59, 0, time.UTC)

func TestDeriveOutputName(t *testing.T) {
	require.Equal(t, "trace_20240131_0905.gfxtrace", DeriveOutputName("", stamp))
	require.Equal(t, "bar_20240131_0905.gfxtrace", DeriveOutputName(AndroidBaseName("com.foo.bar"), stamp))

	for _, ts := range []time.Time{{}, stamp, time.Now(), time.Date(1999, 12, 31, 23, 59, 0, 0, time.Local)} {
		name := DeriveOutputName("", ts)
		require.True(t, strings.HasPrefix(name, "trace_"), name)
		require.True(t, strings.HasSuffix(name, ".gfxtrace"), name)
	}
}

func TestAndroidBaseName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"com.foo.bar", "bar"},
		{"bar", "bar"},
		{"", ""},
		{"com.foo.", ""},
		{"android.intent.action.MAIN:com.example.game/.MainActivity", "game"},
		{"a:b", "a:b"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, AndroidBaseName(tt.in))
		})
	}
}

func TestDesktopBaseName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/usr/bin/vkcube", "vkcube"},
		{`C:\games\doom.exe`, "doom"},
		{"./build/app.bin", "app"},
		{"/opt/.hidden", ".hidden"},
		{"archive.tar.gz", "archive.tar"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, DesktopBaseName(tt.in))
		})
	}
}
