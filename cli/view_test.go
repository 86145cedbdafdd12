package cli

import (
	"reflect"
	"testing"
)

func TestRemoveFirstDashDash(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "empty slice",
			in:   []string{},
			want: []string{},
		},
		{
			name: "starts with --",
			in:   []string{"--", "stats", "-json"},
			want: []string{"stats", "-json"},
		},
		{
			name: "no --",
			in:   []string{"screenshot", "-frame=3"},
			want: []string{"screenshot", "-frame=3"},
		},
		{
			name: "only --",
			in:   []string{"--"},
			want: []string{},
		},
		{
			name: "-- in middle",
			in:   []string{"stats", "--", "-json"},
			want: []string{"stats", "--", "-json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := removeFirstDashDash(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("removeFirstDashDash() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseViewArgs(t *testing.T) {
	tests := []struct {
		name           string
		in             []string
		wantID         string
		wantTracerArgs []string
	}{
		{
			name:           "no args shows the newest run",
			in:             []string{},
			wantID:         "0",
			wantTracerArgs: nil,
		},
		{
			name:           "index 0",
			in:             []string{"0"},
			wantID:         "0",
			wantTracerArgs: []string{},
		},
		{
			name:           "negative index",
			in:             []string{"-3"},
			wantID:         "-3",
			wantTracerArgs: []string{},
		},
		{
			name:           "hex ID",
			in:             []string{"9f2c"},
			wantID:         "9f2c",
			wantTracerArgs: []string{},
		},
		{
			name:           "tracer flag without ID",
			in:             []string{"-json"},
			wantID:         "0",
			wantTracerArgs: []string{"-json"},
		},
		{
			name:           "only -- uses the newest run",
			in:             []string{"--", "stats"},
			wantID:         "0",
			wantTracerArgs: []string{"stats"},
		},
		{
			name:           "ID with verb",
			in:             []string{"9f2c", "stats"},
			wantID:         "9f2c",
			wantTracerArgs: []string{"stats"},
		},
		{
			name:           "negative index with -- and verb flags",
			in:             []string{"-1", "--", "screenshot", "-frame=3"},
			wantID:         "-1",
			wantTracerArgs: []string{"screenshot", "-frame=3"},
		},
		{
			name:           "verb named like a hex ID is taken as the ID",
			in:             []string{"dump"},
			wantID:         "dump",
			wantTracerArgs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotID, gotTracerArgs := parseViewArgs(tt.in)
			if gotID != tt.wantID {
				t.Errorf("parseViewArgs() gotID = %v, want %v", gotID, tt.wantID)
			}
			if !reflect.DeepEqual(gotTracerArgs, tt.wantTracerArgs) {
				t.Errorf("parseViewArgs() gotTracerArgs = %v, want %v", gotTracerArgs, tt.wantTracerArgs)
			}
		})
	}
}
