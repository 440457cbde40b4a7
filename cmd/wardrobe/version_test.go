package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionCmd(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantBuild bool
	}{
		{name: "plain", args: nil, wantBuild: false},
		{name: "verbose", args: []string{"--verbose"}, wantBuild: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			cmd := versionCmd()
			cmd.SetOut(&out)
			cmd.SetErr(&out)
			cmd.SetArgs(tt.args)
			if err := cmd.Execute(); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.HasPrefix(out.String(), version+"\n") {
				t.Fatalf("expected output to start with %q, got %q", version, out.String())
			}
			if got := strings.Contains(out.String(), "go: go"); got != tt.wantBuild {
				t.Fatalf("expected build info=%v, got %q", tt.wantBuild, out.String())
			}
		})
	}
}
