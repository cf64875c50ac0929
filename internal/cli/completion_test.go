package cli

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func executeRoot(t *testing.T, args ...string) string {
	t.Helper()
	root := New(io.Discard, LogInfo).RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		t.Fatalf("riskgraph %s: %v", strings.Join(args, " "), err)
	}
	return out.String()
}

func TestCompletionScripts(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			if out := executeRoot(t, "completion", shell); !strings.Contains(out, "riskgraph") {
				t.Errorf("%s script does not mention riskgraph", shell)
			}
		})
	}
}

func TestScanCompletions(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"directory argument", []string{"__complete", "scan", ""}, []string{":16"}},
		{"graph formats", []string{"__complete", "scan", "--graph", ""}, []string{"dot", "svg", "pdf", "png", ":8"}},
		{"json output", []string{"__complete", "scan", "--output", ""}, []string{"json", ":8"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := executeRoot(t, tt.args...)
			got := strings.Fields(out)
			for _, want := range tt.want {
				if !strings.Contains(" "+strings.Join(got, " ")+" ", " "+want+" ") {
					t.Errorf("completions %q missing %q", out, want)
				}
			}
		})
	}
}
