package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestParsePID(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "4211", want: 4211},
		{in: "1", want: 1},
		{in: "0", wantErr: true},
		{in: "", wantErr: true},
		{in: "-5", wantErr: true},
		{in: "12a", wantErr: true},
		{in: "4211 ", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parsePID(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parsePID(%q): expected error, got %d", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parsePID(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parsePID(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := NewRootCommand()
	want := []string{"list", "persistent", "create", "remove", "reload", "doctor", "events"}
	for _, name := range want {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "y\n", want: true},
		{input: "Y\n", want: true},
		{input: "yes\n", want: true},
		{input: "  y  \n", want: true},
		{input: "n\n", want: false},
		{input: "whatever\n", want: false},
		{input: "", want: false},
	}
	for _, tt := range tests {
		cmd := &cobra.Command{}
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetIn(strings.NewReader(tt.input))
		if got := confirm(cmd, "Proceed?"); got != tt.want {
			t.Errorf("confirm with input %q = %v, want %v", tt.input, got, tt.want)
		}
		if !strings.Contains(out.String(), "Proceed?") {
			t.Errorf("prompt not written, got %q", out.String())
		}
	}
}
