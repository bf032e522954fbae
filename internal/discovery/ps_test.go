package discovery

import (
	"reflect"
	"testing"

	"github.com/treykane/pitunnel-manager/internal/model"
)

const psHeader = "USER  PID  %CPU %MEM VSZ RSS TTY STAT START TIME COMMAND\n"

func TestParseProcessTable_ExactCommandToken(t *testing.T) {
	table := psHeader +
		"pi  101  0.0 0.1 100 10 ?  S  10:00 0:00 pitunnel --port=8080 --http --name=blog\n" +
		"pi  102  0.0 0.1 100 10 ?  S  10:00 0:00 /usr/local/bin/pitunnel --port=9090\n" +
		"pi  103  0.0 0.1 100 10 ?  S  10:00 0:00 mypitunnelwrapper --port=7070\n" +
		"pi  104  0.0 0.1 100 10 ?  S  10:00 0:00 tail -f /var/log/pitunnel.log\n"

	tunnels := parseProcessTable(table, "pitunnel", "pitunnel-manager")
	if len(tunnels) != 2 {
		t.Fatalf("expected 2 tunnels, got %d: %+v", len(tunnels), tunnels)
	}
	if tunnels[0].PID != 101 || tunnels[1].PID != 102 {
		t.Fatalf("unexpected pids: %+v", tunnels)
	}
}

func TestParseProcessTable_FieldExtraction(t *testing.T) {
	table := psHeader +
		"pi  101  0.0 0.1 100 10 ?  S  10:00 0:00 pitunnel --port=8080 --http --name=blog\n" +
		"pi  102  0.0 0.1 100 10 ?  S  10:00 0:00 pitunnel --persist\n"

	tunnels := parseProcessTable(table, "pitunnel", "pitunnel-manager")
	if len(tunnels) != 2 {
		t.Fatalf("expected 2 tunnels, got %+v", tunnels)
	}
	first := tunnels[0]
	if first.Port != "8080" || first.Name != "blog" || first.Kind != model.KindHTTP {
		t.Fatalf("unexpected parse of first line: %+v", first)
	}
	second := tunnels[1]
	if second.Port != model.PortUnknown || second.Name != model.NameUnnamed || second.Kind != model.KindCustom {
		t.Fatalf("expected Unknown/Unnamed/Custom fallbacks, got %+v", second)
	}
	if first.RawCommand != "pitunnel --port=8080 --http --name=blog" {
		t.Fatalf("unexpected raw command: %q", first.RawCommand)
	}
}

func TestParseProcessTable_Exclusions(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"defunct marker", "pi 201 0.0 0.1 100 10 ? Z 10:00 0:00 pitunnel --port=8080 <defunct>\n"},
		{"zombie state", "pi 202 0.0 0.1 100 10 ? Zs 10:00 0:00 pitunnel --port=8080\n"},
		{"manager itself", "pi 203 0.0 0.1 100 10 ? S 10:00 0:00 pitunnel-manager\n"},
		{"wrapper shell", "pi 204 0.0 0.1 100 10 ? S 10:00 0:00 sh -c pitunnel --port=8080\n"},
		{"multiplexer", "pi 205 0.0 0.1 100 10 ? S 10:00 0:00 tmux new -d pitunnel --port=8080\n"},
		{"too few fields", "pi 206 pitunnel\n"},
		{"non-numeric pid", "pi abc 0.0 0.1 100 10 ? S 10:00 0:00 pitunnel --port=8080\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseProcessTable(psHeader+tt.line, "pitunnel", "pitunnel-manager"); len(got) != 0 {
				t.Fatalf("line should be excluded, got %+v", got)
			}
		})
	}
}

func TestParseProcessTable_Idempotent(t *testing.T) {
	table := psHeader +
		"pi  101  0.0 0.1 100 10 ?  S  10:00 0:00 pitunnel --port=8080 --http\n" +
		"pi  102  0.0 0.1 100 10 ?  S  10:00 0:00 pitunnel --port=9090 --name=db\n"

	a := parseProcessTable(table, "pitunnel", "pitunnel-manager")
	b := parseProcessTable(table, "pitunnel", "pitunnel-manager")
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same input must parse identically:\n%+v\n%+v", a, b)
	}
	if len(a) != 2 || a[0].PID != 101 || a[1].PID != 102 {
		t.Fatalf("expected order-preserving results, got %+v", a)
	}
}
