package pitunnel

import (
	"testing"

	"github.com/treykane/pitunnel-manager/internal/model"
)

func TestParseStatusTable(t *testing.T) {
	out := `
PiTunnel status

+-------+------+--------+----------+
|  PID  | Port | Type   | Name     |
+-------+------+--------+----------+
|  4211 | 8080 | HTTP   | blog     |
|  4300 | 9090 | Custom | -        |
|  bad  | 9999 | HTTP   | ignored  |
+-------+------+--------+----------+
`
	tunnels := parseStatusTable([]byte(out), "pitunnel")
	if len(tunnels) != 2 {
		t.Fatalf("expected 2 tunnels, got %d: %+v", len(tunnels), tunnels)
	}
	first := tunnels[0]
	if first.PID != 4211 || first.Port != "8080" || first.Name != "blog" || first.Kind != model.KindHTTP {
		t.Fatalf("unexpected first row: %+v", first)
	}
	second := tunnels[1]
	if second.PID != 4300 || second.Kind != model.KindCustom || second.Name != model.NameUnnamed {
		t.Fatalf("unexpected second row: %+v", second)
	}
}

func TestParseStatusTable_MalformedYieldsZeroRows(t *testing.T) {
	cases := []struct {
		name string
		out  string
	}{
		{"empty", ""},
		{"no table", "pitunnel: status unavailable\n"},
		{"header only", "+-----+\n| PID | Port | Type | Name |\n+-----+\n"},
		{"too few cells", "| PID | Port | Type | Name |\n| 42 | 8080 |\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := parseStatusTable([]byte(tc.out), "pitunnel"); len(got) != 0 {
				t.Fatalf("expected zero rows, got %+v", got)
			}
		})
	}
}

func TestParseListTable(t *testing.T) {
	out := `
Persistent tunnels:

+----+----------------------------------+---------+
| ID | Arguments                        | Status  |
+----+----------------------------------+---------+
| 1  | --port=8080 --http --name=blog   | enabled |
| 7  | --port=9090 --persist            | enabled |
+----+----------------------------------+---------+
`
	defs := parseListTable([]byte(out))
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d: %+v", len(defs), defs)
	}
	if defs[0].ID != "1" || defs[0].RawArgs != "--port=8080 --http --name=blog" {
		t.Fatalf("unexpected first definition: %+v", defs[0])
	}
	if defs[1].ID != "7" || defs[1].RawArgs != "--port=9090 --persist" {
		t.Fatalf("unexpected second definition: %+v", defs[1])
	}
}

func TestParseListTable_NoHeaderYieldsZeroRows(t *testing.T) {
	out := "| 1 | --port=8080 |\n| 2 | --port=9090 |\n"
	if got := parseListTable([]byte(out)); len(got) != 0 {
		t.Fatalf("rows before the ID header must be ignored, got %+v", got)
	}
}
