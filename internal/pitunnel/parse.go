package pitunnel

import (
	"strconv"
	"strings"

	"github.com/treykane/pitunnel-manager/internal/model"
	"github.com/treykane/pitunnel-manager/internal/util"
)

// parseStatusTable extracts running tunnels from the binary's --status
// output: a bordered text table whose data rows carry at least four
// |-delimited cells (pid, port, type, name). Anything that does not match
// that shape is skipped; a malformed table yields zero rows, never an error.
func parseStatusTable(out []byte, binary string) []model.RunningTunnel {
	var tunnels []model.RunningTunnel
	inTable := false
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "+") {
			continue
		}
		if !inTable {
			if strings.Contains(line, "|") && strings.Contains(line, "PID") {
				inTable = true
			}
			continue
		}
		if !strings.Contains(line, "|") {
			continue
		}
		cells := strings.Split(line, "|")
		if len(cells) < 6 { // leading/trailing edge plus four data cells
			continue
		}
		pid, err := strconv.Atoi(strings.TrimSpace(cells[1]))
		if err != nil || pid <= 0 {
			continue
		}
		port := util.DefaultString(strings.TrimSpace(cells[2]), model.PortUnknown)
		kindCell := strings.TrimSpace(cells[3])
		name := strings.TrimSpace(cells[4])
		if name == "-" {
			name = ""
		}
		name = util.DefaultString(name, model.NameUnnamed)

		kind := model.KindCustom
		if strings.EqualFold(kindCell, string(model.KindHTTP)) {
			kind = model.KindHTTP
		}
		tunnels = append(tunnels, model.RunningTunnel{
			PID:        pid,
			Port:       port,
			Name:       name,
			Kind:       kind,
			RawCommand: statusCommand(binary, port, name, kind),
		})
	}
	return tunnels
}

// statusCommand reconstructs a display command line for a tunnel reported by
// the structured status query, which exposes fields but not the raw argv.
func statusCommand(binary, port, name string, kind model.TunnelKind) string {
	parts := []string{binary, "--port=" + port}
	if kind == model.KindHTTP {
		parts = append(parts, "--http")
	}
	if name != model.NameUnnamed {
		parts = append(parts, "--name="+name)
	}
	return strings.Join(parts, " ")
}

// parseListTable extracts persistent definitions from the binary's --list
// output. The table header contains "| ID |"; border rows start with "+";
// each data row needs at least three |-split parts, taking part 1 as the id
// and part 2 as the raw argument string.
func parseListTable(out []byte) []model.PersistentDefinition {
	var defs []model.PersistentDefinition
	inTable := false
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if strings.Contains(line, "| ID |") {
			inTable = true
			continue
		}
		if !inTable || strings.HasPrefix(line, "+") || !strings.Contains(line, "|") {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) < 3 {
			continue
		}
		id := strings.TrimSpace(parts[1])
		args := strings.TrimSpace(parts[2])
		if id == "" {
			continue
		}
		defs = append(defs, model.PersistentDefinition{ID: id, RawArgs: args})
	}
	return defs
}
