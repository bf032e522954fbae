package discovery

import (
	"context"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/treykane/pitunnel-manager/internal/model"
)

// ProcessLister abstracts the OS process-table query so the fallback scan can
// be unit-tested with synthetic ps output.
type ProcessLister interface {
	Snapshot(ctx context.Context) (string, error)
}

// PSLister is the production lister backed by ps(1).
type PSLister struct{}

// Snapshot returns the full process table, one line per process.
func (PSLister) Snapshot(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, "ps", "aux").Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// EnsurePS checks that ps is available on PATH.
func EnsurePS() error {
	_, err := exec.LookPath("ps")
	return err
}

var (
	portPattern = regexp.MustCompile(`--port=(\d+)`)
	namePattern = regexp.MustCompile(`--name=(\S+)`)
)

// psFieldCount is the ps aux column count: the first ten columns are
// fixed-width process attributes, everything from column eleven onward is
// the command line.
const psFieldCount = 11

// terminal-wrapper commands whose argument lists routinely echo a tunnel
// command line without being one (pagers, multiplexers, shells re-execing).
var wrapperCommands = map[string]bool{
	"sh":     true,
	"bash":   true,
	"zsh":    true,
	"screen": true,
	"tmux":   true,
	"script": true,
	"watch":  true,
}

// parseProcessTable scans raw ps aux output for tunnel processes.
//
// A line is kept only when the command's first token is exactly the tunnel
// binary (by basename, so /usr/local/bin/pitunnel counts but a wrapper named
// mypitunnelwrapper does not), the process is not defunct, and the line does
// not belong to this manager or to a terminal-wrapper process.
func parseProcessTable(table, binary, selfName string) []model.RunningTunnel {
	var tunnels []model.RunningTunnel
	for _, line := range strings.Split(table, "\n") {
		fields := strings.Fields(line)
		if len(fields) < psFieldCount {
			continue
		}
		pid, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}
		command := strings.Join(fields[psFieldCount-1:], " ")
		if strings.Contains(command, "<defunct>") || strings.ContainsRune(fields[7], 'Z') {
			continue
		}
		if selfName != "" && strings.Contains(command, selfName) {
			continue
		}
		token := filepath.Base(fields[psFieldCount-1])
		if wrapperCommands[token] || token != binary {
			continue
		}

		port := model.PortUnknown
		if m := portPattern.FindStringSubmatch(command); m != nil {
			port = m[1]
		}
		name := model.NameUnnamed
		if m := namePattern.FindStringSubmatch(command); m != nil {
			name = m[1]
		}
		kind := model.KindCustom
		if strings.Contains(command, "--http") {
			kind = model.KindHTTP
		}
		tunnels = append(tunnels, model.RunningTunnel{
			PID:        pid,
			Port:       port,
			Name:       name,
			Kind:       kind,
			RawCommand: command,
		})
	}
	return tunnels
}
