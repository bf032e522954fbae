// Package discovery finds the tunnel processes currently running on this
// machine.
//
// Two sources are tried in order. The structured path asks the external
// binary's own status query, which reports pid, port, type, and name
// directly. When that query fails, or parses to zero rows, discovery falls
// back to scanning the OS process table and extracting the same fields from
// raw command lines. Either source failing is never fatal: the caller gets
// an empty list and a logged warning, and the menu keeps running.
package discovery

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/treykane/pitunnel-manager/internal/model"
)

// StatusQuerier is the structured discovery source, satisfied by
// *pitunnel.Client.
type StatusQuerier interface {
	Status(ctx context.Context) ([]model.RunningTunnel, error)
}

// Scanner resolves the set of running tunnel processes. Results are computed
// fresh on every call; nothing is cached between calls.
type Scanner struct {
	status   StatusQuerier
	procs    ProcessLister
	binary   string
	selfName string
}

// NewScanner builds a scanner for the given tunnel binary name. The
// manager's own process name is excluded from fallback scans so the menu
// never lists itself as a tunnel.
func NewScanner(status StatusQuerier, procs ProcessLister, binary string) *Scanner {
	return &Scanner{
		status:   status,
		procs:    procs,
		binary:   filepath.Base(binary),
		selfName: filepath.Base(os.Args[0]),
	}
}

// ListRunning returns every tunnel process observed right now, in source
// order. Two calls with no intervening external change yield equal results.
func (s *Scanner) ListRunning(ctx context.Context) []model.RunningTunnel {
	if s.status != nil {
		tunnels, err := s.status.Status(ctx)
		if err == nil && len(tunnels) > 0 {
			return tunnels
		}
		if err != nil {
			slog.Warn("status query failed, falling back to process table", "error", err)
		}
	}

	if s.procs == nil {
		return nil
	}
	table, err := s.procs.Snapshot(ctx)
	if err != nil {
		slog.Warn("process table query failed", "error", err)
		return nil
	}
	return parseProcessTable(table, s.binary, s.selfName)
}

// FindByPID locates a running tunnel by process id, re-discovering first.
func (s *Scanner) FindByPID(ctx context.Context, pid int) (model.RunningTunnel, bool) {
	for _, t := range s.ListRunning(ctx) {
		if t.PID == pid {
			return t, true
		}
	}
	return model.RunningTunnel{}, false
}
