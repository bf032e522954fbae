// Package tunnel implements the lifecycle operations of the manager:
// creating tunnels, removing or terminating them, and the bulk reload of
// every persistent definition.
package tunnel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/treykane/pitunnel-manager/internal/events"
	"github.com/treykane/pitunnel-manager/internal/model"
	"github.com/treykane/pitunnel-manager/internal/pitunnel"
	"github.com/treykane/pitunnel-manager/internal/util"
)

// Registry abstracts the external binary operations the lifecycle layer
// depends on, so tests can run against a fake instead of real subprocesses.
// Satisfied by *pitunnel.Client.
type Registry interface {
	List(ctx context.Context) ([]model.PersistentDefinition, error)
	Remove(ctx context.Context, id string) error
	StopPort(ctx context.Context, port string) error
	LaunchDetached(args []string) (int, error)
}

// Signaller delivers a graceful termination signal to a process id.
type Signaller interface {
	Terminate(pid int) error
}

// SigtermSignaller is the production Signaller. Delivery is attempted once;
// failure is reported to the caller, never retried.
type SigtermSignaller struct{}

func (SigtermSignaller) Terminate(pid int) error {
	if pid <= 0 {
		return fmt.Errorf("invalid pid %d", pid)
	}
	p, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find process %d: %w", pid, err)
	}
	if err := p.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal pid %d: %w", pid, err)
	}
	return nil
}

// Recorder appends operation events to the journal. Satisfied by
// *events.Store; nil disables journaling.
type Recorder interface {
	Append(evt events.Event) error
}

// Manager coordinates tunnel lifecycle operations. It holds no state of its
// own: every operation acts on freshly supplied inputs, and nothing is
// cached between calls.
type Manager struct {
	reg     Registry
	sig     Signaller
	journal Recorder
	settle  time.Duration
	pace    time.Duration
}

// NewManager creates a manager with the default signaller, no journal, and
// default reload pacing.
func NewManager(reg Registry) *Manager {
	return &Manager{
		reg:    reg,
		sig:    SigtermSignaller{},
		settle: util.DefaultReloadSettle,
		pace:   util.DefaultLaunchPace,
	}
}

// WithSignaller replaces the termination signaller, for tests.
func (m *Manager) WithSignaller(s Signaller) *Manager {
	m.sig = s
	return m
}

// WithJournal enables operation journaling.
func (m *Manager) WithJournal(j Recorder) *Manager {
	m.journal = j
	return m
}

// WithDelays overrides the reload settle and launch pacing delays.
func (m *Manager) WithDelays(settle, pace time.Duration) *Manager {
	m.settle = settle
	m.pace = pace
	return m
}

// Create launches a new tunnel process from the operator's choices. The
// child is detached and outlives the manager; the returned pid is the
// launched process id.
func (m *Manager) Create(spec model.CreateSpec) (int, error) {
	if err := util.ValidatePortString(spec.Port); err != nil {
		return 0, err
	}
	pid, err := m.reg.LaunchDetached(pitunnel.BuildCreateArgs(spec))
	if err != nil {
		return 0, err
	}
	m.record(events.Event{
		EventType: events.TypeCreate,
		Port:      spec.Port,
		Name:      spec.Name,
		PID:       pid,
	})
	return pid, nil
}

// RemovePersistent deletes a persistent definition and stops its live
// process. Both commands are issued even if the first fails: remove deletes
// the registry entry, stop terminates the process, and the binary does not
// guarantee that removal auto-stops anything.
func (m *Manager) RemovePersistent(ctx context.Context, id, port string) error {
	removeErr := m.reg.Remove(ctx, id)
	stopErr := m.reg.StopPort(ctx, port)
	if err := errors.Join(removeErr, stopErr); err != nil {
		return err
	}
	m.record(events.Event{
		EventType:    events.TypeRemove,
		Port:         port,
		PersistentID: id,
	})
	return nil
}

// Terminate sends a graceful termination signal to a transient tunnel
// process.
func (m *Manager) Terminate(pid int) error {
	if err := m.sig.Terminate(pid); err != nil {
		return err
	}
	m.record(events.Event{EventType: events.TypeTerminate, PID: pid})
	return nil
}

// ReloadAll removes every supplied persistent definition and then relaunches
// each from its saved arguments. Per-definition failures are collected in
// the outcomes, never aborting the pass. A settle delay separates the
// removals from the first relaunch, and launches are paced so simultaneous
// start-ups do not contend; both delays are synchronous by design, matching
// the one-operation-at-a-time model of the menu.
//
// With zero definitions the pass performs no external calls at all.
func (m *Manager) ReloadAll(ctx context.Context, defs []model.PersistentDefinition) []model.ReloadOutcome {
	if len(defs) == 0 {
		return nil
	}
	outcomes := make([]model.ReloadOutcome, len(defs))
	for i, def := range defs {
		outcomes[i] = model.ReloadOutcome{ID: def.ID, RawArgs: def.RawArgs}
		if err := m.reg.Remove(ctx, def.ID); err != nil {
			outcomes[i].RemoveErr = err.Error()
			slog.Warn("reload: remove failed", "id", def.ID, "error", err)
		}
	}

	if m.settle > 0 {
		time.Sleep(m.settle)
	}

	for i, def := range defs {
		if i > 0 && m.pace > 0 {
			time.Sleep(m.pace)
		}
		args := strings.Fields(def.RawArgs)
		pid, err := m.reg.LaunchDetached(args)
		if err != nil {
			outcomes[i].LaunchErr = err.Error()
			slog.Warn("reload: relaunch failed", "id", def.ID, "error", err)
			continue
		}
		m.record(events.Event{
			EventType:    events.TypeReload,
			PersistentID: def.ID,
			PID:          pid,
			Message:      def.RawArgs,
		})
	}
	return outcomes
}

func (m *Manager) record(evt events.Event) {
	if m.journal == nil {
		return
	}
	if err := m.journal.Append(evt); err != nil {
		slog.Warn("failed to journal operation", "type", evt.EventType, "error", err)
	}
}
