// Package ui implements the interactive full-screen menu.
//
// The menu is a Bubble Tea program shaped as an explicit mode machine: the
// list screen dispatches one command per iteration (create, remove, refresh,
// reload, quit), the remaining modes gather input or confirmation for a
// pending operation and then return to the list. Every pass through the list
// re-runs discovery, so displayed 1-based indices are only ever valid for
// the table currently on screen.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/treykane/pitunnel-manager/internal/appconfig"
	"github.com/treykane/pitunnel-manager/internal/discovery"
	"github.com/treykane/pitunnel-manager/internal/events"
	"github.com/treykane/pitunnel-manager/internal/model"
	"github.com/treykane/pitunnel-manager/internal/pitunnel"
	"github.com/treykane/pitunnel-manager/internal/reconcile"
	"github.com/treykane/pitunnel-manager/internal/tunnel"
	"github.com/treykane/pitunnel-manager/internal/util"
)

type tickMsg time.Time

type mode int

const (
	modeList mode = iota
	modeCreate
	modeCreateConfirm
	modeRemoveSelect
	modeRemoveConfirm
	modeReloadConfirm
)

// runningLister is the discovery capability the menu needs, satisfied by
// *discovery.Scanner.
type runningLister interface {
	ListRunning(ctx context.Context) []model.RunningTunnel
}

// registryReader reads persistent definitions, satisfied by *pitunnel.Client.
type registryReader interface {
	List(ctx context.Context) ([]model.PersistentDefinition, error)
}

// lifecycle is the operation surface the menu dispatches to, satisfied by
// *tunnel.Manager.
type lifecycle interface {
	Create(spec model.CreateSpec) (int, error)
	RemovePersistent(ctx context.Context, id, port string) error
	Terminate(pid int) error
	ReloadAll(ctx context.Context, defs []model.PersistentDefinition) []model.ReloadOutcome
}

// pendingRemove carries the operator's selection between the select and
// confirm steps of a removal.
type pendingRemove struct {
	proc  model.RunningTunnel
	match model.MatchResult
}

type modelUI struct {
	cfg     appconfig.Config
	scanner runningLister
	defs    registryReader
	mgr     lifecycle
	cmdLine func(args []string) string

	mode     mode
	tunnels  []model.RunningTunnel
	status   string
	showHelp bool
	width    int
	height   int

	form        *createForm
	pendingSpec model.CreateSpec

	removeInput textinput.Model
	removeErr   string
	removal     pendingRemove

	reloadDefs []model.PersistentDefinition
}

func newModel(cfg appconfig.Config, scanner runningLister, defs registryReader, mgr lifecycle, cmdLine func([]string) string) modelUI {
	m := modelUI{cfg: cfg, scanner: scanner, defs: defs, mgr: mgr, cmdLine: cmdLine}
	m.refresh()
	m.status = "Ready. One command per iteration; the list refreshes before every action."
	return m
}

// refresh re-runs discovery. Called before every display pass and after
// every mutating action, so indices shown always belong to the current
// process set.
func (m *modelUI) refresh() {
	m.tunnels = m.scanner.ListRunning(context.Background())
}

// readDefinitions fetches the persistent registry fresh; failures degrade to
// an empty set with a visible warning, never an abort.
func (m *modelUI) readDefinitions() []model.PersistentDefinition {
	defs, err := m.defs.List(context.Background())
	if err != nil {
		m.status = "Could not read persistent tunnels: " + err.Error()
		return nil
	}
	return defs
}

func tickCmd(seconds int) tea.Cmd {
	if seconds <= 0 {
		seconds = util.DefaultRefreshSeconds
	}
	return tea.Tick(time.Duration(seconds)*time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m modelUI) Init() tea.Cmd {
	return tickCmd(m.cfg.UI.RefreshSeconds)
}

func (m modelUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		// Periodic re-discovery only while idling on the list; a pending
		// selection must keep the indices it was made against.
		if m.mode == modeList {
			m.refresh()
		}
		return m, tickCmd(m.cfg.UI.RefreshSeconds)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeList:
			return m.updateList(msg)
		case modeCreate:
			return m.updateCreate(msg)
		case modeCreateConfirm:
			return m.updateCreateConfirm(msg)
		case modeRemoveSelect:
			return m.updateRemoveSelect(msg)
		case modeRemoveConfirm:
			return m.updateRemoveConfirm(msg)
		case modeReloadConfirm:
			return m.updateReloadConfirm(msg)
		}
	}
	return m, nil
}

func (m modelUI) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "r", "3":
		m.refresh()
		m.status = "Tunnel list refreshed."
	case "?":
		m.showHelp = !m.showHelp
	case "c", "1":
		m.form = newCreateForm()
		m.mode = modeCreate
		return m, m.form.fields[fieldPort].Cursor.BlinkCmd()
	case "x", "2":
		m.refresh()
		if len(m.tunnels) == 0 {
			m.status = "No active tunnels to remove."
			break
		}
		ti := textinput.New()
		ti.Placeholder = "tunnel number (0 cancels)"
		ti.CharLimit = 6
		ti.Width = 30
		ti.Focus()
		m.removeInput = ti
		m.removeErr = ""
		m.mode = modeRemoveSelect
		return m, m.removeInput.Cursor.BlinkCmd()
	case "R":
		defs := m.readDefinitions()
		if len(defs) == 0 {
			if m.status == "" || !strings.HasPrefix(m.status, "Could not read") {
				m.status = "No persistent tunnels to reload."
			}
			break
		}
		m.reloadDefs = defs
		m.mode = modeReloadConfirm
	}
	return m, nil
}

func (m modelUI) updateCreate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.mode = modeList
		m.status = "Tunnel creation cancelled."
		return m, nil
	}
	spec, cmd := m.form.update(msg)
	if spec != nil {
		m.pendingSpec = *spec
		m.mode = modeCreateConfirm
	}
	return m, cmd
}

func (m modelUI) updateCreateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		pid, err := m.mgr.Create(m.pendingSpec)
		if err != nil {
			m.status = "Error creating tunnel: " + err.Error()
		} else {
			m.status = fmt.Sprintf("Tunnel created successfully (pid %d).", pid)
		}
		m.refresh()
		m.mode = modeList
	case "n", "N", "esc":
		m.status = "Tunnel creation cancelled."
		m.mode = modeList
	}
	return m, nil
}

func (m modelUI) updateRemoveSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		return m, nil
	case "enter":
		raw := strings.TrimSpace(m.removeInput.Value())
		if raw == "0" {
			// Explicit cancel: back to the menu with zero external calls.
			m.mode = modeList
			return m, nil
		}
		idx, err := strconv.Atoi(raw)
		if err != nil {
			m.removeErr = "Please enter a valid number."
			m.removeInput.SetValue("")
			return m, nil
		}
		if idx < 1 || idx > len(m.tunnels) {
			m.removeErr = "Invalid selection. Please try again."
			m.removeInput.SetValue("")
			return m, nil
		}
		proc := m.tunnels[idx-1]
		m.removal = pendingRemove{proc: proc, match: reconcile.Match(proc, m.readDefinitions())}
		m.mode = modeRemoveConfirm
		return m, nil
	default:
		var cmd tea.Cmd
		m.removeInput, cmd = m.removeInput.Update(msg)
		m.removeErr = ""
		return m, cmd
	}
}

func (m modelUI) updateRemoveConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		proc := m.removal.proc
		if m.removal.match.IsPersistent {
			id := m.removal.match.PersistentID
			if err := m.mgr.RemovePersistent(context.Background(), id, proc.Port); err != nil {
				m.status = "Error removing tunnel: " + err.Error()
			} else {
				m.status = fmt.Sprintf("Persistent tunnel (ID %s) removed and stopped.", id)
			}
		} else {
			if err := m.mgr.Terminate(proc.PID); err != nil {
				m.status = "Error terminating tunnel: " + err.Error()
			} else {
				m.status = fmt.Sprintf("Tunnel with PID %d has been terminated.", proc.PID)
			}
		}
		m.refresh()
		m.mode = modeList
	case "n", "N", "esc":
		m.status = "Operation cancelled."
		m.mode = modeList
	}
	return m, nil
}

func (m modelUI) updateReloadConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		outcomes := m.mgr.ReloadAll(context.Background(), m.reloadDefs)
		failed := 0
		for _, o := range outcomes {
			if !o.OK() {
				failed++
			}
		}
		if failed == 0 {
			m.status = fmt.Sprintf("Reloaded %d persistent tunnel(s).", len(outcomes))
		} else {
			m.status = fmt.Sprintf("Reloaded %d tunnel(s), %d failed; see events journal.", len(outcomes)-failed, failed)
		}
		m.reloadDefs = nil
		m.refresh()
		m.mode = modeList
	case "n", "N", "esc":
		m.status = "Reload cancelled."
		m.reloadDefs = nil
		m.mode = modeList
	}
	return m, nil
}

func (m modelUI) View() string {
	head := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Render("PiTunnel Manager")
	subhead := fmt.Sprintf("tunnels=%d refresh=%ds", len(m.tunnels), clampRefresh(m.cfg.UI.RefreshSeconds))

	list := m.renderPanel("Active Tunnels", m.tunnelTable(), m.effectiveWidth(), lipgloss.Color("63"))

	var action string
	switch m.mode {
	case modeCreate:
		action = m.renderPanel("Create Tunnel", m.form.view(), m.effectiveWidth(), lipgloss.Color("214"))
	case modeCreateConfirm:
		body := "Command to execute:\n\n  " + m.cmdLine(pitunnel.BuildCreateArgs(m.pendingSpec)) + "\n\nCreate tunnel? (y/n)"
		action = m.renderPanel("Confirm Create", body, m.effectiveWidth(), lipgloss.Color("214"))
	case modeRemoveSelect:
		var b strings.Builder
		b.WriteString("Enter the number of the tunnel to remove (or 0 to cancel):\n\n")
		b.WriteString("  " + m.removeInput.View() + "\n")
		if m.removeErr != "" {
			b.WriteString("\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(m.removeErr) + "\n")
		}
		action = m.renderPanel("Remove Tunnel", b.String(), m.effectiveWidth(), lipgloss.Color("203"))
	case modeRemoveConfirm:
		action = m.renderPanel("Confirm Remove", m.removePrompt(), m.effectiveWidth(), lipgloss.Color("203"))
	case modeReloadConfirm:
		var b strings.Builder
		b.WriteString("The following persistent tunnels will be removed and relaunched:\n\n")
		for _, def := range m.reloadDefs {
			b.WriteString(fmt.Sprintf("  ID %-6s %s\n", def.ID, def.RawArgs))
		}
		b.WriteString("\nReload all? (y/n)")
		action = m.renderPanel("Reload Persistent Tunnels", b.String(), m.effectiveWidth(), lipgloss.Color("178"))
	}

	quickHelp := "Keys: c create | x remove | R reload persistent | r refresh | ? help | q quit"
	help := ""
	if m.showHelp {
		help = m.renderPanel("Help", m.helpBlock(), m.effectiveWidth(), lipgloss.Color("244"))
	}
	status := m.renderPanel("Status", m.status, m.effectiveWidth(), lipgloss.Color("205"))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		head,
		subhead,
		quickHelp,
		list,
		action,
		help,
		status,
	)
}

func (m modelUI) tunnelTable() string {
	if len(m.tunnels) == 0 {
		return "No active tunnel processes found."
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-3s %-8s %-8s %-7s %-20s %s\n", "#", "PID", "PORT", "TYPE", "NAME", "COMMAND"))
	for i, t := range m.tunnels {
		b.WriteString(fmt.Sprintf("%-3d %-8d %-8s %-7s %-20s %s\n",
			i+1, t.PID, t.Port, t.Kind, t.Name, util.Truncate(t.RawCommand, 40)))
	}
	return b.String()
}

func (m modelUI) removePrompt() string {
	proc := m.removal.proc
	if m.removal.match.IsPersistent {
		return fmt.Sprintf("Tunnel (PID %d, Port %s) is persistent (ID %s).\nRemove permanently? (y/n)",
			proc.PID, proc.Port, m.removal.match.PersistentID)
	}
	return fmt.Sprintf("Are you sure you want to terminate tunnel PID %d? (y/n)", proc.PID)
}

func (m modelUI) helpBlock() string {
	return strings.Join([]string{
		"  Create: press c (or 1); fill the form, review the command, confirm with y.",
		"  Remove: press x (or 2); pick a 1-based index, 0 cancels.",
		"  Persistent tunnels are removed from the registry and stopped;",
		"  transient ones receive SIGTERM directly.",
		"  Reload: press R to remove and relaunch every persistent tunnel.",
		"  Refresh: press r (or 3); the list also refreshes before every action.",
		"  Quit: press q or Ctrl+C.",
	}, "\n")
}

func (m modelUI) effectiveWidth() int {
	if m.width <= 0 {
		return 100
	}
	return m.width
}

func (m modelUI) renderPanel(title, body string, width int, accent lipgloss.Color) string {
	if width < 24 {
		width = 24
	}
	header := lipgloss.NewStyle().Bold(true).Foreground(accent).Render(title)
	content := strings.TrimSuffix(body, "\n")
	panel := strings.TrimSpace(header + "\n" + content)
	return lipgloss.NewStyle().
		Width(width).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Render(panel)
}

func clampRefresh(seconds int) int {
	if seconds <= 0 {
		return util.DefaultRefreshSeconds
	}
	return seconds
}

// Run launches the interactive menu and blocks until the operator quits.
// A missing tunnel binary is not fatal: discovery falls back to the process
// table and mutating operations surface their own errors in the status line.
func Run() error {
	cfg, err := appconfig.Load()
	if err != nil {
		slog.Warn("failed to load config, using defaults", "error", err)
		cfg = appconfig.Default()
	}
	if err := pitunnel.EnsureBinary(cfg.Binary); err != nil {
		slog.Warn("tunnel binary not found; create/remove operations will fail", "error", err)
	}

	client := pitunnel.New(cfg.Binary)
	scanner := discovery.NewScanner(client, discovery.PSLister{}, cfg.Binary)
	mgr := tunnel.NewManager(client).
		WithJournal(events.NewStore()).
		WithDelays(cfg.SettleDelay(), cfg.PaceDelay())

	p := tea.NewProgram(newModel(cfg, scanner, client, mgr, client.CommandLine), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	fmt.Println("Exiting PiTunnel Manager. Goodbye!")
	return nil
}
