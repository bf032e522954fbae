// Package cli provides the command-line interface for pitunnel-manager.
package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/treykane/pitunnel-manager/internal/appconfig"
	"github.com/treykane/pitunnel-manager/internal/discovery"
	"github.com/treykane/pitunnel-manager/internal/doctor"
	"github.com/treykane/pitunnel-manager/internal/events"
	"github.com/treykane/pitunnel-manager/internal/model"
	"github.com/treykane/pitunnel-manager/internal/pitunnel"
	"github.com/treykane/pitunnel-manager/internal/reconcile"
	"github.com/treykane/pitunnel-manager/internal/tunnel"
	"github.com/treykane/pitunnel-manager/internal/ui"
	"github.com/treykane/pitunnel-manager/internal/util"
)

// NewRootCommand creates the root cobra command. Without a subcommand the
// binary runs the interactive menu.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "pitunnel-manager",
		Short: "Terminal manager for pitunnel processes and persistent tunnels",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ui.Run()
		},
	}

	root.AddCommand(
		newListCmd(),
		newPersistentCmd(),
		newCreateCmd(),
		newRemoveCmd(),
		newReloadCmd(),
		newDoctorCmd(),
		newEventsCmd(),
	)
	return root
}

// deps bundles the live collaborators a subcommand needs.
type deps struct {
	cfg     appconfig.Config
	client  *pitunnel.Client
	scanner *discovery.Scanner
	mgr     *tunnel.Manager
}

func buildDeps() (deps, error) {
	cfg, err := appconfig.Load()
	if err != nil {
		return deps{}, err
	}
	client := pitunnel.New(cfg.Binary)
	return deps{
		cfg:     cfg,
		client:  client,
		scanner: discovery.NewScanner(client, discovery.PSLister{}, cfg.Binary),
		mgr: tunnel.NewManager(client).
			WithJournal(events.NewStore()).
			WithDelays(cfg.SettleDelay(), cfg.PaceDelay()),
	}, nil
}

func newListCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List running tunnel processes",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDeps()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			tunnels := d.scanner.ListRunning(ctx)
			defs, _ := d.client.List(ctx)

			type row struct {
				model.RunningTunnel
				model.MatchResult
			}
			rows := make([]row, 0, len(tunnels))
			for _, t := range tunnels {
				rows = append(rows, row{t, reconcile.Match(t, defs)})
			}

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-8s %-8s %-7s %-20s %-10s %s\n", "PID", "PORT", "TYPE", "NAME", "PERSISTENT", "COMMAND")
			for _, r := range rows {
				fmt.Fprintf(cmd.OutOrStdout(), "%-8d %-8s %-7s %-20s %-10s %s\n",
					r.PID, r.Port, r.Kind, r.Name, util.EmptyDash(r.PersistentID), util.Truncate(r.RawCommand, 48))
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "(no active tunnel processes)")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")
	return cmd
}

func newPersistentCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "persistent",
		Short: "List persistent tunnel definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDeps()
			if err != nil {
				return err
			}
			defs, err := d.client.List(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(defs)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s\n", "ID", "ARGUMENTS")
			for _, def := range defs {
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s\n", def.ID, def.RawArgs)
			}
			if len(defs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "(no persistent tunnels)")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")
	return cmd
}

func newCreateCmd() *cobra.Command {
	var (
		port    string
		name    string
		custom  bool
		persist bool
		attach  bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Launch a new tunnel",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := util.ValidatePortString(port); err != nil {
				return err
			}
			d, err := buildDeps()
			if err != nil {
				return err
			}
			if err := pitunnel.EnsureBinary(d.cfg.Binary); err != nil {
				return err
			}
			spec := model.CreateSpec{Port: port, Kind: model.KindHTTP, Name: name, Persist: persist}
			if custom {
				spec.Kind = model.KindCustom
			}
			if attach {
				// Foreground run: the operator watches the tunnel's own
				// output and Ctrl+C ends it. Nothing is detached.
				return d.client.RunAttached(cmd.Context(), pitunnel.BuildCreateArgs(spec))
			}
			pid, err := d.mgr.Create(spec)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "started %s pid=%d\n", d.client.CommandLine(pitunnel.BuildCreateArgs(spec)), pid)
			return nil
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "local port to expose (required)")
	cmd.Flags().StringVar(&name, "name", "", "tunnel name / subdomain")
	cmd.Flags().BoolVar(&custom, "custom", false, "create a custom tunnel instead of HTTP")
	cmd.Flags().BoolVar(&persist, "persist", false, "store the tunnel as a persistent definition")
	cmd.Flags().BoolVar(&attach, "attach", false, "run in the foreground under a PTY instead of detaching")
	_ = cmd.MarkFlagRequired("port")
	return cmd
}

func newRemoveCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "remove <pid>",
		Short: "Remove or terminate a running tunnel by pid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := parsePID(args[0])
			if err != nil {
				return err
			}
			d, err := buildDeps()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			proc, ok := d.scanner.FindByPID(ctx, pid)
			if !ok {
				return fmt.Errorf("no running tunnel with pid %d", pid)
			}
			defs, _ := d.client.List(ctx)
			match := reconcile.Match(proc, defs)

			if match.IsPersistent {
				if !yes && !confirm(cmd, fmt.Sprintf("Tunnel pid %d (port %s) is persistent (ID %s). Remove permanently?", proc.PID, proc.Port, match.PersistentID)) {
					fmt.Fprintln(cmd.OutOrStdout(), "Operation cancelled.")
					return nil
				}
				if err := d.mgr.RemovePersistent(ctx, match.PersistentID, proc.Port); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Persistent tunnel (ID %s) removed and stopped.\n", match.PersistentID)
				return nil
			}

			if !yes && !confirm(cmd, fmt.Sprintf("Terminate tunnel pid %d?", proc.PID)) {
				fmt.Fprintln(cmd.OutOrStdout(), "Operation cancelled.")
				return nil
			}
			if err := d.mgr.Terminate(proc.PID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Tunnel with PID %d has been terminated.\n", proc.PID)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}

func newReloadCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reload",
		Short: "Remove and relaunch every persistent tunnel",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDeps()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			defs, err := d.client.List(ctx)
			if err != nil {
				return err
			}
			if len(defs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No persistent tunnels to reload.")
				return nil
			}
			for _, def := range defs {
				fmt.Fprintf(cmd.OutOrStdout(), "ID %-6s %s\n", def.ID, def.RawArgs)
			}
			if !yes && !confirm(cmd, fmt.Sprintf("Reload all %d persistent tunnel(s)?", len(defs))) {
				fmt.Fprintln(cmd.OutOrStdout(), "Reload cancelled.")
				return nil
			}
			for _, o := range d.mgr.ReloadAll(ctx, defs) {
				switch {
				case o.OK():
					fmt.Fprintf(cmd.OutOrStdout(), "[ OK ] ID %s relaunched\n", o.ID)
				case o.RemoveErr != "":
					fmt.Fprintf(cmd.OutOrStdout(), "[FAIL] ID %s remove: %s\n", o.ID, o.RemoveErr)
				default:
					fmt.Fprintf(cmd.OutOrStdout(), "[FAIL] ID %s relaunch: %s\n", o.ID, o.LaunchErr)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}

func newDoctorCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose the local tunnel setup",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := doctor.Run(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			if len(report.Issues) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No issues found.")
				return nil
			}
			for _, issue := range report.Issues {
				fmt.Fprintf(cmd.OutOrStdout(), "[%-6s] %-20s %-20s %s\n", strings.ToUpper(string(issue.Severity)), issue.Check, issue.Target, issue.Message)
				fmt.Fprintf(cmd.OutOrStdout(), "         hint: %s\n", issue.Recommendation)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")
	return cmd
}

func newEventsCmd() *cobra.Command {
	var (
		limit     int
		eventType string
	)
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show recent lifecycle operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			evts, err := events.NewStore().Read(events.Query{EventType: eventType, Limit: limit})
			if err != nil {
				return err
			}
			if len(evts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "(no recorded events)")
				return nil
			}
			for _, evt := range evts {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-9s port=%-6s pid=%-7d id=%-6s %s\n",
					evt.Timestamp.Format("2006-01-02 15:04:05"), evt.EventType,
					util.EmptyDash(evt.Port), evt.PID, util.EmptyDash(evt.PersistentID), evt.Message)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum events to show")
	cmd.Flags().StringVar(&eventType, "type", "", "filter by event type (create, remove, terminate, reload)")
	return cmd
}

func parsePID(s string) (int, error) {
	pid := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("pid must be numeric: %q", s)
		}
		pid = pid*10 + int(r-'0')
	}
	if pid <= 0 {
		return 0, fmt.Errorf("pid must be positive: %q", s)
	}
	return pid, nil
}

// confirm asks a y/n question on the command's input stream. Anything that
// does not start with "y" counts as no.
func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s (y/n): ", prompt)
	sc := bufio.NewScanner(cmd.InOrStdin())
	if !sc.Scan() {
		return false
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(sc.Text())), "y")
}
