// Package pitunnel wraps the external tunnel binary behind a typed client.
//
// This package does not implement any tunneling itself. It shells out to the
// binary named in the application config (default "pitunnel") for every
// operation: querying running tunnels (--status), listing persistent
// definitions (--list), removing a definition (--remove), stopping a live
// tunnel by port (--stop=<port>), and launching new tunnel processes.
//
// Command invocation styles differ by purpose:
//
//   - Queries and checked mutations run synchronously through the Runner
//     interface, so tests can substitute canned output for real subprocesses.
//
//   - Tunnel launches are detached: the child gets its own session, discarded
//     stdio, and is released immediately. Launched tunnels outlive the manager
//     by design.
//
//   - Attached runs put the binary in the foreground under a PTY so the
//     operator can watch its live output; Ctrl+C ends the tunnel.
//
// All arguments are passed via argv (not shell interpolation), so ids and
// ports scraped from table output cannot inject shell syntax.
package pitunnel

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"

	"github.com/creack/pty"

	"github.com/treykane/pitunnel-manager/internal/model"
)

// Client invokes the external tunnel binary. The zero value is not useful;
// use New (or NewWithRunner in tests).
type Client struct {
	bin string
	run Runner
}

// New creates a client for the given binary name or path.
func New(bin string) *Client {
	return &Client{bin: bin, run: execRunner{}}
}

// NewWithRunner creates a client with a custom Runner, for tests.
func NewWithRunner(bin string, r Runner) *Client {
	return &Client{bin: bin, run: r}
}

// Binary returns the configured binary name.
func (c *Client) Binary() string { return c.bin }

// EnsureBinary checks that the tunnel binary is available on PATH. Called
// early during startup so a missing install surfaces as a clear message
// instead of a confusing exec error mid-operation.
func EnsureBinary(bin string) error {
	if _, err := exec.LookPath(bin); err != nil {
		return fmt.Errorf("%s binary not found in PATH", bin)
	}
	return nil
}

// Status runs the structured running-tunnel query. A non-zero exit or
// unparseable output is returned as an error so discovery can fall back to
// the process table.
func (c *Client) Status(ctx context.Context) ([]model.RunningTunnel, error) {
	out, err := c.run.Output(ctx, c.bin, "--status")
	if err != nil {
		return nil, fmt.Errorf("%s --status: %w", c.bin, err)
	}
	return parseStatusTable(out, c.bin), nil
}

// List returns the persistent definitions stored by the binary. Empty or
// unparseable table output yields an empty slice, not an error.
func (c *Client) List(ctx context.Context) ([]model.PersistentDefinition, error) {
	out, err := c.run.Output(ctx, c.bin, "--list")
	if err != nil {
		return nil, fmt.Errorf("%s --list: %w", c.bin, err)
	}
	return parseListTable(out), nil
}

// Remove deletes a persistent definition by its stored id.
func (c *Client) Remove(ctx context.Context, id string) error {
	if err := c.run.Run(ctx, c.bin, "--remove", id); err != nil {
		return fmt.Errorf("%s --remove %s: %w", c.bin, id, err)
	}
	return nil
}

// StopPort asks the binary to stop the live tunnel on the given port.
// Issued alongside Remove: removing a definition deletes the registry entry,
// stopping terminates the process, and the binary does not promise that one
// implies the other.
func (c *Client) StopPort(ctx context.Context, port string) error {
	if err := c.run.Run(ctx, c.bin, "--stop="+port); err != nil {
		return fmt.Errorf("%s --stop=%s: %w", c.bin, port, err)
	}
	return nil
}

// BuildCreateArgs assembles the argv (minus the binary) for a create operation:
// --port=<n> [--http] [--name=<s>] [--persist]. Exposed separately so the
// UI can show the exact command before the operator confirms it.
func BuildCreateArgs(spec model.CreateSpec) []string {
	args := []string{"--port=" + spec.Port}
	if spec.Kind == model.KindHTTP {
		args = append(args, "--http")
	}
	if spec.Name != "" {
		args = append(args, "--name="+spec.Name)
	}
	if spec.Persist {
		args = append(args, "--persist")
	}
	return args
}

// CommandLine renders the full command for display/confirmation.
func (c *Client) CommandLine(args []string) string {
	line := c.bin
	for _, a := range args {
		line += " " + a
	}
	return line
}

// LaunchDetached starts the binary with the given args as a fire-and-forget
// child: its own session, no stdio, released immediately. Returns the child
// pid. The process is expected to outlive the manager session.
func (c *Client) LaunchDetached(args []string) (int, error) {
	cmd := exec.Command(c.bin, args...)
	cmd.Stdin = nil
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("launch %s: %w", c.bin, err)
	}
	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		return pid, fmt.Errorf("release %s pid %d: %w", c.bin, pid, err)
	}
	return pid, nil
}

// RunAttached runs the binary in the foreground inside a pseudo-terminal,
// streaming its output to the operator's terminal and forwarding keystrokes
// in. The PTY keeps the binary's own progress display working even though
// its stdout is not a real terminal. Blocks until the process exits; if the
// context is cancelled mid-session the process is killed.
func (c *Client) RunAttached(ctx context.Context, args []string) error {
	cmd := exec.Command(c.bin, args...)
	f, err := pty.Start(cmd)
	if err != nil {
		return fmt.Errorf("start %s attached: %w", c.bin, err)
	}
	defer f.Close()

	go func() {
		_, _ = io.Copy(f, os.Stdin)
	}()
	_, _ = io.Copy(os.Stdout, f)

	if ctx.Err() != nil {
		_ = cmd.Process.Kill()
	}
	return cmd.Wait()
}
