// Package doctor runs local diagnostics for pitunnel-manager operations.
package doctor

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/treykane/pitunnel-manager/internal/appconfig"
	"github.com/treykane/pitunnel-manager/internal/discovery"
	"github.com/treykane/pitunnel-manager/internal/model"
	"github.com/treykane/pitunnel-manager/internal/pitunnel"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

type Issue struct {
	Severity       Severity `json:"severity"`
	Check          string   `json:"check"`
	Target         string   `json:"target"`
	Message        string   `json:"message"`
	Recommendation string   `json:"recommendation"`
}

type Report struct {
	Issues []Issue `json:"issues"`
}

// Run gathers live inputs and inspects them.
func Run(ctx context.Context) (Report, error) {
	cfg, err := appconfig.Load()
	if err != nil {
		return Report{}, err
	}
	client := pitunnel.New(cfg.Binary)
	binErr := pitunnel.EnsureBinary(cfg.Binary)
	psErr := discovery.EnsurePS()

	var defs []model.PersistentDefinition
	if binErr == nil {
		defs, _ = client.List(ctx)
	}
	scanner := discovery.NewScanner(client, discovery.PSLister{}, cfg.Binary)
	running := scanner.ListRunning(ctx)

	return Inspect(cfg.Binary, binErr, psErr, defs, running), nil
}

// Inspect derives the diagnostic report from already-gathered inputs. Split
// out of Run so checks are testable with synthetic data.
func Inspect(binary string, binErr, psErr error, defs []model.PersistentDefinition, running []model.RunningTunnel) Report {
	var issues []Issue

	if binErr != nil {
		issues = append(issues, Issue{
			Severity:       SeverityHigh,
			Check:          "tunnel-binary",
			Target:         "PATH",
			Message:        binErr.Error(),
			Recommendation: fmt.Sprintf("install the %s client and ensure it is on PATH", binary),
		})
	}
	if psErr != nil {
		issues = append(issues, Issue{
			Severity:       SeverityHigh,
			Check:          "ps-binary",
			Target:         "PATH",
			Message:        "ps not found; process-table fallback discovery is unavailable",
			Recommendation: "install procps (or equivalent) so ps is on PATH",
		})
	}

	issues = append(issues, duplicatePortIssues(defs)...)

	for _, def := range defs {
		if !strings.Contains(def.RawArgs, "--port=") {
			issues = append(issues, Issue{
				Severity:       SeverityMedium,
				Check:          "definition-portless",
				Target:         def.ID,
				Message:        "persistent definition has no --port= argument",
				Recommendation: "remove and recreate the definition with an explicit port",
			})
		}
	}

	for _, t := range running {
		if t.Port == model.PortUnknown {
			issues = append(issues, Issue{
				Severity:       SeverityLow,
				Check:          "running-portless",
				Target:         fmt.Sprintf("pid %d", t.PID),
				Message:        "running tunnel has no parseable --port= flag",
				Recommendation: "this process can never be matched to a persistent definition",
			})
		}
	}

	sort.Slice(issues, func(i, j int) bool {
		ri := severityRank(issues[i].Severity)
		rj := severityRank(issues[j].Severity)
		if ri != rj {
			return ri > rj
		}
		if issues[i].Check != issues[j].Check {
			return issues[i].Check < issues[j].Check
		}
		if issues[i].Target != issues[j].Target {
			return issues[i].Target < issues[j].Target
		}
		return issues[i].Message < issues[j].Message
	})
	return Report{Issues: issues}
}

// duplicatePortIssues flags ports claimed by more than one persistent
// definition. Port/name matching is the only join between live processes
// and the registry, so a duplicated port makes remove and reload act on
// whichever definition happens to sort first.
func duplicatePortIssues(defs []model.PersistentDefinition) []Issue {
	seen := map[string][]string{}
	for _, def := range defs {
		for _, field := range strings.Fields(def.RawArgs) {
			if port, ok := strings.CutPrefix(field, "--port="); ok && port != "" {
				seen[port] = append(seen[port], def.ID)
			}
		}
	}
	var issues []Issue
	for port, ids := range seen {
		if len(ids) < 2 {
			continue
		}
		issues = append(issues, Issue{
			Severity:       SeverityMedium,
			Check:          "duplicate-port",
			Target:         "--port=" + port,
			Message:        fmt.Sprintf("port is claimed by %d persistent definitions (%s)", len(ids), strings.Join(ids, ", ")),
			Recommendation: "use unique ports per definition so process matching is unambiguous",
		})
	}
	return issues
}

func severityRank(s Severity) int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	default:
		return 1
	}
}
