package doctor

import (
	"errors"
	"testing"

	"github.com/treykane/pitunnel-manager/internal/model"
)

func TestInspectCleanSetup(t *testing.T) {
	defs := []model.PersistentDefinition{
		{ID: "1", RawArgs: "--port=8080 --http"},
		{ID: "2", RawArgs: "--port=9090"},
	}
	running := []model.RunningTunnel{{PID: 42, Port: "8080"}}

	report := Inspect("pitunnel", nil, nil, defs, running)
	if len(report.Issues) != 0 {
		t.Fatalf("expected no issues, got %+v", report.Issues)
	}
}

func TestInspectMissingBinaries(t *testing.T) {
	report := Inspect("pitunnel", errors.New("pitunnel binary not found in PATH"), errors.New("ps not found"), nil, nil)
	if len(report.Issues) != 2 {
		t.Fatalf("expected 2 issues, got %+v", report.Issues)
	}
	for _, issue := range report.Issues {
		if issue.Severity != SeverityHigh {
			t.Fatalf("missing binaries must be high severity, got %+v", issue)
		}
	}
}

func TestInspectDuplicatePorts(t *testing.T) {
	defs := []model.PersistentDefinition{
		{ID: "1", RawArgs: "--port=8080 --http"},
		{ID: "2", RawArgs: "--port=8080 --name=other"},
		{ID: "3", RawArgs: "--port=9090"},
	}
	report := Inspect("pitunnel", nil, nil, defs, nil)
	if len(report.Issues) != 1 {
		t.Fatalf("expected one duplicate-port issue, got %+v", report.Issues)
	}
	issue := report.Issues[0]
	if issue.Check != "duplicate-port" || issue.Severity != SeverityMedium || issue.Target != "--port=8080" {
		t.Fatalf("unexpected issue: %+v", issue)
	}
}

func TestInspectPortlessEntries(t *testing.T) {
	defs := []model.PersistentDefinition{{ID: "9", RawArgs: "--http --name=stray"}}
	running := []model.RunningTunnel{{PID: 77, Port: model.PortUnknown}}

	report := Inspect("pitunnel", nil, nil, defs, running)
	if len(report.Issues) != 2 {
		t.Fatalf("expected 2 issues, got %+v", report.Issues)
	}
	// Sorted by severity: the medium definition issue precedes the low
	// running-process issue.
	if report.Issues[0].Check != "definition-portless" || report.Issues[1].Check != "running-portless" {
		t.Fatalf("unexpected order: %+v", report.Issues)
	}
}
