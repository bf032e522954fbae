package discovery

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/treykane/pitunnel-manager/internal/model"
)

type fakeStatus struct {
	tunnels []model.RunningTunnel
	err     error
	calls   int
}

func (f *fakeStatus) Status(ctx context.Context) ([]model.RunningTunnel, error) {
	f.calls++
	return f.tunnels, f.err
}

type fakeLister struct {
	table string
	err   error
	calls int
}

func (f *fakeLister) Snapshot(ctx context.Context) (string, error) {
	f.calls++
	return f.table, f.err
}

const fallbackTable = "USER PID %CPU %MEM VSZ RSS TTY STAT START TIME COMMAND\n" +
	"pi 310 0.0 0.1 100 10 ? S 10:00 0:00 pitunnel --port=8080 --http\n"

func TestListRunning_StructuredPathWins(t *testing.T) {
	status := &fakeStatus{tunnels: []model.RunningTunnel{{PID: 42, Port: "8080", Name: "blog", Kind: model.KindHTTP}}}
	procs := &fakeLister{table: fallbackTable}
	s := NewScanner(status, procs, "pitunnel")

	got := s.ListRunning(context.Background())
	if len(got) != 1 || got[0].PID != 42 {
		t.Fatalf("expected structured result, got %+v", got)
	}
	if procs.calls != 0 {
		t.Fatal("process table must not be queried when the status query yields rows")
	}
}

func TestListRunning_ZeroStructuredRowsFallsBack(t *testing.T) {
	status := &fakeStatus{} // succeeds with zero rows
	procs := &fakeLister{table: fallbackTable}
	s := NewScanner(status, procs, "pitunnel")

	got := s.ListRunning(context.Background())
	if len(got) != 1 || got[0].PID != 310 {
		t.Fatalf("expected fallback result, got %+v", got)
	}
}

func TestListRunning_StatusErrorFallsBack(t *testing.T) {
	status := &fakeStatus{err: errors.New("exec: not found")}
	procs := &fakeLister{table: fallbackTable}
	s := NewScanner(status, procs, "pitunnel")

	got := s.ListRunning(context.Background())
	if len(got) != 1 || got[0].Port != "8080" {
		t.Fatalf("expected fallback result, got %+v", got)
	}
}

func TestListRunning_BothSourcesFailingIsEmptyNotFatal(t *testing.T) {
	status := &fakeStatus{err: errors.New("status failed")}
	procs := &fakeLister{err: errors.New("ps failed")}
	s := NewScanner(status, procs, "pitunnel")

	if got := s.ListRunning(context.Background()); len(got) != 0 {
		t.Fatalf("expected empty result, got %+v", got)
	}
}

func TestListRunning_IdempotentWithoutExternalChange(t *testing.T) {
	status := &fakeStatus{err: errors.New("unavailable")}
	procs := &fakeLister{table: fallbackTable +
		"pi 311 0.0 0.1 100 10 ? S 10:00 0:00 pitunnel --port=9090 --name=db\n"}
	s := NewScanner(status, procs, "pitunnel")

	a := s.ListRunning(context.Background())
	b := s.ListRunning(context.Background())
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("expected equal ordered results:\n%+v\n%+v", a, b)
	}
}

func TestFindByPID(t *testing.T) {
	status := &fakeStatus{tunnels: []model.RunningTunnel{
		{PID: 42, Port: "8080"},
		{PID: 43, Port: "9090"},
	}}
	s := NewScanner(status, &fakeLister{}, "pitunnel")

	if got, ok := s.FindByPID(context.Background(), 43); !ok || got.Port != "9090" {
		t.Fatalf("expected pid 43 on port 9090, got %+v ok=%v", got, ok)
	}
	if _, ok := s.FindByPID(context.Background(), 99); ok {
		t.Fatal("expected no match for unknown pid")
	}
}
