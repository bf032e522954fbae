package events

import (
	"testing"
	"time"
)

func TestStoreAppendAndRead(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	s := NewStore()

	evts := []Event{
		{EventType: TypeCreate, Port: "8080", PID: 4211},
		{EventType: TypeTerminate, PID: 4211},
		{EventType: TypeCreate, Port: "9090", PID: 4300},
	}
	for _, evt := range evts {
		if err := s.Append(evt); err != nil {
			t.Fatal(err)
		}
	}

	all, err := s.Read(Query{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 events, got %d", len(all))
	}
	if all[0].Timestamp.IsZero() {
		t.Fatal("append must stamp events")
	}

	creates, err := s.Read(Query{EventType: TypeCreate})
	if err != nil {
		t.Fatal(err)
	}
	if len(creates) != 2 {
		t.Fatalf("expected 2 create events, got %+v", creates)
	}

	byPort, err := s.Read(Query{Port: "9090"})
	if err != nil {
		t.Fatal(err)
	}
	if len(byPort) != 1 || byPort[0].PID != 4300 {
		t.Fatalf("unexpected port filter result: %+v", byPort)
	}
}

func TestStoreReadLimitKeepsNewest(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	s := NewStore()
	for i := 0; i < 5; i++ {
		if err := s.Append(Event{EventType: TypeReload, PID: 100 + i}); err != nil {
			t.Fatal(err)
		}
	}
	got, err := s.Read(Query{Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[1].PID != 104 {
		t.Fatalf("expected the newest two events, got %+v", got)
	}
}

func TestStoreReadMissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	got, err := NewStore().Read(Query{Since: time.Now()})
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatalf("expected nil for a missing journal, got %+v", got)
	}
}
