package audit

import (
	"path/filepath"
	"testing"

	"github.com/sim-autonomy/adsc/pkg/logx"
)

func openTestTrail(t *testing.T) *Trail {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit.db")
	trail, err := Open(path, logx.NewLogger("debug", "test"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { trail.Close() })
	return trail
}

func TestTrail_RecordAndRecent(t *testing.T) {
	trail := openTestTrail(t)

	trail.Record(Entry{Event: EventEvaluated, Slot: 0, Reason: "case_a"})
	trail.Record(Entry{Event: EventStabilityArmed, Slot: 1, Reason: "case_a"})
	trail.Record(Entry{Event: EventSwitchCancelled})

	entries, err := trail.Recent(10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Recent() returned %d entries, want 3", len(entries))
	}

	// Newest first.
	if entries[0].Event != EventSwitchCancelled {
		t.Errorf("entries[0].Event = %s, want %s", entries[0].Event, EventSwitchCancelled)
	}
	if entries[2].Event != EventEvaluated || entries[2].Slot != 0 {
		t.Errorf("entries[2] = %+v, want the first evaluated entry for slot 0", entries[2])
	}
}

func TestTrail_RecentRespectsLimit(t *testing.T) {
	trail := openTestTrail(t)

	for i := 0; i < 5; i++ {
		trail.Record(Entry{Event: EventEvaluated, Slot: i})
	}

	entries, err := trail.Recent(2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Recent(2) returned %d entries, want 2", len(entries))
	}
	if entries[0].Slot != 4 {
		t.Errorf("entries[0].Slot = %d, want 4 (most recent)", entries[0].Slot)
	}
}
