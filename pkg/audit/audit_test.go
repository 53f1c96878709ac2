package audit

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestLogger(t *testing.T, rotation RotationConfig) (*FileLogger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit.log")
	logger, err := NewFileLogger(path, rotation)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	t.Cleanup(func() { logger.Close() })
	return logger, path
}

func TestLogAndQueryRoundTrip(t *testing.T) {
	logger, _ := newTestLogger(t, RotationConfig{})

	ev := NewEvent("alice", "s1", OpProgram).
		WithState(4, 1, 500000).
		WithSuccess().
		WithDuration(120 * time.Millisecond)
	if err := logger.Log(ev); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := logger.Query(Filter{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	got := events[0]
	if got.User != "alice" || got.Switch != "s1" || got.Operation != OpProgram {
		t.Errorf("event = %+v", got)
	}
	if got.Entries != 4 || got.Groups != 1 || got.Threshold != 500000 {
		t.Errorf("state = entries %d groups %d threshold %d", got.Entries, got.Groups, got.Threshold)
	}
	if !got.Success {
		t.Error("event should be marked successful")
	}
}

func TestQueryFilters(t *testing.T) {
	logger, _ := newTestLogger(t, RotationConfig{})

	logger.Log(NewEvent("alice", "s1", OpProgram).WithSuccess())
	logger.Log(NewEvent("alice", "s2", OpProgram).WithError(errors.New("dial timeout")))
	logger.Log(NewEvent("bob", "s1", OpProgram).WithSuccess())

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"by switch", Filter{Switch: "s1"}, 2},
		{"by user", Filter{User: "bob"}, 1},
		{"failures only", Filter{FailureOnly: true}, 1},
		{"successes only", Filter{SuccessOnly: true}, 2},
		{"limit", Filter{Limit: 2}, 2},
		{"offset past end", Filter{Offset: 10}, 0},
		{"no match", Filter{Switch: "s9"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := logger.Query(tt.filter)
			if err != nil {
				t.Fatalf("Query failed: %v", err)
			}
			if len(events) != tt.want {
				t.Errorf("got %d events, want %d", len(events), tt.want)
			}
		})
	}
}

func TestQueryTimeWindow(t *testing.T) {
	logger, _ := newTestLogger(t, RotationConfig{})

	old := NewEvent("alice", "s1", OpProgram).WithSuccess()
	old.Timestamp = time.Now().Add(-48 * time.Hour)
	logger.Log(old)
	logger.Log(NewEvent("alice", "s1", OpProgram).WithSuccess())

	events, err := logger.Query(Filter{StartTime: time.Now().Add(-time.Hour)})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("got %d events in window, want 1", len(events))
	}
}

func TestQuerySkipsMalformedLines(t *testing.T) {
	logger, path := newTestLogger(t, RotationConfig{})
	logger.Log(NewEvent("alice", "s1", OpProgram).WithSuccess())

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString("{not json\n")
	f.Close()

	logger.Log(NewEvent("alice", "s2", OpProgram).WithSuccess())

	events, err := logger.Query(Filter{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("got %d events, want 2 (malformed line skipped)", len(events))
	}
}

func TestRotation(t *testing.T) {
	logger, path := newTestLogger(t, RotationConfig{MaxSize: 1, MaxBackups: 2})

	// Every Log after the first exceeds MaxSize and triggers a rotation.
	for i := 0; i < 5; i++ {
		if err := logger.Log(NewEvent("alice", "s1", OpProgram).WithSuccess()); err != nil {
			t.Fatalf("Log %d failed: %v", i, err)
		}
	}

	matches, err := filepath.Glob(path + ".*")
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) == 0 {
		t.Error("no rotated files created")
	}
	if len(matches) > 2 {
		t.Errorf("%d rotated files retained, want at most 2", len(matches))
	}
}

func TestDefaultLoggerNoopWhenUnset(t *testing.T) {
	if err := Log(NewEvent("alice", "s1", OpProgram)); err != nil {
		t.Errorf("Log without a default logger should be a no-op, got %v", err)
	}
	events, err := Query(Filter{})
	if err != nil {
		t.Errorf("Query without a default logger failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("got %d events, want 0", len(events))
	}
}
