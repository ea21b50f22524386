package history

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	logx "remindo/pkg/logx"
)

func openTestStore(t *testing.T) (Store, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "remindo.db")
	st, err := Open(Config{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st, filepath.Join(dir, "remindo.notifications.jsonl")
}

func TestOpenDisabled(t *testing.T) {
	t.Parallel()
	for _, driver := range []string{"", "none"} {
		st, err := Open(Config{Driver: driver}, logx.Nop())
		if err != nil {
			t.Fatalf("Open(%q): %v", driver, err)
		}
		if st != nil {
			t.Fatalf("Open(%q) should return a nil store", driver)
		}
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Parallel()
	if _, err := Open(Config{Driver: "bogus"}, logx.Nop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestAppendNotificationWritesJSONL(t *testing.T) {
	t.Parallel()
	st, notifPath := openTestStore(t)

	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := st.AppendNotification(ctx, Entry{
			At:     at.Add(time.Duration(i) * time.Minute),
			TaskID: int64(i + 1),
			Kind:   "start-reminder",
			Title:  "standup",
			Text:   "Reminder: 'standup' starts in 5 minutes!",
		})
		if err != nil {
			t.Fatalf("AppendNotification: %v", err)
		}
	}

	f, err := os.Open(notifPath)
	if err != nil {
		t.Fatalf("open notifications file: %v", err)
	}
	defer f.Close()

	var lines int
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("line %d not valid JSON: %v", lines, err)
		}
		lines++
	}
	if lines != 3 {
		t.Fatalf("wrote %d lines, want 3", lines)
	}
}

func TestDedupRoundTrip(t *testing.T) {
	t.Parallel()
	st, _ := openTestStore(t)
	ctx := context.Background()

	until := time.Now().Add(time.Hour)
	if err := st.PutDedup(ctx, "calendar:abc", until); err != nil {
		t.Fatalf("PutDedup: %v", err)
	}

	got, ok, err := st.GetDedup(ctx, "calendar:abc")
	if err != nil || !ok {
		t.Fatalf("GetDedup = %v, %v, %v", got, ok, err)
	}
	if got.UnixMilli() != until.UnixMilli() {
		t.Fatalf("until = %v, want %v", got, until)
	}

	if _, ok, _ := st.GetDedup(ctx, "calendar:other"); ok {
		t.Fatal("unknown key should miss")
	}
}

func TestDedupExpires(t *testing.T) {
	t.Parallel()
	st, _ := openTestStore(t)
	ctx := context.Background()

	if err := st.PutDedup(ctx, "calendar:old", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("PutDedup: %v", err)
	}
	if _, ok, _ := st.GetDedup(ctx, "calendar:old"); ok {
		t.Fatal("expired key should miss")
	}
}

func TestDedupSurvivesReopen(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "remindo.db")
	cfg := Config{Driver: "file", Path: path}
	ctx := context.Background()

	st, err := Open(cfg, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	until := time.Now().Add(time.Hour)
	if err := st.PutDedup(ctx, "calendar:abc", until); err != nil {
		t.Fatalf("PutDedup: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	st2, err := Open(cfg, logx.Nop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st2.Close()
	if _, ok, _ := st2.GetDedup(ctx, "calendar:abc"); !ok {
		t.Fatal("dedup key lost across reopen")
	}
}
