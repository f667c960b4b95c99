package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestShouldTrigger(t *testing.T) {
	cases := []struct {
		name string
		evt  fsnotify.Event
		want bool
	}{
		{"empty name", fsnotify.Event{Name: "", Op: fsnotify.Write}, false},
		{"unsupported op", fsnotify.Event{Name: "/tmp/a.json", Op: fsnotify.Chmod}, false},
		{"dot file", fsnotify.Event{Name: "/tmp/.a.json", Op: fsnotify.Write}, false},
		{"editor backup", fsnotify.Event{Name: "/tmp/a.json~", Op: fsnotify.Write}, false},
		{"other extension", fsnotify.Event{Name: "/tmp/notes.txt", Op: fsnotify.Write}, false},
		{"json write", fsnotify.Event{Name: "/tmp/a.json", Op: fsnotify.Write}, true},
		{"compressed xml", fsnotify.Event{Name: "/tmp/a.XML.gz", Op: fsnotify.Create}, true},
		{"manifest remove", fsnotify.Event{Name: "/tmp/respcheck.yaml", Op: fsnotify.Remove}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := shouldTrigger(tc.evt); got != tc.want {
				t.Fatalf("shouldTrigger(%v)=%v want %v", tc.evt, got, tc.want)
			}
		})
	}
}

func TestRun_Validation(t *testing.T) {
	if err := Run(context.Background(), Options{OnChange: func(context.Context) {}}); err == nil {
		t.Fatalf("expected empty dir error")
	}
	if err := Run(context.Background(), Options{Dir: t.TempDir()}); err == nil {
		t.Fatalf("expected nil OnChange error")
	}
}

func TestRun_DebouncesBurst(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := make(chan struct{}, 8)
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Options{
			Dir:      dir,
			Debounce: 100 * time.Millisecond,
			OnChange: func(context.Context) { calls <- struct{}{} },
		})
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(filepath.Join(dir, "case.json"), []byte(`{"n":1}`), 0o600); err != nil {
			t.Fatalf("write err=%v", err)
		}
	}

	select {
	case <-calls:
	case <-time.After(3 * time.Second):
		t.Fatalf("OnChange never ran")
	}
	select {
	case <-calls:
		t.Fatalf("burst should trigger a single OnChange")
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run err=%v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("Run did not stop")
	}
}
