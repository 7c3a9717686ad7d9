package sink

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFSSinkStubLayout(t *testing.T) {
	root := t.TempDir()
	s := NewFSSink(root)

	ts := time.Date(2026, 7, 31, 14, 5, 9, 0, time.UTC)
	stub, err := s.Stub(ts, "triggers_raw", "full", "trigger")
	if err != nil {
		t.Fatalf("Stub: %v", err)
	}

	want := filepath.Join(root, "triggers_raw_full", "20260731", "20260731140509_trigger")
	if stub != want {
		t.Fatalf("stub = %q, want %q", stub, want)
	}
	if fi, err := os.Stat(filepath.Dir(stub)); err != nil || !fi.IsDir() {
		t.Fatalf("day directory was not created: %v", err)
	}
}

func TestFSSinkWriteRaw(t *testing.T) {
	root := t.TempDir()
	s := NewFSSink(root)
	ts := time.Unix(1700000000, 0)
	stub, err := s.Stub(ts, "timelapse_raw", "y", "frame_")
	if err != nil {
		t.Fatalf("Stub: %v", err)
	}

	path := Suffixed(stub, "_STACK.rawimg")
	payload := []byte{1, 2, 3, 4, 5}
	if err := s.WriteRaw(path, payload); err != nil {
		t.Fatalf("WriteRaw: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("contents = %v, want %v", got, payload)
	}
}

func TestFSSinkEmptyPayload(t *testing.T) {
	root := t.TempDir()
	s := NewFSSink(root)
	path := filepath.Join(root, "empty.rawimg")
	if err := s.WriteRaw(path, nil); err != nil {
		t.Fatalf("WriteRaw with empty payload: %v", err)
	}
}
