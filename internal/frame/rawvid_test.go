package frame

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestRawVidRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.rawvid")

	const w, h = 4, 3
	frames := [][]byte{
		{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
		{12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1},
	}
	if err := WriteRawVid(path, w, h, frames); err != nil {
		t.Fatalf("WriteRawVid: %v", err)
	}

	rv, err := OpenRawVid(path, w, h, 25, 500)
	if err != nil {
		t.Fatalf("OpenRawVid: %v", err)
	}
	defer rv.Close()

	if rv.FrameCount() != 2 {
		t.Fatalf("FrameCount() = %d, want 2", rv.FrameCount())
	}

	dst := make([]byte, w*h)
	for i, want := range frames {
		utc, err := rv.Fetch(dst)
		if err != nil {
			t.Fatalf("Fetch %d: %v", i, err)
		}
		wantUTC := 500 + float64(i)/25
		if utc != wantUTC {
			t.Fatalf("frame %d utc = %v, want %v", i, utc, wantUTC)
		}
		for j := range want {
			if dst[j] != want[j] {
				t.Fatalf("frame %d pixel %d = %d, want %d", i, j, dst[j], want[j])
			}
		}
	}

	if _, err := rv.Fetch(dst); !errors.Is(err, ErrEndOfStream) {
		t.Fatalf("Fetch past end: got %v, want ErrEndOfStream", err)
	}

	utc, err := rv.Rewind()
	if err != nil {
		t.Fatalf("Rewind: %v", err)
	}
	if utc != 500 {
		t.Fatalf("Rewind utc = %v, want 500", utc)
	}
	if _, err := rv.Fetch(dst); err != nil {
		t.Fatalf("Fetch after rewind: %v", err)
	}
	for j := range frames[0] {
		if dst[j] != frames[0][j] {
			t.Fatalf("post-rewind pixel %d = %d, want %d", j, dst[j], frames[0][j])
		}
	}
}

func TestRawVidMismatchedFrameSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.rawvid")
	err := WriteRawVid(path, 4, 4, [][]byte{{1, 2, 3}})
	if err == nil {
		t.Fatal("expected an error writing a mis-sized frame")
	}
}
