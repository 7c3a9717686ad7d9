package frame

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// RawVid replays a .rawvid file: a 4-byte little-endian frame count followed
// by that many width*height raw luminance frames back to back. It exists so
// integration tests can feed the engine a fixed, on-disk sequence instead of
// a live or synthetic source, and so cmd/vidrec has something to read back
// what it assembled.
type RawVid struct {
	Width, Height int
	// FPS is used only to synthesize a UTC timestamp per frame, since a
	// .rawvid file carries no per-frame time information of its own.
	FPS      float64
	StartUTC float64

	f          *os.File
	frameCount uint32
	frameIndex uint32
	dataOffset int64
}

// OpenRawVid opens path and reads its frame-count header, leaving the file
// positioned at the first frame.
func OpenRawVid(path string, width, height int, fps, startUTC float64) (*RawVid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	var hdr [4]byte
	if _, err := io.ReadFull(f, hdr[:]); err != nil {
		f.Close()
		return nil, fmt.Errorf("rawvid: reading header of %s: %w", path, err)
	}
	rv := &RawVid{
		Width:      width,
		Height:     height,
		FPS:        fps,
		StartUTC:   startUTC,
		f:          f,
		frameCount: binary.LittleEndian.Uint32(hdr[:]),
		dataOffset: 4,
	}
	return rv, nil
}

// Fetch implements Source.
func (rv *RawVid) Fetch(dst []byte) (float64, error) {
	frameSize := rv.Width * rv.Height
	if len(dst) != frameSize {
		return 0, fmt.Errorf("rawvid: dst has %d bytes, want %d", len(dst), frameSize)
	}
	if rv.frameIndex >= rv.frameCount {
		return 0, ErrEndOfStream
	}
	if _, err := io.ReadFull(rv.f, dst); err != nil {
		return 0, fmt.Errorf("rawvid: reading frame %d: %w", rv.frameIndex, err)
	}
	utc := rv.StartUTC + float64(rv.frameIndex)/rv.FPS
	rv.frameIndex++
	return utc, nil
}

// Rewind implements Source: it seeks back to the first frame after the
// header.
func (rv *RawVid) Rewind() (float64, error) {
	if _, err := rv.f.Seek(rv.dataOffset, io.SeekStart); err != nil {
		return 0, err
	}
	rv.frameIndex = 0
	return rv.StartUTC, nil
}

// FrameCount reports how many frames the file header advertised.
func (rv *RawVid) FrameCount() int {
	return int(rv.frameCount)
}

// Close releases the underlying file handle.
func (rv *RawVid) Close() error {
	return rv.f.Close()
}

// WriteRawVid writes a .rawvid file from a slice of concatenated frames,
// each width*height bytes, prefixed with the 4-byte little-endian frame
// count. It is the inverse of OpenRawVid, used by tests that need a
// fixture file on disk (cmd/vidrec streams its clip through
// sink.RawVidWriter instead).
func WriteRawVid(path string, width, height int, frames [][]byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(len(frames)))
	if _, err := f.Write(hdr[:]); err != nil {
		return err
	}
	frameSize := width * height
	for i, fr := range frames {
		if len(fr) != frameSize {
			return fmt.Errorf("rawvid: frame %d has %d bytes, want %d", i, len(fr), frameSize)
		}
		if _, err := f.Write(fr); err != nil {
			return err
		}
	}
	return nil
}
