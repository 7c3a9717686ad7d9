package sink

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"
)

// writeBuffered writes data to path in one pass through a bufio.Writer,
// sized to the payload so a multi-megabyte timelapse frame or long-buffer
// clip is handed to the OS in large chunks rather than one syscall per
// small write.
func writeBuffered(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("sink: create %s: %w", path, err)
	}
	defer f.Close()

	bufSize := 256 * 1024
	if len(data) < bufSize {
		bufSize = len(data)
	}
	if bufSize == 0 {
		return nil
	}
	bw := bufio.NewWriterSize(f, bufSize)
	if _, err := bw.Write(data); err != nil {
		return fmt.Errorf("sink: write %s: %w", path, err)
	}
	return bw.Flush()
}

// RawVidWriter streams .rawvid frames to disk as they arrive during an
// active recording, instead of holding the whole clip in memory until the
// trigger window closes. Since the format's frame count lives in a 4-byte
// header before any frame data, and the final count isn't known until the
// recording ends, RawVidWriter reserves the header up front and patches it
// in on Close. The buffered append itself is concurrency-safe for the same
// reason CSV row writes are in the logging pipeline: the hot path (one
// append per captured frame) must never block on a full write syscall.
type RawVidWriter struct {
	mu     sync.Mutex
	file   *os.File
	buf    *bufio.Writer
	frames uint32
}

// NewRawVidWriter creates path and reserves its 4-byte frame-count header.
func NewRawVidWriter(path string) (*RawVidWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("rawvid writer: create %s: %w", path, err)
	}
	var placeholder [4]byte
	if _, err := f.Write(placeholder[:]); err != nil {
		f.Close()
		return nil, fmt.Errorf("rawvid writer: reserving header: %w", err)
	}
	return &RawVidWriter{
		file: f,
		buf:  bufio.NewWriterSize(f, 1<<20),
	}, nil
}

// AppendFrame writes one frame's worth of raw bytes.
func (w *RawVidWriter) AppendFrame(data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.buf.Write(data); err != nil {
		return fmt.Errorf("rawvid writer: append frame %d: %w", w.frames, err)
	}
	w.frames++
	return nil
}

// Frames returns the number of frames appended so far.
func (w *RawVidWriter) Frames() uint32 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.frames
}

// Close flushes buffered data, patches in the real frame count, and closes
// the file.
func (w *RawVidWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return fmt.Errorf("rawvid writer: flush: %w", err)
	}
	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		w.file.Close()
		return fmt.Errorf("rawvid writer: seeking to header: %w", err)
	}
	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], w.frames)
	if _, err := w.file.Write(hdr[:]); err != nil {
		w.file.Close()
		return fmt.Errorf("rawvid writer: patching header: %w", err)
	}
	return w.file.Close()
}
