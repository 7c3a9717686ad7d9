// Package sink persists artifacts (raw frames, maps, timelapse stacks,
// recorded clips) to the filesystem, following the per-day directory
// convention the pipeline has always used: every artifact lives under
// {root}/{category}_{label}/{YYYYMMDD}/, named by the second it was
// captured.
package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Sink is the artifact-persistence boundary the engine writes through. It
// is an interface, not a concrete filesystem type, so tests can substitute
// an in-memory sink and assert on exactly what the engine tried to write
// without touching disk.
type Sink interface {
	// Stub reserves a directory for one second's worth of artifacts and
	// returns the path prefix (no extension) that every artifact for that
	// second should be written under: callers append their own suffix,
	// e.g. stub+"_MAP.rawrgb". tag identifies what kind of second this is
	// ("trigger" for a triggered event, "frame_" for a timelapse frame),
	// the same three-way split the original's fNameGenerate(utc, tag,
	// dirname, label) makes: dirname/label pick the directory, tag is
	// folded into the filename itself.
	Stub(t time.Time, category, label, tag string) (stub string, err error)

	// WriteRaw writes data to path, creating or truncating it.
	WriteRaw(path string, data []byte) error
}

// FSSink is the on-disk Sink implementation used by cmd/observe and the
// utility CLIs.
type FSSink struct {
	Root string
}

// NewFSSink returns an FSSink rooted at root. The root directory is created
// lazily, the first time Stub is called, so constructing one never touches
// disk.
func NewFSSink(root string) *FSSink {
	return &FSSink{Root: root}
}

// Stub implements Sink.
func (s *FSSink) Stub(t time.Time, category, label, tag string) (string, error) {
	utc := t.UTC()
	dir := filepath.Join(s.Root, category+"_"+label, utc.Format("20060102"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("sink: creating %s: %w", dir, err)
	}
	name := utc.Format("20060102150405") + "_" + tag
	return filepath.Join(dir, name), nil
}

// WriteRaw implements Sink using a buffered writer so a large clip (a
// .rawvid of many frames) doesn't take one syscall per frame.
func (s *FSSink) WriteRaw(path string, data []byte) error {
	return writeBuffered(path, data)
}

// Suffixed joins a stub and an artifact suffix, e.g. Suffixed(stub,
// "_MAP.rawrgb").
func Suffixed(stub, suffix string) string {
	return stub + suffix
}
