// Command vidrec records a fixed number of seconds from a frame source
// straight to a .rawvid file, with no triggering or background modelling —
// a standalone capture utility for grabbing a clip by hand.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/camsci/meteorwatch/internal/frame"
	"github.com/camsci/meteorwatch/internal/sink"
)

func main() {
	width := flag.Int("width", 720, "frame width in pixels")
	height := flag.Int("height", 576, "frame height in pixels")
	fps := flag.Float64("fps", 25, "source frame rate")
	seconds := flag.Float64("seconds", 4, "duration to record, in seconds")
	sourceKind := flag.String("source", "synthetic", "frame source: synthetic or rawvid")
	rawvidPath := flag.String("rawvid", "", "path to a .rawvid file to replay (source=rawvid only)")
	flag.Parse()

	out := flag.Arg(0)
	if out == "" {
		fmt.Fprintln(os.Stderr, "usage: vidrec [flags] <output.rawvid>")
		os.Exit(1)
	}

	var src frame.Source
	switch *sourceKind {
	case "synthetic":
		src = frame.NewSynthetic(*width, *height, *fps, float64(time.Now().Unix()))
	case "rawvid":
		if *rawvidPath == "" {
			fmt.Fprintln(os.Stderr, "vidrec: -rawvid is required when -source=rawvid")
			os.Exit(1)
		}
		rv, err := frame.OpenRawVid(*rawvidPath, *width, *height, *fps, float64(time.Now().Unix()))
		if err != nil {
			fmt.Fprintln(os.Stderr, "vidrec:", err)
			os.Exit(1)
		}
		defer rv.Close()
		src = rv
	default:
		fmt.Fprintf(os.Stderr, "vidrec: unknown -source %q\n", *sourceKind)
		os.Exit(1)
	}

	writer, err := sink.NewRawVidWriter(out)
	if err != nil {
		fmt.Fprintln(os.Stderr, "vidrec:", err)
		os.Exit(1)
	}

	frameSize := *width * *height
	buf := make([]byte, frameSize)
	total := int(*seconds**fps + 0.5)
	for i := 0; i < total; i++ {
		if _, err := src.Fetch(buf); err != nil {
			fmt.Fprintf(os.Stderr, "vidrec: stopped after %d/%d frames: %v\n", i, total, err)
			break
		}
		if err := writer.AppendFrame(buf); err != nil {
			fmt.Fprintln(os.Stderr, "vidrec: appending frame:", err)
			break
		}
	}

	if err := writer.Close(); err != nil {
		fmt.Fprintln(os.Stderr, "vidrec: closing clip:", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d frames to %s\n", writer.Frames(), out)
}
