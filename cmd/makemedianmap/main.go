// Command makemedianmap stacks 256 one-second samples from a frame source and
// writes out the resulting median sky-background map as a .rawimg file —
// a standalone utility for seeding a background model offline, independent
// of a full observation run.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/camsci/meteorwatch/internal/frame"
	"github.com/camsci/meteorwatch/internal/median"
	"github.com/camsci/meteorwatch/internal/stacker"
)

func main() {
	width := flag.Int("width", 720, "frame width in pixels")
	height := flag.Int("height", 576, "frame height in pixels")
	fps := flag.Float64("fps", 25, "source frame rate")
	samples := flag.Int("samples", 256, "number of one-second samples to stack into the median map")
	nfr := flag.Int("nfr", 25, "frames averaged into each sample before it's folded into the histogram")
	sourceKind := flag.String("source", "synthetic", "frame source: synthetic or rawvid")
	rawvidPath := flag.String("rawvid", "", "path to a .rawvid file to replay (source=rawvid only)")
	flag.Parse()

	out := flag.Arg(0)
	if out == "" {
		fmt.Fprintln(os.Stderr, "usage: makemedianmap [flags] <output.rawimg>")
		os.Exit(1)
	}

	var src frame.Source
	switch *sourceKind {
	case "synthetic":
		src = frame.NewSynthetic(*width, *height, *fps, float64(time.Now().Unix()))
	case "rawvid":
		if *rawvidPath == "" {
			fmt.Fprintln(os.Stderr, "makemedianmap: -rawvid is required when -source=rawvid")
			os.Exit(1)
		}
		rv, err := frame.OpenRawVid(*rawvidPath, *width, *height, *fps, float64(time.Now().Unix()))
		if err != nil {
			fmt.Fprintln(os.Stderr, "makemedianmap:", err)
			os.Exit(1)
		}
		defer rv.Close()
		src = rv
	default:
		fmt.Fprintf(os.Stderr, "makemedianmap: unknown -source %q\n", *sourceKind)
		os.Exit(1)
	}

	frameSize := *width * *height
	hist := median.NewHistogram(frameSize)
	raw := make([]byte, *nfr**width**height)
	stack := make([]int32, frameSize)
	maxMap := make([]byte, frameSize)

	for i := 0; i < *samples; i++ {
		res, err := stacker.ReadShortBuffer(src, *nfr, frameSize, raw, stack, nil, maxMap)
		if err != nil {
			fmt.Fprintf(os.Stderr, "makemedianmap: stopped after %d/%d samples: %v\n", i, *samples, err)
			break
		}
		hist.Add(res.AveragePixel)
	}

	medianMap := make([]byte, frameSize)
	hist.Median(medianMap)

	if err := os.WriteFile(out, medianMap, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "makemedianmap: writing output:", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d-byte median map from %d samples to %s\n", len(medianMap), hist.Samples(), out)
}
