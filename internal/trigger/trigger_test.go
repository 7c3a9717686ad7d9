package trigger

import "testing"

const testW, testH = 80, 80

func flatImage(w, h int, v int32) []int32 {
	img := make([]int32, w*h)
	for i := range img {
		img[i] = v
	}
	return img
}

func fillSquare(img []int32, width, x0, y0, side int, v int32) {
	for y := y0; y < y0+side; y++ {
		for x := x0; x < x0+side; x++ {
			img[x+y*width] = v
		}
	}
}

func TestDetectConnectedBlobTriggers(t *testing.T) {
	imageA := flatImage(testW, testH, 0)
	imageB := flatImage(testW, testH, 0)
	// A compact 6x6 block, smaller than the default radius (8), so every
	// pixel inside it sees only background at its radius-spaced comparison
	// points: it reads as 36 mutually-adjacent "candidate" pixels, above
	// the 30-pixel trigger size.
	fillSquare(imageB, testW, 30, 30, 6, 500)

	res := Detect(testW, testH, imageB, imageA, 1, DefaultParams())
	if !res.Triggered {
		t.Fatal("expected a 6x6 brightened block to trigger")
	}
}

func TestDetectSingleIsolatedPixelDoesNotTrigger(t *testing.T) {
	imageA := flatImage(testW, testH, 0)
	imageB := flatImage(testW, testH, 0)
	imageB[40+40*testW] = 500

	res := Detect(testW, testH, imageB, imageA, 1, DefaultParams())
	if res.Triggered {
		t.Fatal("a single brightened pixel should not be enough to trigger")
	}
}

func TestDetectMarginPixelsIgnored(t *testing.T) {
	imageA := flatImage(testW, testH, 0)
	imageB := flatImage(testW, testH, 0)
	// Entirely inside the excluded margin strip (MarginL=12, MarginT=8).
	fillSquare(imageB, testW, 0, 0, 6, 500)

	res := Detect(testW, testH, imageB, imageA, 1, DefaultParams())
	if res.Triggered {
		t.Fatal("a block inside the margin should never trigger")
	}
}

func TestDetectBelowThresholdDoesNotTrigger(t *testing.T) {
	imageA := flatImage(testW, testH, 0)
	imageB := flatImage(testW, testH, 0)
	fillSquare(imageB, testW, 30, 30, 6, 10) // below threshold (13*1)

	res := Detect(testW, testH, imageB, imageA, 1, DefaultParams())
	if res.Triggered {
		t.Fatal("brightening below threshold should not trigger")
	}
}

func TestDetectDiagnosticChannelsAlwaysPopulated(t *testing.T) {
	imageA := flatImage(testW, testH, 0)
	imageB := flatImage(testW, testH, 0)

	res := Detect(testW, testH, imageB, imageA, 1, DefaultParams())
	if len(res.Red) != testW*testH || len(res.Green) != testW*testH || len(res.Blue) != testW*testH {
		t.Fatal("diagnostic channels should always be frameSize long, trigger or not")
	}
}

func TestUnionFindMergesTransitively(t *testing.T) {
	uf := newUnionFind(10)
	a := uf.newBlock()
	b := uf.newBlock()
	c := uf.newBlock()
	uf.union(a, b)
	uf.union(b, c)
	if uf.find(a) != uf.find(c) {
		t.Fatal("union-find should transitively merge blocks regardless of how many unions separate them")
	}
}
