// Package trigger implements the motion detector: it compares two
// consecutive one-second stacks and looks for a cluster of pixels that
// brightened enough, and consistently enough relative to their neighbours,
// to be a real event rather than noise.
package trigger

import "github.com/camsci/meteorwatch/internal/pixelops"

// Params tunes the detector. DefaultParams reproduces the camera's
// long-standing field values.
type Params struct {
	// Margin* exclude a border strip from consideration, since lens
	// vignetting and mount hardware near the frame edge produce spurious
	// brightness changes.
	MarginL, MarginR, MarginT, MarginB int

	// Npixels is the minimum size, in connected pixels, of a brightened
	// blob before it counts as a trigger.
	Npixels int

	// Radius is the spacing, in pixels, of the 3x3 comparison grid used to
	// confirm a candidate pixel is locally consistent rather than an
	// isolated hot pixel.
	Radius int

	// ThresholdPerFrame is multiplied by coAddedFrames to get the minimum
	// pixel brightening, in stacked intensity units, that counts as
	// suspicious.
	ThresholdPerFrame int32
}

// DefaultParams returns the detector tuning used in the field.
func DefaultParams() Params {
	return Params{
		MarginL: 12, MarginR: 19, MarginT: 8, MarginB: 19,
		Npixels:           30,
		Radius:            8,
		ThresholdPerFrame: 13,
	}
}

// Result is what Detect found. Red/Green/Blue are always frameSize long and
// hold the diagnostic composite (red: brightening vs. threshold, green:
// imageB averaged per frame, blue: 128 for a candidate pixel and 255 for one that was
// part of a triggering blob) regardless of whether a trigger fired, so
// callers can always dump it for inspection if they choose to.
type Result struct {
	Triggered bool
	// X, Y locate a pixel inside the blob that caused the trigger. Zero
	// when Triggered is false.
	X, Y int

	Red, Green, Blue []byte
}

// Detect compares imageB against imageA, two stacks of coAddedFrames summed
// frames each, and reports whether a real brightening event occurred.
//
// Connected brightened pixels are grouped with a union-find over 4
// causal neighbours (west, north-west, north, north-east) scanned in raster
// order, so a blob is correctly merged no matter how many rows it spans —
// unlike a naive implementation that only looks back one row and can miss
// components that reconverge further down the frame.
func Detect(width, height int, imageB, imageA []int32, coAddedFrames int, p Params) Result {
	frameSize := width * height
	threshold := p.ThresholdPerFrame * int32(coAddedFrames)

	red := make([]byte, frameSize)
	green := make([]byte, frameSize)
	blue := make([]byte, frameSize)
	triggerMap := make([]int, frameSize)

	uf := newUnionFind(frameSize + 1)

	result := Result{Red: red, Green: green, Blue: blue}

	for y := p.MarginT; y < height-p.MarginB; y++ {
		for x := p.MarginL; x < width-p.MarginR; x++ {
			o := x + y*width
			diff := imageB[o] - imageA[o]

			red[o] = pixelops.ClipByte(128 + diff*256/threshold)
			green[o] = pixelops.ClipByte(imageB[o] / int32(coAddedFrames))

			if diff <= threshold {
				continue
			}
			if !localConsistency(imageB, imageA, o, width, p.Radius, threshold, true) {
				continue
			}
			if !localConsistency(imageB, imageB, o, width, p.Radius, threshold, false) {
				continue
			}

			blue[o] = 128

			blockID := 0
			for _, nb := range []int{o - 1, o + 1 - width, o - width, o - 1 - width} {
				if triggerMap[nb] == 0 {
					continue
				}
				nid := uf.find(triggerMap[nb])
				if blockID == 0 {
					blockID = nid
				} else if nid != blockID {
					blockID = uf.union(blockID, nid)
				}
			}
			if blockID == 0 {
				blockID = uf.newBlock()
			}
			triggerMap[o] = blockID

			root := uf.find(blockID)
			uf.size[root]++
			if uf.size[root] > p.Npixels {
				blue[o] = 255
				if !result.Triggered {
					result.Triggered = true
					result.X, result.Y = x, y
				}
			}
		}
	}

	return result
}

// localConsistency checks that o is brighter, by more than threshold, than
// at least 7 of the 9 points on a radius-spaced 3x3 grid centred on o (when
// strictMajority selects ">7", i.e. 8 of 9) in compareAgainst. It
// reproduces the two successive 3x3-grid checks testTrigger performs: the
// first against imageA, the previous second, with a ">7" majority, the
// second against imageB itself with a ">6" majority.
func localConsistency(image, compareAgainst []int32, o, width, radius int, threshold int32, strictMajority bool) bool {
	min := 6
	if strictMajority {
		min = 7
	}
	count := 0
	for i := -1; i <= 1; i++ {
		for j := -1; j <= 1; j++ {
			if image[o]-compareAgainst[o+(j+i*width)*radius] > threshold {
				count++
			}
		}
	}
	return count > min
}

type unionFind struct {
	parent []int
	size   []int
	next   int
}

func newUnionFind(capacity int) *unionFind {
	return &unionFind{
		parent: make([]int, capacity),
		size:   make([]int, capacity),
		next:   1,
	}
}

func (u *unionFind) newBlock() int {
	id := u.next
	u.next++
	u.parent[id] = id
	u.size[id] = 0
	return id
}

func (u *unionFind) find(id int) int {
	for u.parent[id] != id {
		u.parent[id] = u.parent[u.parent[id]]
		id = u.parent[id]
	}
	return id
}

func (u *unionFind) union(a, b int) int {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return ra
	}
	if u.size[ra] < u.size[rb] {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	u.size[ra] += u.size[rb]
	return ra
}
