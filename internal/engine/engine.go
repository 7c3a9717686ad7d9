// Package engine wires together the frame source, background model,
// trigger detector, throttle governor, and artifact sink into the
// observation loop: read a second of video, update the background model,
// test for motion, record a post-trigger clip when it fires, and
// periodically lay down a timelapse frame.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/camsci/meteorwatch/internal/artifact"
	"github.com/camsci/meteorwatch/internal/config"
	"github.com/camsci/meteorwatch/internal/frame"
	"github.com/camsci/meteorwatch/internal/logging"
	"github.com/camsci/meteorwatch/internal/median"
	"github.com/camsci/meteorwatch/internal/pixelops"
	"github.com/camsci/meteorwatch/internal/sink"
	"github.com/camsci/meteorwatch/internal/stacker"
	"github.com/camsci/meteorwatch/internal/throttle"
	"github.com/camsci/meteorwatch/internal/trigger"
)

// allowTriggerAfter is how many short-buffer seconds must pass after a
// recording ends before the engine will trigger again; it exists so the
// camera doesn't immediately re-trigger on the tail of the clip it just
// finished writing. At startup the count begins further back, at
// -(WindowSamples+5), so the first trigger test also waits for the first
// median map.
const allowTriggerAfter = 3

// RunStats is a snapshot of the engine's progress, for a status ticker to
// log periodically.
type RunStats struct {
	SecondsObserved int
	Triggers        int
	ThrottledEvents int
	TimelapseFrames int
	Recording       bool
}

// Engine runs the observation loop described above.
type Engine struct {
	cfg   config.EngineConfig
	src   frame.Source
	sink  sink.Sink
	label string

	width, height, frameSize int
	nfrt, nfrl, nfrtl         int

	bufferA, bufferB []byte
	stackA, stackB   []int32
	maxA, maxB       []byte
	bufferNum        bool // false selects A, true selects B

	model    *median.Model
	governor *throttle.Governor
	params   trigger.Params
	gain     int

	stackT               []int32
	timelapseCount        int
	frameNextTargetTime   float64
	framesSinceLastTrigger int

	recording  int // -1 when not recording, otherwise seconds recorded so far
	recStackL  []int32
	recMaxL    []byte
	recClip    *sink.RawVidWriter
	recStub    string

	stats RunStats
}

// New builds an Engine reading from src and writing artifacts through s.
func New(cfg config.EngineConfig, src frame.Source, s sink.Sink) (*Engine, error) {
	width, height := cfg.Capture.Width, cfg.Capture.Height
	frameSize := width * height
	if frameSize <= 0 {
		return nil, fmt.Errorf("engine: invalid frame geometry %dx%d", width, height)
	}

	nfrt := cfg.ShortBufferFrames()
	nfrl := cfg.LongBufferFrames()
	nfrtl := cfg.TimelapseBufferFrames()

	cyclesPerWindow := int(cfg.Throttle.PeriodMinutes * 60 / cfg.Timing.ShortBufferSeconds)

	e := &Engine{
		cfg:       cfg,
		src:       src,
		sink:      s,
		label:     cfg.Output.Label,
		width:     width,
		height:    height,
		frameSize: frameSize,
		nfrt:      nfrt,
		nfrl:      nfrl,
		nfrtl:     nfrtl,

		bufferA: make([]byte, nfrt*frameSize),
		bufferB: make([]byte, nfrt*frameSize),
		stackA:  make([]int32, frameSize),
		stackB:  make([]int32, frameSize),
		maxA:    make([]byte, frameSize),
		maxB:    make([]byte, frameSize),

		model:    median.NewModel(frameSize),
		governor: throttle.NewGovernor(cyclesPerWindow, cfg.Throttle.MaxEvents),
		params: trigger.Params{
			MarginL: cfg.Trigger.MarginL, MarginR: cfg.Trigger.MarginR,
			MarginT: cfg.Trigger.MarginT, MarginB: cfg.Trigger.MarginB,
			Npixels: cfg.Trigger.Npixels, Radius: cfg.Trigger.Radius,
			ThresholdPerFrame: cfg.Trigger.ThresholdPerFrame,
		},
		gain: cfg.Output.StackGain,

		stackT:                 make([]int32, frameSize),
		timelapseCount:         -1,
		frameNextTargetTime:    unsetTimelapseDeadline,
		framesSinceLastTrigger: -(cfg.Median.WindowSamples + 5),

		recording: -1,
	}
	return e, nil
}

// unsetTimelapseDeadline marks that no timelapse deadline has been picked
// yet; it is replaced by a real one once framesSinceLastTrigger reaches
// timelapseRewindMilestone: the UTC timestamp observed at that point,
// rounded up to a whole minute.
const unsetTimelapseDeadline = -1

// timelapseRewindMilestone is the framesSinceLastTrigger value at which the
// first timelapse deadline gets picked — mirroring the original's one-time
// "rewind the tape" transition, minus the rewind itself (see DESIGN.md).
// It sits 5 frames before allowTriggerAfter regardless of the median
// window length, so the first background-subtracted timelapse frame never
// lands before the first median map is ready.
const timelapseRewindMilestone = allowTriggerAfter - 5

// ApplyThrottleConfig updates the throttle governor's parameters, for the
// config watcher to call on a hot reload.
func (e *Engine) ApplyThrottleConfig(cfg config.ThrottleConfig) {
	cycles := int(cfg.PeriodMinutes * 60 / e.cfg.Timing.ShortBufferSeconds)
	e.governor.SetParams(cycles, cfg.MaxEvents)
}

// Stats returns a snapshot of the engine's progress so far.
func (e *Engine) Stats() RunStats {
	s := e.stats
	s.Recording = e.recording >= 0
	return s
}

// Run reads frames from the source until ctx is cancelled or the source is
// exhausted, running the full observation loop each second.
func (e *Engine) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		if err := e.step(); err != nil {
			if errors.Is(err, frame.ErrEndOfStream) {
				return nil
			}
			return err
		}
	}
}

// step runs exactly one short-buffer second through the pipeline.
func (e *Engine) step() error {
	var (
		utc float64
		err error
	)

	if e.recording >= 0 {
		utc, err = e.readRecordingSecond()
	} else {
		utc, err = e.readObservingSecond()
	}
	if err != nil {
		return err
	}

	e.framesSinceLastTrigger++
	e.stats.SecondsObserved++

	if e.model.Tick(e.cfg.Median.WindowSamples) {
		logging.L().Debug("recomputed background median map")
	}

	if e.recording >= 0 {
		e.advanceRecording()
	}

	e.advanceTimelapse(utc)
	e.governor.Tick()

	if e.recording < 0 && e.framesSinceLastTrigger >= allowTriggerAfter && e.governor.Allow() {
		if err := e.testAndHandleTrigger(utc); err != nil {
			return err
		}
	}

	if e.recording < 0 {
		e.bufferNum = !e.bufferNum
	}
	return nil
}

func (e *Engine) readObservingSecond() (float64, error) {
	buf, stack1, max1 := e.currentSlot()
	var stack2 []int32
	if e.timelapseCount >= 0 {
		stack2 = e.stackT
	}
	res, err := stacker.ReadShortBuffer(e.src, e.nfrt, e.frameSize, buf, stack1, stack2, max1)
	if err != nil {
		return 0, err
	}
	e.model.Accumulate(res.AveragePixel)
	return res.UTC, nil
}

func (e *Engine) readRecordingSecond() (float64, error) {
	buf, stack1, max1 := e.currentSlot()
	var stack2 []int32
	if e.timelapseCount >= 0 {
		stack2 = e.stackT
	}
	res, err := stacker.ReadShortBuffer(e.src, e.nfrt, e.frameSize, buf, stack1, stack2, max1)
	if err != nil {
		return 0, err
	}
	e.model.Accumulate(res.AveragePixel)

	pixelops.UpdateMax(e.recMaxL, max1)
	pixelops.AccumulateInt32(e.recStackL, stack1)
	if err := e.recClip.AppendFrame(buf); err != nil {
		return 0, err
	}
	return res.UTC, nil
}

// currentSlot returns the raw/stack/max buffers for whichever slot
// bufferNum currently selects.
func (e *Engine) currentSlot() (raw []byte, stack []int32, maxMap []byte) {
	if e.bufferNum {
		return e.bufferB, e.stackB, e.maxB
	}
	return e.bufferA, e.stackA, e.maxA
}

// otherSlot returns the slot not currently selected by bufferNum: the
// second immediately preceding the current one.
func (e *Engine) otherSlot() (raw []byte, stack []int32, maxMap []byte) {
	if e.bufferNum {
		return e.bufferA, e.stackA, e.maxA
	}
	return e.bufferB, e.stackB, e.maxB
}

func (e *Engine) advanceRecording() {
	e.recording++
	if e.recording < e.nfrl/e.nfrt {
		return
	}
	e.finishRecording()
}

func (e *Engine) finishRecording() {
	totalFrames := e.nfrt + e.nfrl
	e.writeArtifact(artifact.KindLongPlain, artifact.Plain(e.recStackL, totalFrames, 1))
	e.writeArtifact(artifact.KindLongSubtracted, artifact.BackgroundSubtracted(e.recStackL, totalFrames, e.gain, e.model.Active()))
	e.writeArtifact(artifact.KindLongMax, e.recMaxL)

	if err := e.recClip.Close(); err != nil {
		logging.L().Error("closing recording clip: %v", err)
	}

	e.recording = -1
	e.framesSinceLastTrigger = 0
	e.recStackL = nil
	e.recMaxL = nil
	e.recClip = nil
	e.recStub = ""
}

func (e *Engine) advanceTimelapse(utc float64) {
	if e.frameNextTargetTime == unsetTimelapseDeadline {
		if e.framesSinceLastTrigger != timelapseRewindMilestone {
			return
		}
		e.frameNextTargetTime = nextMinuteBoundary(utc)
	}

	if e.timelapseCount >= 0 {
		e.timelapseCount++
	} else if utc > e.frameNextTargetTime {
		for i := range e.stackT {
			e.stackT[i] = 0
		}
		e.timelapseCount = 0
	}

	if e.timelapseCount >= 0 && e.timelapseCount >= e.nfrtl/e.nfrt {
		e.writeTimelapseFrame(utc)
		e.frameNextTargetTime += 60
		e.timelapseCount = -1
		e.stats.TimelapseFrames++
	}
}

func nextMinuteBoundary(utc float64) float64 {
	return math.Ceil(utc/60) * 60
}

func (e *Engine) writeTimelapseFrame(utc float64) {
	stub, err := e.sink.Stub(time.Unix(int64(utc), 0), "timelapse_raw", e.label, "frame_")
	if err != nil {
		logging.L().Error("timelapse stub: %v", err)
		return
	}
	plain := artifact.Plain(e.stackT, e.nfrtl, 1)
	sub := artifact.BackgroundSubtracted(e.stackT, e.nfrtl, e.gain, e.model.Active())
	if err := e.sink.WriteRaw(sink.Suffixed(stub, artifact.TimelapsePlain.Suffix()), plain); err != nil {
		logging.L().Error("writing timelapse plain frame: %v", err)
	}
	if err := e.sink.WriteRaw(sink.Suffixed(stub, artifact.TimelapseSubtracted.Suffix()), sub); err != nil {
		logging.L().Error("writing timelapse subtracted frame: %v", err)
	}
}

func (e *Engine) testAndHandleTrigger(utc float64) error {
	curRaw, curStack, curMax := e.currentSlot()
	prevRaw, prevStack, prevMax := e.otherSlot()

	res := trigger.Detect(e.width, e.height, curStack, prevStack, e.nfrt, e.params)
	if !res.Triggered {
		return nil
	}

	e.governor.RecordEvent()
	e.stats.Triggers++
	logging.L().Info("trigger at x=%d y=%d (utc=%.2f)", res.X, res.Y, utc)

	stub, err := e.sink.Stub(time.Unix(int64(utc), 0), "triggers_raw", e.label, "trigger")
	if err != nil {
		return fmt.Errorf("engine: trigger stub: %w", err)
	}

	e.writeArtifactAt(stub, artifact.KindMap, artifact.PackRGB(res.Red, res.Green, res.Blue))
	e.writeArtifactAt(stub, artifact.KindTriggerSecondPlain, artifact.Plain(curStack, e.nfrt, 1))
	e.writeArtifactAt(stub, artifact.KindTriggerSecondSubtracted, artifact.BackgroundSubtracted(curStack, e.nfrt, e.gain, e.model.Active()))
	e.writeArtifactAt(stub, artifact.KindTriggerSecondMax, curMax)
	e.writeArtifactAt(stub, artifact.KindPreSecondPlain, artifact.Plain(prevStack, e.nfrt, 1))
	e.writeArtifactAt(stub, artifact.KindPreSecondSubtracted, artifact.BackgroundSubtracted(prevStack, e.nfrt, e.gain, e.model.Active()))
	e.writeArtifactAt(stub, artifact.KindPreSecondMax, prevMax)

	clip, err := sink.NewRawVidWriter(sink.Suffixed(stub, artifact.KindClip.Suffix()))
	if err != nil {
		return fmt.Errorf("engine: opening clip writer: %w", err)
	}
	for i := 0; i < e.nfrt; i++ {
		if err := clip.AppendFrame(prevRaw[i*e.frameSize : (i+1)*e.frameSize]); err != nil {
			return err
		}
	}
	for i := 0; i < e.nfrt; i++ {
		if err := clip.AppendFrame(curRaw[i*e.frameSize : (i+1)*e.frameSize]); err != nil {
			return err
		}
	}

	e.recStub = stub
	e.recClip = clip
	e.recStackL = append([]int32(nil), curStack...)
	e.recMaxL = append([]byte(nil), curMax...)
	e.recording = 0
	return nil
}

func (e *Engine) writeArtifact(kind artifact.Kind, data []byte) {
	e.writeArtifactAt(e.recStub, kind, data)
}

func (e *Engine) writeArtifactAt(stub string, kind artifact.Kind, data []byte) {
	if err := e.sink.WriteRaw(sink.Suffixed(stub, kind.Suffix()), data); err != nil {
		logging.L().Error("writing artifact %s: %v", kind.Suffix(), err)
	}
}
