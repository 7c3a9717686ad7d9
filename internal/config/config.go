// Package config loads and validates camera.yaml, the single file that
// tunes every stage of the observation pipeline: capture geometry, the
// trigger detector, the background model, the throttle governor, and
// where artifacts are written.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CaptureConfig describes the frame source.
type CaptureConfig struct {
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	FPS    float64 `yaml:"fps"`
	Device string  `yaml:"device"`
}

// TimingConfig sizes the short/timelapse/long buffers, all in seconds; the
// engine converts these to frame counts using CaptureConfig.FPS.
type TimingConfig struct {
	ShortBufferSeconds     float64 `yaml:"short_buffer_seconds"`
	TimelapseBufferSeconds float64 `yaml:"timelapse_buffer_seconds"`
	LongBufferSeconds      float64 `yaml:"long_buffer_seconds"`
}

// MedianConfig tunes the rolling background model.
type MedianConfig struct {
	WindowSamples int `yaml:"window_samples"`
}

// TriggerConfig tunes the motion detector.
type TriggerConfig struct {
	MarginL           int   `yaml:"margin_left"`
	MarginR           int   `yaml:"margin_right"`
	MarginT           int   `yaml:"margin_top"`
	MarginB           int   `yaml:"margin_bottom"`
	Npixels           int   `yaml:"min_blob_pixels"`
	Radius            int   `yaml:"comparison_radius"`
	ThresholdPerFrame int32 `yaml:"threshold_per_frame"`
}

// ThrottleConfig caps triggers per rolling window.
type ThrottleConfig struct {
	PeriodMinutes float64 `yaml:"period_minutes"`
	MaxEvents     int     `yaml:"max_events"`
}

// OutputConfig controls where and how artifacts land on disk.
type OutputConfig struct {
	Path      string `yaml:"path"`
	Label     string `yaml:"label"`
	StackGain int    `yaml:"stack_gain"`
}

// LoggingConfig controls the logger built by internal/logging. cmd/observe
// applies Level (at startup and on every reload); File is not read, the log
// file path comes from the -log flag.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// EngineConfig is the top-level structure of camera.yaml.
type EngineConfig struct {
	Capture  CaptureConfig  `yaml:"capture"`
	Timing   TimingConfig   `yaml:"timing"`
	Median   MedianConfig   `yaml:"median"`
	Trigger  TriggerConfig  `yaml:"trigger"`
	Throttle ThrottleConfig `yaml:"throttle"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// Default returns the field-proven tuning baked into the original camera
// software, used when camera.yaml omits a section entirely.
func Default() EngineConfig {
	return EngineConfig{
		Capture: CaptureConfig{Width: 720, Height: 576, FPS: 25, Device: "/dev/video0"},
		Timing: TimingConfig{
			ShortBufferSeconds:     0.5,
			TimelapseBufferSeconds: 15,
			LongBufferSeconds:      9,
		},
		Median: MedianConfig{WindowSamples: 255},
		Trigger: TriggerConfig{
			MarginL: 12, MarginR: 19, MarginT: 8, MarginB: 19,
			Npixels: 30, Radius: 8, ThresholdPerFrame: 13,
		},
		Throttle: ThrottleConfig{PeriodMinutes: 60, MaxEvents: 100},
		Output:   OutputConfig{Path: "/mnt/harddisk/pi/meteorCam", Label: "cam1", StackGain: 4},
		Logging:  LoggingConfig{Level: "info"},
	}
}

// Load reads and parses path, starting from Default() so an incomplete
// camera.yaml still produces a workable configuration.
func Load(path string) (EngineConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return EngineConfig{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return EngineConfig{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return EngineConfig{}, err
	}
	return cfg, nil
}

// Validate rejects a configuration that would make the engine misbehave in
// ways that are cheaper to catch at startup than mid-run.
func (c EngineConfig) Validate() error {
	if c.Capture.Width <= 0 || c.Capture.Height <= 0 {
		return fmt.Errorf("config: capture width/height must be positive, got %dx%d", c.Capture.Width, c.Capture.Height)
	}
	if c.Capture.FPS <= 0 {
		return fmt.Errorf("config: capture fps must be positive, got %v", c.Capture.FPS)
	}
	if c.Timing.ShortBufferSeconds <= 0 {
		return fmt.Errorf("config: timing.short_buffer_seconds must be positive")
	}
	if c.Median.WindowSamples <= 0 {
		return fmt.Errorf("config: median.window_samples must be positive")
	}
	if c.Trigger.Npixels <= 0 || c.Trigger.Radius <= 0 {
		return fmt.Errorf("config: trigger.min_blob_pixels and comparison_radius must be positive")
	}
	if c.Output.Path == "" {
		return fmt.Errorf("config: output.path must be set")
	}
	return nil
}

// ShortBufferFrames returns the number of frames in one short-buffer
// second, rounded to the nearest frame.
func (c EngineConfig) ShortBufferFrames() int {
	return int(c.Capture.FPS*c.Timing.ShortBufferSeconds + 0.5)
}

// TimelapseBufferFrames returns the number of frames stacked into each
// timelapse exposure, rounded to the nearest multiple of the short-buffer
// frame count so the timelapse stack always completes on a short-buffer
// boundary.
func (c EngineConfig) TimelapseBufferFrames() int {
	return nearestMultiple(c.Capture.FPS*c.Timing.TimelapseBufferSeconds, c.ShortBufferFrames())
}

// LongBufferFrames returns the number of frames recorded after a trigger,
// likewise rounded to a multiple of the short-buffer frame count.
func (c EngineConfig) LongBufferFrames() int {
	return nearestMultiple(c.Capture.FPS*c.Timing.LongBufferSeconds, c.ShortBufferFrames())
}

// nearestMultiple rounds in to the nearest multiple of factor, with a floor
// of one factor, so every buffer length is an exact number of short-buffer
// seconds.
func nearestMultiple(in float64, factor int) int {
	if factor <= 0 {
		factor = 1
	}
	n := int(in/float64(factor) + 0.5)
	if n < 1 {
		n = 1
	}
	return n * factor
}
