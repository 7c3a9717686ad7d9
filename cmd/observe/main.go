// Command observe runs the continuous meteor-camera observation loop: it
// wires the frame source, background model, trigger detector, and throttle
// governor together, logs progress, and writes triggered/timelapse artifacts
// until it receives an interrupt.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/camsci/meteorwatch/internal/config"
	"github.com/camsci/meteorwatch/internal/engine"
	"github.com/camsci/meteorwatch/internal/frame"
	"github.com/camsci/meteorwatch/internal/logging"
	"github.com/camsci/meteorwatch/internal/sink"
)

func main() {
	// ── CLI flags ────────────────────────────────────────────────────
	configPath := flag.String("config", "camera.yaml", "path to camera.yaml")
	logFile := flag.String("log", "", "optional log file path (stderr is always included)")
	sourceKind := flag.String("source", "device", "frame source: device (not implemented), synthetic, or rawvid")
	rawvidPath := flag.String("rawvid", "", "path to a .rawvid file to replay (source=rawvid only)")
	durationSec := flag.Int("duration", 0, "optional fixed run duration in seconds, 0 runs until interrupted")
	flag.Parse()

	logger := logging.InitLogger(logging.INFO, *logFile)
	defer logger.Close()

	logging.L().Info("═══════════════════════════════════════════════════")
	logging.L().Info("  meteorwatch observe")
	logging.L().Info("  GOMAXPROCS=%d  ·  PID=%d", runtime.GOMAXPROCS(0), os.Getpid())
	logging.L().Info("═══════════════════════════════════════════════════")

	// ── Config, with hot reload for throttle/log-level edits ─────────
	absConfigPath, err := filepath.Abs(*configPath)
	if err != nil {
		logging.L().Fatal("resolve config path: %v", err)
	}

	watcher, err := config.WatchFile(absConfigPath, nil)
	if err != nil {
		logging.L().Fatal("load config %s: %v", absConfigPath, err)
	}
	defer watcher.Close()
	cfg := watcher.Current()
	logger.SetLevel(parseLevel(cfg.Logging.Level))

	if !filepath.IsAbs(cfg.Output.Path) {
		abs, _ := filepath.Abs(cfg.Output.Path)
		cfg.Output.Path = abs
	}

	// ── Context with OS signal cancellation ──────────────────────────
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	if *durationSec > 0 {
		var timerCancel context.CancelFunc
		ctx, timerCancel = context.WithTimeout(ctx, time.Duration(*durationSec)*time.Second)
		defer timerCancel()
		logging.L().Info("run will auto-stop after %ds", *durationSec)
	}

	// ── Pipeline assembly ────────────────────────────────────────────
	//
	//  frame.Source  ──►  Engine.step (stacker → median → trigger → throttle)
	//                                        │
	//                                 artifact.Sink (triggers_raw, timelapse_raw)

	src, err := buildSource(*sourceKind, *rawvidPath, cfg)
	if err != nil {
		logging.L().Fatal("build frame source: %v", err)
	}

	artifactSink := sink.NewFSSink(cfg.Output.Path)

	eng, err := engine.New(cfg, src, artifactSink)
	if err != nil {
		logging.L().Fatal("init engine: %v", err)
	}

	stopReload := make(chan struct{})
	reloaded := make(chan config.EngineConfig, 1)
	go func() {
		for {
			select {
			case <-stopReload:
				return
			default:
			}
			// Current() is cheap (a single atomic load), so a short poll
			// loop is enough to notice a hot-reloaded throttle section
			// without plumbing an onLoad callback through main's closures.
			time.Sleep(time.Second)
			select {
			case reloaded <- watcher.Current():
			default:
			}
		}
	}()
	defer close(stopReload)

	logging.L().Info("observation loop running for %s — press Ctrl+C to stop", cfg.Output.Label)

	runErr := make(chan error, 1)
	go func() { runErr <- eng.Run(ctx) }()

	statsTicker := time.NewTicker(5 * time.Second)
	defer statsTicker.Stop()

	var finalErr error
loop:
	for {
		select {
		case sig := <-sigCh:
			logging.L().Info("received signal: %v — shutting down…", sig)
			cancel()

		case err := <-runErr:
			finalErr = err
			break loop

		case reload := <-reloaded:
			eng.ApplyThrottleConfig(reload.Throttle)
			logger.SetLevel(parseLevel(reload.Logging.Level))

		case <-statsTicker.C:
			stats := eng.Stats()
			logging.L().Info("── stats ─────────────────────────")
			logging.L().Info("  seconds observed: %d", stats.SecondsObserved)
			logging.L().Info("  triggers: %d  throttled: %d  recording: %v", stats.Triggers, stats.ThrottledEvents, stats.Recording)
			logging.L().Info("  timelapse frames: %d", stats.TimelapseFrames)
			logging.L().Info("──────────────────────────────────")
		}
	}

	if finalErr != nil {
		logging.L().Error("observation loop exited: %v", finalErr)
		fmt.Fprintln(os.Stderr, "observe: exiting with error:", finalErr)
		os.Exit(1)
	}

	logging.L().Info("observation loop finished cleanly")
}

// parseLevel maps camera.yaml's logging.level string onto a logging.Level,
// defaulting to INFO for an empty or unrecognized value rather than
// rejecting the config outright over a typo'd log level.
func parseLevel(level string) logging.Level {
	switch level {
	case "debug":
		return logging.DEBUG
	case "warn":
		return logging.WARN
	case "error":
		return logging.ERROR
	default:
		return logging.INFO
	}
}

func buildSource(kind, rawvidPath string, cfg config.EngineConfig) (frame.Source, error) {
	switch kind {
	case "synthetic":
		return frame.NewSynthetic(cfg.Capture.Width, cfg.Capture.Height, cfg.Capture.FPS, float64(time.Now().Unix())), nil
	case "rawvid":
		if rawvidPath == "" {
			return nil, fmt.Errorf("observe: -rawvid is required when -source=rawvid")
		}
		return frame.OpenRawVid(rawvidPath, cfg.Capture.Width, cfg.Capture.Height, cfg.Capture.FPS, float64(time.Now().Unix()))
	case "device":
		return nil, fmt.Errorf("observe: live V4L2 capture is not implemented; run with -source=synthetic or -source=rawvid")
	default:
		return nil, fmt.Errorf("observe: unknown -source %q", kind)
	}
}
