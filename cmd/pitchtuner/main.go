// Command pitchtuner is a live terminal tuner: it analyses the default
// audio input and shows the detected note, frequency and cents offset.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/RyanBlaney/sonido-pitch/analyzer"
	"github.com/RyanBlaney/sonido-pitch/config"
	"github.com/RyanBlaney/sonido-pitch/export"
	"github.com/RyanBlaney/sonido-pitch/logging"
	"github.com/gordonklaus/portaudio"
)

const refreshInterval = time.Second / 30

type options struct {
	sampleRate float64
	blockSize  int
	configPath string
	exportPath string
	logLevel   string
	logFormat  string
}

func main() {
	var opts options
	flag.Float64Var(&opts.sampleRate, "rate", 48000, "input sample rate in Hz")
	flag.IntVar(&opts.blockSize, "block", 256, "frames per audio callback")
	flag.StringVar(&opts.configPath, "config", "", "JSON analysis config, saved again on quit")
	flag.StringVar(&opts.exportPath, "export", "pitchlog.mid", "file written by the e key (.mid, .csv or .json)")
	flag.StringVar(&opts.logLevel, "log-level", "warn", "debug, info, warn or error")
	flag.StringVar(&opts.logFormat, "log-format", "text", "text or json")
	flag.Parse()

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "pitchtuner: %v\n", err)
		os.Exit(1)
	}
}

func setupLogging(level, format string) {
	var logger logging.Logger
	switch format {
	case "json":
		logger = logging.NewJSONLogger(os.Stderr)
	default:
		logger = logging.NewWriterLogger(os.Stderr)
	}
	logger.SetLevel(logging.ParseLevel(level))
	logging.SetGlobalLogger(logger)
}

func loadConfig(path string) (config.AnalysisConfig, error) {
	if path == "" {
		return config.DefaultAnalysisConfig(), nil
	}
	cfg, err := config.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return config.DefaultAnalysisConfig(), nil
	}
	return cfg, err
}

func run(opts options) error {
	setupLogging(opts.logLevel, opts.logFormat)
	logger := logging.WithFields(logging.Fields{"component": "pitchtuner"})

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	pa, err := analyzer.New(cfg)
	if err != nil {
		return err
	}
	if err := pa.Prepare(opts.sampleRate, opts.blockSize); err != nil {
		return err
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize portaudio: %w", err)
	}
	defer portaudio.Terminate()

	sampleRate := opts.sampleRate
	stream, err := portaudio.OpenDefaultStream(1, 0, sampleRate, opts.blockSize, func(in []float32) {
		pa.Process(in, sampleRate)
	})
	if err != nil {
		return fmt.Errorf("failed to open input stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("failed to start input stream: %w", err)
	}

	kb, err := newKeyboard()
	if err != nil {
		logger.Warn("keyboard controls disabled", logging.Fields{"reason": err.Error()})
	} else {
		defer kb.Restore()
	}

	t := &tuner{
		analyzer:   pa,
		stream:     stream,
		opts:       opts,
		logger:     logger,
		colors:     kb != nil,
		statusLine: os.Stdout,
	}
	runErr := t.loop(kb)

	if err := stream.Stop(); err != nil {
		logger.Error(err, "failed to stop input stream")
	}
	fmt.Fprint(os.Stdout, "\r\n")

	if opts.configPath != "" {
		if err := config.Save(opts.configPath, pa.Config()); err != nil {
			logger.Error(err, "failed to save config")
		}
	}
	return runErr
}

type tuner struct {
	analyzer   *analyzer.PitchAnalyzer
	stream     *portaudio.Stream
	opts       options
	logger     logging.Logger
	colors     bool
	statusLine *os.File
	message    string
}

func (t *tuner) loop(kb *keyboard) error {
	var keys <-chan byte
	if kb != nil {
		keys = kb.Keys()
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	fmt.Fprint(t.statusLine, helpText+"\r\n")
	for {
		select {
		case <-interrupt:
			return nil
		case key, ok := <-keys:
			if !ok {
				keys = nil
				continue
			}
			quit, err := t.handleKey(key)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
		case <-ticker.C:
			t.draw()
		}
	}
}

func (t *tuner) draw() {
	line := renderStatus(statusView{
		Estimate:  t.analyzer.Estimate(),
		Config:    t.analyzer.Config(),
		HopSize:   t.analyzer.HopSize(),
		Recording: t.analyzer.IsRecording(),
		LogSize:   t.analyzer.LogSize(),
		Colors:    t.colors,
	})
	if t.message != "" {
		line += "  " + t.message
	}
	// clear to end of line so shorter lines leave no residue
	fmt.Fprintf(t.statusLine, "\r%s\033[K", line)
}

// handleKey applies one key press and reports whether to quit.
func (t *tuner) handleKey(key byte) (bool, error) {
	cfg := t.analyzer.Config()

	switch key {
	case 'q', 'Q', 3: // 3 = Ctrl+C in raw mode
		return true, nil
	case 'r':
		t.analyzer.StartRecording()
		t.message = ""
	case 's':
		t.analyzer.StopRecording()
	case 'c':
		t.analyzer.ClearRecording()
		t.message = ""
	case '+', '=':
		return false, t.reconfigure(cfg.WithBufferSize(cfg.BufferSize * 2))
	case '-', '_':
		return false, t.reconfigure(cfg.WithBufferSize(cfg.BufferSize / 2))
	case ']':
		return false, t.reconfigure(cfg.WithUpdateRate(cfg.UpdateRate + 1))
	case '[':
		return false, t.reconfigure(cfg.WithUpdateRate(cfg.UpdateRate - 1))
	case 'e':
		t.exportLog()
	}
	return false, nil
}

// reconfigure stops the stream so Prepare never overlaps a callback, then
// restarts it with the new configuration.
func (t *tuner) reconfigure(cfg config.AnalysisConfig) error {
	if cfg == t.analyzer.Config() {
		return nil
	}
	if err := t.analyzer.Configure(cfg); err != nil {
		return err
	}

	if err := t.stream.Stop(); err != nil {
		return fmt.Errorf("failed to stop input stream: %w", err)
	}
	if err := t.analyzer.Prepare(t.opts.sampleRate, t.opts.blockSize); err != nil {
		return err
	}
	if err := t.stream.Start(); err != nil {
		return fmt.Errorf("failed to restart input stream: %w", err)
	}
	return nil
}

func (t *tuner) exportLog() {
	events := t.analyzer.PitchLog()
	if len(events) == 0 {
		t.message = "nothing recorded"
		return
	}

	format, err := formatForPath(t.opts.exportPath)
	if err != nil {
		t.message = err.Error()
		return
	}

	f, err := os.Create(t.opts.exportPath)
	if err != nil {
		t.logger.Error(err, "failed to create export file")
		t.message = "export failed"
		return
	}
	defer f.Close()

	if err := export.Write(f, format, events); err != nil {
		t.logger.Error(err, "failed to export pitch log", logging.Fields{"path": t.opts.exportPath})
		t.message = "export failed"
		return
	}
	t.message = fmt.Sprintf("wrote %d events to %s", len(events), t.opts.exportPath)
	t.logger.Info("pitch log exported", logging.Fields{
		"path":   t.opts.exportPath,
		"events": len(events),
		"format": string(format),
	})
}

func formatForPath(path string) (export.Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", fmt.Errorf("export path %q has no extension", path)
	}
	return export.ParseFormat(ext[1:])
}
