// Command pitchscan runs the pitch analyzer over an audio file, as if it were
// played live, and exports the recorded pitch log.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/RyanBlaney/sonido-pitch/analyzer"
	"github.com/RyanBlaney/sonido-pitch/config"
	"github.com/RyanBlaney/sonido-pitch/export"
	"github.com/RyanBlaney/sonido-pitch/logging"
	"github.com/RyanBlaney/sonido-pitch/transcode"
)

type options struct {
	input      string
	sampleRate int
	blockSize  int
	format     string
	out        string
	configPath string
	method     string
	logLevel   string
	logFormat  string
	timeout    time.Duration
}

func main() {
	var opts options
	flag.IntVar(&opts.sampleRate, "rate", 48000, "analysis sample rate in Hz")
	flag.IntVar(&opts.blockSize, "block", 512, "samples per simulated audio callback")
	flag.StringVar(&opts.format, "format", "json", "export format: json, csv or midi")
	flag.StringVar(&opts.out, "out", "-", "export destination, - for stdout")
	flag.StringVar(&opts.configPath, "config", "", "JSON analysis config")
	flag.StringVar(&opts.method, "method", "", "override difference method: yin or yinfft")
	flag.StringVar(&opts.logLevel, "log-level", "info", "debug, info, warn or error")
	flag.StringVar(&opts.logFormat, "log-format", "text", "text or json")
	flag.DurationVar(&opts.timeout, "timeout", 0, "abort the scan after this long, 0 for no limit")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: pitchscan [flags] <file|->\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	opts.input = flag.Arg(0)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "pitchscan: %v\n", err)
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

func run(ctx context.Context, opts options) error {
	setupLogging(opts.logLevel, opts.logFormat)
	logger := logging.WithFields(logging.Fields{
		"component": "pitchscan",
		"input":     opts.input,
	})

	format, err := export.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	cfg := config.DefaultAnalysisConfig()
	if opts.configPath != "" {
		if cfg, err = config.Load(opts.configPath); err != nil {
			return err
		}
	}
	if opts.method != "" {
		cfg.Method = opts.method
	}

	// analysis runs inside the decode loop, so the deadline has to cover
	// both and is left to the caller
	decCfg := transcode.DefaultDecoderConfig()
	decCfg.TargetSampleRate = opts.sampleRate
	decCfg.Timeout = opts.timeout
	decoder := transcode.NewDecoder(decCfg)
	if err := decoder.ValidateConfig(); err != nil {
		return err
	}

	input, stdin := opts.input, io.Reader(nil)
	if input == "-" {
		input, stdin = "pipe:0", os.Stdin
	}

	sampleRate := float64(opts.sampleRate)
	duration := 0.0
	if stdin == nil {
		meta, err := decoder.ProbeFile(ctx, input)
		if err != nil {
			return err
		}
		duration = meta.Duration
		logger.Info("input probed", logging.Fields{
			"codec":       meta.Codec,
			"channels":    meta.Channels,
			"sample_rate": meta.SampleRate,
			"duration":    meta.Duration,
		})
	}

	pa, err := analyzer.New(cfg,
		analyzer.WithLogCapacity(analyzer.LogCapacityFor(duration, sampleRate, cfg)),
		analyzer.WithAnalysisHook(passLogger(logger)),
	)
	if err != nil {
		return err
	}
	if err := pa.Prepare(sampleRate, opts.blockSize); err != nil {
		return err
	}
	pa.StartRecording()

	err = decoder.DecodeStream(ctx, input, stdin, opts.blockSize, func(block []float32) error {
		pa.Process(block, sampleRate)
		return nil
	})
	pa.StopRecording()
	if err != nil {
		return err
	}

	events := pa.PitchLog()
	summary := analyzer.SummarizeLog(events)
	logger.Info("scan complete", logging.Fields{
		"audio_seconds":  pa.Now(),
		"analyses":       pa.AnalysisCount(),
		"events":         summary.Events,
		"distinct_notes": summary.DistinctNotes,
		"mean_frequency": summary.MeanFrequency,
	})

	if err := writeOutput(opts.out, format, events); err != nil {
		return err
	}

	// summary on stderr keeps stdout clean for the export
	enc := json.NewEncoder(os.Stderr)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

// passLogger returns an analysis hook that logs every pass at debug level.
func passLogger(logger logging.Logger) func(analyzer.PitchEstimate) {
	passes := 0
	return func(e analyzer.PitchEstimate) {
		passes++
		logger.Debug("analysis pass", logging.Fields{
			"pass":       passes,
			"note":       e.NoteName,
			"frequency":  e.FrequencyHz,
			"cents":      e.CentsOffset,
			"confidence": e.Confidence,
		})
	}
}

func writeOutput(path string, format export.Format, events []analyzer.PitchEvent) error {
	if path == "-" {
		return export.Write(os.Stdout, format, events)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := export.Write(f, format, events); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
