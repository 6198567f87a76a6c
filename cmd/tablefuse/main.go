package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tablefuse/tablefuse"
)

// Config mirrors the YAML configuration file. Flags override any
// value set here.
type Config struct {
	Input     string `yaml:"input"`
	Output    string `yaml:"output"`
	DPI       int    `yaml:"dpi"`
	Detector  string `yaml:"detector"`
	SceneText string `yaml:"scene_text"`
	TextLayer string `yaml:"text_layer"`
	Workers   int    `yaml:"workers"`

	// PageTimeout is a Go duration string, e.g. "45s".
	PageTimeout string `yaml:"page_timeout"`

	DiagDir string `yaml:"diag_dir"`
	Verbose bool   `yaml:"verbose"`

	pageTimeout time.Duration
}

func loadConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.PageTimeout != "" {
		d, err := time.ParseDuration(cfg.PageTimeout)
		if err != nil {
			return cfg, fmt.Errorf("parse page_timeout: %w", err)
		}
		cfg.pageTimeout = d
	}
	return cfg, nil
}

func main() {
	configPtr := flag.String("config", "", "Path to a YAML configuration file")
	inputPtr := flag.String("input", "", "Path to the input PDF")
	outputPtr := flag.String("output", "", "Output directory (default out)")
	dpiPtr := flag.Int("dpi", 0, "Rasterization DPI (default 150)")
	detectorPtr := flag.String("detector", "", "Base URL of the table detection service")
	scenePtr := flag.String("scene-text", "", "Base URL of the scene-text service (optional)")
	layerPtr := flag.String("text-layer", "", "Path to the embedded text layer JSON (optional)")
	workersPtr := flag.Int("workers", 0, "Concurrent pages (default one per CPU)")
	timeoutPtr := flag.Duration("page-timeout", 0, "Per-page processing timeout (0 disables)")
	diagPtr := flag.String("diag", "", "Directory for diagnostic overlays (optional)")
	verbosePtr := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	cfg, err := loadConfig(*configPtr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	override(&cfg.Input, *inputPtr)
	override(&cfg.Output, *outputPtr)
	override(&cfg.Detector, *detectorPtr)
	override(&cfg.SceneText, *scenePtr)
	override(&cfg.TextLayer, *layerPtr)
	override(&cfg.DiagDir, *diagPtr)
	if *dpiPtr > 0 {
		cfg.DPI = *dpiPtr
	}
	if *workersPtr > 0 {
		cfg.Workers = *workersPtr
	}
	if *timeoutPtr > 0 {
		cfg.pageTimeout = *timeoutPtr
	}
	if *verbosePtr {
		cfg.Verbose = true
	}

	if cfg.Input == "" || cfg.Detector == "" {
		fmt.Fprintln(os.Stderr, "usage: tablefuse -input doc.pdf -detector http://host:port [options]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	job := tablefuse.Open(cfg.Input).
		DetectorService(cfg.Detector).
		Logger(logger)
	if cfg.Output != "" {
		job = job.OutputDir(cfg.Output)
	}
	if cfg.DPI > 0 {
		job = job.DPI(cfg.DPI)
	}
	if cfg.SceneText != "" {
		job = job.SceneTextService(cfg.SceneText)
	}
	if cfg.TextLayer != "" {
		job = job.TextLayer(cfg.TextLayer)
	}
	if cfg.Workers > 0 {
		job = job.Workers(cfg.Workers)
	}
	if cfg.pageTimeout > 0 {
		job = job.PageTimeout(cfg.pageTimeout)
	}
	if cfg.DiagDir != "" {
		job = job.Diagnostics(cfg.DiagDir)
	}

	report, err := job.Run(ctx)
	if err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
	for _, failed := range report.Failed() {
		logger.Warn("page failed", "page", failed.PageNum, "error", failed.Err)
	}
	logger.Info("run complete",
		"pages", len(report.Results),
		"failed", len(report.Failed()))
	if report.Err() != nil {
		os.Exit(1)
	}
}

func override(dst *string, val string) {
	if val != "" {
		*dst = val
	}
}
