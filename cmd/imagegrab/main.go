// Command imagegrab downloads every image referenced by one web page.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"

	"github.com/go-scripts/imagegrab/internal/config"
	"github.com/go-scripts/imagegrab/internal/crawler"
	"github.com/go-scripts/imagegrab/internal/progress"
)

// CLIFlags is the command line surface
type CLIFlags struct {
	URL         string `arg:"" help:"Page to collect images from."`
	Dest        string `arg:"" optional:"" help:"Destination directory (default images_YYYYmmdd_HHMMSS)."`
	Concurrency int    `arg:"" optional:"" help:"Maximum simultaneous downloads (default 10)."`

	Config        string        `help:"Path to a YAML configuration file." type:"path"`
	Timeout       time.Duration `help:"Per-request timeout, e.g. 30s."`
	UserAgent     string        `help:"User-Agent header sent with every request." name:"user-agent"`
	RateLimit     float64       `help:"Maximum resource requests per second, 0 for unlimited." name:"rate-limit"`
	RespectRobots bool          `help:"Skip resources disallowed by robots.txt." name:"respect-robots"`
	LogLevel      string        `help:"Log level: debug, info, warn, error." name:"log-level"`
	Quiet         bool          `help:"Disable the spinner and progress bar." short:"q"`
}

func main() {
	var flags CLIFlags
	kong.Parse(&flags,
		kong.Name("imagegrab"),
		kong.Description("Download every image referenced by a web page."),
		kong.UsageOnError(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interactive := !flags.Quiet && isatty.IsTerminal(os.Stdout.Fd())
	os.Exit(run(ctx, flags, os.Stdout, os.Stderr, os.LookupEnv, interactive))
}

// run executes one invocation and returns the process exit code
func run(ctx context.Context, flags CLIFlags, stdout, stderr io.Writer, lookup func(string) (string, bool), interactive bool) int {
	logger := log.NewWithOptions(stderr, log.Options{ReportTimestamp: true})

	cfg, err := buildConfig(flags, lookup, logger)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return 1
	}
	if lvl, err := log.ParseLevel(cfg.Logging.Level); err == nil {
		logger.SetLevel(lvl)
	}

	tracker := progress.New(stdout, interactive)
	c := crawler.New(crawler.Configuration{
		PageURL:       flags.URL,
		OutputDir:     cfg.OutputDir,
		Concurrency:   cfg.Concurrency,
		UserAgent:     cfg.UserAgent,
		Timeout:       cfg.Timeout.Duration,
		MaxBodyBytes:  cfg.MaxBodyBytes,
		RateLimit:     cfg.RateLimit,
		RespectRobots: cfg.RespectRobots,
	}, crawler.WithLogger(logger), crawler.WithReporter(tracker))

	summary, err := c.Run(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	tracker.Summary(summary)
	return 0
}

// buildConfig layers defaults, the config file, IMAGEGRAB_* variables and
// flags, later sources winning.
func buildConfig(flags CLIFlags, lookup func(string) (string, bool), logger *log.Logger) (*config.Config, error) {
	cfg, err := config.Load(flags.Config)
	if err != nil {
		return nil, err
	}
	for _, problem := range cfg.ApplyEnv(lookup) {
		logger.Warn("ignoring environment override", "error", problem)
	}

	if strings.TrimSpace(flags.Dest) != "" {
		cfg.OutputDir = flags.Dest
	}
	if flags.Concurrency != 0 {
		cfg.Concurrency = flags.Concurrency
	}
	if flags.Timeout != 0 {
		cfg.Timeout = config.DurationFrom(flags.Timeout)
	}
	if flags.UserAgent != "" {
		cfg.UserAgent = flags.UserAgent
	}
	if flags.RateLimit != 0 {
		cfg.RateLimit = flags.RateLimit
	}
	if flags.RespectRobots {
		cfg.RespectRobots = true
	}
	if flags.LogLevel != "" {
		cfg.Logging.Level = flags.LogLevel
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = config.DefaultOutputDir(time.Now())
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
