// Command redpill runs hypervisor-presence detection techniques and
// reports whether the executing environment is virtualized.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/time/rate"

	"github.com/redpill/redpill/pkg/config"
	"github.com/redpill/redpill/pkg/duration"
	"github.com/redpill/redpill/pkg/engine"
	"github.com/redpill/redpill/pkg/metrics"
	"github.com/redpill/redpill/pkg/output"
	"github.com/redpill/redpill/pkg/technique"
	"github.com/redpill/redpill/pkg/telemetry"
	"github.com/redpill/redpill/pkg/ui"
	"github.com/redpill/redpill/pkg/verdict"

	// Technique packs register themselves on import.
	_ "github.com/redpill/redpill/pkg/techniques/behavior"
	_ "github.com/redpill/redpill/pkg/techniques/signature"
)

const version = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return verdict.Configuration.Int()
	}

	switch args[0] {
	case "scan":
		return runScan(args[1:], false)
	case "detect":
		return runScan(args[1:], true)
	case "list":
		return runList(args[1:])
	case "version":
		fmt.Printf("redpill %s\n", version)
		return 0
	case "help", "-h", "--help":
		printUsage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		return verdict.Configuration.Int()
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `redpill - hypervisor presence detection

Usage:
  redpill scan [flags]     Run every registered technique and report results
  redpill detect [flags]   Stop at the first positive technique
  redpill list             List registered techniques
  redpill version          Print version

Run 'redpill scan -h' for flags.
`)
}

// loadConfig builds the effective configuration: defaults, then the
// YAML config file if one was named, then flags (flags win).
func loadConfig(name string, args []string) (*config.Config, error) {
	cfg := config.Default()

	if path := configFileFromArgs(args); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	fs := flag.NewFlagSet(name, flag.ExitOnError)
	var configFile string
	fs.StringVar(&configFile, "config", "", "YAML config file")
	cfg.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// configFileFromArgs prescans for -config so file values can act as
// flag defaults.
func configFileFromArgs(args []string) string {
	for i, arg := range args {
		switch arg {
		case "-config", "--config":
			if i+1 < len(args) {
				return args[i+1]
			}
		}
		for _, prefix := range []string{"-config=", "--config="} {
			if len(arg) > len(prefix) && arg[:len(prefix)] == prefix {
				return arg[len(prefix):]
			}
		}
	}
	return ""
}

func setupLogging(cfg *config.Config) {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	if cfg.Silent {
		level = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// selectTechniques applies the include/skip filters to the registry
// snapshot, preserving registration order.
func selectTechniques(cfg *config.Config) []technique.Technique {
	include, skip := cfg.TechniqueFilter()

	var selected []technique.Technique
	for _, t := range technique.DefaultRegistry.Techniques() {
		if include != nil && !include[t.Name()] {
			continue
		}
		if skip[t.Name()] {
			continue
		}
		selected = append(selected, t)
	}
	return selected
}

func runScan(args []string, firstMatch bool) int {
	cfg, err := loadConfig("scan", args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return verdict.Configuration.Int()
	}
	if firstMatch {
		cfg.FirstMatch = true
	}

	setupLogging(cfg)
	if cfg.NoColor || !ui.ColorCapable() {
		ui.DisableColor()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, duration.ScanBudget)
	defer cancel()

	opts := []engine.Option{
		engine.WithTimeout(cfg.Timeout),
		engine.WithConcurrency(cfg.Concurrency),
	}
	if cfg.Pace > 0 {
		opts = append(opts, engine.WithPace(rate.NewLimiter(rate.Limit(cfg.Pace), 1)))
	}

	if cfg.MetricsPort > 0 {
		meter := metrics.NewMeter()
		if err := meter.Serve(cfg.MetricsPort); err != nil {
			fmt.Fprintf(os.Stderr, "metrics error: %v\n", err)
			return verdict.Configuration.Int()
		}
		defer meter.Close()
		opts = append(opts, engine.WithMeter(meter))
	}

	if cfg.OTLPEndpoint != "" {
		exporter, err := telemetry.New(ctx, telemetry.Options{
			Endpoint:       cfg.OTLPEndpoint,
			ServiceVersion: version,
			Insecure:       cfg.OTLPInsecure,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "telemetry error: %v\n", err)
			return verdict.Configuration.Int()
		}
		defer exporter.Shutdown(context.Background())
		opts = append(opts, engine.WithTracer(exporter.Tracer()))
	}

	eng := engine.New(opts...)
	techniques := selectTechniques(cfg)

	if cfg.FirstMatch {
		v := eng.Detect(ctx, techniques)
		fmt.Println(ui.FormatVerdict(v.String()))
		if interrupted(ctx) {
			return verdict.Interrupted.Int()
		}
		return verdict.FromVerdict(v).Int()
	}

	report := eng.RunAll(ctx, techniques)

	writer, err := output.NewWriter(cfg.OutputFile, cfg.OutputFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "output error: %v\n", err)
		return verdict.Configuration.Int()
	}
	defer writer.Close()
	if cfg.Silent {
		writer.Silence()
	}

	if err := writer.WriteReport(report); err != nil {
		fmt.Fprintf(os.Stderr, "output error: %v\n", err)
		return verdict.Configuration.Int()
	}

	if interrupted(ctx) {
		return verdict.Interrupted.Int()
	}
	return verdict.FromReport(report).Int()
}

func interrupted(ctx context.Context) bool {
	return errors.Is(ctx.Err(), context.Canceled)
}

func runList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	noColor := fs.Bool("no-color", false, "Disable colored output")
	if err := fs.Parse(args); err != nil {
		return verdict.Configuration.Int()
	}
	if *noColor || !ui.ColorCapable() {
		ui.DisableColor()
	}

	techniques := technique.DefaultRegistry.Techniques()
	fmt.Println(ui.TitleStyle.Render(fmt.Sprintf("%d registered techniques", len(techniques))))
	for _, t := range techniques {
		fmt.Printf("  %s\n      %s\n",
			ui.NameStyle.Render(t.Name()),
			ui.DescriptionStyle.Render(t.Description()))
	}
	return 0
}
