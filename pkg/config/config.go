// Package config holds CLI and library configuration for detection
// runs, with flag registration and YAML config-file loading.
package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/redpill/redpill/pkg/duration"
)

// Config holds all detection run options.
type Config struct {
	// Technique selection
	Techniques     string `yaml:"techniques"`      // Comma-separated names to run (empty = all)
	SkipTechniques string `yaml:"skip_techniques"` // Comma-separated names to skip

	// Execution settings
	Concurrency int           `yaml:"concurrency"` // Parallel techniques (default: 1, sequential)
	Timeout     time.Duration `yaml:"timeout"`     // Per-technique budget
	Pace        float64       `yaml:"pace"`        // Max technique starts per second (0 = unpaced)
	FirstMatch  bool          `yaml:"first_match"` // Stop at first detection

	// Output settings
	OutputFile   string `yaml:"output"`   // Output file path (empty = stdout)
	OutputFormat string `yaml:"format"`   // console, json, jsonl
	Verbose      bool   `yaml:"verbose"`  // Debug logging
	Silent       bool   `yaml:"silent"`   // Suppress per-technique lines
	NoColor      bool   `yaml:"no_color"` // Disable colored output

	// Observability
	MetricsPort  int    `yaml:"metrics_port"`  // Prometheus scrape port (0 = off)
	OTLPEndpoint string `yaml:"otlp_endpoint"` // OTLP trace endpoint (empty = off)
	OTLPInsecure bool   `yaml:"otlp_insecure"` // Plaintext OTLP connection
}

// Default returns a Config with the standard defaults.
func Default() *Config {
	return &Config{
		Concurrency:  1,
		Timeout:      duration.TechniqueBudget,
		OutputFormat: "console",
	}
}

// RegisterFlags registers all options on the given flag set, mirroring
// the YAML field names.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Techniques, "techniques", c.Techniques, "Comma-separated technique names to run (empty = all)")
	fs.StringVar(&c.Techniques, "t", c.Techniques, "Techniques to run (alias)")
	fs.StringVar(&c.SkipTechniques, "skip", c.SkipTechniques, "Comma-separated technique names to skip")

	fs.IntVar(&c.Concurrency, "concurrency", c.Concurrency, "Techniques to run in parallel (1 = sequential)")
	fs.IntVar(&c.Concurrency, "c", c.Concurrency, "Concurrency (alias)")
	fs.DurationVar(&c.Timeout, "timeout", c.Timeout, "Per-technique execution budget")
	fs.Float64Var(&c.Pace, "pace", c.Pace, "Maximum technique starts per second (0 = unpaced)")
	fs.BoolVar(&c.FirstMatch, "first-match", c.FirstMatch, "Stop at the first positive technique")

	fs.StringVar(&c.OutputFile, "output", c.OutputFile, "Output file path (empty = stdout)")
	fs.StringVar(&c.OutputFile, "o", c.OutputFile, "Output file (alias)")
	fs.StringVar(&c.OutputFormat, "format", c.OutputFormat, "Output format: console, json, jsonl")
	fs.BoolVar(&c.Verbose, "verbose", c.Verbose, "Verbose output")
	fs.BoolVar(&c.Verbose, "v", c.Verbose, "Verbose (alias)")
	fs.BoolVar(&c.Silent, "silent", c.Silent, "Suppress per-technique output")
	fs.BoolVar(&c.NoColor, "no-color", c.NoColor, "Disable colored output")

	fs.IntVar(&c.MetricsPort, "metrics-port", c.MetricsPort, "Prometheus metrics port (0 = disabled)")
	fs.StringVar(&c.OTLPEndpoint, "otlp-endpoint", c.OTLPEndpoint, "OTLP trace endpoint (empty = disabled)")
	fs.BoolVar(&c.OTLPInsecure, "otlp-insecure", c.OTLPInsecure, "Use plaintext OTLP connection")
}

// LoadFile merges a YAML config file into the Config. Flag values
// registered after loading take precedence.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Validate checks the configuration for semantic errors.
func (c *Config) Validate() error {
	switch c.OutputFormat {
	case "console", "json", "jsonl":
	default:
		return fmt.Errorf("%w: unknown output format %q", ErrInvalidConfig, c.OutputFormat)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("%w: negative concurrency", ErrInvalidConfig)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: negative timeout", ErrInvalidConfig)
	}
	if c.Pace < 0 {
		return fmt.Errorf("%w: negative pace", ErrInvalidConfig)
	}
	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		return fmt.Errorf("%w: metrics port out of range", ErrInvalidConfig)
	}
	return nil
}

// TechniqueFilter returns the include and skip sets parsed from the
// comma-separated options.
func (c *Config) TechniqueFilter() (include, skip map[string]bool) {
	return parseSet(c.Techniques), parseSet(c.SkipTechniques)
}

func parseSet(csv string) map[string]bool {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	set := make(map[string]bool)
	for _, name := range strings.Split(csv, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			set[name] = true
		}
	}
	return set
}
