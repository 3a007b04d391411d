// internal/config/config.go
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kpauljoseph/pdfmargins/internal/pdf"
	"github.com/kpauljoseph/pdfmargins/pkg/models"
	"github.com/kpauljoseph/pdfmargins/pkg/utils"
)

type RasterizerConfig struct {
	Backend string        `yaml:"backend"`
	Command string        `yaml:"command"`
	Timeout time.Duration `yaml:"timeout"`
	TempDir string        `yaml:"temp_dir,omitempty"`
}

// MarginsConfig holds DIM strings ("0.5in", "1cm"); empty means not set.
type MarginsConfig struct {
	Margin string `yaml:"margin,omitempty"`
	Top    string `yaml:"top,omitempty"`
	Right  string `yaml:"right,omitempty"`
	Bottom string `yaml:"bottom,omitempty"`
	Left   string `yaml:"left,omitempty"`
}

type Config struct {
	Resolution float64          `yaml:"resolution"`
	Workers    int              `yaml:"workers"`
	Rasterizer RasterizerConfig `yaml:"rasterizer"`
	Margins    MarginsConfig    `yaml:"margins"`
}

func Default() *Config {
	return &Config{
		Resolution: float64(models.DefaultResolution),
		Workers:    0,
		Rasterizer: RasterizerConfig{
			Backend: pdf.BackendPoppler,
			Command: pdf.DefaultPopplerCommand,
			Timeout: pdf.DefaultTimeout,
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path returns
// the defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	if cfg.Rasterizer.Backend == "" {
		cfg.Rasterizer.Backend = pdf.BackendPoppler
	}
	if cfg.Rasterizer.Command == "" {
		cfg.Rasterizer.Command = pdf.DefaultPopplerCommand
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := models.Resolution(c.Resolution).Validate(); err != nil {
		return err
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", models.ErrUsage)
	}
	if !slices.Contains(pdf.Backends(), c.Rasterizer.Backend) {
		return fmt.Errorf("%w: unknown rasterizer backend %q", models.ErrUsage, c.Rasterizer.Backend)
	}
	if c.Rasterizer.Timeout < 0 {
		return fmt.Errorf("%w: rasterizer timeout must not be negative", models.ErrUsage)
	}
	_, _, err := c.Margins.Parse()
	return err
}

// Parse converts the configured DIM strings to inches. The overall margin is
// returned separately from the per-side values.
func (m MarginsConfig) Parse() (float64, models.MarginSpec, error) {
	var (
		overall float64
		sides   models.MarginSpec
	)
	fields := []struct {
		name  string
		value string
		dst   *float64
	}{
		{"margin", m.Margin, &overall},
		{"top", m.Top, &sides.Top},
		{"right", m.Right, &sides.Right},
		{"bottom", m.Bottom, &sides.Bottom},
		{"left", m.Left, &sides.Left},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		v, err := utils.ParseDimension(f.value)
		if err != nil {
			return 0, models.MarginSpec{}, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = v
	}
	return overall, sides, nil
}

// Resolved returns the margins to check.
func (m MarginsConfig) Resolved() (models.MarginSpec, error) {
	overall, sides, err := m.Parse()
	if err != nil {
		return models.MarginSpec{}, err
	}
	return models.ResolveMargins(overall, sides), nil
}

func (c *Config) RasterizerOptions() pdf.Options {
	return pdf.Options{
		Backend:    c.Rasterizer.Backend,
		Command:    c.Rasterizer.Command,
		Resolution: models.Resolution(c.Resolution),
		Timeout:    c.Rasterizer.Timeout,
		TempDir:    c.Rasterizer.TempDir,
	}
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}
