// Package config loads pixelkit settings from YAML and builds the logger.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/nvr-ai/go-pixelkit/adjust"
	"github.com/nvr-ai/go-pixelkit/codec"
	"github.com/nvr-ai/go-pixelkit/dehaze"
	"github.com/nvr-ai/go-pixelkit/edges"
	"github.com/nvr-ai/go-pixelkit/histogram"
	"github.com/nvr-ai/go-pixelkit/video"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid")

// Config is the complete pixelkit configuration.
type Config struct {
	Logging   Logging   `json:"logging" yaml:"logging"`
	Filter    Filter    `json:"filter" yaml:"filter"`
	Adjust    Adjust    `json:"adjust" yaml:"adjust"`
	Dehaze    Dehaze    `json:"dehaze" yaml:"dehaze"`
	Edges     Edges     `json:"edges" yaml:"edges"`
	Histogram Histogram `json:"histogram" yaml:"histogram"`
	Detector  Detector  `json:"detector" yaml:"detector"`
	Sampler   Sampler   `json:"sampler" yaml:"sampler"`
	Output    Output    `json:"output" yaml:"output"`
}

// Logging configures NewLogger.
type Logging struct {
	// Debug enables debug level with a colored text formatter.
	Debug bool `json:"debug" yaml:"debug"`
	// Level overrides the level implied by Debug (e.g. "warn").
	Level string `json:"level" yaml:"level"`
}

// Filter holds spatial filter parameters.
type Filter struct {
	CellSize      int     `json:"cell_size" yaml:"cell_size"`
	Variance      float64 `json:"variance" yaml:"variance"`
	SharpenFactor float64 `json:"sharpen_factor" yaml:"sharpen_factor"`
}

// Adjust holds color adjustment levels in [0,255]; 127 is the identity.
type Adjust struct {
	Saturation int `json:"saturation" yaml:"saturation"`
	Contrast   int `json:"contrast" yaml:"contrast"`
	Brightness int `json:"brightness" yaml:"brightness"`
}

// Dehaze holds the dark-channel window.
type Dehaze struct {
	CellSize int `json:"cell_size" yaml:"cell_size"`
}

// Edges holds the stylization blur.
type Edges struct {
	PaintingCellSize int     `json:"painting_cell_size" yaml:"painting_cell_size"`
	PaintingVariance float64 `json:"painting_variance" yaml:"painting_variance"`
}

// Histogram holds comparator parameters.
type Histogram struct {
	Bins      int     `json:"bins" yaml:"bins"`
	Threshold float64 `json:"threshold" yaml:"threshold"`
}

// Detector holds cascade parameters.
type Detector struct {
	// Cascade is the path of the cascade XML.
	Cascade      string  `json:"cascade" yaml:"cascade"`
	MaxDimension int     `json:"max_dimension" yaml:"max_dimension"`
	MinSize      int     `json:"min_size" yaml:"min_size"`
	IoUThreshold float32 `json:"iou_threshold" yaml:"iou_threshold"`
	RequiredHits int     `json:"required_hits" yaml:"required_hits"`
}

// Sampler holds frame sampling parameters.
type Sampler struct {
	Interval int           `json:"interval" yaml:"interval"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	Stride   int           `json:"stride" yaml:"stride"`
	Count    int           `json:"count" yaml:"count"`
	// Seed fixes the random sampler; zero seeds from the clock.
	Seed int64 `json:"seed" yaml:"seed"`
}

// Output holds still-image encoding parameters.
type Output struct {
	Format  string `json:"format" yaml:"format"`
	Quality int    `json:"quality" yaml:"quality"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Logging: Logging{},
		Filter:  Filter{CellSize: 3, Variance: 1.5, SharpenFactor: 1},
		Adjust: Adjust{
			Saturation: adjust.Base,
			Contrast:   adjust.Base,
			Brightness: adjust.Base,
		},
		Dehaze: Dehaze{CellSize: 15},
		Edges: Edges{
			PaintingCellSize: edges.PaintingCellSize,
			PaintingVariance: edges.PaintingVariance,
		},
		Histogram: Histogram{Bins: histogram.DefaultBins, Threshold: histogram.DefaultThreshold},
		Detector: Detector{
			Cascade:      "haarcascade_frontalface_default.xml",
			RequiredHits: video.DefaultRequiredHits,
		},
		Sampler: Sampler{Interval: 25, Duration: 10 * time.Second, Stride: 1, Count: 10},
		Output:  Output{Format: string(codec.FormatJPEG), Quality: codec.DefaultQuality},
	}
}

// Load reads the YAML file at path over the defaults and validates the result.
// An empty path returns the defaults.
//
// @example
// cfg, err := config.Load("pixelkit.yaml")
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %q", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %q", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every value against the range its component accepts.
func (c *Config) Validate() error {
	for name, level := range map[string]int{
		"adjust.saturation": c.Adjust.Saturation,
		"adjust.contrast":   c.Adjust.Contrast,
		"adjust.brightness": c.Adjust.Brightness,
	} {
		if level < adjust.Min || level > adjust.Max {
			return errors.Wrapf(ErrInvalid, "%s %d outside [%d,%d]", name, level, adjust.Min, adjust.Max)
		}
	}

	switch {
	case c.Filter.CellSize < 1:
		return errors.Wrapf(ErrInvalid, "filter.cell_size %d", c.Filter.CellSize)
	case c.Filter.Variance < 0:
		return errors.Wrapf(ErrInvalid, "filter.variance %g", c.Filter.Variance)
	case c.Dehaze.CellSize < 1:
		return errors.Wrapf(ErrInvalid, "dehaze.cell_size %d", c.Dehaze.CellSize)
	case c.Edges.PaintingCellSize < 1:
		return errors.Wrapf(ErrInvalid, "edges.painting_cell_size %d", c.Edges.PaintingCellSize)
	case c.Histogram.Bins < 1:
		return errors.Wrapf(ErrInvalid, "histogram.bins %d", c.Histogram.Bins)
	case c.Histogram.Threshold < -1 || c.Histogram.Threshold > 1:
		return errors.Wrapf(ErrInvalid, "histogram.threshold %g outside [-1,1]", c.Histogram.Threshold)
	case c.Detector.MaxDimension < 0 || c.Detector.MinSize < 0:
		return errors.Wrap(ErrInvalid, "detector sizes must not be negative")
	case c.Sampler.Interval < 1:
		return errors.Wrapf(ErrInvalid, "sampler.interval %d", c.Sampler.Interval)
	case c.Sampler.Count < 0:
		return errors.Wrapf(ErrInvalid, "sampler.count %d", c.Sampler.Count)
	case c.Output.Quality < 1 || c.Output.Quality > 100:
		return errors.Wrapf(ErrInvalid, "output.quality %d outside [1,100]", c.Output.Quality)
	}

	if _, err := codec.ParseFormat(c.Output.Format); err != nil {
		return errors.Wrapf(ErrInvalid, "output.format: %v", err)
	}
	if c.Logging.Level != "" {
		if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
			return errors.Wrapf(ErrInvalid, "logging.level: %v", err)
		}
	}
	return nil
}

// CodecOptions returns the encoder options for Output.
func (c *Config) CodecOptions() codec.Options {
	f, _ := codec.ParseFormat(c.Output.Format)
	return codec.Options{Format: f, Quality: c.Output.Quality}
}

// NewLogger builds a stdout logger: colored text with full timestamps in
// debug mode, JSON otherwise.
func NewLogger(cfg Logging) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if cfg.Debug {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	if level, err := logrus.ParseLevel(cfg.Level); cfg.Level != "" && err == nil {
		logger.SetLevel(level)
	}
	logger.Debug("Debug logging enabled")
	return logger
}
