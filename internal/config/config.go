// Package config loads lessonboard settings from defaults, an optional YAML
// file and command-line flags, in that order of precedence.
package config

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/hailam/lessonboard/internal/board"
)

// ErrInvalidConfig indicates a configuration that fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

var validate = validator.New()

// Config holds the application settings.
type Config struct {
	// DBPath is the archive directory; empty selects the data directory.
	DBPath string `yaml:"db_path"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" validate:"required,oneof=debug info warn error"`
	// Promotion is the promotion policy: queen or strict.
	Promotion string `yaml:"promotion" validate:"required,oneof=queen strict"`
	// HistoryFile is the readline history file; empty selects the data directory.
	HistoryFile string `yaml:"history_file"`
	// AutoplayDelay is the pause between moves for the play command.
	AutoplayDelay time.Duration `yaml:"autoplay_delay" validate:"gte=0,lte=1m"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel:      "warn",
		Promotion:     board.PromoteToQueen.String(),
		AutoplayDelay: 500 * time.Millisecond,
	}
}

// Load returns the defaults overlaid with the YAML file at path. An empty
// path skips the file. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	if err := cfg.loadFile(path); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Parse registers -config and the settings flags on fs and parses args.
// The result is the defaults, overlaid with the -config file, overlaid
// with the flags actually given on the command line.
func Parse(fs *flag.FlagSet, args []string) (Config, error) {
	fromFlags := Default()
	fromFlags.Flags(fs)
	path := fs.String("config", "", "YAML config file")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if *path != "" {
		if err := cfg.loadFile(*path); err != nil {
			return Config{}, err
		}
	}

	overlay := flag.NewFlagSet("overlay", flag.ContinueOnError)
	cfg.Flags(overlay)
	var setErr error
	fs.Visit(func(f *flag.Flag) {
		if overlay.Lookup(f.Name) == nil || setErr != nil {
			return
		}
		setErr = overlay.Set(f.Name, f.Value.String())
	})
	if setErr != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, setErr)
	}
	return cfg, cfg.Validate()
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := c.decode(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	return nil
}

// decode overlays YAML onto c, rejecting unknown keys.
func (c *Config) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Flags binds the overridable settings to fs, using c's current values as
// the flag defaults.
func (c *Config) Flags(fs *flag.FlagSet) {
	fs.StringVar(&c.DBPath, "db", c.DBPath, "archive directory (default: platform data dir)")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&c.Promotion, "promotion", c.Promotion, "promotion policy: queen or strict")
	fs.StringVar(&c.HistoryFile, "history", c.HistoryFile, "readline history file")
	fs.DurationVar(&c.AutoplayDelay, "autoplay-delay", c.AutoplayDelay, "pause between moves for play")
}

// Validate checks every field, returning an error wrapping ErrInvalidConfig.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	var details strings.Builder
	for _, fe := range verrs {
		if details.Len() > 0 {
			details.WriteString("; ")
		}
		switch fe.Tag() {
		case "required":
			fmt.Fprintf(&details, "%s is required", fe.Field())
		case "oneof":
			fmt.Fprintf(&details, "%s must be one of [%s]", fe.Field(), fe.Param())
		case "gte", "lte":
			if fe.Type() == reflect.TypeOf(time.Duration(0)) {
				fmt.Fprintf(&details, "%s must be between 0 and 1m, got %v", fe.Field(), fe.Value())
				continue
			}
			fallthrough
		default:
			fmt.Fprintf(&details, "%s failed %s validation", fe.Field(), fe.Tag())
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, details.String())
}

// PromotionPolicy returns the configured promotion policy.
func (c Config) PromotionPolicy() board.PromotionPolicy {
	p, err := board.ParsePromotionPolicy(c.Promotion)
	if err != nil {
		return board.PromoteToQueen
	}
	return p
}

// NewLogger builds a console logger writing to stderr at the configured level.
func (c Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.DisableStacktrace = true
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}
