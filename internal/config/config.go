// Package config loads the server configuration from a YAML file layered
// under command-line flags.
package config

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"task-petri-flow/internal/engine"

	"gopkg.in/yaml.v3"
)

// Config is the full server configuration
type Config struct {
	Server  ServerConfig        `yaml:"server"`
	Network string              `yaml:"network"` // definition file; empty selects the built-in network
	Motion  engine.MotionConfig `yaml:"motion"`
	Logging LoggingConfig       `yaml:"logging"`
}

// ServerConfig holds the HTTP listener settings
type ServerConfig struct {
	Port string `yaml:"port"`
}

// LoggingConfig selects the slog handler
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Default returns the configuration used when no file is given
func Default() Config {
	return Config{
		Server: ServerConfig{Port: "8080"},
		Motion: engine.DefaultMotionConfig(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the YAML file at path over the defaults. A missing file is an
// error; an empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(trimmed)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: %s does not exist", trimmed)
		}
		return Config{}, fmt.Errorf("config: read %s: %w", trimmed, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode %s: %w", trimmed, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", trimmed, err)
	}
	return cfg, nil
}

// FromFlags parses args, loads the file named by -config and applies the
// remaining flags on top of it. Only flags that were set override the file.
func FromFlags(name string, args []string) (Config, error) {
	fset := flag.NewFlagSet(name, flag.ContinueOnError)
	path := fset.String("config", "", "Path to a YAML configuration file")
	port := fset.String("port", "", "Port to run the server on")
	network := fset.String("network", "", "Network definition file (JSON or YAML)")
	level := fset.String("log-level", "", "Log level: debug, info, warn, error")
	if err := fset.Parse(args); err != nil {
		return Config{}, err
	}

	cfg, err := Load(*path)
	if err != nil {
		return Config{}, err
	}

	fset.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Server.Port = *port
		case "network":
			cfg.Network = *network
		case "log-level":
			cfg.Logging.Level = *level
		}
	})

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Validate checks every section and reports all problems at once
func (c Config) Validate() error {
	var errs []error

	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %q is not a valid port", c.Server.Port))
	}
	if err := c.Motion.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("motion: %w", err))
	}
	if _, err := parseLevel(c.Logging.Level); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q must be text or json", c.Logging.Format))
	}

	return errors.Join(errs...)
}

// NewLogger builds the slog logger described by the logging section
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Logging.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(c.Logging.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("logging.level %q is not a valid level", s)
	}
	return level, nil
}
