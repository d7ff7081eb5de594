// Package config loads the YAML configuration of the cifdict command.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	cifdict "github.com/reoring/cifdict"
)

// Config is the on-disk configuration. Command line flags override it.
type Config struct {
	// Dictionary is the path of the DDL dictionary to validate against.
	Dictionary string `yaml:"dictionary"`
	// Format of the data files ("cif" or a registered driver such as "mmjson").
	Format        string `yaml:"format"`
	CollectAll    bool   `yaml:"collect_all"`
	Policy        string `yaml:"policy"`         // all | any
	DuplicateTags string `yaml:"duplicate_tags"` // ignore | warn | error
	MaxBytes      int64  `yaml:"max_bytes"`
	Language      string `yaml:"language"` // en | ja
	Log           Log    `yaml:"log"`
}

// Log configures the slog handler.
type Log struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Format:        "cif",
		Policy:        "all",
		DuplicateTags: "ignore",
		Language:      "en",
		Log:           Log{Level: "warn", Format: "text"},
	}
}

// Load reads the file at path over the defaults. An empty path returns
// Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(b []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the enumerated settings.
func (c Config) Validate() error {
	var errs []error
	if _, err := parsePolicy(c.Policy); err != nil {
		errs = append(errs, err)
	}
	if _, err := parseSeverity(c.DuplicateTags); err != nil {
		errs = append(errs, err)
	}
	if c.MaxBytes < 0 {
		errs = append(errs, fmt.Errorf("max_bytes must not be negative, got %d", c.MaxBytes))
	}
	switch c.Language {
	case "", "en", "ja":
	default:
		errs = append(errs, fmt.Errorf("language must be en or ja, got %q", c.Language))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// ValidateOpt converts the settings into validation options. c must have
// passed Validate.
func (c Config) ValidateOpt(log *slog.Logger) cifdict.ValidateOpt {
	policy, _ := parsePolicy(c.Policy)
	dup, _ := parseSeverity(c.DuplicateTags)
	return cifdict.ValidateOpt{
		CollectAll: c.CollectAll,
		Policy:     policy,
		Strictness: cifdict.Strictness{OnDuplicateTag: dup},
		MaxBytes:   c.MaxBytes,
		Logger:     log,
	}
}

// Logger builds a slog logger writing to w.
func (c Config) Logger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parsePolicy(s string) (cifdict.ConstraintPolicy, error) {
	switch strings.ToLower(s) {
	case "", "all":
		return cifdict.RequireAll, nil
	case "any":
		return cifdict.RequireAny, nil
	}
	return cifdict.RequireAll, fmt.Errorf("policy must be all or any, got %q", s)
}

func parseSeverity(s string) (cifdict.Severity, error) {
	switch strings.ToLower(s) {
	case "", "ignore":
		return cifdict.Ignore, nil
	case "warn":
		return cifdict.Warn, nil
	case "error":
		return cifdict.Error, nil
	}
	return cifdict.Ignore, fmt.Errorf("duplicate_tags must be ignore, warn or error, got %q", s)
}

func parseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelWarn, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelWarn, fmt.Errorf("log.level: %w", err)
	}
	return l, nil
}
