// Package config loads and validates the signal core configuration.
//
// Configuration is a yaml file validated against an embedded CUE schema,
// so malformed files fail at startup with positioned errors rather than
// partway through a poll cycle.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSrc string

// Defaults applied when the file omits a field.
const (
	DefaultPollInterval = 10 * time.Second
	DefaultCycleTimeout = 30 * time.Second
	DefaultStaleAfter   = 24 * time.Hour
	DefaultPageSize     = 100
	DefaultMaxPages     = 10
)

// Topic is one poll source. An empty Type folds every message on the topic.
type Topic struct {
	Topic string `yaml:"topic"`
	Type  string `yaml:"type,omitempty"`
}

// Config is the validated runtime configuration.
type Config struct {
	DBPath       string        `yaml:"db_path"`
	MirrorURL    string        `yaml:"mirror_url"`
	ProvisionURL string        `yaml:"provision_url,omitempty"`
	PollInterval time.Duration `yaml:"-"`
	CycleTimeout time.Duration `yaml:"-"`
	StaleAfter   time.Duration `yaml:"-"`
	PageSize     int           `yaml:"page_size,omitempty"`
	MaxPages     int           `yaml:"max_pages,omitempty"`
	Topics       []Topic       `yaml:"topics"`
}

// rawConfig mirrors the file shape: durations arrive as strings.
type rawConfig struct {
	DBPath       string  `yaml:"db_path"`
	MirrorURL    string  `yaml:"mirror_url"`
	ProvisionURL string  `yaml:"provision_url"`
	PollInterval string  `yaml:"poll_interval"`
	CycleTimeout string  `yaml:"cycle_timeout"`
	StaleAfter   string  `yaml:"stale_after"`
	PageSize     int     `yaml:"page_size"`
	MaxPages     int     `yaml:"max_pages"`
	Topics       []Topic `yaml:"topics"`
}

// Load reads, validates and defaults a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse validates configuration bytes against the embedded schema and
// fills defaults.
func Parse(data []byte) (*Config, error) {
	// Decode to a generic map first so the CUE schema sees exactly what
	// the file says, unknown keys included.
	var generic map[string]any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}
	if err := validate(generic); err != nil {
		return nil, err
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}

	cfg := &Config{
		DBPath:       raw.DBPath,
		MirrorURL:    raw.MirrorURL,
		ProvisionURL: raw.ProvisionURL,
		PollInterval: DefaultPollInterval,
		CycleTimeout: DefaultCycleTimeout,
		StaleAfter:   DefaultStaleAfter,
		PageSize:     DefaultPageSize,
		MaxPages:     DefaultMaxPages,
		Topics:       raw.Topics,
	}
	if raw.PageSize > 0 {
		cfg.PageSize = raw.PageSize
	}
	if raw.MaxPages > 0 {
		cfg.MaxPages = raw.MaxPages
	}
	if err := setDuration(&cfg.PollInterval, "poll_interval", raw.PollInterval); err != nil {
		return nil, err
	}
	if err := setDuration(&cfg.CycleTimeout, "cycle_timeout", raw.CycleTimeout); err != nil {
		return nil, err
	}
	if err := setDuration(&cfg.StaleAfter, "stale_after", raw.StaleAfter); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDuration parses a duration field, leaving the default in place when
// the file omits it.
func setDuration(dst *time.Duration, name, src string) error {
	if src == "" {
		return nil
	}
	d, err := time.ParseDuration(src)
	if err != nil {
		return fmt.Errorf("config %s: %w", name, err)
	}
	*dst = d
	return nil
}

// validate unifies the decoded file with the #Config schema.
func validate(generic map[string]any) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSrc)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))
	if err := def.Err(); err != nil {
		return fmt.Errorf("lookup config schema: %w", err)
	}

	val := ctx.Encode(generic)
	if err := val.Err(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	unified := def.Unify(val)
	if err := unified.Validate(cue.Concrete(true), cue.Final()); err != nil {
		return fmt.Errorf("invalid config: %s", errors.Details(err, nil))
	}
	return nil
}
