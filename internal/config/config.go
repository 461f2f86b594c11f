package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// FileNames are the config files Load looks for, in order.
var FileNames = []string{"jwalk.yml", "jwalk.yaml"}

// Defaults applied by Load for fields the file leaves unset.
const (
	DefaultWorkers     = 8
	DefaultMaxFileSize = 10 * 1024 * 1024
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
	DefaultFormat      = "table"
)

// DefaultExtensions are the source extensions analyzed when none are
// configured.
var DefaultExtensions = []string{".js", ".mjs", ".cjs", ".jsx", ".ts", ".mts", ".cts", ".tsx"}

// DefaultExclude are directory names skipped during discovery.
var DefaultExclude = []string{"node_modules", ".git", "dist", "build", "coverage", "vendor"}

// ProjectConfig holds project-level settings loaded from jwalk.yml.
type ProjectConfig struct {
	Extensions  []string `yaml:"extensions,omitempty" validate:"omitempty,dive,startswith=."`
	Exclude     []string `yaml:"exclude,omitempty" validate:"omitempty,dive,required"`
	Recursive   *bool    `yaml:"recursive,omitempty"`
	Workers     int      `yaml:"workers,omitempty" validate:"min=1,max=256"`
	MaxFileSize int      `yaml:"maxFileSize,omitempty" validate:"gt=0"`
	Comments    *bool    `yaml:"comments,omitempty"`
	CacheDir    string   `yaml:"cacheDir,omitempty"`
	IndexDir    string   `yaml:"indexDir,omitempty"`
	LogLevel    string   `yaml:"logLevel,omitempty" validate:"oneof=debug info warn error"`
	LogFormat   string   `yaml:"logFormat,omitempty" validate:"oneof=text json"`
	Format      string   `yaml:"format,omitempty" validate:"oneof=table csv json"`
}

var validate = validator.New()

// Default returns a config with every default applied.
func Default() *ProjectConfig {
	cfg := &ProjectConfig{}
	cfg.applyDefaults()
	return cfg
}

// Load attempts to read jwalk.yml or jwalk.yaml from the given directory.
// Returns the default config (not an error) if no config file exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		var cfg ProjectConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		cfg.applyDefaults()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return &cfg, nil
	}
	return Default(), nil
}

// Validate checks the field constraints.
func (c *ProjectConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s fails %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// IsRecursive reports whether discovery descends into subdirectories.
func (c *ProjectConfig) IsRecursive() bool {
	return c.Recursive == nil || *c.Recursive
}

// BindComments reports whether comments are associated with symbols.
func (c *ProjectConfig) BindComments() bool {
	return c.Comments == nil || *c.Comments
}

func (c *ProjectConfig) applyDefaults() {
	if len(c.Extensions) == 0 {
		c.Extensions = append([]string(nil), DefaultExtensions...)
	}
	if c.Exclude == nil {
		c.Exclude = append([]string(nil), DefaultExclude...)
	}
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
	if c.MaxFileSize == 0 {
		c.MaxFileSize = DefaultMaxFileSize
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
	if c.Format == "" {
		c.Format = DefaultFormat
	}
}
