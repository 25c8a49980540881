package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/acap-packager/internal/arch"
)

// Config holds packaging defaults shared by build runs.
type Config struct {
	// Architecture is the default build target when no flag is given.
	Architecture string `yaml:"architecture"`
	// BuildDir is the root for per-target staging directories.
	BuildDir string `yaml:"build_dir"`
	// OutputDir is where finished archives are copied.
	OutputDir string `yaml:"output_dir"`
	// AdditionalFiles lists extra files staged into every package.
	AdditionalFiles []string `yaml:"additional_files"`
}

const (
	// DefaultConfigFilename is the default filename for packaging settings.
	DefaultConfigFilename = "acap-packager-settings.yaml"

	// DefaultBuildDirname is the default staging root.
	DefaultBuildDirname = "build"

	// DefaultOutputDirname is the default archive destination.
	DefaultOutputDirname = "."

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errEmptyAdditionalFile is returned for blank additional file entries.
	errEmptyAdditionalFile = errors.New("additional file entries must not be blank")
)

// Default returns settings with every directory default filled in.
func Default() *Config {
	return &Config{
		BuildDir:  DefaultBuildDirname,
		OutputDir: DefaultOutputDirname,
	}
}

// Load reads settings from the provided path and validates them.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings and fills in directory defaults.
func Validate(settings *Config) error {
	if settings.Architecture != "" {
		if _, err := arch.Parse(settings.Architecture); err != nil {
			return fmt.Errorf("invalid architecture: %w", err)
		}
	}

	// Set default build directory if not specified
	if settings.BuildDir == "" {
		settings.BuildDir = DefaultBuildDirname
	}

	// Set default output directory if not specified
	if settings.OutputDir == "" {
		settings.OutputDir = DefaultOutputDirname
	}

	for _, file := range settings.AdditionalFiles {
		if strings.TrimSpace(file) == "" {
			return errEmptyAdditionalFile
		}
	}

	return nil
}
