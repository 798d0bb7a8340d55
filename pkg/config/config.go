package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config gathers the run options shared by the binaries. Keys are matched case-insensitively in config files
type Config struct {
	Threads     int    `mapstructure:"threads"`
	File        bool   `mapstructure:"file"`       // Write the result to a file instead of stdout
	OutputDir   string `mapstructure:"output_dir"` // Directory of partitions and merged files
	Compress    bool   `mapstructure:"compress"`   // xz-compress the merged file
	Exhaustive  bool   `mapstructure:"exhaustive"` // Use the permutation-table canonicity test
	MetricsFile string `mapstructure:"metrics_file"`
	Verbose     bool   `mapstructure:"verbose"`
}

func Default() Config {
	return Config{
		Threads:   1,
		OutputDir: "output",
	}
}

// Load reads a JSON, YAML or TOML file (chosen by extension) on top of the defaults
func Load(path string) (Config, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	var raw map[string]any
	switch extension := strings.ToLower(filepath.Ext(path)); extension {
	case ".json":
		err = json.Unmarshal(bytes, &raw)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(bytes, &raw)
	case ".toml":
		err = toml.Unmarshal(bytes, &raw)
	default:
		return Config{}, fmt.Errorf("%w: unsupported config format %q", ErrInvalidConfig, extension)
	}
	if err != nil {
		return Config{}, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}

	config := Default()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &config,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return Config{}, err
	}
	if err := decoder.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}

	return config, config.Validate()
}

func (config Config) Validate() error {
	if config.Threads < 1 {
		return fmt.Errorf("%w: threads must be positive but got %d", ErrInvalidConfig, config.Threads)
	}
	if config.File && config.OutputDir == "" {
		return fmt.Errorf("%w: file output needs an output directory", ErrInvalidConfig)
	}
	return nil
}
