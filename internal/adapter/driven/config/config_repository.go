package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/diillson/tmc-summarizer-go/internal/domain/repository"
	"github.com/diillson/tmc-summarizer-go/internal/shared/types"
	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// decoders maps a config file extension to the format that reads it.
var decoders = map[string]struct {
	format    string
	unmarshal func([]byte, interface{}) error
}{
	".toml": {"TOML", toml.Unmarshal},
	".yaml": {"YAML", yaml.Unmarshal},
	".yml":  {"YAML", yaml.Unmarshal},
	".json": {"JSON", json.Unmarshal},
}

// ConfigRepositoryImpl implementa o ConfigRepository.
type ConfigRepositoryImpl struct{}

// NewConfigRepository cria uma nova implementação do ConfigRepository.
func NewConfigRepository() repository.ConfigRepository {
	return &ConfigRepositoryImpl{}
}

// LoadConfigFile reads a TOML, YAML or JSON config file and validates the
// summary settings it carries. A relative output_dir is taken from the
// directory of the config file.
func (r *ConfigRepositoryImpl) LoadConfigFile(filePath string) (*types.Config, error) {
	decoder, ok := decoders[strings.ToLower(filepath.Ext(filePath))]
	if !ok {
		return nil, &types.ConfigError{Path: filePath,
			Reason: fmt.Sprintf("unsupported config file format %q", filepath.Ext(filePath))}
	}

	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return nil, &types.ConfigError{Path: filePath, Reason: "cannot access file", Err: err}
	}
	if fileInfo.IsDir() {
		return nil, &types.ConfigError{Path: filePath, Reason: "is a directory, not a file"}
	}

	fileData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, &types.ConfigError{Path: filePath, Reason: "cannot read file", Err: err}
	}

	var cfg types.Config
	if err := decoder.unmarshal(fileData, &cfg); err != nil {
		return nil, &types.ConfigError{Path: filePath, Reason: "malformed " + decoder.format, Err: err}
	}

	if err := validate(&cfg, filePath); err != nil {
		return nil, err
	}

	if cfg.OutputDir != "" && !filepath.IsAbs(cfg.OutputDir) {
		cfg.OutputDir = filepath.Join(filepath.Dir(filePath), cfg.OutputDir)
	}
	return &cfg, nil
}

// validate rejects settings the summary would otherwise replace with defaults.
func validate(cfg *types.Config, path string) error {
	if cfg.PeakWindow != nil && *cfg.PeakWindow <= 0 {
		return &types.ConfigError{Path: path, Field: "peak_window",
			Reason: fmt.Sprintf("must be a positive number of intervals, got %d", *cfg.PeakWindow)}
	}
	if cfg.SplitHour != nil && (*cfg.SplitHour < 1 || *cfg.SplitHour > 23) {
		return &types.ConfigError{Path: path, Field: "split_hour",
			Reason: fmt.Sprintf("must be an hour between 1 and 23, got %d", *cfg.SplitHour)}
	}
	for _, rt := range cfg.ReportType {
		switch strings.ToLower(strings.TrimSpace(rt)) {
		case "xlsx", "csv", "json", "pdf":
		default:
			return &types.ConfigError{Path: path, Field: "report_type",
				Reason: fmt.Sprintf("unknown report type %q", rt)}
		}
	}
	return nil
}
