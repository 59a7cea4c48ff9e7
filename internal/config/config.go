package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/menta2k/image-cropper/pkg/cropper"
	"github.com/menta2k/image-cropper/pkg/processing"
)

// Environment variables that override file settings
const (
	EnvConfigPath = "IMAGE_CROPPER_CONFIG"
	EnvLogLevel   = "IMAGE_CROPPER_LOG_LEVEL"
	EnvOutputDir  = "IMAGE_CROPPER_OUTPUT_DIR"
)

// Config holds the application configuration
type Config struct {
	Target    TargetConfig       `json:"target" toml:"target" yaml:"target"`
	Upload    UploadConfig       `json:"upload" toml:"upload" yaml:"upload"`
	Export    ExportConfig       `json:"export" toml:"export" yaml:"export"`
	Crop      CropConfig         `json:"crop" toml:"crop" yaml:"crop"`
	Log       LogConfig          `json:"log" toml:"log" yaml:"log"`
	Templates []cropper.Template `json:"templates,omitempty" toml:"templates,omitempty" yaml:"templates,omitempty"`
}

// TargetConfig holds the initial export size
type TargetConfig struct {
	Width     int    `json:"width" toml:"width" yaml:"width"`
	Height    int    `json:"height" toml:"height" yaml:"height"`
	Template  string `json:"template,omitempty" toml:"template,omitempty" yaml:"template,omitempty"`
	KeepRatio bool   `json:"keep_ratio" toml:"keep_ratio" yaml:"keep_ratio"`
}

// UploadConfig limits what one upload accepts
type UploadConfig struct {
	MaxFiles int `json:"max_files" toml:"max_files" yaml:"max_files"`
}

// ExportConfig holds artifact encoding and delivery settings
type ExportConfig struct {
	Format       string `json:"format" toml:"format" yaml:"format"`
	Quality      int    `json:"quality" toml:"quality" yaml:"quality"`
	Lossless     bool   `json:"lossless" toml:"lossless" yaml:"lossless"`
	OutputDir    string `json:"output_dir" toml:"output_dir" yaml:"output_dir"`
	SinglePrefix string `json:"single_prefix" toml:"single_prefix" yaml:"single_prefix"`
	BatchPrefix  string `json:"batch_prefix" toml:"batch_prefix" yaml:"batch_prefix"`
	Throttle     string `json:"throttle" toml:"throttle" yaml:"throttle"`
}

// CropConfig holds crop view settings
type CropConfig struct {
	AutoCropArea float64 `json:"auto_crop_area" toml:"auto_crop_area" yaml:"auto_crop_area"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `json:"level" toml:"level" yaml:"level"`
	Format string `json:"format" toml:"format" yaml:"format"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Target: TargetConfig{
			Width:     cropper.Square.Width,
			Height:    cropper.Square.Height,
			KeepRatio: true,
		},
		Upload: UploadConfig{
			MaxFiles: 50,
		},
		Export: ExportConfig{
			Format:       processing.FormatPNG,
			Quality:      90,
			OutputDir:    "./output",
			SinglePrefix: "edited",
			BatchPrefix:  "batch",
			Throttle:     "100ms",
		},
		Crop: CropConfig{
			AutoCropArea: cropper.DefaultViewOptions().AutoCropArea,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// ThrottleDuration parses the pause between batch items
func (c *Config) ThrottleDuration() (time.Duration, error) {
	if c.Export.Throttle == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Export.Throttle)
	if err != nil {
		return 0, fmt.Errorf("export.throttle: %w", err)
	}
	return d, nil
}

// AllTemplates returns the built-in presets with configured ones layered on top;
// a configured template replaces a preset of the same name.
func (c *Config) AllTemplates() []cropper.Template {
	templates := cropper.CommonTemplates()
	for _, custom := range c.Templates {
		replaced := false
		for i := range templates {
			if strings.EqualFold(templates[i].Name, custom.Name) {
				templates[i] = custom
				replaced = true
				break
			}
		}
		if !replaced {
			templates = append(templates, custom)
		}
	}
	return templates
}

// LoadFromFile loads configuration from a TOML, YAML or JSON file, chosen by
// extension. Missing keys keep their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".toml":
		_, err = toml.Decode(string(data), config)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	case ".json":
		err = json.Unmarshal(data, config)
	default:
		return nil, fmt.Errorf("unsupported config format: %s", filename)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Load reads the config at path, or the discovered default path when empty. A
// missing default file yields defaults. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfigPath)
		explicit = path != ""
	}
	if !explicit {
		path = GetConfigPath()
	}

	config, err := LoadFromFile(path)
	if err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		config = Default()
	}

	config.ApplyEnv()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overrides settings from the environment
func (c *Config) ApplyEnv() {
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Log.Level = level
	}
	if dir := os.Getenv(EnvOutputDir); dir != "" {
		c.Export.OutputDir = dir
	}
}

// SaveToFile saves configuration, encoded by the file's extension
func (c *Config) SaveToFile(filename string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".toml":
		var buf bytes.Buffer
		err = toml.NewEncoder(&buf).Encode(c)
		data = buf.Bytes()
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.toml"
	}
	return filepath.Join(home, ".config", "image-cropper", "config.toml")
}
