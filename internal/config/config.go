// Package config loads the service configuration from a TOML file.
//
// Defaults are applied first, so a file only has to name what it changes
// and a missing file yields DefaultConfig. PORT and GEMINI_API_KEY in the
// environment override the file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/youruser/therapydeck/internal/util"
)

// Config is the top-level configuration.
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Storage    StorageConfig    `toml:"storage"`
	Generation GenerationConfig `toml:"generation"`
	Export     ExportConfig     `toml:"export"`
	Fonts      FontsConfig      `toml:"fonts"`
	Log        LogConfig        `toml:"log"`
}

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `toml:"addr"`
	// ShareBaseURL, when set, prefixes share links printed as QR codes.
	ShareBaseURL string `toml:"share_base_url,omitempty"`
	// GenerateRPS and GenerateBurst rate limit the generation endpoints.
	GenerateRPS   float64 `toml:"generate_rps"`
	GenerateBurst int     `toml:"generate_burst"`
	// MaxUploadMB caps uploaded images and CSV files.
	MaxUploadMB int `toml:"max_upload_mb"`
}

// StorageConfig locates the database and blobs.
type StorageConfig struct {
	Database string `toml:"database"`
	BlobDir  string `toml:"blob_dir"`
}

// GenerationConfig configures the image and text provider.
type GenerationConfig struct {
	BaseURL    string `toml:"base_url"`
	APIKey     string `toml:"api_key,omitempty"`
	ImageModel string `toml:"image_model"`
	TextModel  string `toml:"text_model"`
	// Timeout bounds one provider call.
	Timeout     time.Duration `toml:"timeout"`
	Concurrency int           `toml:"concurrency"`
	IconSize    int           `toml:"icon_size"`
	Tolerance   int           `toml:"chroma_tolerance"`
}

// ExportConfig holds PDF export defaults.
type ExportConfig struct {
	CardsPerPage     int    `toml:"cards_per_page"`
	IncludeCardBacks bool   `toml:"include_card_backs"`
	Watermark        bool   `toml:"watermark"`
	WatermarkText    string `toml:"watermark_text,omitempty"`
	// DownloadTimeout and DownloadRetries apply to http(s) asset URLs.
	DownloadTimeout time.Duration `toml:"download_timeout"`
	DownloadRetries int           `toml:"download_retries"`
	// AssetRoot resolves relative file: asset URLs.
	AssetRoot string `toml:"asset_root,omitempty"`
}

// FontsConfig says where TrueType fonts are picked up from.
type FontsConfig struct {
	Dir      string   `toml:"dir,omitempty"`
	Patterns []string `toml:"patterns"`
	// Watch re-registers fonts when files in Dir change.
	Watch bool `toml:"watch"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is trace, debug, info, warn, error or fail.
	Level     string `toml:"level"`
	File      string `toml:"file,omitempty"`
	MaxSizeMB int    `toml:"max_size_mb"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:          ":8080",
			GenerateRPS:   0.5,
			GenerateBurst: 3,
			MaxUploadMB:   16,
		},
		Storage: StorageConfig{
			Database: "data/therapydeck.db",
			BlobDir:  "data/blobs",
		},
		Generation: GenerationConfig{
			BaseURL:     "https://generativelanguage.googleapis.com",
			ImageModel:  "gemini-2.5-flash-image",
			TextModel:   "gemini-2.5-flash",
			Timeout:     120 * time.Second,
			Concurrency: 3,
			IconSize:    512,
			Tolerance:   50,
		},
		Export: ExportConfig{
			CardsPerPage:    9,
			Watermark:       true,
			DownloadTimeout: 15 * time.Second,
			DownloadRetries: 2,
		},
		Fonts: FontsConfig{
			Patterns: []string{"**/*.ttf"},
		},
		Log: LogConfig{
			Level:     "info",
			MaxSizeMB: 10,
		},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	cfg.applyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if port := getenv("PORT"); port != "" {
		c.Server.Addr = ":" + port
	}
	if key := getenv("GEMINI_API_KEY"); key != "" {
		c.Generation.APIKey = key
	}
}

// Validate checks values the rest of the service relies on.
func (c *Config) Validate() error {
	var errs []error
	switch c.Export.CardsPerPage {
	case 4, 6, 9:
	default:
		errs = append(errs, fmt.Errorf("export.cards_per_page must be 4, 6 or 9, got %d", c.Export.CardsPerPage))
	}
	if c.Storage.Database == "" {
		errs = append(errs, errors.New("storage.database is required"))
	}
	if c.Storage.BlobDir == "" {
		errs = append(errs, errors.New("storage.blob_dir is required"))
	}
	if c.Generation.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("generation.concurrency must be at least 1, got %d", c.Generation.Concurrency))
	}
	if c.Generation.Tolerance < 0 || c.Generation.Tolerance > 255 {
		errs = append(errs, fmt.Errorf("generation.chroma_tolerance must be 0-255, got %d", c.Generation.Tolerance))
	}
	if c.Server.GenerateRPS <= 0 {
		errs = append(errs, errors.New("server.generate_rps must be positive"))
	}
	return errors.Join(errs...)
}

// Encode renders cfg as TOML.
func Encode(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteDefault writes the default configuration to path. It refuses to
// overwrite an existing file unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		}
	}
	data, err := Encode(DefaultConfig())
	if err != nil {
		return err
	}
	return util.WriteFileAtomic(path, data, 0o644)
}
