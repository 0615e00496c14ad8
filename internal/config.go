package internal

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/veleth/dagaz/internal/apperr"
	pkgconfig "github.com/veleth/dagaz/pkg/config"
)

// ConfigFilename is the configuration file kept in the home directory.
const ConfigFilename = "config.json"

// Config represents the application configuration. It is loaded once at
// startup and treated as immutable for the session.
type Config struct {
	Editor     string      `json:"editor"`
	PreviewCmd string      `json:"preview_cmd"`
	DateFormat string      `json:"date_format"`
	MaxNotes   int         `json:"max_notes"`
	Theme      ThemeConfig `json:"theme"`
	Storage    string      `json:"storage"`
	LogLevel   slog.Level  `json:"log_level"`
}

// ThemeConfig holds the four terminal color names used by the list UI.
type ThemeConfig struct {
	HighlightFG string `json:"highlight_fg"`
	HighlightBG string `json:"highlight_bg"`
	NormalFG    string `json:"normal_fg"`
	NormalBG    string `json:"normal_bg"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Editor, validation.Required),
		validation.Field(&c.PreviewCmd, validation.Required),
		validation.Field(&c.DateFormat, validation.Required),
		validation.Field(&c.MaxNotes, validation.Min(0)),
		validation.Field(&c.Storage, validation.Required),
	); err != nil {
		return err
	}
	return c.Theme.Validate()
}

// Validate validates the theme configuration.
func (c *ThemeConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.HighlightFG, validation.Required),
		validation.Field(&c.HighlightBG, validation.Required),
		validation.Field(&c.NormalFG, validation.Required),
		validation.Field(&c.NormalBG, validation.Required),
	)
}

// UnmarshalJSON decodes the document field by field. A missing or
// type-mismatched field keeps whatever value the target already holds
// (the default), so a partially broken config never aborts the load.
func (c *Config) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	tryField(raw, "editor", &c.Editor)
	tryField(raw, "preview_cmd", &c.PreviewCmd)
	tryField(raw, "date_format", &c.DateFormat)
	tryField(raw, "max_notes", &c.MaxNotes)
	tryField(raw, "storage", &c.Storage)
	tryField(raw, "log_level", &c.LogLevel)

	if themeRaw, ok := raw["theme"]; ok {
		var theme map[string]json.RawMessage
		if err := json.Unmarshal(themeRaw, &theme); err == nil {
			tryField(theme, "highlight_fg", &c.Theme.HighlightFG)
			tryField(theme, "highlight_bg", &c.Theme.HighlightBG)
			tryField(theme, "normal_fg", &c.Theme.NormalFG)
			tryField(theme, "normal_bg", &c.Theme.NormalBG)
		}
	}
	return nil
}

func tryField[T any](raw map[string]json.RawMessage, key string, dst *T) {
	msg, ok := raw[key]
	if !ok {
		return
	}
	var v T
	if err := json.Unmarshal(msg, &v); err != nil {
		return
	}
	*dst = v
}

// NewDefaultConfig returns a new Config with the documented default values
// for the given home directory.
func NewDefaultConfig(homeDir string) *Config {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "nano"
	}
	return &Config{
		Editor:     editor,
		PreviewCmd: "cat",
		DateFormat: "%Y-%m-%d %H:%M",
		MaxNotes:   100,
		Theme: ThemeConfig{
			HighlightFG: "black",
			HighlightBG: "cyan",
			NormalFG:    "white",
			NormalBG:    "black",
		},
		Storage:  filepath.Join(homeDir, "notes"),
		LogLevel: slog.LevelInfo,
	}
}

// LoadConfig loads config.json from homeDir, creating it with defaults on
// first run. A malformed document is never fatal: the defaults are returned
// together with an error wrapping apperr.ErrConfig so the caller can warn.
func LoadConfig(homeDir string) (*Config, error) {
	cfg := NewDefaultConfig(homeDir)
	path := filepath.Join(homeDir, ConfigFilename)
	if err := pkgconfig.LoadOrInit(path, cfg); err != nil {
		return NewDefaultConfig(homeDir), fmt.Errorf("%w: %v", apperr.ErrConfig, err)
	}
	return cfg, nil
}
