package main

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"pitchboard/internal/formation"
)

type Config struct {
	SaveDirectory   string
	ExportDirectory string
	Store           string
	AppName         string
	SurfaceWidth    float64
	ArrowColor      string
	LogFile         string
	LogLevel        string
	LoadOnStart     bool
}

// loadConfig reads ~/.formationrc, or path when given. A missing file leaves the
// defaults; FORMATION_<KEY> environment variables override either.
func loadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("save_directory", "")
	v.SetDefault("export_directory", "")
	v.SetDefault("store", "file")
	v.SetDefault("app_name", "formation")
	v.SetDefault("surface_width", defaultSurfaceWidth)
	v.SetDefault("arrow_color", formation.DefaultArrowColor)
	v.SetDefault("log_file", "formation.log")
	v.SetDefault("log_level", "info")
	v.SetDefault("load_on_start", true)

	v.SetEnvPrefix("FORMATION")
	v.AutomaticEnv()

	homeDir, homeErr := os.UserHomeDir()
	v.SetConfigType("yaml")
	switch {
	case path != "":
		v.SetConfigFile(path)
	case homeErr == nil:
		v.SetConfigFile(filepath.Join(homeDir, ".formationrc"))
	}
	if path != "" || homeErr == nil {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	config := &Config{
		SaveDirectory:   expandPath(v.GetString("save_directory"), homeDir),
		ExportDirectory: expandPath(v.GetString("export_directory"), homeDir),
		Store:           strings.ToLower(v.GetString("store")),
		AppName:         v.GetString("app_name"),
		SurfaceWidth:    v.GetFloat64("surface_width"),
		ArrowColor:      v.GetString("arrow_color"),
		LogFile:         v.GetString("log_file"),
		LogLevel:        v.GetString("log_level"),
		LoadOnStart:     v.GetBool("load_on_start"),
	}
	if config.ExportDirectory == "" {
		config.ExportDirectory = config.SaveDirectory
	}
	if need := minSurfaceWidth(); config.SurfaceWidth < need {
		return nil, fmt.Errorf("surface_width %g is too narrow for the default formation (need %g)", config.SurfaceWidth, need)
	}
	if !formation.ValidColor(config.ArrowColor) {
		return nil, fmt.Errorf("arrow_color %q is not a #rrggbb colour", config.ArrowColor)
	}
	switch config.Store {
	case storeFile, storeGData, storeSQLite:
	default:
		return nil, fmt.Errorf("unknown store %q (want %s, %s or %s)", config.Store, storeFile, storeGData, storeSQLite)
	}
	return config, nil
}

// minSurfaceWidth is the narrowest pitch the default formation fits on with every
// player clear of the edge.
func minSurfaceWidth() float64 {
	reach := 0.0
	for _, p := range formation.DefaultRoster() {
		reach = math.Max(reach, p.X)
	}
	return reach + gestureMargin
}

// expandPath resolves ~ and makes value absolute. Empty stays empty.
func expandPath(value, homeDir string) string {
	if value == "" {
		return ""
	}
	if strings.HasPrefix(value, "~") && homeDir != "" {
		value = filepath.Join(homeDir, strings.TrimPrefix(value, "~"))
	}
	if !filepath.IsAbs(value) {
		if absPath, err := filepath.Abs(value); err == nil {
			value = absPath
		}
	}
	return value
}

func (c *Config) GetSavePath(filename string) string {
	if c.SaveDirectory == "" {
		return filename
	}
	return filepath.Join(c.SaveDirectory, filename)
}

// logPath is where the log goes; a relative log_file lives in the save directory.
func (c *Config) logPath() string {
	if c.LogFile == "" || filepath.IsAbs(c.LogFile) {
		return c.LogFile
	}
	return c.GetSavePath(c.LogFile)
}
