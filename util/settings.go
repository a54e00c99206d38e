package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// QuerySettings are the defaults applied to one kind of query when the
// caller leaves a parameter out
type QuerySettings struct {
	SaveDir    string `toml:"save_dir"`
	Satellite  string `toml:"satellite"`
	Product    string `toml:"product"`
	Domain     string `toml:"domain"`
	Download   bool   `toml:"download"`
	Overwrite  bool   `toml:"overwrite"`
	MaxWorkers int    `toml:"max_workers"`
	Within     string `toml:"within"`
	Recent     string `toml:"recent"`
}

// WithinDuration parses the nearest-time look-around window
func (qs QuerySettings) WithinDuration() (time.Duration, error) {
	return time.ParseDuration(qs.Within)
}

// Settings holds the per-command query defaults. Each command section
// inherits from [default] and overrides only the keys it names.
type Settings struct {
	Default     QuerySettings `toml:"default"`
	TimeRange   QuerySettings `toml:"timerange"`
	Latest      QuerySettings `toml:"latest"`
	NearestTime QuerySettings `toml:"nearesttime"`
}

// DefaultQuerySettings are used when no config file exists
func DefaultQuerySettings() QuerySettings {
	saveDir := "data"
	if home, err := os.UserHomeDir(); err == nil {
		saveDir = filepath.Join(home, "data")
	}
	return QuerySettings{
		SaveDir:    saveDir,
		Satellite:  "noaa-goes16",
		Product:    "ABI-L2-MCMIP",
		Domain:     "C",
		Download:   true,
		Overwrite:  false,
		MaxWorkers: 1,
		Within:     "1h",
		Recent:     "1h",
	}
}

// DefaultSettings returns settings where every section equals the defaults
func DefaultSettings() Settings {
	base := DefaultQuerySettings()
	return Settings{Default: base, TimeRange: base, Latest: base, NearestTime: base}
}

// LoadEnvFile loads KEY=VALUE pairs from a .env file into the environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

// LoadSettings reads the TOML defaults file at path. A missing file yields
// DefaultSettings. The save directory may be overridden by GOES_SAVE_DIR.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		LogInfo(&BasicLogContext{}, fmt.Sprintf("No config file at `%s`, using built-in defaults", path))
	case err != nil:
		return settings, errors.Wrapf(err, "reading config file %s", path)
	default:
		if settings, err = decodeSettings(data); err != nil {
			return settings, errors.Wrapf(err, "parsing config file %s", path)
		}
	}

	if saveDir, ok := os.LookupEnv(GOES_SAVE_DIR); ok && saveDir != "" {
		settings.Default.SaveDir = saveDir
		settings.TimeRange.SaveDir = saveDir
		settings.Latest.SaveDir = saveDir
		settings.NearestTime.SaveDir = saveDir
	}

	settings.Default.SaveDir = expandHome(settings.Default.SaveDir)
	settings.TimeRange.SaveDir = expandHome(settings.TimeRange.SaveDir)
	settings.Latest.SaveDir = expandHome(settings.Latest.SaveDir)
	settings.NearestTime.SaveDir = expandHome(settings.NearestTime.SaveDir)
	return settings, nil
}

func decodeSettings(data []byte) (Settings, error) {
	// First pass: the [default] table layered over the built-in defaults.
	head := struct {
		Default QuerySettings `toml:"default"`
	}{Default: DefaultQuerySettings()}
	if err := toml.Unmarshal(data, &head); err != nil {
		return DefaultSettings(), err
	}

	// Second pass: each command table layered over [default].
	base := head.Default
	settings := Settings{Default: base, TimeRange: base, Latest: base, NearestTime: base}
	if err := toml.Unmarshal(data, &settings); err != nil {
		return DefaultSettings(), err
	}
	return settings, nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
