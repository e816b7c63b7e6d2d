package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings holds user-configurable options.
type Settings struct {
	DNSEnabled      bool          `yaml:"dnsEnabled"`
	ServiceNames    bool          `yaml:"serviceNames"`
	PageSize        int           `yaml:"pageSize"`
	DefaultSort     string        `yaml:"defaultSort"` // recent, bytes or packets
	RefreshInterval time.Duration `yaml:"refreshInterval"`
	GeoIPCountryDB  string        `yaml:"geoipCountryDB"` // GeoLite2-Country.mmdb
	GeoIPASNDB      string        `yaml:"geoipASNDB"`     // GeoLite2-ASN.mmdb
	LogLevel        string        `yaml:"logLevel"`
	LogFile         string        `yaml:"logFile"`
	MetricsAddr     string        `yaml:"metricsAddr"` // empty disables the endpoint
}

// DefaultSettings returns the default settings.
func DefaultSettings() *Settings {
	return &Settings{
		DNSEnabled:      true, // On by default
		ServiceNames:    true, // On by default (no overhead)
		PageSize:        20,
		DefaultSort:     "recent",
		RefreshInterval: time.Second,
		LogLevel:        "INFO",
	}
}

// normalize replaces unusable values with defaults.
func (s *Settings) normalize() {
	d := DefaultSettings()
	if s.PageSize <= 0 {
		s.PageSize = d.PageSize
	}
	if s.RefreshInterval <= 0 {
		s.RefreshInterval = d.RefreshInterval
	}
	if s.DefaultSort == "" {
		s.DefaultSort = d.DefaultSort
	}
}

// settingsPath returns the path to the settings file.
func settingsPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "netinspect", "settings.yaml"), nil
}

// LoadSettings loads settings from disk, returning defaults if not found.
func LoadSettings() (*Settings, error) {
	path, err := settingsPath()
	if err != nil {
		return DefaultSettings(), nil
	}
	return LoadSettingsFrom(path)
}

// LoadSettingsFrom loads settings from path. Fields missing from the file
// keep their defaults.
func LoadSettingsFrom(path string) (*Settings, error) {
	// #nosec G304 - path is constructed from trusted sources
	data, err := os.ReadFile(path)
	if err != nil {
		// Return defaults if file doesn't exist
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return DefaultSettings(), err
	}

	settings := DefaultSettings()
	if err := yaml.Unmarshal(data, settings); err != nil {
		return DefaultSettings(), err
	}
	settings.normalize()

	return settings, nil
}

// SaveSettings writes settings to disk.
func SaveSettings(s *Settings) error {
	path, err := settingsPath()
	if err != nil {
		return err
	}
	return SaveSettingsTo(path, s)
}

// SaveSettingsTo writes settings to path, creating its directory.
func SaveSettingsTo(path string, s *Settings) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// CurrentSettings holds the loaded settings (singleton).
var CurrentSettings *Settings

// InitSettings initializes the global settings.
func InitSettings() error {
	settings, err := LoadSettings()
	if err != nil {
		return err
	}
	CurrentSettings = settings
	return nil
}

func init() {
	// Initialize with default settings on package load
	CurrentSettings = DefaultSettings()
}
