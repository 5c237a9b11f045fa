// Package config layers command-line flags, SURGELINT_* environment
// variables and surgelint.toml into the options of a lint run.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. SURGELINT_JOBS.
const EnvPrefix = "SURGELINT"

// Settings are the process-level knobs shared by all commands.
type Settings struct {
	Jobs     int    `mapstructure:"jobs"`
	CacheDir string `mapstructure:"cache_dir"`
	NoCache  bool   `mapstructure:"no_cache"`
	LogLevel string `mapstructure:"log_level"`
	LogJSON  bool   `mapstructure:"log_json"`
	Reporter string `mapstructure:"reporter"`
	Color    string `mapstructure:"color"`
}

// DefaultSettings values
var DefaultSettings = Settings{
	LogLevel: "warn",
	Color:    "auto",
}

// flagKeys maps settings keys to flag names.
var flagKeys = map[string]string{
	"jobs":      "jobs",
	"cache_dir": "cache-dir",
	"no_cache":  "no-cache",
	"log_level": "log-level",
	"log_json":  "log-json",
	"reporter":  "reporter",
	"color":     "color",
}

// NewViper returns a viper instance with defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("jobs", DefaultSettings.Jobs)
	v.SetDefault("cache_dir", DefaultSettings.CacheDir)
	v.SetDefault("no_cache", DefaultSettings.NoCache)
	v.SetDefault("log_level", DefaultSettings.LogLevel)
	v.SetDefault("log_json", DefaultSettings.LogJSON)
	v.SetDefault("reporter", DefaultSettings.Reporter)
	v.SetDefault("color", DefaultSettings.Color)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags binds the persistent flags of cmd that exist to settings keys.
// A flag set on the command line wins over the environment.
func BindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for key, name := range flagKeys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			flag = cmd.InheritedFlags().Lookup(name)
		}
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}
	return nil
}

// LoadSettings decodes the layered settings.
func LoadSettings(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("unable to decode settings: %w", err)
	}
	if s.Jobs < 0 {
		return Settings{}, fmt.Errorf("invalid jobs value %d", s.Jobs)
	}
	return s, nil
}
