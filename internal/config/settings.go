package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Settings holds runtime configuration for an attend session. Values
// are populated from ~/.attend/settings.yaml, ATTEND_* env vars, and
// CLI flags, in ascending precedence.
type Settings struct {
	DataDir      string `mapstructure:"data_dir"`
	Timezone     string `mapstructure:"timezone"`
	LogLevel     string `mapstructure:"log_level"`
	KeywordsFile string `mapstructure:"keywords_file"`
}

// Load reads configuration, applying built-in defaults for any values
// not set by config file, environment, or flags.
func Load(v *viper.Viper) (Settings, error) {
	if v == nil {
		v = viper.New()
	}

	dataDir, err := DefaultDataDir()
	if err != nil {
		return Settings{}, fmt.Errorf("failed to locate home directory: %w", err)
	}
	globalDir, err := GlobalDir()
	if err != nil {
		return Settings{}, err
	}

	v.SetDefault("data_dir", dataDir)
	v.SetDefault("timezone", "") // empty means the system's local zone
	v.SetDefault("log_level", "warning")
	v.SetDefault("keywords_file", "")

	v.SetConfigName(strings.TrimSuffix(SettingsFileName, ".yaml"))
	v.SetConfigType("yaml")
	v.AddConfigPath(globalDir)
	v.SetEnvPrefix("ATTEND")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing settings file is fine; defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("failed to read settings: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings: %w", err)
	}
	return s, nil
}
