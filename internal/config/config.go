// Package config loads the hearme configuration: a hearme.yml in the
// workspace or the user config directory, with HEARME_* environment
// overrides on top. The core treats the loaded value as read-only.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/viper"
)

// Config is the full configuration surface consumed by the core.
type Config struct {
	Audio struct {
		Engine         string `mapstructure:"engine" env:"ENGINE"`
		FallbackEngine string `mapstructure:"fallback_engine" env:"FALLBACK_ENGINE"`
		Voices         string `mapstructure:"voices" env:"VOICES"` // "auto" or a named map (file path)
		Format         string `mapstructure:"format" env:"FORMAT"`
	} `mapstructure:"audio"`

	Defaults struct {
		Length string `mapstructure:"length" env:"LENGTH"`
	} `mapstructure:"defaults"`

	Output struct {
		Dir string `mapstructure:"dir" env:"OUTPUT_DIR"`
	} `mapstructure:"output"`

	Privacy struct {
		AllowNetwork bool `mapstructure:"allow_network" env:"ALLOW_NETWORK"`
	} `mapstructure:"privacy"`

	Engines struct {
		SynthesisTimeout time.Duration `mapstructure:"synthesis_timeout" env:"SYNTHESIS_TIMEOUT"`
		RetryBudget      int           `mapstructure:"retry_budget" env:"RETRY_BUDGET"`

		Piper struct {
			Binary string `mapstructure:"binary" env:"PIPER_BINARY"`
			Model  string `mapstructure:"model" env:"PIPER_MODEL"`
		} `mapstructure:"piper"`

		Kokoro struct {
			Binary string `mapstructure:"binary" env:"KOKORO_BINARY"`
			Voice  string `mapstructure:"voice" env:"KOKORO_VOICE"`
		} `mapstructure:"kokoro"`

		Dia struct {
			Binary string `mapstructure:"binary" env:"DIA_BINARY"`
		} `mapstructure:"dia"`
	} `mapstructure:"engines"`

	Scanner struct {
		MaxFiles     int   `mapstructure:"max_files" env:"SCAN_MAX_FILES"`
		MaxFileBytes int64 `mapstructure:"max_file_bytes" env:"SCAN_MAX_FILE_BYTES"`
	} `mapstructure:"scanner"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("audio.engine", "dia")
	v.SetDefault("audio.fallback_engine", "kokoro")
	v.SetDefault("audio.voices", "auto")
	v.SetDefault("audio.format", "wav")
	v.SetDefault("defaults.length", "balanced")
	v.SetDefault("output.dir", ".hear-me")
	v.SetDefault("privacy.allow_network", false)
	v.SetDefault("engines.synthesis_timeout", "120s")
	v.SetDefault("engines.retry_budget", 1)
	v.SetDefault("scanner.max_files", 100)
	v.SetDefault("scanner.max_file_bytes", 1<<20)
}

// Load reads configuration from an explicit file, the workspace, or the
// user scope, in that order, then applies environment overrides. A missing
// config file is not an error; defaults apply.
func Load(explicitPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
	} else {
		v.SetConfigName("hearme")
		v.AddConfigPath(".")
		scope := gap.NewScope(gap.User, "hearme")
		if dirs, err := scope.ConfigDirs(); err == nil {
			for _, d := range dirs {
				v.AddConfigPath(d)
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound || explicitPath != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
		log.Debug("no config file found, using defaults")
	} else {
		log.Debug("config loaded", "file", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "HEARME_"}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	return &cfg, nil
}
