package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Backends supported by the classifier section.
const (
	BackendHTTP   = "http"
	BackendGemini = "gemini"
)

// Config holds application configuration.
type Config struct {
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Gemini     GeminiConfig     `mapstructure:"gemini"`
	UI         UIConfig         `mapstructure:"ui"`
	Log        LogConfig        `mapstructure:"log"`
}

// ClassifierConfig selects and configures the classification backend.
type ClassifierConfig struct {
	Backend   string        `mapstructure:"backend"`
	Endpoint  string        `mapstructure:"endpoint"`
	FieldName string        `mapstructure:"field_name"`
	Timeout   time.Duration `mapstructure:"timeout"`
	APIKeyEnv string        `mapstructure:"api_key_env"`
	APIKey    string        `mapstructure:"api_key"`
}

// GeminiConfig holds Gemini backend settings.
type GeminiConfig struct {
	Model     string `mapstructure:"model"`
	APIKeyEnv string `mapstructure:"api_key_env"`
	APIKey    string `mapstructure:"api_key"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	StartDir       string        `mapstructure:"start_dir"`
	NoticeDuration time.Duration `mapstructure:"notice_duration"`
}

// LogConfig controls where debug logging goes. An empty path discards it.
type LogConfig struct {
	Path string `mapstructure:"path"`
}

// Load reads configuration from file and env. Env var overrides use prefix FOODCALORIE_.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("FOODCALORIE_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "foodcalorie"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("FOODCALORIE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// an explicit config path must exist; the default location is optional
		if cfgPath != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("classifier.backend", BackendHTTP)
	v.SetDefault("classifier.endpoint", "http://localhost:5000/predict")
	v.SetDefault("classifier.field_name", "data")
	v.SetDefault("classifier.timeout", "30s")
	v.SetDefault("classifier.api_key_env", "")
	v.SetDefault("classifier.api_key", "")
	v.SetDefault("gemini.model", "gemini-1.5-flash")
	v.SetDefault("gemini.api_key_env", "GEMINI_API_KEY")
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("ui.start_dir", os.Getenv("HOME"))
	v.SetDefault("ui.notice_duration", "2s")
	v.SetDefault("log.path", "")
}

// Validate rejects settings the app cannot run with.
func (c Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Classifier.Backend)) {
	case BackendHTTP:
		if strings.TrimSpace(c.Classifier.Endpoint) == "" {
			return fmt.Errorf("config: classifier.endpoint is required for the http backend")
		}
	case BackendGemini:
		if strings.TrimSpace(c.Gemini.Model) == "" {
			return fmt.Errorf("config: gemini.model is required for the gemini backend")
		}
	default:
		return fmt.Errorf("config: unknown classifier.backend %q", c.Classifier.Backend)
	}
	if c.Classifier.Timeout <= 0 {
		return fmt.Errorf("config: classifier.timeout must be positive")
	}
	if c.UI.NoticeDuration <= 0 {
		return fmt.Errorf("config: ui.notice_duration must be positive")
	}
	return nil
}

// Path returns the config file location Save writes to.
func Path() string {
	if p := os.Getenv("FOODCALORIE_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "foodcalorie", "config.toml")
}

// Save writes the provided config to disk, creating the config directory if needed.
// API keys are left out; keep them in env vars or the secret store.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("classifier.backend", cfg.Classifier.Backend)
	v.Set("classifier.endpoint", cfg.Classifier.Endpoint)
	v.Set("classifier.field_name", cfg.Classifier.FieldName)
	v.Set("classifier.timeout", cfg.Classifier.Timeout.String())
	v.Set("classifier.api_key_env", cfg.Classifier.APIKeyEnv)
	v.Set("gemini.model", cfg.Gemini.Model)
	v.Set("gemini.api_key_env", cfg.Gemini.APIKeyEnv)
	v.Set("ui.start_dir", cfg.UI.StartDir)
	v.Set("ui.notice_duration", cfg.UI.NoticeDuration.String())
	v.Set("log.path", cfg.Log.Path)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
