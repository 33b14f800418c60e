package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// BackendConfig locates the tourism REST backend.
type BackendConfig struct {
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// CSVConfig bounds CSV status polling.
type CSVConfig struct {
	PollAttempts uint          `mapstructure:"poll_attempts" yaml:"poll_attempts"`
	PollDelay    time.Duration `mapstructure:"poll_delay" yaml:"poll_delay"`
}

// Config is the configuration shared by the gateway server and the guider CLI.
//
// WARNING: APIToken and DatabaseURL are secrets and should not be logged.
type Config struct {
	Port            string        `mapstructure:"port" yaml:"port"`
	APIToken        string        `mapstructure:"api_token" yaml:"api_token"`
	DatabaseURL     string        `mapstructure:"database_url" yaml:"database_url"`
	RedisURL        string        `mapstructure:"redis_url" yaml:"redis_url"`
	CredentialsFile string        `mapstructure:"credentials_file" yaml:"credentials_file"`
	Backend         BackendConfig `mapstructure:"backend" yaml:"backend"`
	CSV             CSVConfig     `mapstructure:"csv" yaml:"csv"`
}

var (
	// envBindings maps each config key to the environment variables that can
	// provide it. The first name is preferred; later names are legacy aliases.
	envBindings = map[string][]string{
		"port":              {"TRAVELGUIDER_PORT", "PORT"},
		"api_token":         {"API_TOKEN", "BEARER_TOKEN"},
		"database_url":      {"TRAVELGUIDER_DATABASE_URL", "DATABASE_URL"},
		"redis_url":         {"TRAVELGUIDER_REDIS_URL", "REDIS_URL"},
		"credentials_file":  {"TRAVELGUIDER_CREDENTIALS_FILE"},
		"backend.base_url":  {"TRAVELGUIDER_BACKEND_URL", "BACKEND_URL"},
		"backend.timeout":   {"TRAVELGUIDER_BACKEND_TIMEOUT"},
		"csv.poll_attempts": {"TRAVELGUIDER_CSV_POLL_ATTEMPTS"},
		"csv.poll_delay":    {"TRAVELGUIDER_CSV_POLL_DELAY"},
	}

	defaults = map[string]any{
		"port":              "8090",
		"backend.base_url":  "http://localhost:8080",
		"backend.timeout":   30 * time.Second,
		"csv.poll_attempts": 15,
		"csv.poll_delay":    2 * time.Second,
	}
)

// Load loads the config from the file path, falling back to env vars if the
// file does not exist. Env vars that are set override values from the file.
// An empty filePath skips the file entirely.
func Load(filePath string) (*Config, error) {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.SetDefault("credentials_file", defaultCredentialsFile())

	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	if filePath != "" {
		v.SetConfigFile(filePath)
		if _, err := os.Stat(filePath); !errors.Is(err, fs.ErrNotExist) {
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", filePath, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Backend.BaseURL = strings.TrimRight(cfg.Backend.BaseURL, "/")
	return cfg, nil
}

// bindEnvs binds the environment variables to the viper instance.
func bindEnvs(v *viper.Viper) error {
	for key, envs := range envBindings {
		inputs := slices.Insert(slices.Clone(envs), 0, key)
		if err := v.BindEnv(inputs...); err != nil {
			return err
		}
	}
	return nil
}

// ValidateServer checks the settings the gateway cannot start without.
func (c *Config) ValidateServer() error {
	var missing []string
	for key, val := range map[string]string{
		"api_token":        c.APIToken,
		"database_url":     c.DatabaseURL,
		"redis_url":        c.RedisURL,
		"backend.base_url": c.Backend.BaseURL,
	} {
		if strings.TrimSpace(val) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	return c.validateCommon()
}

// ValidateCLI checks the settings the guider CLI needs.
func (c *Config) ValidateCLI() error {
	if strings.TrimSpace(c.Backend.BaseURL) == "" {
		return errors.New("missing required config: backend.base_url")
	}
	if strings.TrimSpace(c.CredentialsFile) == "" {
		return errors.New("missing required config: credentials_file")
	}
	return c.validateCommon()
}

func (c *Config) validateCommon() error {
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend.timeout must be positive, got %s", c.Backend.Timeout)
	}
	if c.CSV.PollAttempts == 0 {
		return errors.New("csv.poll_attempts must be at least 1")
	}
	if c.CSV.PollDelay < 0 {
		return fmt.Errorf("csv.poll_delay must not be negative, got %s", c.CSV.PollDelay)
	}
	return nil
}

func defaultCredentialsFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "travelguider", "credentials.yaml")
}
