package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hrbox-pull/hrbox-pull/config/storage"
	"github.com/spf13/viper"
)

type Config struct {
	Subdomain string `toml:"subdomain" mapstructure:"subdomain" json:"subdomain"`
	BaseURL   string `toml:"base_url" mapstructure:"base_url" json:"base_url"`
	Username  string `toml:"username" mapstructure:"username" json:"username"`
	Password  string `toml:"password" mapstructure:"password" json:"-"`

	Output    string `toml:"output" mapstructure:"output" json:"output"`
	Extension string `toml:"extension" mapstructure:"extension" json:"extension"`
	Storage   string `toml:"storage" mapstructure:"storage" json:"storage"`
	Workers   int    `toml:"workers" mapstructure:"workers" json:"workers"`
	Progress  bool   `toml:"progress" mapstructure:"progress" json:"progress"`

	// Timeout per request in seconds, 0 disables it.
	Timeout   int    `toml:"timeout" mapstructure:"timeout" json:"timeout"`
	Proxy     string `toml:"proxy" mapstructure:"proxy" json:"proxy"`
	UserAgent string `toml:"user_agent" mapstructure:"user_agent" json:"user_agent"`

	Log      logConfig               `toml:"log" mapstructure:"log" json:"log"`
	Storages []storage.StorageConfig `toml:"-" mapstructure:"-" json:"storages"`
}

type logConfig struct {
	Level       string `toml:"level" mapstructure:"level" json:"level"`
	File        string `toml:"file" mapstructure:"file" json:"file"`
	MaxSize     int    `toml:"max_size" mapstructure:"max_size" json:"max_size"`
	BackupCount int    `toml:"backup_count" mapstructure:"backup_count" json:"backup_count"`
}

// DefaultStorageName names the implicit local storage rooted at Output.
const DefaultStorageName = "local"

var cfg = &Config{}

func C() Config {
	return *cfg
}

func (c Config) GetStorageByName(name string) storage.StorageConfig {
	for _, storage := range c.Storages {
		if storage.GetName() == name {
			return storage
		}
	}
	return nil
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// Init loads the configuration from flags, HR_BOX_* environment variables,
// the config file and defaults, in that order of precedence. A missing
// config file is not an error unless configFile names it explicitly.
func Init(ctx context.Context, configFile string) error {
	logger := log.FromContext(ctx)

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "hrbox-pull"))
		}
	}
	viper.SetConfigType("toml")
	viper.SetEnvPrefix("HR_BOX")
	viper.AutomaticEnv()
	replacer := strings.NewReplacer(".", "_", "-", "_")
	viper.SetEnvKeyReplacer(replacer)

	defaults := map[string]any{
		"output":    ".",
		"extension": "pdf",
		"workers":   1,
		"timeout":   60,

		"log.level":        "INFO",
		"log.max_size":     10,
		"log.backup_count": 3,
	}
	for key, value := range defaults {
		viper.SetDefault(key, value)
	}
	// keys without a default still have to be known to viper for env lookups
	for _, key := range []string{"subdomain", "base_url", "username", "password", "storage", "proxy", "user_agent", "progress", "log.file"} {
		viper.BindEnv(key)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		logger.Debug("Loaded config file", "path", viper.ConfigFileUsed())
	}

	loaded := &Config{}
	if err := viper.Unmarshal(loaded); err != nil {
		return fmt.Errorf("error unmarshalling config: %w", err)
	}

	storagesConfig, err := storage.LoadStorageConfigs(viper.GetViper())
	if err != nil {
		return fmt.Errorf("error loading storage configs: %w", err)
	}
	loaded.Storages = storagesConfig

	if err := loaded.Validate(); err != nil {
		return err
	}

	cfg = loaded
	for _, storage := range cfg.Storages {
		logger.Debug("Configured storage", "name", storage.GetName(), "type", storage.GetType())
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Subdomain == "" && c.BaseURL == "" {
		return errors.New("subdomain is required (flag --subdomain or HR_BOX_SUBDOMAIN)")
	}
	if c.Username == "" {
		return errors.New("username is required (flag --username or HR_BOX_USERNAME)")
	}
	if c.Password == "" {
		return errors.New("password is required (flag --password or HR_BOX_PASSWORD)")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be greater than 0, got %d", c.Workers)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %d", c.Timeout)
	}
	if c.Output == "" {
		c.Output = "."
	}

	storageNames := make(map[string]struct{})
	for _, storage := range c.Storages {
		if _, ok := storageNames[storage.GetName()]; ok {
			return fmt.Errorf("duplicate storage name: %s", storage.GetName())
		}
		storageNames[storage.GetName()] = struct{}{}
	}
	if c.Storage != "" && c.GetStorageByName(c.Storage) == nil && c.Storage != DefaultStorageName {
		return fmt.Errorf("storage %s is not configured", c.Storage)
	}
	return nil
}
