package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

var (
	config *Config
	mu     sync.Mutex
	v      = viper.New()
)

// Config represents the configuration implementation.
type Config struct {
	AppName  string
	RunMode  string
	Host     string
	Port     int
	Observes *Observes
	Logger   *Logger
	Data     *Data
	Auth     *Auth
	Email    *Email
	Reminder *Reminder
	Viper    *viper.Viper
}

// GetConfig returns the previously loaded configuration.
func GetConfig() (*Config, error) {
	if config == nil {
		return nil, fmt.Errorf("config not loaded")
	}
	return config, nil
}

// LoadConfig loads the configuration from the file.
func LoadConfig(configPath string) (*Config, error) {
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		ex, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to get executable path: %w", err)
		}
		v.SetConfigName("config")
		v.AddConfigPath("/etc/todox")
		v.AddConfigPath("$HOME/.todox")
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Dir(ex))
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	config = fromViper(v)
	return config, nil
}

// fromViper builds the configuration from a viper instance.
func fromViper(v *viper.Viper) *Config {
	return &Config{
		AppName:  v.GetString("app_name"),
		RunMode:  v.GetString("run_mode"),
		Host:     v.GetString("server.host"),
		Port:     v.GetInt("server.port"),
		Observes: getObservesConfig(v),
		Logger:   getLoggerConfig(v),
		Data:     getDataConfig(v),
		Auth:     getAuth(v),
		Email:    getEmailConfig(v),
		Reminder: getReminderConfig(v),
		Viper:    v,
	}
}

// Reload reloads the configuration from the file.
func Reload() error {
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	config = fromViper(v)
	return nil
}

// Watch watches the configuration file and reloads it when it changes.
func Watch(callback func(*Config)) {
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		if err := Reload(); err != nil {
			fmt.Printf("Error reloading config: %v\n", err)
			return
		}
		callback(config)
	})
}
