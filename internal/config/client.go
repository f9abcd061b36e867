package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	ClientEnvPrefix  = "EXPENSES"
	clientConfigName = "config"
	clientConfigType = "yaml"
)

var ErrServerURLInvalid = errors.New("server.url must be an absolute http(s) URL")

// ClientConfig drives the command line client.
type ClientConfig struct {
	ServerURL            string
	DataPath             string
	BackupDir            string
	RequestTimeout       time.Duration
	ConnectivityInterval time.Duration
	ConnectivityTimeout  time.Duration
	LogLevel             string
	LogFormat            string
}

// ClientConfigDir is $HOME/.config/expense-tracker.
func ClientConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "expense-tracker"), nil
}

// SetupClientViper registers defaults, the EXPENSES_ environment prefix and
// the config file location. An explicit file wins over the search path.
func SetupClientViper(v *viper.Viper, configFile string) error {
	dir, err := ClientConfigDir()
	if err != nil {
		return err
	}

	v.SetDefault("server.url", "http://localhost:8080")
	v.SetDefault("data.path", filepath.Join(dir, "expenses.db"))
	v.SetDefault("backup.dir", filepath.Join(dir, "backups"))
	v.SetDefault("request.timeout", 10*time.Second)
	v.SetDefault("connectivity.interval", 15*time.Second)
	v.SetDefault("connectivity.timeout", 3*time.Second)
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "text")

	v.SetEnvPrefix(ClientEnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(dir)
		v.SetConfigName(clientConfigName)
		v.SetConfigType(clientConfigType)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// LoadClient reads the resolved settings out of v.
func LoadClient(v *viper.Viper) (ClientConfig, error) {
	cfg := ClientConfig{
		ServerURL:            strings.TrimRight(v.GetString("server.url"), "/"),
		DataPath:             ExpandPath(v.GetString("data.path")),
		BackupDir:            ExpandPath(v.GetString("backup.dir")),
		RequestTimeout:       v.GetDuration("request.timeout"),
		ConnectivityInterval: v.GetDuration("connectivity.interval"),
		ConnectivityTimeout:  v.GetDuration("connectivity.timeout"),
		LogLevel:             v.GetString("logging.level"),
		LogFormat:            v.GetString("logging.format"),
	}

	u, err := url.Parse(cfg.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ClientConfig{}, fmt.Errorf("%w: %q", ErrServerURLInvalid, cfg.ServerURL)
	}
	if cfg.DataPath == "" {
		return ClientConfig{}, errors.New("data.path is required")
	}
	return cfg, nil
}

// ExpandPath resolves a leading ~ and environment variables.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return os.ExpandEnv(path)
}
