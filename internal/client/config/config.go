// Package config loads the CLI's settings with viper: built-in defaults,
// then config.yaml in the data directory, then PLANTSHELF_* environment
// variables, then explicit overrides from command-line flags.
//
//	# ~/.plantshelf/config.yaml
//	server_addr: plantshelf.example.com:50051
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/dmitrijs2005/plantshelf/internal/filex"
)

const (
	KeyServerAddr = "server_addr"
	KeyDataDir    = "data_dir"

	EnvPrefix = "PLANTSHELF"

	configName = "config"
	configType = "yaml"

	sessionFile = "session.db"

	defaultServerAddr = "127.0.0.1:50051"
	defaultDataDir    = ".plantshelf"
)

type Config struct {
	ServerAddr string `mapstructure:"server_addr"`
	DataDir    string `mapstructure:"data_dir"`
}

// SessionPath is the session file inside the data directory.
func (c *Config) SessionPath() string {
	return filepath.Join(c.DataDir, sessionFile)
}

// Overrides are flag values; empty fields are ignored.
type Overrides struct {
	ServerAddr string
	DataDir    string
}

// Load resolves the data directory, creates it if needed and reads the
// configuration found there. A missing config.yaml is not an error.
func Load(o Overrides) (*Config, error) {
	v := viper.New()
	v.SetDefault(KeyServerAddr, defaultServerAddr)
	v.SetDefault(KeyDataDir, defaultDataDirPath())
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if o.DataDir != "" {
		v.Set(KeyDataDir, o.DataDir)
	}
	dir, err := filex.EnsureDir(v.GetString(KeyDataDir))
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if o.ServerAddr != "" {
		v.Set(KeyServerAddr, o.ServerAddr)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	// The directory the file was read from stays authoritative.
	c.DataDir = dir
	return &c, nil
}

func defaultDataDirPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultDataDir
	}
	return filepath.Join(home, defaultDataDir)
}
