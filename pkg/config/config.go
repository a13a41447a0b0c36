// Package config fills typed configuration structs from the environment,
// optionally seeded from a .env file (default location or the -env flag).
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

var (
	envFilePath string
	parseOnce   sync.Once
)

// MustLoad is Load but panics on failure; intended for process start.
func MustLoad[T any](prefix string) *T {
	conf, err := Load[T](prefix)
	if err != nil {
		panic(err)
	}
	return conf
}

// Load exports the .env file (if any) into the process environment, then
// processes the struct's envconfig tags under the given prefix.
func Load[T any](prefix string) (*T, error) {
	path := resolveEnvPath()
	if path != "" {
		if err := exportEnvFile(path); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", path, err)
		}
	} else if err := exportEnvFileIfExists(".env"); err != nil {
		return nil, fmt.Errorf("load default env file: %w", err)
	}

	var conf T
	if err := envconfig.Process(prefix, &conf); err != nil {
		return nil, err
	}
	return &conf, nil
}

func resolveEnvPath() string {
	parseOnce.Do(func() {
		if flag.Lookup("env") == nil {
			flag.StringVar(&envFilePath, "env", "", "path to .env file")
		}
		if !flag.Parsed() {
			flag.Parse()
		}
	})
	return strings.TrimSpace(envFilePath)
}

func exportEnvFileIfExists(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	return exportEnvFile(path)
}

func exportEnvFile(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	for key, value := range v.AllSettings() {
		if err := os.Setenv(strings.ToUpper(key), fmt.Sprint(value)); err != nil {
			return err
		}
	}
	return nil
}
