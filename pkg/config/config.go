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

const defaultEnvFile = ".env"

var (
	envFlag  string
	flagOnce sync.Once
)

func MustNew[T any](prefix string) *T {
	conf, err := New[T](prefix)
	if err != nil {
		panic(err)
	}
	return conf
}

// New fills T from the process environment under prefix after merging in
// the env file, if any.
func New[T any](prefix string) (*T, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	conf := new(T)
	if err := envconfig.Process(prefix, conf); err != nil {
		return nil, fmt.Errorf("config %s: %w", prefix, err)
	}
	return conf, nil
}

// loadEnvFile reads the file named by -env or ENV_FILE. Without either it
// falls back to ./.env and skips it quietly when absent.
func loadEnvFile() error {
	path, explicit := envFilePath()
	if !explicit {
		info, err := os.Stat(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			return nil
		case err != nil:
			return fmt.Errorf("stat env file: %w", err)
		case info.IsDir():
			return nil
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read env file %s: %w", path, err)
	}

	// process env wins over the file
	for key, val := range v.AllSettings() {
		name := strings.ToUpper(key)
		if _, set := os.LookupEnv(name); set {
			continue
		}
		if err := os.Setenv(name, fmt.Sprint(val)); err != nil {
			return fmt.Errorf("export %s: %w", name, err)
		}
	}
	return nil
}

func envFilePath() (string, bool) {
	flagOnce.Do(func() {
		if flag.Lookup("env") == nil {
			flag.StringVar(&envFlag, "env", "", "path to .env file")
		}
		if !flag.Parsed() {
			flag.Parse()
		}
	})
	for _, candidate := range []string{envFlag, os.Getenv("ENV_FILE")} {
		if p := strings.TrimSpace(candidate); p != "" {
			return p, true
		}
	}
	return defaultEnvFile, false
}
