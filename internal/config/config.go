package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/go-yaml/yaml"
)

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	Server Server `yaml:"server"`
	Store  Store  `yaml:"store"`
}

type Server struct {
	Addr          string `yaml:"addr" env:"MOMENTO_ADDR"`
	RedisAddr     string `yaml:"redisAddr" env:"MOMENTO_REDIS_ADDR"`
	RedisPassword string `yaml:"redisPassword" env:"MOMENTO_REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redisDB" env:"MOMENTO_REDIS_DB"`
	EnableTrace   bool   `yaml:"enableTrace" env:"MOMENTO_ENABLE_TRACE"`
	TraceEndpoint string `yaml:"traceEndpoint" env:"MOMENTO_TRACE_ENDPOINT"`
}

// Store holds the connection settings of the backing store.
// URL is a postgres connection URL; Key is the credential merged into it.
type Store struct {
	Backend string `yaml:"backend" env:"MOMENTO_STORE_BACKEND"`
	URL     string `yaml:"url" env:"MOMENTO_STORE_URL"`
	Key     string `yaml:"key" env:"MOMENTO_STORE_KEY"`
}

// Load reads the yaml file at path, if it exists, then applies environment overrides.
func Load(path string) (Config, error) {
	var config Config

	if path != "" {
		file, err := os.Open(path)
		switch {
		case err == nil:
			defer file.Close()
			err = yaml.NewDecoder(file).Decode(&config)
			if err != nil && !errors.Is(err, io.EOF) {
				return Config{}, fmt.Errorf("decode %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return Config{}, err
		}
	}

	if err := env.Parse(&config); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if config.Server.Addr == "" {
		config.Server.Addr = ":8000"
	}
	if config.Store.Backend == "" {
		config.Store.Backend = BackendPostgres
	}

	return config, nil
}
