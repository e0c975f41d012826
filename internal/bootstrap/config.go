package bootstrap

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/nordlys-media/veracity/internal/config"
	"github.com/nordlys-media/veracity/internal/logging"
)

// LoadConfig loads configuration from the given path, or from CONFIG_PATH /
// config.yml when path is empty. A missing file falls back to defaults so
// the binary runs on environment variables alone.
func LoadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = config.GetConfigPath("config.yml")
	}
	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Printf("Config file %s not found, using defaults", path)
			return config.Default(), nil
		}
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// CreateLogger creates a logger instance from configuration.
func CreateLogger(cfg *config.Config) (logging.Logger, error) {
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Service.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return logger.With(logging.String("service", cfg.Service.Name)), nil
}
