package config

import (
	"fmt"
	"sync"

	"github.com/ilyakaznacheev/cleanenv"
)

var (
	instance Config
	once     sync.Once
)

// Load reads the given config files in order, later files overriding
// earlier ones, then lets environment variables override everything.
// The result is cached, subsequent calls return the same Config.
func Load(configPaths ...string) (Config, error) {
	var err error
	once.Do(func() {
		cfg := &config{}

		for _, configPath := range configPaths {
			if err = cleanenv.ReadConfig(configPath, cfg); err != nil {
				err = fmt.Errorf("failed to read config file %s: %w", configPath, err)
				return
			}
		}

		if err = cleanenv.ReadEnv(cfg); err != nil {
			err = fmt.Errorf("failed to read environment variables: %w", err)
			return
		}

		instance = cfg
	})

	if err != nil {
		return nil, err
	}

	return instance, nil
}

// Reset clears the cached instance, for tests that load different files.
func Reset() {
	instance = nil
	once = sync.Once{}
}
