package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/informator/internal/config"
)

// LoadEnvironment reads .env when present, then resolves and validates the
// configuration.
func LoadEnvironment() *config.Config {
	if err := config.LoadDotEnv(); err != nil {
		log.Warn().Err(err).Msg("ignoring .env")
	}

	cfg, err := config.Load(os.Getenv("INFORMATOR_CONFIG"))
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	cfg.SetupLogger()
	return cfg
}
