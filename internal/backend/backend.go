// Package backend opens the shared store and change bus selected by config.
package backend

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/informator/internal/bus"
	"github.com/Nixie-Tech-LLC/informator/internal/config"
	"github.com/Nixie-Tech-LLC/informator/internal/db"
	"github.com/Nixie-Tech-LLC/informator/internal/kv"
	"github.com/Nixie-Tech-LLC/informator/internal/mqtt"
	"github.com/Nixie-Tech-LLC/informator/internal/redis"
)

// Bus is both ends of the change bus.
type Bus interface {
	bus.Notifier
	bus.Subscriber
}

// OpenKV returns the configured store and a function releasing it.
func OpenKV(ctx context.Context, cfg *config.Config) (kv.Store, func(), error) {
	switch cfg.KVBackend {
	case config.BackendMemory:
		log.Info().Msg("using in-process memory store")
		return kv.Shared(), func() {}, nil

	case config.BackendSQLite, config.BackendPostgres:
		driver, url := db.DriverSQLite, cfg.SQLitePath
		if cfg.KVBackend == config.BackendPostgres {
			driver, url = db.DriverPostgres, cfg.DatabaseURL
		}
		conn, err := db.Open(driver, url)
		if err != nil {
			return nil, nil, err
		}
		if err := db.RunMigrations(conn, cfg.MigrationsPath); err != nil {
			_ = conn.Close()
			return nil, nil, err
		}
		store := db.NewStore(conn)
		return store, func() { _ = store.Close() }, nil

	case config.BackendRedis:
		store := redis.NewStore(redis.NewClient(cfg.RedisAddress, cfg.RedisUsername, cfg.RedisPassword))
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("redis %s: %w", cfg.RedisAddress, err)
		}
		log.Info().Str("address", cfg.RedisAddress).Msg("using redis store")
		return store, func() { _ = store.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown kv backend %q", cfg.KVBackend)
}

// OpenBus connects to MQTT when a broker is configured and falls back to an
// in-process bus otherwise. role is used in the MQTT client id.
func OpenBus(cfg *config.Config, role string) (Bus, func(), error) {
	if cfg.MQTTBrokerURL == "" {
		return bus.NewLocal(), func() {}, nil
	}
	b, err := mqtt.Connect(cfg.MQTTBrokerURL, fmt.Sprintf("informator-%s-%s", role, uuid.NewString()[:8]))
	if err != nil {
		return nil, nil, err
	}
	return b, b.Close, nil
}
