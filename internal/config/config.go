// Package config loads simulation-level parameters from environment
// variables: tick cadence, world bounds, and the RNG seed. It has no
// notion of a driver process — anything embedding internal/world (a
// batch runner, a test harness, a REPL) can call Load and hand the
// result to WorldConfig to get a ready internal/world.Config.
package config

import (
	"os"
	"strconv"

	"github.com/embergrove/murmur/internal/engine"
	"github.com/embergrove/murmur/internal/world"
)

// Config holds the environment-tunable simulation parameters.
type Config struct {
	TickRate  float64 // ticks per second a caller should advance the world at
	WorldMinX float64
	WorldMinY float64
	WorldMaxX float64
	WorldMaxY float64
	RNGSeed   uint32
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		TickRate:  getEnvAsFloat("MURMUR_TICK_RATE", 10),
		WorldMinX: getEnvAsFloat("MURMUR_WORLD_MIN_X", 0),
		WorldMinY: getEnvAsFloat("MURMUR_WORLD_MIN_Y", 0),
		WorldMaxX: getEnvAsFloat("MURMUR_WORLD_MAX_X", 1000),
		WorldMaxY: getEnvAsFloat("MURMUR_WORLD_MAX_Y", 1000),
		RNGSeed:   uint32(getEnvAsInt("MURMUR_RNG_SEED", 1)),
	}
}

// WorldConfig overlays the loaded bounds and seed onto world.DefaultConfig.
func (c *Config) WorldConfig() world.Config {
	cfg := world.DefaultConfig()
	cfg.RNGSeed = c.RNGSeed
	cfg.Bounds = engine.Bounds{
		MinX: c.WorldMinX, MinY: c.WorldMinY,
		MaxX: c.WorldMaxX, MaxY: c.WorldMaxY,
		Policy: cfg.Bounds.Policy, Damping: cfg.Bounds.Damping,
	}
	return cfg
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloat gets an environment variable as a float64 or returns a default value.
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}
