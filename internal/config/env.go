package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that provide defaults for CLI flags.
const (
	EnvDBPath     = "FLAPLINE_DB"
	EnvConfigPath = "FLAPLINE_CONFIG"
	EnvSeed       = "FLAPLINE_SEED"
)

// LoadEnv loads variables from the given .env files into the process environment.
// Missing files are not an error; variables already set are left untouched.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: cannot load %s: %w", f, err)
		}
	}
	return nil
}

// EnvString returns the value of key, or def when unset or empty.
func EnvString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// EnvSeedOr returns FLAPLINE_SEED parsed as a level seed, or def.
func EnvSeedOr(def uint32) uint32 {
	v := os.Getenv(EnvSeed)
	if v == "" {
		return def
	}
	seed, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return def
	}
	return uint32(seed)
}
