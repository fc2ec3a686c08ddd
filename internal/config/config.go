// Package config collects the handful of environment settings the app
// needs. A .env file in the working directory is honored when present.
package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr         string // listen address, e.g. ":8080"
	DatabasePath string // sqlite file path
	TemplatesDir string // root of the template tree
	MediaDir     string // uploaded images live here
	CSRFKey      string // 32+ byte secret for the CSRF middleware
}

func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: skipping .env: %v", err)
	}
	return Config{
		Addr:         getEnv("ADDR", ":8080"),
		DatabasePath: getEnv("DATABASE_PATH", "dojotrack.db"),
		TemplatesDir: getEnv("TEMPLATES_DIR", "templates"),
		MediaDir:     getEnv("MEDIA_DIR", "media"),
		CSRFKey:      getEnv("CSRF_KEY", "dev-only-insecure-csrf-key-32bb!"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
