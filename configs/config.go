package config

import (
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
)

var loadEnvOnce sync.Once

// Config reads a key from the environment. The .env file is loaded on the
// first call only, so every caller sees the same snapshot and a missing file
// is reported once instead of on every lookup.
func Config(key string) string {
	loadEnvOnce.Do(func() {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("No .env file found, using system environment variables")
		}
	})

	return os.Getenv(key)
}
