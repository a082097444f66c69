package config

import (
	"log"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

var loadOnce sync.Once

// Config returns the value of an environment variable, loading .env once
// on first use. Missing keys return "".
func Config(key string) string {
	loadOnce.Do(func() {
		if err := godotenv.Load(); err != nil {
			log.Println("config: no .env file found, using process environment")
		}
	})
	return os.Getenv(key)
}

// ConfigInt reads an integer environment variable, falling back to def
// when unset or malformed.
func ConfigInt(key string, def int) int {
	s := Config(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("config: invalid int for %s: %q, using %d", key, s, def)
		return def
	}
	return v
}
