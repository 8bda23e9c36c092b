// Package config reads defaults for the commands from the environment and an
// optional .env file. Command-line flags override these values.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// InitConfig loads the given .env files (".env" when none are named) into
// the process environment. Missing files are not an error; variables that
// are already set win.
func InitConfig(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
		log.Printf("config: loaded %s", f)
	}
	return nil
}

// GetEnvVariable returns a required variable.
func GetEnvVariable(v string) (string, error) {
	if v == "" {
		return "", fmt.Errorf("input param empty")
	}
	b := strings.TrimSpace(os.Getenv(v))
	if b == "" {
		return "", fmt.Errorf("failed to get variable for %s", v)
	}
	return b, nil
}

// String returns the variable or def when unset.
func String(key, def string) string {
	if v, err := GetEnvVariable(key); err == nil {
		return v
	}
	return def
}

// Int returns the variable parsed as an int, or def when unset or invalid.
func Int(key string, def int) int {
	v, err := GetEnvVariable(key)
	if err != nil {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("config: %s=%q is not an integer, using %d", key, v, def)
		return def
	}
	return n
}

// Bool returns the variable parsed with strconv.ParseBool, or def.
func Bool(key string, def bool) bool {
	v, err := GetEnvVariable(key)
	if err != nil {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("config: %s=%q is not a boolean, using %t", key, v, def)
		return def
	}
	return b
}

// Server holds cmd/server settings.
type Server struct {
	Addr   string // listen address, ":3000" by default
	DBPath string
	Store  string // "json" or "sqlite"
	Assets string // static files directory, empty to disable
}

// ServerFromEnv reads PORT, CLOUT_DB, CLOUT_STORE and CLOUT_ASSETS.
func ServerFromEnv() Server {
	s := Server{
		Addr:   ":" + strconv.Itoa(Int("PORT", 3000)),
		Store:  strings.ToLower(String("CLOUT_STORE", "json")),
		Assets: String("CLOUT_ASSETS", "assets"),
	}
	def := "db.json"
	if s.Store == "sqlite" {
		def = "clout.db"
	}
	s.DBPath = String("CLOUT_DB", def)
	return s
}

// Validate checks the store kind.
func (s Server) Validate() error {
	switch s.Store {
	case "json", "sqlite":
		return nil
	default:
		return fmt.Errorf("unsupported store %q (supported: json, sqlite)", s.Store)
	}
}

// Client holds settings shared by the game hosts.
type Client struct {
	ServerURL string // empty means offline play against a local JSON store
	User      string
	Assets    string
	Mute      bool
	LocalDB   string
}

// ClientFromEnv reads CLOUT_SERVER, CLOUT_USER, CLOUT_ASSETS, CLOUT_MUTE and
// CLOUT_LOCAL_DB.
func ClientFromEnv() Client {
	return Client{
		ServerURL: String("CLOUT_SERVER", "http://localhost:3000"),
		User:      String("CLOUT_USER", ""),
		Assets:    String("CLOUT_ASSETS", "assets"),
		Mute:      Bool("CLOUT_MUTE", false),
		LocalDB:   String("CLOUT_LOCAL_DB", "clout-local.json"),
	}
}
