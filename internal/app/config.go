package app

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime wiring options for building the app. Values come from
// defaults, then .env/environment, then flags; later sources win.
type Config struct {
	Home          string        // data directory, e.g. $HOME/.shary
	RelayURL      string        // relay base URL, e.g. http://127.0.0.1:8080
	KeySize       int           // RSA modulus size in bits
	PayloadTTL    time.Duration // validity window of uploaded documents
	NonceWindow   time.Duration // replay-ledger window
	ProbeInterval time.Duration // offline re-probe staleness
	HTTP          *http.Client  // optional; defaults to http.DefaultClient
}

// Default returns the baseline configuration.
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		Home:          filepath.Join(home, ".shary"),
		RelayURL:      "http://127.0.0.1:8080",
		KeySize:       2048,
		PayloadTTL:    24 * time.Hour,
		NonceWindow:   10 * time.Minute,
		ProbeInterval: 3 * time.Second,
	}
}

// FromEnv loads defaults, then overlays any SHARY_* environment variables.
// A .env file in the working directory is honored when present.
func FromEnv() Config {
	_ = godotenv.Load()

	cfg := Default()
	if v := os.Getenv("SHARY_HOME"); v != "" {
		cfg.Home = v
	}
	if v := os.Getenv("SHARY_RELAY_URL"); v != "" {
		cfg.RelayURL = v
	}
	if v := os.Getenv("SHARY_KEY_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.KeySize = n
		}
	}
	if v := os.Getenv("SHARY_PAYLOAD_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.PayloadTTL = d
		}
	}
	if v := os.Getenv("SHARY_NONCE_WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.NonceWindow = d
		}
	}
	if v := os.Getenv("SHARY_PROBE_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ProbeInterval = d
		}
	}
	return cfg
}
