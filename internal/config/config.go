// Package config resolves process settings from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultCrowdinProjectURL is the Crowdin project listing the dataset's target languages.
const DefaultCrowdinProjectURL = "https://linku.crowdin.com/api/v2/projects/2"

// Config holds process settings.
type Config struct {
	// Root is the dataset root directory.
	Root string
	// Registry is the path of an HCL collection registry; empty selects the built-in one.
	Registry string
	LogLevel string

	CrowdinToken      string
	CrowdinProjectURL string
	FetchTimeout      time.Duration
}

// Load reads .env (when present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	timeout := 30 * time.Second
	if raw := strings.TrimSpace(os.Getenv("SONA_FETCH_TIMEOUT")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("SONA_FETCH_TIMEOUT: %w", err)
		}
		timeout = d
	}

	return &Config{
		Root:              firstNonEmpty(strings.TrimSpace(os.Getenv("SONA_ROOT")), "."),
		Registry:          strings.TrimSpace(os.Getenv("SONA_CONFIG")),
		LogLevel:          firstNonEmpty(strings.TrimSpace(os.Getenv("SONA_LOG_LEVEL")), "INFO"),
		CrowdinToken:      strings.TrimSpace(os.Getenv("CROWDIN_TOKEN")),
		CrowdinProjectURL: firstNonEmpty(strings.TrimSpace(os.Getenv("CROWDIN_PROJECT_URL")), DefaultCrowdinProjectURL),
		FetchTimeout:      timeout,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
