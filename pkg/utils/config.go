package utils

import (
	"os"
	"strconv"
	"time"
)

type ServerConfig struct {
	Addr           string
	SessionTTL     time.Duration
	CatalogBaseURL string
}

func LoadServerConfig() ServerConfig {
	addr := os.Getenv("BOOKTRACK_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	catalog := os.Getenv("BOOKTRACK_CATALOG_URL")
	if catalog == "" {
		catalog = "https://openlibrary.org"
	}

	ttl := 72 * time.Hour
	if raw := os.Getenv("BOOKTRACK_SESSION_TTL_HOURS"); raw != "" {
		if hours, err := strconv.Atoi(raw); err == nil && hours > 0 {
			ttl = time.Duration(hours) * time.Hour
		}
	}

	return ServerConfig{
		Addr:           addr,
		SessionTTL:     ttl,
		CatalogBaseURL: catalog,
	}
}
