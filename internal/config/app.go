package config

import (
	"os"
	"strings"
)

const defaultAddr = ":8080"

// Addr is the address the server listens on.
func Addr() string {
	if addr, ok := os.LookupEnv("APP_ADDR"); ok && addr != "" {
		return addr
	}
	return defaultAddr
}

// CorsOrigins lists the origins allowed by CORS_ORIGINS, comma separated.
// An empty list allows any origin.
func CorsOrigins() []string {
	origins := make([]string, 0)
	for _, origin := range strings.Split(os.Getenv("CORS_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
