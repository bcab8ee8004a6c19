package config

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

var envOnce sync.Once

func loadEnv() {
	envOnce.Do(func() {
		_ = godotenv.Load()
	})
}

func getEnv(key string) string {
	loadEnv()
	return strings.TrimSpace(os.Getenv(key))
}

// GetAPIBaseURL returns the base URL of the system of record, without a
// trailing slash.
func GetAPIBaseURL() string {
	base := getEnv("IMPORT_API_BASE_URL")
	if base == "" {
		base = "http://localhost:3001/api"
	}
	return strings.TrimRight(base, "/")
}

func GetAPIKey() string {
	return getEnv("IMPORT_API_KEY")
}

func GetAPIKeyHeader() string {
	hdr := getEnv("IMPORT_API_KEY_HEADER")
	if hdr == "" {
		hdr = "X-API-Key"
	}
	return hdr
}

// GetRateLimitPerMin returns the outbound request budget per minute.
// Zero means unthrottled.
func GetRateLimitPerMin() int64 {
	v := getEnv("IMPORT_RATE_LIMIT_PER_MIN")
	if v == "" {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// AllowDuplicateReplay reports whether documents whose invoice number already
// exists in the system of record should be submitted again. The historical
// importer always re-created documents on replay, so this defaults to true.
func AllowDuplicateReplay() bool {
	v := getEnv("IMPORT_ALLOW_DUPLICATE_REPLAY")
	if v == "" {
		return true
	}
	return !strings.EqualFold(v, "false")
}
