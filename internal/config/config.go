// Package config reads service settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Host         string
	Port         int
	AllowOrigins []string
	LogLevel     string
	LogFile      string
	// MaxUploadMB caps request bodies and multipart parsing.
	MaxUploadMB int
	// StagingDir receives uploaded workbooks while they are converted.
	StagingDir string
	// DatabaseURL selects the Postgres store; empty keeps documents in memory.
	DatabaseURL string
	// UniofficeKey and UniofficeCustomer license the .docx writer.
	UniofficeKey      string
	UniofficeCustomer string
}

func Load() Config {
	return Config{
		Host:         getenv("HOST", "127.0.0.1"),
		Port:         getint("PORT", 8082),
		AllowOrigins: splitList(getenv("ALLOW_ORIGINS", "*")),
		LogLevel:     getenv("LOG_LEVEL", "info"),
		LogFile:      getenv("LOG_FILE", "logs/dms-server.log"),
		MaxUploadMB:  getint("MAX_UPLOAD_MB", 256),
		StagingDir:   getenv("STAGING_DIR", os.TempDir()),
		DatabaseURL:  os.Getenv("DATABASE_URL"),

		UniofficeKey:      os.Getenv("UNIOFFICE_LICENSE_KEY"),
		UniofficeCustomer: os.Getenv("UNIOFFICE_CUSTOMER"),
	}
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

// MaxUploadBytes is MaxUploadMB in bytes.
func (c Config) MaxUploadBytes() int64 { return int64(c.MaxUploadMB) << 20 }

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	n, err := strconv.Atoi(getenv(k, ""))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
