// Package config assembles runtime configuration from environment variables
// with an optional YAML override file.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config defines application configuration.
type Config struct {
	HTTPAddr        string   `yaml:"http_addr"`
	DataDir         string   `yaml:"data_dir"`
	ExportDir       string   `yaml:"export_dir"`
	HistoryFile     string   `yaml:"history_file"`
	DatabaseURL     string   `yaml:"database_url"`
	MaxRows         int      `yaml:"max_rows"`
	MaxFileBytes    int64    `yaml:"max_file_bytes"`
	ExteriorMarkers []string `yaml:"exterior_markers"`
}

// Load builds configuration from the environment, with CLIMAGRAPH_CONFIG
// optionally pointing at a YAML file whose values win over env defaults.
// A .env file in the working directory is read first when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:        getenvDefault("CLIMAGRAPH_HTTP_ADDR", ":8080"),
		DataDir:         getenvDefault("CLIMAGRAPH_DATA_DIR", filepath.FromSlash("var/data")),
		ExportDir:       getenvDefault("CLIMAGRAPH_EXPORT_DIR", filepath.FromSlash("var/exports")),
		HistoryFile:     getenvDefault("CLIMAGRAPH_HISTORY_FILE", filepath.FromSlash("var/history.jsonl")),
		DatabaseURL:     os.Getenv("CLIMAGRAPH_DATABASE_URL"),
		MaxRows:         getenvIntDefault("CLIMAGRAPH_MAX_ROWS", 0),
		MaxFileBytes:    int64(getenvIntDefault("CLIMAGRAPH_MAX_FILE_BYTES", 0)),
		ExteriorMarkers: splitCSV(os.Getenv("CLIMAGRAPH_EXTERIOR_MARKERS")),
	}

	if path := os.Getenv("CLIMAGRAPH_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.HTTPAddr == "" {
		return cfg, errors.New("config: http addr required")
	}
	if cfg.ExportDir == "" {
		return cfg, errors.New("config: export dir required")
	}
	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	var result []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}
