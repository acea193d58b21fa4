package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all environment-driven settings.
type Config struct {
	HTTPPort      string
	DBPath        string
	ImportDir     string
	EnableWatcher bool
	Environment   string
	StrictConfig  bool
	MaxPageSize   int
}

type fileConfig struct {
	HTTPPort  string `json:"http_port" yaml:"http_port"`
	DBPath    string `json:"db_path" yaml:"db_path"`
	ImportDir string `json:"import_dir" yaml:"import_dir"`
}

const (
	defaultPort      = "8080"
	defaultDBFile    = "./sandwich.db"
	defaultImportDir = "./imports"
)

// Load reads configuration from environment, optional .env file, and an
// optional YAML config file. Environment variables always win.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Environment:  getenv("ENVIRONMENT", "local"),
		StrictConfig: getenvBool("STRICT_CONFIG", false),
		MaxPageSize:  clampInt(getenvInt("MAX_PAGE_SIZE", 500), 50, 5000),
	}

	configPath := getenv("CONFIG_PATH", filepath.Join("config", "config.yaml"))
	fileCfg, fileErr := loadFileConfig(configPath)
	if fileErr != nil && !os.IsNotExist(fileErr) {
		if cfg.StrictConfig {
			return cfg, fmt.Errorf("config load failed (%s): %w", configPath, fileErr)
		}
		log.Printf("config load failed (%s): %v (using defaults)", configPath, fileErr)
	}

	cfg.HTTPPort = firstNonEmpty(os.Getenv("PORT"), fileCfg.HTTPPort, defaultPort)
	cfg.DBPath = firstNonEmpty(os.Getenv("DB_PATH"), fileCfg.DBPath, defaultDBFile)
	cfg.ImportDir = firstNonEmpty(os.Getenv("IMPORT_DIR"), fileCfg.ImportDir, defaultImportDir)
	cfg.EnableWatcher = getenvBool("ENABLE_WATCHER", true)

	log.Printf("config: port=%s db=%s import_dir=%s env=%s", cfg.HTTPPort, cfg.DBPath, cfg.ImportDir, cfg.Environment)
	return cfg, nil
}

func loadFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("parse %s: %w", path, err)
	}
	fc.HTTPPort = strings.TrimPrefix(strings.TrimSpace(fc.HTTPPort), ":")
	return fc, nil
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// Now returns utc time helper for deterministic timestamps.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
