package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/limaJavier/seating/pkg/model"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

const envPrefix = "SEATING_"

// Config holds all application configuration
type Config struct {
	// Room
	Rows      int    `mapstructure:"rows"`
	Cols      int    `mapstructure:"cols"`
	Adjacency string `mapstructure:"adjacency"`

	// Engine
	MaxBacktrackSteps uint64        `mapstructure:"max_backtrack_steps"`
	AssignTimeout     time.Duration `mapstructure:"assign_timeout"`
	Workers           int           `mapstructure:"workers"`
	RejectDuplicates  bool          `mapstructure:"reject_duplicates"`

	// Storage
	StorePath string `mapstructure:"store_path"`
	InMemory  bool   `mapstructure:"in_memory"`

	// Server
	ServerAddress  string   `mapstructure:"server_address"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	LogLevel    string `mapstructure:"log_level"`
	Environment string `mapstructure:"environment"`
}

func Default() *Config {
	return &Config{
		Rows:              5,
		Cols:              6,
		Adjacency:         model.Grid4.String(),
		MaxBacktrackSteps: 1_000_000,
		AssignTimeout:     10 * time.Second,
		Workers:           4,
		RejectDuplicates:  true,
		StorePath:         "./data",
		ServerAddress:     ":8080",
		AllowedOrigins:    []string{"http://localhost:5173"},
		LogLevel:          "info",
		Environment:       "development",
	}
}

// Load reads the configuration file at path (JSON or YAML, by extension) on top of the defaults, applies SEATING_* environment overrides and validates the result. An empty path skips the file
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := readFile(path)
		if err != nil {
			return nil, err
		}
		if err := decode(raw, cfg); err != nil {
			return nil, fmt.Errorf("cannot decode config file %v: %v", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func readFile(path string) (map[string]any, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file: %v", err)
	}

	var raw map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(bytes, &raw)
	case ".json":
		err = json.Unmarshal(bytes, &raw)
	default:
		return nil, fmt.Errorf("unsupported config file extension \"%v\"", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("cannot parse config file %v: %v", path, err)
	}
	return raw, nil
}

func decode(raw map[string]any, cfg *Config) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		ZeroFields:       true,
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}

func (cfg *Config) applyEnv() error {
	var err error
	cfg.Rows, err = getEnvInt("ROWS", cfg.Rows)
	if err != nil {
		return err
	}
	cfg.Cols, err = getEnvInt("COLS", cfg.Cols)
	if err != nil {
		return err
	}
	cfg.Workers, err = getEnvInt("WORKERS", cfg.Workers)
	if err != nil {
		return err
	}
	if value := os.Getenv(envPrefix + "MAX_BACKTRACK_STEPS"); value != "" {
		if cfg.MaxBacktrackSteps, err = strconv.ParseUint(value, 10, 64); err != nil {
			return fmt.Errorf("invalid %vMAX_BACKTRACK_STEPS: %v", envPrefix, err)
		}
	}
	if value := os.Getenv(envPrefix + "ASSIGN_TIMEOUT"); value != "" {
		if cfg.AssignTimeout, err = time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %vASSIGN_TIMEOUT: %v", envPrefix, err)
		}
	}
	if value := os.Getenv(envPrefix + "ALLOWED_ORIGINS"); value != "" {
		cfg.AllowedOrigins = strings.Split(value, ",")
	}

	cfg.Adjacency = getEnv("ADJACENCY", cfg.Adjacency)
	cfg.StorePath = getEnv("STORE_PATH", cfg.StorePath)
	cfg.ServerAddress = getEnv("SERVER_ADDRESS", cfg.ServerAddress)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.InMemory = getEnvBool("IN_MEMORY", cfg.InMemory)
	cfg.RejectDuplicates = getEnvBool("REJECT_DUPLICATES", cfg.RejectDuplicates)
	return nil
}

// Validate checks that the configuration describes a usable room and server
func (cfg *Config) Validate() error {
	if cfg.Rows <= 0 || cfg.Cols <= 0 {
		return fmt.Errorf("%w: rows and cols must be positive, got %dx%d", model.ErrInvalidShape, cfg.Rows, cfg.Cols)
	} else if cfg.Rows > model.MaxDimension || cfg.Cols > model.MaxDimension {
		return fmt.Errorf("%w: rows and cols must be at most %d, got %dx%d", model.ErrInvalidShape, model.MaxDimension, cfg.Rows, cfg.Cols)
	}
	if _, ok := model.ParseAdjacency(cfg.Adjacency); !ok {
		return fmt.Errorf("%w: \"%v\"", model.ErrUnknownAdjacency, cfg.Adjacency)
	}
	if cfg.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", cfg.Workers)
	}
	if cfg.AssignTimeout < 0 {
		return fmt.Errorf("assign_timeout cannot be negative, got %v", cfg.AssignTimeout)
	}
	if !cfg.InMemory && cfg.StorePath == "" {
		return fmt.Errorf("store_path is required unless in_memory is set")
	}
	if cfg.IsProduction() && cfg.InMemory {
		return fmt.Errorf("in_memory storage is not allowed in production")
	}
	return nil
}

func (cfg *Config) Shape() model.RoomShape {
	return model.RoomShape{Rows: cfg.Rows, Cols: cfg.Cols}
}

// AdjacencyPolicy returns the parsed adjacency. Validate guarantees the name is known
func (cfg *Config) AdjacencyPolicy() model.Adjacency {
	adjacency, _ := model.ParseAdjacency(cfg.Adjacency)
	return adjacency
}

func (cfg *Config) IsDevelopment() bool {
	return cfg.Environment == "development"
}

func (cfg *Config) IsProduction() bool {
	return cfg.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(envPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(envPrefix + key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(envPrefix + key)
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %v%v: %v", envPrefix, key, err)
	}
	return intValue, nil
}
