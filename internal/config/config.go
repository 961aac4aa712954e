// Package config provides layered configuration: defaults, an optional YAML
// file, then environment variables. Environment always wins.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Store   StoreConfig   `yaml:"store"`
	Storage StorageConfig `yaml:"storage"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port         int    `yaml:"port"`
	BindAddress  string `yaml:"bindAddress"`
	BodyLimit    string `yaml:"bodyLimit"`
	EnableCORS   bool   `yaml:"enableCORS"`
	AllowOrigins string `yaml:"allowOrigins"`
	ReadTimeout  int    `yaml:"readTimeoutSeconds"`
	WriteTimeout int    `yaml:"writeTimeoutSeconds"`
	IdleTimeout  int    `yaml:"idleTimeoutSeconds"`
}

// StoreConfig contains persistence settings. When MongoURI is empty the
// server falls back to an ephemeral embedded store.
type StoreConfig struct {
	MongoURI string `yaml:"mongoURI"`
	Database string `yaml:"database"`
}

// StorageConfig contains generated-file storage settings.
type StorageConfig struct {
	UploadDir string `yaml:"uploadDir"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         3000,
			BindAddress:  "0.0.0.0",
			BodyLimit:    "10M",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  120,
		},
		Store: StoreConfig{
			MongoURI: "",
			Database: "barcode-generator",
		},
		Storage: StorageConfig{
			UploadDir: "./uploads",
		},
	}
}

// Load builds the configuration. A .env file is loaded first if present,
// then the optional YAML file named by CONFIG_FILE (default ./config.yaml),
// then individual environment variables override everything.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	path := getEnv("CONFIG_FILE", "./config.yaml")
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv("PORT"); ok {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	c.Server.BindAddress = getEnv("BIND_ADDRESS", c.Server.BindAddress)
	c.Server.BodyLimit = getEnv("BODY_LIMIT", c.Server.BodyLimit)
	c.Server.AllowOrigins = getEnv("ALLOW_ORIGINS", c.Server.AllowOrigins)
	c.Store.MongoURI = getEnv("MONGODB_URI", c.Store.MongoURI)
	c.Store.Database = getEnv("MONGODB_DATABASE", c.Store.Database)
	c.Storage.UploadDir = getEnv("UPLOAD_DIR", c.Storage.UploadDir)
}

// EnsureDirectories creates the directories the server needs at startup.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Storage.UploadDir, 0755); err != nil {
		return fmt.Errorf("creating upload directory: %w", err)
	}
	return nil
}

// GetServerAddr returns the listen address in host:port form.
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// GetUploadDir returns the directory for generated image files.
func (c *Config) GetUploadDir() string {
	return c.Storage.UploadDir
}

// Gets the env by key or fallbacks
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
