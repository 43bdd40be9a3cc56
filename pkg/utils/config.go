package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ServerConfig collects the api-server settings. Values come from an
// optional YAML file (SLIDEHUB_CONFIG, default config.yaml if present),
// overridden field by field by environment variables.
type ServerConfig struct {
	HTTPAddr    string   `yaml:"http_addr"`
	TCPAddr     string   `yaml:"tcp_addr"`
	UDPAddr     string   `yaml:"udp_addr"`
	UploadDir   string   `yaml:"upload_dir"`
	Workers     int      `yaml:"workers"`
	CORSOrigins []string `yaml:"cors_origins"`
	LogMode     string   `yaml:"log_mode"`
}

func defaultServerConfig() ServerConfig {
	return ServerConfig{
		HTTPAddr:    ":8080",
		TCPAddr:     ":7070",
		UDPAddr:     ":7071",
		UploadDir:   "uploads",
		Workers:     2,
		CORSOrigins: []string{"http://localhost:5173"},
		LogMode:     "dev",
	}
}

func LoadServerConfig() (ServerConfig, error) {
	cfg := defaultServerConfig()

	path := os.Getenv("SLIDEHUB_CONFIG")
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if v := os.Getenv("SLIDEHUB_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("SLIDEHUB_TCP_ADDR"); v != "" {
		cfg.TCPAddr = v
	}
	if v := os.Getenv("SLIDEHUB_UDP_ADDR"); v != "" {
		cfg.UDPAddr = v
	}
	if v := os.Getenv("SLIDEHUB_UPLOAD_DIR"); v != "" {
		cfg.UploadDir = v
	}
	if v := os.Getenv("SLIDEHUB_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Workers = n
		}
	}
	if v := os.Getenv("SLIDEHUB_CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitNonEmpty(v, ",")
	}
	if v := os.Getenv("SLIDEHUB_LOG_MODE"); v != "" {
		cfg.LogMode = v
	}

	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	return cfg, nil
}

func splitNonEmpty(s, sep string) []string {
	var out []string
	for _, p := range strings.Split(s, sep) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
