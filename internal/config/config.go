package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Quiz struct {
		StartURL     string `yaml:"startURL"`
		DefaultLimit int    `yaml:"defaultLimit"`
	} `yaml:"quiz"`
	Ledger struct {
		Capacity int    `yaml:"capacity"`
		File     string `yaml:"file"`
	} `yaml:"ledger"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Server struct {
		Port string `yaml:"port"`
		// Source selects the question pack backend: "yaml" or "postgres".
		Source string `yaml:"source"`
		Pack   string `yaml:"pack"`
		TTL    string `yaml:"ttl"`
	} `yaml:"server"`
}

// Default returns the configuration used when no file overrides it.
func Default() Config {
	cfg := Config{}
	cfg.Quiz.StartURL = "https://courselab.lnu.se/quiz/question/1"
	cfg.Quiz.DefaultLimit = 20
	cfg.Ledger.Capacity = 5
	cfg.Ledger.File = "highscores.json"
	cfg.Server.Port = "8080"
	cfg.Server.Source = "yaml"
	cfg.Server.Pack = "config/questions.yaml"
	return cfg
}

// Load reads YAML config from path on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadOrDefault loads path if it exists, otherwise returns the defaults.
func LoadOrDefault(path string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
