package config

import (
	"os"
	"time"

	"quiz-engine/internal/domain"

	"gopkg.in/yaml.v3"
)

const defaultPassPercentage = 70

type Config struct {
	Server struct {
		Port           string   `yaml:"port"`
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		TTL              string `yaml:"ttl"`
		File             string `yaml:"file"`
		ShuffleQuestions bool   `yaml:"shuffleQuestions"`
		ShuffleOptions   bool   `yaml:"shuffleOptions"`
		TimeLimit        int    `yaml:"timeLimit"`
		PassPercentage   int    `yaml:"passPercentage"`
		ShowExplanations bool   `yaml:"showExplanations"`
		AllowRetry       bool   `yaml:"allowRetry"`
	} `yaml:"quiz"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Settings returns the default session settings for quizzes that carry none.
func (c Config) Settings() domain.Settings {
	s := domain.Settings{
		ShuffleQuestions: c.Quiz.ShuffleQuestions,
		ShuffleOptions:   c.Quiz.ShuffleOptions,
		TimeLimit:        c.Quiz.TimeLimit,
		PassPercentage:   c.Quiz.PassPercentage,
		ShowExplanations: c.Quiz.ShowExplanations,
		AllowRetry:       c.Quiz.AllowRetry,
	}
	if s.TimeLimit < 0 {
		s.TimeLimit = 0
	}
	if s.PassPercentage <= 0 {
		s.PassPercentage = defaultPassPercentage
	}
	return s
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
