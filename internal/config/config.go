// Package config provides configuration loading for emotunes.
// Values come from an optional YAML file, overridden by environment
// variables. A .env file is loaded first when present.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultPort         = "8080"
	DefaultLogLevel     = "info"
	DefaultYuNetModel   = "models/face_detection_yunet.onnx"
	DefaultEmotionModel = "models/emotion_cnn.onnx"
	DefaultHaarCascade  = "models/haarcascade_frontalface_default.xml"
)

// Models holds detector model file locations.
type Models struct {
	YuNet   string `yaml:"yunet"`
	Emotion string `yaml:"emotion"`
	Haar    string `yaml:"haar"`
}

// Spotify holds Spotify API credentials. Empty credentials mean the
// mock recommender is used instead.
type Spotify struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

// Config is the full application configuration.
type Config struct {
	Port     string  `yaml:"port"`
	LogLevel string  `yaml:"log_level"`
	TempDir  string  `yaml:"temp_dir"`
	Models   Models  `yaml:"models"`
	Spotify  Spotify `yaml:"spotify"`
}

// Load reads configuration from the given YAML file (optional, pass ""
// to skip) and the environment.
func Load(path string) (*Config, error) {
	// Best effort: a missing .env is not an error
	_ = godotenv.Load()

	cfg := &Config{
		Port:     DefaultPort,
		LogLevel: DefaultLogLevel,
		TempDir:  os.TempDir(),
		Models: Models{
			YuNet:   DefaultYuNetModel,
			Emotion: DefaultEmotionModel,
			Haar:    DefaultHaarCascade,
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	overlayEnv(cfg)
	return cfg, nil
}

func overlayEnv(cfg *Config) {
	setIfEnv(&cfg.Port, "PORT")
	setIfEnv(&cfg.LogLevel, "LOG_LEVEL")
	setIfEnv(&cfg.TempDir, "TEMP_DIR")
	setIfEnv(&cfg.Models.YuNet, "YUNET_MODEL_PATH")
	setIfEnv(&cfg.Models.Emotion, "EMOTION_MODEL_PATH")
	setIfEnv(&cfg.Models.Haar, "HAAR_CASCADE_PATH")
	setIfEnv(&cfg.Spotify.ClientID, "SPOTIFY_CLIENT_ID")
	setIfEnv(&cfg.Spotify.ClientSecret, "SPOTIFY_CLIENT_SECRET")
}

func setIfEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
