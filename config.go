package main

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	WorkshopName string `yaml:"workshop_name"`
	HTTPAddr     string `yaml:"http_addr"`

	Engine          string `yaml:"engine"` // "rules" or "anthropic"
	LLMModel        string `yaml:"llm_model"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`

	StoreBackend    string `yaml:"store_backend"` // "csv" or "sqlite"
	DataDir         string `yaml:"data_dir"`
	HistoryPath     string `yaml:"history_path"`
	WallPath        string `yaml:"wall_path"`
	CredentialsPath string `yaml:"credentials_path"`
	DBPath          string `yaml:"db_path"`

	SlackBotToken  string `yaml:"slack_bot_token"`
	AlertChannelID string `yaml:"alert_channel_id"`
	DigestSchedule string `yaml:"digest_schedule"`

	Timezone string `yaml:"timezone"`
}

func LoadConfig() Config {
	var cfg Config

	// Load from config.yaml if it exists
	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	// Env vars override YAML values
	envOverride(&cfg.WorkshopName, "WORKSHOP_NAME")
	envOverride(&cfg.HTTPAddr, "HTTP_ADDR")
	envOverride(&cfg.Engine, "ENGINE")
	envOverride(&cfg.LLMModel, "LLM_MODEL")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.StoreBackend, "STORE_BACKEND")
	envOverride(&cfg.DataDir, "DATA_DIR")
	envOverride(&cfg.HistoryPath, "HISTORY_PATH")
	envOverride(&cfg.WallPath, "WALL_PATH")
	envOverride(&cfg.CredentialsPath, "CREDENTIALS_PATH")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.AlertChannelID, "ALERT_CHANNEL_ID")
	envOverride(&cfg.DigestSchedule, "DIGEST_SCHEDULE")
	envOverride(&cfg.Timezone, "TIMEZONE")

	// Defaults
	if cfg.WorkshopName == "" {
		cfg.WorkshopName = "AutoAyuda"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.Engine == "" {
		cfg.Engine = "rules"
	}
	if cfg.StoreBackend == "" {
		cfg.StoreBackend = "csv"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "./data"
	}
	if cfg.HistoryPath == "" {
		cfg.HistoryPath = filepath.Join(cfg.DataDir, "history.csv")
	}
	if cfg.WallPath == "" {
		cfg.WallPath = filepath.Join(cfg.DataDir, "wall.csv")
	}
	if cfg.CredentialsPath == "" {
		cfg.CredentialsPath = filepath.Join(cfg.DataDir, "credentials.csv")
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, "autodiag.db")
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}

	// Validate
	switch cfg.Engine {
	case "rules":
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			log.Fatalf("anthropic_api_key is required when engine=anthropic")
		}
	default:
		log.Fatalf("engine must be 'rules' or 'anthropic', got '%s'", cfg.Engine)
	}

	switch cfg.StoreBackend {
	case "csv", "sqlite":
	default:
		log.Fatalf("store_backend must be 'csv' or 'sqlite', got '%s'", cfg.StoreBackend)
	}

	if cfg.AlertChannelID != "" && cfg.SlackBotToken == "" {
		log.Fatalf("slack_bot_token is required when alert_channel_id is set")
	}

	if strings.EqualFold(cfg.Timezone, "Local") {
		cfg.Timezone = time.Local.String()
	} else {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			log.Fatalf("invalid timezone '%s': %v", cfg.Timezone, err)
		}
		time.Local = loc
	}

	return cfg
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}
