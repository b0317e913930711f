package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env         string `yaml:"env" env:"ENV" env-default:"local"`
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH" env-required:"true"`
	RedisAddr   string `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	HTTPServer  `yaml:"http_server"`
	WhatsApp    `yaml:"whatsapp"`
	LLM         `yaml:"llm"`
	Matching    `yaml:"matching"`
	Speech      `yaml:"speech"`
}

type HTTPServer struct {
	Address         string        `yaml:"address" env-default:"localhost:8080"`
	Timeout         time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"15s"`
}

type WhatsApp struct {
	Token         string `yaml:"token" env:"WHATSAPP_TOKEN"`
	PhoneNumberID string `yaml:"phone_number_id" env:"PHONE_NUMBER_ID"`
	VerifyToken   string `yaml:"verify_token" env:"VERIFY_TOKEN"`
	GraphVersion  string `yaml:"graph_version" env-default:"v18.0"`
}

type LLM struct {
	APIKey string `yaml:"api_key" env:"LLM_API_KEY"`
	Model  string `yaml:"model" env-default:"gemini-2.5-flash"`
}

// Matching holds the fuzzy-resolution tunables. Reads accept looser matches
// than writes: a wrong schedule answer is recoverable, a wrong status
// mutation is not.
type Matching struct {
	QueryThreshold    int `yaml:"query_threshold" env-default:"60"`
	MutationThreshold int `yaml:"mutation_threshold" env-default:"80"`
	HistoryWindow     int `yaml:"history_window" env-default:"10"`
}

type Speech struct {
	Enabled         bool   `yaml:"enabled" env-default:"false"`
	CredentialsFile string `yaml:"credentials_file" env:"GOOGLE_APPLICATION_CREDENTIALS"`
	APIKey          string `yaml:"api_key" env:"SPEECH_API_KEY"`
	WorkDir         string `yaml:"work_dir" env-default:"data"`
}

func MustLoad() *Config {
	var cfg Config

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("Config file does not exist: %s", configPath)
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("Failed to read config file: %v", err)
	}

	return &cfg
}
