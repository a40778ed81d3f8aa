package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/scrummate/scrummate/pkg/log"
)

type OpenAI struct {
	OpenAIAPIKey     string `env:"OPENAI_API_KEY,required"`
	OpenAIModel      string `yaml:"openai_model" env:"OPENAI_MODEL" env-default:"gpt-4o-mini"`
	OpenAIBaseURL    string `yaml:"open_ai_base_url" env:"OPENAI_BASE_URL"`
	PromptTokenLimit int    `yaml:"prompt_token_limit" env:"PROMPT_TOKEN_LIMIT" env-default:"3500"`
}

type Redis struct {
	Endpoint string `yaml:"endpoint" env:"REDIS_ENDPOINT" env-default:"localhost:6379"`
}

type HTTP struct {
	Address         string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`
}

type Config struct {
	Language string     `yaml:"language" env:"APP_LANGUAGE" env-default:"es"`
	OpenAI   OpenAI     `yaml:"openai"`
	Redis    Redis      `yaml:"redis"`
	HTTP     HTTP       `yaml:"http"`
	Log      log.Config `yaml:"log"`
}

func LoadConfig(cfgPath string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(cfgPath, &cfg); err != nil {
		return nil, err
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
