package app

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	APIKey            string `yaml:"api_key"`
	BaseURL           string `yaml:"base_url"`
	Model             string `yaml:"model"`
	SystemPrompt      string `yaml:"system_prompt"`
	MaxContextMsgs    int    `yaml:"max_context_messages"`
	MaxHistoryMsgs    int    `yaml:"max_history_messages"`
	MaxTokens         int    `yaml:"max_tokens"`
	Streaming         bool   `yaml:"streaming"`
	ConfirmBeforeSend bool   `yaml:"confirm_before_send"`
	HistoryFile       string `yaml:"history_file"`
	InputFile         string `yaml:"input_file"`
	AutoSaveEvery     int    `yaml:"auto_save_every"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL:           "https://api.deepseek.com",
		Model:             "deepseek-chat",
		SystemPrompt:      "You are a helpful assistant",
		MaxContextMsgs:    20,
		MaxHistoryMsgs:    1000,
		MaxTokens:         4096,
		Streaming:         true,
		ConfirmBeforeSend: true,
		HistoryFile:       ".chat_history",
		InputFile:         "input.txt",
		AutoSaveEvery:     4,
	}
}

func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return normalizeConfig(cfg), nil
}

func normalizeConfig(cfg Config) Config {
	def := DefaultConfig()
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = def.BaseURL
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = def.Model
	}
	if cfg.MaxContextMsgs <= 0 {
		cfg.MaxContextMsgs = def.MaxContextMsgs
	}
	if cfg.MaxHistoryMsgs <= 0 {
		cfg.MaxHistoryMsgs = def.MaxHistoryMsgs
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if strings.TrimSpace(cfg.HistoryFile) == "" {
		cfg.HistoryFile = def.HistoryFile
	}
	if strings.TrimSpace(cfg.InputFile) == "" {
		cfg.InputFile = def.InputFile
	}
	if cfg.AutoSaveEvery <= 0 {
		cfg.AutoSaveEvery = def.AutoSaveEvery
	}
	return cfg
}

// ApplyEnv overlays environment variables on top of file values. Env wins,
// matching the original dotenv-style configuration surface.
func ApplyEnv(cfg Config) Config {
	if v := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); v != "" {
		cfg.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("LLM_MODEL")); v != "" {
		cfg.Model = v
	}
	if v := strings.TrimSpace(os.Getenv("SYSTEM_PROMPT")); v != "" {
		cfg.SystemPrompt = v
	}
	if v := strings.TrimSpace(os.Getenv("LLM_MAX_TOKENS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxTokens = n
		}
	}
	return cfg
}

func SaveConfig(cfg Config, path string) error {
	if path == "" {
		return errors.New("no path provided for config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func DefaultConfigPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "llmchat", "config.yml")
}
