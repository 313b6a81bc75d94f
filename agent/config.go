package agent

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	APIKey       string  `mapstructure:"api_key"`
	BaseURL      string  `mapstructure:"base_url"`
	Model        string  `mapstructure:"model"`
	AllowTools   bool    `mapstructure:"allow_tools"`
	SystemPrompt string  `mapstructure:"system_prompt"`
	Temperature  float32 `mapstructure:"temperature"`
	MaxRounds    int     `mapstructure:"max_rounds"`
}

func DefaultConfig() Config {
	return Config{
		AllowTools:   true,
		SystemPrompt: DefaultSystemPrompt,
		Temperature:  DefaultTemperature,
		MaxRounds:    DefaultMaxRounds,
	}
}

// LoadConfig loads agent config from a directory containing agent.yaml.
// AGENT_* environment variables take precedence.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("agent")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("AGENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := DefaultConfig()
	v.SetDefault("api_key", "")
	v.SetDefault("base_url", "")
	v.SetDefault("model", "")
	v.SetDefault("allow_tools", cfg.AllowTools)
	v.SetDefault("system_prompt", cfg.SystemPrompt)
	v.SetDefault("temperature", cfg.Temperature)
	v.SetDefault("max_rounds", cfg.MaxRounds)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		log.Println("agent config not found, relying on env vars")
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
