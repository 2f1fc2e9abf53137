// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like DISCORD_BOT_TOKEN
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig() // ignore error if not found

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// overrideEmptyConfig maps the environment variable names the original
// deployment used onto config fields that are still empty after expansion.
func overrideEmptyConfig(cfg *Config) {
	overrides := []struct {
		field *string
		env   string
	}{
		{&cfg.Discord.BotToken, "DISCORD_BOT_TOKEN"},
		{&cfg.Discord.TicketBotID, "DISCORD_TICKET_BOT_ID"},
		{&cfg.Discord.OpenRegex, "DISCORD_OPEN_TICKET_CHANNEL_NAME_REGEX"},
		{&cfg.Discord.ClosedRegex, "DISCORD_CLOSED_TICKET_CHANNEL_NAME_REGEX"},
		{&cfg.Discord.StartMarker, "DISCORD_TICKET_START_MESSAGE"},
		{&cfg.Discord.ClosedByMarker, "DISCORD_TICKET_CLOSED_BY_MESSAGE"},
		{&cfg.Notion.Token, "NOTION_TOKEN"},
		{&cfg.Notion.DatabaseID, "NOTION_PARENT_DATABASE_ID"},
		{&cfg.Store.FilePath, "SAVE_FILE_PATH"},
	}

	for _, o := range overrides {
		if *o.field == "" {
			if val := os.Getenv(o.env); val != "" {
				*o.field = val
			}
		}
	}
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "ticket-bridge"
	}

	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "file"
	}
	if cfg.Store.FilePath == "" {
		cfg.Store.FilePath = "tickets.csv"
	}
	if cfg.Store.Redis.Key == "" {
		cfg.Store.Redis.Key = "ticket:pages"
	}
	if cfg.Store.Postgres.MaxConnections == 0 {
		cfg.Store.Postgres.MaxConnections = 25
	}
	if cfg.Store.Postgres.MaxIdle == 0 {
		cfg.Store.Postgres.MaxIdle = 5
	}
	if cfg.Store.Postgres.SSLMode == "" {
		cfg.Store.Postgres.SSLMode = "disable"
	}

	if cfg.Notion.BaseURL == "" {
		cfg.Notion.BaseURL = "https://api.notion.com/v1"
	}

	if cfg.Metrics.Address == "" {
		cfg.Metrics.Address = ":9402"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// Validate checks critical configuration fields.
func Validate(cfg *Config) error {
	if cfg.Discord.BotToken == "" {
		return fmt.Errorf("discord.bot_token is required")
	}
	if cfg.Discord.OpenRegex == "" {
		return fmt.Errorf("discord.open_ticket_regex is required")
	}
	if cfg.Discord.ClosedRegex == "" {
		return fmt.Errorf("discord.closed_ticket_regex is required")
	}
	if _, err := regexp.Compile(cfg.Discord.OpenRegex); err != nil {
		return fmt.Errorf("discord.open_ticket_regex: %w", err)
	}
	if _, err := regexp.Compile(cfg.Discord.ClosedRegex); err != nil {
		return fmt.Errorf("discord.closed_ticket_regex: %w", err)
	}

	if cfg.Notion.Token == "" {
		return fmt.Errorf("notion.token is required")
	}
	if cfg.Notion.DatabaseID == "" {
		return fmt.Errorf("notion.database_id is required")
	}

	switch cfg.Store.Backend {
	case "file":
		if cfg.Store.FilePath == "" {
			return fmt.Errorf("store.file_path is required for the file backend")
		}
	case "redis":
		if cfg.Store.Redis.Address == "" {
			return fmt.Errorf("store.redis.address is required for the redis backend")
		}
	case "postgres":
		if cfg.Store.Postgres.Host == "" {
			return fmt.Errorf("store.postgres.host is required for the postgres backend")
		}
		if cfg.Store.Postgres.Database == "" {
			return fmt.Errorf("store.postgres.database is required for the postgres backend")
		}
		if cfg.Store.Postgres.User == "" {
			return fmt.Errorf("store.postgres.user is required for the postgres backend")
		}
	default:
		return fmt.Errorf("store.backend must be one of file, redis, postgres (got %q)", cfg.Store.Backend)
	}

	return nil
}
