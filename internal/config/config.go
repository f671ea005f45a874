// Package config loads SlackAdder configuration from an optional JSON5 file
// overlaid with environment variables. Env vars take precedence so deployed
// secrets never need to live in the file.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/titanous/json5"
)

// SlackConfig holds the two Slack credentials: the bot token for Web API
// calls and the app-level token for Socket Mode.
type SlackConfig struct {
	BotToken string `json:"bot_token"`
	AppToken string `json:"app_token"`
}

// Config is the root configuration for SlackAdder.
type Config struct {
	Slack SlackConfig `json:"slack"`

	// AllowedUsers restricts who may invoke the bot. Empty means everyone
	// (guest and external-channel checks still apply).
	AllowedUsers []string `json:"allowed_users"`

	// GroupsFile is the path to the channel groups JSON file.
	GroupsFile string `json:"groups_file"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		GroupsFile: "channel_groups.json",
	}
}

// Load reads config from a JSON5 file, then overlays env vars.
// A missing file is not an error; env vars alone can fully configure the bot.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json5.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides overlays env vars onto the config. The variable names
// match the deployed .env convention so existing files keep working.
func (c *Config) applyEnvOverrides() {
	envStr := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	envStr("SLACK_BOT_TOKEN", &c.Slack.BotToken)
	envStr("SLACK_APP_TOKEN", &c.Slack.AppToken)
	envStr("CHANNEL_GROUPS_FILE", &c.GroupsFile)

	if v := os.Getenv("ALLOWED_USERS"); strings.TrimSpace(v) != "" {
		c.AllowedUsers = strings.Split(v, ",")
	}
}

// AllowList returns the allow-listed user IDs normalized to upper case,
// or nil when no allow-list is configured.
func (c *Config) AllowList() []string {
	var out []string
	for _, raw := range c.AllowedUsers {
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			out = append(out, strings.ToUpper(trimmed))
		}
	}
	return out
}
