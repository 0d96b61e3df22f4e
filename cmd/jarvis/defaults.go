package main

import (
	"time"

	"github.com/spf13/viper"
)

func initViperDefaults() {
	// Classification model defaults.
	viper.SetDefault("llm.provider", "openai")
	viper.SetDefault("llm.endpoint", "https://api.openai.com")
	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.api_key", "")
	viper.SetDefault("llm.request_timeout", 90*time.Second)

	// Global
	viper.SetDefault("file_state_dir", "~/.jarvis")

	// Asana
	viper.SetDefault("asana.access_token", "")
	viper.SetDefault("asana.project_gid", "")
	viper.SetDefault("asana.workspace_gid", "")

	// Telegram
	viper.SetDefault("telegram.poll_timeout", 30*time.Second)
	viper.SetDefault("telegram.allowed_chat_ids", []string{})

	// Weekly digest
	viper.SetDefault("digest.enabled", false)
	viper.SetDefault("digest.weekday", int(time.Friday))
	viper.SetDefault("digest.hour", 17)

	// Logging
	viper.SetDefault("logging.format", "text")
	viper.SetDefault("logging.add_source", false)
}
