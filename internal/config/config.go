// Package config provides configuration loading, validation, and management
// for telescan. It handles reading from YAML files and TGS_* environment
// variables, setting default values, and validating parameters.
package config

import (
	"fmt"
	"time"
)

// Config defines the application configuration for all components: logging,
// the Telegram command surface, the source channel, the ingestion window,
// AI integration, database, scheduled tasks, and user-facing messages.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Source    SourceConfig    `mapstructure:"source"`
	Window    WindowConfig    `mapstructure:"window"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// LoggerConfig controls log verbosity and output format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds the bot credentials and the single authorized
// operator. BotInfo is filled in at runtime after GetMe.
type TelegramConfig struct {
	Token       string `mapstructure:"token"         validate:"required"`
	AdminUserID int64  `mapstructure:"admin_user_id" validate:"required,gt=0"`

	BotInfo BotInfo `mapstructure:"-"`
}

// BotInfo carries the bot identity retrieved at startup.
type BotInfo struct {
	ID        int64
	Username  string
	FirstName string
}

// SourceConfig identifies the content stream and the optional author
// filters applied during ingestion.
type SourceConfig struct {
	Channel         string `mapstructure:"channel" validate:"required"`
	AuthorHandle    string `mapstructure:"author_handle"`
	AuthorSignature string `mapstructure:"author_signature"`
}

// WindowConfig holds the raw window bounds. Start and End accept ISO dates
// or date-times; naive values are interpreted in Timezone. Unparseable
// bounds fall back to the rolling-lookback rule rather than aborting.
type WindowConfig struct {
	Start    string        `mapstructure:"start"`
	End      string        `mapstructure:"end"`
	Lookback time.Duration `mapstructure:"lookback" validate:"min=0"`
	Timezone string        `mapstructure:"timezone" validate:"required"`
}

// Location loads the reference time zone.
func (w WindowConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(w.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", w.Timezone, err)
	}
	return loc, nil
}

// GeminiConfig configures the language-model collaborator.
type GeminiConfig struct {
	APIKey            string  `mapstructure:"api_key" validate:"required"`
	ModelName         string  `mapstructure:"model_name"`
	Temperature       float32 `mapstructure:"temperature" validate:"min=0,max=2"`
	MaxRetries        int     `mapstructure:"max_retries" validate:"min=0,max=10"`
	RetryDelaySeconds int     `mapstructure:"retry_delay_seconds" validate:"min=0"`
}

// DatabaseConfig locates the SQLite database file.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// SchedulerConfig enumerates scheduled background tasks by name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig enables one scheduled task and sets its cron expression.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// MessagesConfig holds every user-visible reply. All defaults are Hebrew,
// the stream's language; raw error text is never sent to the user.
type MessagesConfig struct {
	Welcome          string `mapstructure:"welcome"`
	Help             string `mapstructure:"help"`
	NotAuthorized    string `mapstructure:"not_authorized"`
	GeneralError     string `mapstructure:"general_error"`
	ProvideQuery     string `mapstructure:"provide_query"`
	ScanStarted      string `mapstructure:"scan_started"`
	ScanCompleteFmt  string `mapstructure:"scan_complete_fmt"`
	NoDataInWindow   string `mapstructure:"no_data_in_window"`
	InsufficientData string `mapstructure:"insufficient_data"`
}
