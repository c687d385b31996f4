package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from (in increasing precedence) defaults, the
// config file, and TGS_* environment variables, then validates it. A
// missing config file is fine; missing credentials are not.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("TGS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		slog.Info("Configuration file not found, using defaults and environment", "path", configPath)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	slog.Info("Configuration loaded successfully",
		"log_level", cfg.Logger.Level,
		"source", cfg.Source.Channel,
		"model", cfg.Gemini.ModelName,
		"db_path", cfg.Database.Path)
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.json", false)

	v.SetDefault("window.lookback", 7*24*time.Hour)
	v.SetDefault("window.timezone", "Asia/Jerusalem")

	v.SetDefault("gemini.model_name", "gemini-2.0-flash")
	v.SetDefault("gemini.temperature", 0.3)
	v.SetDefault("gemini.max_retries", 2)
	v.SetDefault("gemini.retry_delay_seconds", 5)

	v.SetDefault("database.path", "telescan.db")

	v.SetDefault("messages.welcome", "שלום! שלחו /scan לסריקת הערוץ או /ask <שאלה> לקבלת תשובה מבוססת פוסטים.")
	v.SetDefault("messages.help", "פקודות זמינות:\n/scan — סריקת הערוץ בחלון הזמן המוגדר.\n/ask <שאלה> — תשובה מסוכמת עם מקורות.")
	v.SetDefault("messages.not_authorized", "אין לך הרשאה להשתמש בפקודה הזו.")
	v.SetDefault("messages.general_error", "אירעה שגיאה. נסה שוב מאוחר יותר.")
	v.SetDefault("messages.provide_query", "יש לצרף שאלה לפקודה, למשל: /ask מה קרה השבוע?")
	v.SetDefault("messages.scan_started", "סורק את הערוץ...")
	v.SetDefault("messages.scan_complete_fmt", "נסרק. נוספו %d / %d פריטים. חלון: %s–%s.")
	v.SetDefault("messages.no_data_in_window", "אין פוסטים בחלון הזמן הנוכחי.")
	v.SetDefault("messages.insufficient_data", "אין מספיק נתונים לענות. נסה להרחיב את חלון התאריכים או את מילות החיפוש.")
}
