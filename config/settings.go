package config

import (
	"errors"
	"log"
	"sync"

	"github.com/spf13/viper"
)

// Settings holds behavioral tunables. Connection strings and secrets stay in
// the environment (.env); this file covers process rules that operators may
// want to adjust without a rebuild.
type Settings struct {
	MatchAmountTolerance float64 `mapstructure:"match_amount_tolerance"`
	LockWaitSeconds      int     `mapstructure:"lock_wait_seconds"`
	RequireAllScores     bool    `mapstructure:"require_all_scores"`
	QuotationWindowHours int     `mapstructure:"quotation_window_hours"`
	ScoringWindowHours   int     `mapstructure:"scoring_window_hours"`
	AuditPageSize        int     `mapstructure:"audit_page_size"`
}

var (
	settingsOnce sync.Once
	settings     Settings
)

// GetSettings loads settings.yaml once. A missing file is not an error; the
// built-in defaults apply. A malformed file falls back to defaults with a
// warning, since these values never gate a lifecycle transition.
func GetSettings() Settings {
	settingsOnce.Do(func() {
		v := viper.New()
		v.SetConfigName("settings")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")

		v.SetDefault("match_amount_tolerance", 0.01)
		v.SetDefault("lock_wait_seconds", 3)
		v.SetDefault("require_all_scores", false)
		v.SetDefault("quotation_window_hours", 168)
		v.SetDefault("scoring_window_hours", 72)
		v.SetDefault("audit_page_size", 50)

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				log.Printf("Warning: settings file unreadable, using defaults: %v", err)
			}
		}

		if err := v.Unmarshal(&settings); err != nil {
			log.Printf("Warning: settings file malformed, using defaults: %v", err)
			settings = Settings{
				MatchAmountTolerance: 0.01,
				LockWaitSeconds:      3,
				RequireAllScores:     false,
				QuotationWindowHours: 168,
				ScoringWindowHours:   72,
				AuditPageSize:        50,
			}
		}
	})
	return settings
}
