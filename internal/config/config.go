package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Diary     DiaryConfig
	Schedules ScheduleConfig
	WhatsApp  WhatsAppConfig
	Sheets    SheetsConfig
	LogLevel  string
	Timezone  string
	Location  *time.Location
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI           string
	DBName        string
	ChangeStreams bool
}

// RedisConfig holds settings for the persisted key/value store.
type RedisConfig struct {
	Address   string
	Password  string
	DB        int
	KeyPrefix string
}

// CacheConfig tunes the diary cache.
type CacheConfig struct {
	TTL               time.Duration
	SoftRefreshMinAge time.Duration
}

// DiaryConfig tunes fetching and live sync of the diary streams.
type DiaryConfig struct {
	Debounce       time.Duration
	FetchTimeout   time.Duration
	FetchAttempts  int
	RetryBaseDelay time.Duration
	FetchLimit     int64
}

// ScheduleConfig holds the cron specs of the background jobs.
type ScheduleConfig struct {
	DiaryPoll     string
	Notifications string
	DailySummary  string
	WeeklyReport  string
}

// WhatsAppConfig contains credentials and options for the Meta WhatsApp Cloud API.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	BaseURL       string
	APIVersion    string
	OwnerPhone    string
}

// Enabled reports whether outbound messaging is configured.
func (c WhatsAppConfig) Enabled() bool {
	return c.AccessToken != ""
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether the sheet archive is configured.
func (c SheetsConfig) Enabled() bool {
	return c.CredentialsPath != "" || c.SpreadsheetID != ""
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// A missing .env is fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	var errs []error
	duration := func(key, fallback string) time.Duration {
		d, err := time.ParseDuration(getenvWithDefault(key, fallback))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
		return d
	}
	integer := func(key, fallback string) int {
		n, err := strconv.Atoi(getenvWithDefault(key, fallback))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
		return n
	}
	boolean := func(key, fallback string) bool {
		b, err := strconv.ParseBool(getenvWithDefault(key, fallback))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
		return b
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		MongoDB: MongoDBConfig{
			URI:           getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName:        getenvWithDefault("MONGODB_DB_NAME", "gasdiary"),
			ChangeStreams: boolean("MONGODB_CHANGE_STREAMS", "true"),
		},
		Redis: RedisConfig{
			Address:   getenvWithDefault("REDIS_ADDRESS", "localhost:6379"),
			Password:  os.Getenv("REDIS_PASSWORD"),
			DB:        integer("REDIS_DB", "0"),
			KeyPrefix: getenvWithDefault("REDIS_KEY_PREFIX", "gasdiary:"),
		},
		Cache: CacheConfig{
			TTL:               duration("CACHE_TTL", "10m"),
			SoftRefreshMinAge: duration("CACHE_SOFT_REFRESH_MIN_AGE", "30s"),
		},
		Diary: DiaryConfig{
			Debounce:       duration("DIARY_DEBOUNCE", "1s"),
			FetchTimeout:   duration("DIARY_FETCH_TIMEOUT", "12s"),
			FetchAttempts:  integer("DIARY_FETCH_ATTEMPTS", "3"),
			RetryBaseDelay: duration("DIARY_RETRY_BASE_DELAY", "500ms"),
			FetchLimit:     int64(integer("DIARY_FETCH_LIMIT", "5000")),
		},
		Schedules: ScheduleConfig{
			DiaryPoll:     getenvWithDefault("DIARY_POLL_SCHEDULE", "@every 5m"),
			Notifications: getenvWithDefault("NOTIFICATIONS_SCHEDULE", "@every 1m"),
			DailySummary:  getenvWithDefault("DAILY_SUMMARY_SCHEDULE", "0 22 * * *"),
			WeeklyReport:  getenvWithDefault("WEEKLY_REPORT_SCHEDULE", "0 20 * * 5"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			OwnerPhone:    os.Getenv("WHATSAPP_OWNER_PHONE"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		LogLevel: getenvWithDefault("LOG_LEVEL", "info"),
		Timezone: getenvWithDefault("TIMEZONE", "Asia/Dhaka"),
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("parse config: %w", errors.Join(errs...))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated and
// resolves the business timezone.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}
	if c.MongoDB.URI == "" || c.MongoDB.DBName == "" {
		return errors.New("MONGODB_URI and MONGODB_DB_NAME must be provided")
	}
	if c.Redis.Address == "" {
		return errors.New("REDIS_ADDRESS must be provided")
	}

	for name, d := range map[string]time.Duration{
		"CACHE_TTL":              c.Cache.TTL,
		"DIARY_DEBOUNCE":         c.Diary.Debounce,
		"DIARY_FETCH_TIMEOUT":    c.Diary.FetchTimeout,
		"DIARY_RETRY_BASE_DELAY": c.Diary.RetryBaseDelay,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be a positive duration", name)
		}
	}
	if c.Cache.SoftRefreshMinAge < 0 {
		return errors.New("CACHE_SOFT_REFRESH_MIN_AGE must not be negative")
	}
	if c.Diary.FetchAttempts < 1 {
		return errors.New("DIARY_FETCH_ATTEMPTS must be at least 1")
	}
	if c.Diary.FetchLimit < 0 {
		return errors.New("DIARY_FETCH_LIMIT must not be negative")
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	for name, spec := range map[string]string{
		"DIARY_POLL_SCHEDULE":    c.Schedules.DiaryPoll,
		"NOTIFICATIONS_SCHEDULE": c.Schedules.Notifications,
		"DAILY_SUMMARY_SCHEDULE": c.Schedules.DailySummary,
		"WEEKLY_REPORT_SCHEDULE": c.Schedules.WeeklyReport,
	} {
		if _, err := parser.Parse(spec); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("TIMEZONE %q: %w", c.Timezone, err)
	}
	c.Location = loc

	if c.WhatsApp.Enabled() {
		switch {
		case c.WhatsApp.PhoneNumberID == "":
			return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided when WHATSAPP_TOKEN is set")
		case c.WhatsApp.OwnerPhone == "":
			return errors.New("WHATSAPP_OWNER_PHONE must be provided when WHATSAPP_TOKEN is set")
		case c.WhatsApp.BaseURL == "":
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		case c.WhatsApp.APIVersion == "":
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		}
	}

	if c.Sheets.Enabled() {
		if c.Sheets.CredentialsPath == "" {
			return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided with GOOGLE_SHEET_DATABASE_ID")
		}
		if c.Sheets.SpreadsheetID == "" {
			return errors.New("GOOGLE_SHEET_DATABASE_ID must be provided with GOOGLE_SHEETS_CREDENTIALS_PATH")
		}
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
