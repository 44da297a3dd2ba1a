package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "gasdiary", cfg.MongoDB.DBName)
	assert.True(t, cfg.MongoDB.ChangeStreams)
	assert.Equal(t, "gasdiary:", cfg.Redis.KeyPrefix)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 30*time.Second, cfg.Cache.SoftRefreshMinAge)
	assert.Equal(t, time.Second, cfg.Diary.Debounce)
	assert.Equal(t, 12*time.Second, cfg.Diary.FetchTimeout)
	assert.Equal(t, 3, cfg.Diary.FetchAttempts)
	assert.Equal(t, int64(5000), cfg.Diary.FetchLimit)
	assert.Equal(t, "@every 5m", cfg.Schedules.DiaryPoll)
	assert.Equal(t, "Asia/Dhaka", cfg.Location.String())
	assert.False(t, cfg.WhatsApp.Enabled())
	assert.False(t, cfg.Sheets.Enabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CACHE_TTL", "2m")
	t.Setenv("DIARY_FETCH_ATTEMPTS", "5")
	t.Setenv("MONGODB_CHANGE_STREAMS", "false")
	t.Setenv("TIMEZONE", "UTC")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 5, cfg.Diary.FetchAttempts)
	assert.False(t, cfg.MongoDB.ChangeStreams)
	assert.Equal(t, time.UTC, cfg.Location)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"unparseable duration": {"DIARY_DEBOUNCE": "soon"},
		"non positive ttl":     {"CACHE_TTL": "0s"},
		"zero attempts":        {"DIARY_FETCH_ATTEMPTS": "0"},
		"unknown timezone":     {"TIMEZONE": "Mars/Olympus"},
		"bad cron":             {"DAILY_SUMMARY_SCHEDULE": "every evening"},
		"half whatsapp":        {"WHATSAPP_TOKEN": "token"},
		"half sheets":          {"GOOGLE_SHEET_DATABASE_ID": "sheet"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestWhatsAppFullyConfigured(t *testing.T) {
	t.Setenv("WHATSAPP_TOKEN", "token")
	t.Setenv("WHATSAPP_PHONE_NUMBER_ID", "123")
	t.Setenv("WHATSAPP_OWNER_PHONE", "8801711000000")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.WhatsApp.Enabled())
}
