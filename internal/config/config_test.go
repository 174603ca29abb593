package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	require.Equal(t, "localhost", cfg.Database.Host)
	require.Equal(t, 5432, cfg.Database.Port)
	require.Equal(t, "scriptgen", cfg.Database.Name)
	require.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.Model)
	require.Equal(t, "https://api.anthropic.com", cfg.Anthropic.BaseURL)
	require.Equal(t, 120*time.Second, cfg.Anthropic.Timeout)
	require.Equal(t, 999, cfg.Quota.MonthlyLimit)
	require.False(t, cfg.Auth.RequireLogin)
	require.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)

	// API key has no default: absence is only an error at first model use
	require.Empty(t, cfg.Anthropic.APIKey)

	// No RabbitMQ host default: publishing is opt-in
	require.Empty(t, cfg.RabbitMQ.Host)
	require.Equal(t, "scriptgen.events", cfg.RabbitMQ.Exchange)
	require.Equal(t, "generation.completed", cfg.RabbitMQ.RoutingKey)
}

func TestLoadWithEnvironment(t *testing.T) {
	viper.Reset()
	viper.SetEnvPrefix("APP")
	viper.AutomaticEnv()

	os.Setenv("APP_SERVER_PORT", "9090")
	os.Setenv("APP_QUOTA_MONTHLYLIMIT", "4")
	os.Setenv("APP_ANTHROPIC_APIKEY", "sk-test")
	t.Cleanup(func() {
		os.Unsetenv("APP_SERVER_PORT")
		os.Unsetenv("APP_QUOTA_MONTHLYLIMIT")
		os.Unsetenv("APP_ANTHROPIC_APIKEY")
	})

	// AutomaticEnv does not reach nested keys on its own
	viper.BindEnv("server.port", "APP_SERVER_PORT")
	viper.BindEnv("quota.monthlylimit", "APP_QUOTA_MONTHLYLIMIT")
	viper.BindEnv("anthropic.apikey", "APP_ANTHROPIC_APIKEY")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, 4, cfg.Quota.MonthlyLimit)
	require.Equal(t, "sk-test", cfg.Anthropic.APIKey)
}

func TestSetDefaults(t *testing.T) {
	viper.Reset()
	setDefaults()

	tests := []struct {
		name string
		key  string
		want interface{}
	}{
		{"server port", "server.port", 8080},
		{"database name", "database.name", "scriptgen"},
		{"database sslmode", "database.sslmode", "disable"},
		{"anthropic model", "anthropic.model", "claude-haiku-4-5-20251001"},
		{"quota limit", "quota.monthlylimit", 999},
		{"rabbitmq exchange", "rabbitmq.exchange", "scriptgen.events"},
		{"logging level", "logging.level", "info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, viper.Get(tt.key))
		})
	}

	require.Equal(t, 10*time.Minute, viper.GetDuration("database.maxidletime"))
	require.Equal(t, time.Hour, viper.GetDuration("database.maxlifetime"))
}
