package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	require.Equal(t, "8083", cfg.Port)
	require.Equal(t, 30*time.Second, cfg.LiveMessageTTL)
	require.Equal(t, 24*time.Hour, cfg.DefaultMessageTTL)
	require.Equal(t, time.Minute, cfg.SweepInterval)
	require.Equal(t, "messenger.events", cfg.AMQPExchange)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("LIVE_MESSAGE_TTL", "45s")
	t.Setenv("DEFAULT_MESSAGE_TTL", "1h")
	t.Setenv("SWEEP_INTERVAL", "10s")
	t.Setenv("WS_FRAME_BURST", "5")

	cfg := Load()

	require.Equal(t, "9000", cfg.Port)
	require.Equal(t, 45*time.Second, cfg.LiveMessageTTL)
	require.Equal(t, time.Hour, cfg.DefaultMessageTTL)
	require.Equal(t, 10*time.Second, cfg.SweepInterval)
	require.Equal(t, 5, cfg.WSFrameBurst)
}

func TestLoadIgnoresInvalidValues(t *testing.T) {
	t.Setenv("LIVE_MESSAGE_TTL", "soon")
	t.Setenv("WS_FRAME_BURST", "many")

	cfg := Load()

	require.Equal(t, 30*time.Second, cfg.LiveMessageTTL)
	require.Equal(t, 40, cfg.WSFrameBurst)
}
