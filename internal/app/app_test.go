package app

import (
	"bytes"
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/attendance/internal/config"
	"github.com/Skotchmaster/attendance/internal/logging"
	"github.com/Skotchmaster/attendance/internal/notify"
	"github.com/Skotchmaster/attendance/pkg/db"
)

func testConfig() *config.Config {
	return &config.Config{
		DBDriver:         db.DriverSQLite,
		DatabaseURL:      ":memory:",
		PublicURL:        "http://localhost:8080",
		PBKDF2Iterations: 1000,
	}
}

func TestOpen_LogSendersWithoutKafka(t *testing.T) {
	var buf bytes.Buffer
	a, err := Open(context.Background(), testConfig(), logging.NewWithWriter(&buf, "debug"), prometheus.NewRegistry())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, a.Close()) })

	_, ok := a.Recovery.WhatsApp.(*notify.LogSender)
	assert.True(t, ok)
	assert.Contains(t, buf.String(), "kafka_disabled")

	ctx := context.Background()
	_, created, err := a.Auth.EnsureAdmin(ctx, "admin@x.com", "admin", "AdminPass1")
	require.NoError(t, err)
	assert.True(t, created)

	res, err := a.Recovery.RequestReset(ctx, "admin@x.com")
	require.NoError(t, err)
	assert.Equal(t, []notify.Channel{notify.Email}, res.Channels)
	assert.Contains(t, buf.String(), "http://localhost:8080/reset-password/")
}

func TestNew_KafkaSenders(t *testing.T) {
	cfg := testConfig()
	cfg.KafkaBrokers = []string{"localhost:9092"}
	cfg.KafkaWhatsAppTopic = "notify.whatsapp"
	cfg.KafkaEmailTopic = "notify.email"

	a := New(cfg, nil, logging.Discard(), nil)
	_, ok := a.Recovery.Email.(*notify.KafkaSender)
	assert.True(t, ok)
	assert.Len(t, a.closers, 2)
	require.NoError(t, a.Close())
}
