package container

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/billing-ops/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 0},
		Database: config.DatabaseConfig{
			Dir:          t.TempDir(),
			DefaultName:  "db-ninja-01",
			MaxOpenConns: 4,
			MaxIdleConns: 2,
		},
		MultiDB: config.MultiDBConfig{
			Enabled:   true,
			Databases: []string{"db-ninja-01", "db-ninja-02"},
		},
		Scheduler: config.SchedulerConfig{
			Enabled:           true,
			Timezone:          "UTC",
			QuoteCheckExpired: "0 5 * * *",
		},
		Mail: config.MailConfig{
			Workers:      1,
			QueueSize:    8,
			MaxAttempts:  1,
			RetryBackoff: time.Millisecond,
			SendTimeout:  time.Second,
		},
		Lark: config.LarkConfig{AppID: "cli_test", AppSecret: "secret", APITimeout: time.Second},
	}
}

func TestNewContainer_RequiresConfigAndLogger(t *testing.T) {
	_, err := NewContainer(nil, zap.NewNop())
	assert.Error(t, err)

	_, err = NewContainer(testConfig(t), nil)
	assert.Error(t, err)

	cfg := testConfig(t)
	cfg.Lark.AppID = ""
	_, err = NewContainer(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestContainer_Lifecycle(t *testing.T) {
	c, err := NewContainer(testConfig(t), zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, c.Start(context.Background()))
	assert.True(t, c.Ready())
	assert.Error(t, c.Start(context.Background()))

	assert.Equal(t, []string{"db-ninja-01", "db-ninja-02"}, c.Tenants().Names())
	assert.NotNil(t, c.Services().Export)
	assert.NotNil(t, c.Services().QuoteCheckExpired)
	assert.NotNil(t, c.Repositories().NotificationLogs)
	assert.NotNil(t, c.HTTPServer().Router())
	assert.Equal(t, 2, c.Workers().GetWorkerCount())
	assert.True(t, c.Workers().IsRunning())

	require.NoError(t, c.Services().QuoteCheckExpired.Handle(context.Background()))

	require.NoError(t, c.Close())
	assert.False(t, c.Ready())
	assert.False(t, c.Workers().IsRunning())
	assert.Error(t, c.Close())
	assert.Error(t, c.Start(context.Background()))
}

func TestContainer_SchedulerDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Scheduler.Enabled = false

	c, err := NewContainer(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, c.Start(context.Background()))
	defer c.Close()

	assert.Equal(t, 1, c.Workers().GetWorkerCount())
}

func TestContainer_InvalidScheduleFailsStart(t *testing.T) {
	cfg := testConfig(t)
	cfg.Scheduler.QuoteCheckExpired = "every day"

	c, err := NewContainer(cfg, zap.NewNop())
	require.NoError(t, err)

	err = c.Start(context.Background())
	require.Error(t, err)
	assert.False(t, c.Ready())
}
