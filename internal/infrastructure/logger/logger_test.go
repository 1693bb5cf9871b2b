package logger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

func TestNew(t *testing.T) {
	t.Run("json to stdout", func(t *testing.T) {
		l, err := New(Options{Level: "info", Format: "json", Output: "stdout"})
		require.NoError(t, err)
		assert.NotNil(t, l)
	})

	t.Run("console to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		l, err := New(Options{Level: "debug", Format: "console", Output: path})
		require.NoError(t, err)
		l.Info("written")
		require.NoError(t, l.Sync())
	})

	t.Run("unwritable output", func(t *testing.T) {
		_, err := New(Options{Output: filepath.Join(t.TempDir(), "missing", "app.log")})
		assert.Error(t, err)
	})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("anything"))
}

func TestContextRoundTrip(t *testing.T) {
	base := zap.NewNop()
	ctx, l := WithRequestID(context.Background(), base, "req-1")
	ctx, _ = WithTenantID(ctx, l, "tenant-1")

	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Equal(t, "tenant-1", TenantID(ctx))
	assert.NotNil(t, From(ctx))
}

func TestFromWithoutLogger(t *testing.T) {
	assert.NotNil(t, From(context.Background()))
}

func TestGormLevelFor(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, GormLevelFor("silent"))
	assert.Equal(t, gormlogger.Error, GormLevelFor("error"))
	assert.Equal(t, gormlogger.Info, GormLevelFor("debug"))
	assert.Equal(t, gormlogger.Warn, GormLevelFor("info-ish"))
}
