package mylog

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestTelegramFilter(t *testing.T) {
	plain := slog.NewRecord(time.Now(), slog.LevelInfo, "hello", 0)
	assert.False(t, telegramFilter(context.Background(), plain))

	tagged := slog.NewRecord(time.Now(), slog.LevelInfo, "hello", 0)
	tagged.AddAttrs(slog.Bool("telegram", true))
	assert.True(t, telegramFilter(context.Background(), tagged))

	failure := slog.NewRecord(time.Now(), slog.LevelError, "boom", 0)
	assert.True(t, telegramFilter(context.Background(), failure))
}
