package database

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testGormLogger(level logger.LogLevel) (*gormLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	h := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return &gormLogger{log: slog.New(h), level: level, slowThreshold: 100 * time.Millisecond}, &buf
}

func statement() (string, int64) { return "SELECT 1", 1 }

func TestGormLoggerLevels(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		level     logger.LogLevel
		begin     time.Time
		err       error
		wantLevel string
	}{
		{"sql error", logger.Warn, time.Now(), errors.New("syntax error"), `"level":"ERROR"`},
		{"slow query", logger.Warn, time.Now().Add(-time.Second), nil, `"level":"WARN"`},
		{"trace in info mode", logger.Info, time.Now(), nil, `"level":"DEBUG"`},
		{"fast query in warn mode", logger.Warn, time.Now(), nil, ""},
		{"record not found is not an error", logger.Warn, time.Now(), gorm.ErrRecordNotFound, ""},
		{"silent", logger.Silent, time.Now(), errors.New("boom"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, buf := testGormLogger(tt.level)
			l.Trace(ctx, tt.begin, statement, tt.err)
			if tt.wantLevel == "" {
				require.Empty(t, buf.String())
				return
			}
			require.Contains(t, buf.String(), tt.wantLevel)
			require.Contains(t, buf.String(), `"sql":"SELECT 1"`)
		})
	}
}

func TestGormLoggerMessages(t *testing.T) {
	ctx := context.Background()
	l, buf := testGormLogger(logger.Warn)

	l.Info(ctx, "hidden %d", 1)
	require.Empty(t, buf.String())

	l.Warn(ctx, "careful %s", "now")
	l.Error(ctx, "failed %s", "badly")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], `"level":"WARN"`)
	require.Contains(t, lines[0], "careful now")
	require.Contains(t, lines[1], `"level":"ERROR"`)

	quiet := l.LogMode(logger.Silent)
	quiet.Error(ctx, "dropped")
	require.Len(t, strings.Split(strings.TrimSpace(buf.String()), "\n"), 2)
}
