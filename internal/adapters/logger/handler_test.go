package logger_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/chore/internal/adapters/logger"
)

func TestPrettyHandler(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	h := logger.NewPrettyHandler(buf, &slog.HandlerOptions{Level: slog.LevelWarn})

	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))

	l := slog.New(h.WithAttrs([]slog.Attr{slog.String("command", "fmt")}))
	l.Warn("slow step", "step", 2)
	l.Info("hidden")

	assert.Equal(t, "! slow step command=fmt step=2\n", buf.String())
}

func TestPrettyHandler_Group(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	l := slog.New(logger.NewPrettyHandler(buf, nil).WithGroup("venv"))
	l.Error("missing", "dir", ".venv")

	require.NotEmpty(t, buf.String())
	assert.Equal(t, "✗ missing venv.dir=.venv\n", buf.String())
}
