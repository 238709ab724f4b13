package middleware

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoggingWritesAtDebug(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogging(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	now := time.Now()
	l.OnDispatch(true)
	l.OnDispatch(false)
	l.OnFlush(now, now.Add(time.Millisecond), 2)

	out := buf.String()
	assert.Contains(t, out, "dispatch suppressed by comparer")
	assert.Contains(t, out, "msg=flush")
	assert.Contains(t, out, "subscribers=2")
	assert.Contains(t, out, "component=signalstate")
}

func TestLoggingQuietAboveDebug(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogging(slog.New(slog.NewTextHandler(&buf, nil)))

	now := time.Now()
	l.OnDispatch(false)
	l.OnFlush(now, now, 1)

	assert.Empty(t, buf.String())
}
