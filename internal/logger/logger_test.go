package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewHandler(&buf, slog.LevelInfo))

	l.Info("asset generated", "asset", "card_bg:b1", "storage", "s1")
	line := strings.TrimRight(buf.String(), "\n")

	assert.Contains(t, line, " [INFO] asset generated | asset=card_bg:b1, storage=s1")
	assert.True(t, strings.HasSuffix(strings.SplitN(line, " [", 2)[0], "Z"))
}

func TestHandlerNoAttrs(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewHandler(&buf, slog.LevelInfo)).Info("ready")
	assert.NotContains(t, buf.String(), "|")
}

func TestHandlerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewHandler(&buf, slog.LevelWarn))
	l.Info("hidden")
	l.Warn("shown")
	Fail(l, "fatal")
	Trace(l, "hidden too")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN] shown")
	assert.Contains(t, out, "[FAIL] fatal")
}

func TestHandlerWithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewHandler(&buf, slog.LevelInfo)).With("resource", "r1").WithGroup("pdf")
	l.Info("export", "pages", 3)
	assert.Contains(t, buf.String(), "| pdf.resource=r1, pdf.pages=3")
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"trace": LevelTrace,
		"DEBUG": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"Warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"fail":  LevelFail,
		"bogus": slog.LevelInfo,
		"":      slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewWritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "deck.log")
	var stderr bytes.Buffer

	l, closer, err := newWithStderr(Config{Level: "debug", File: path}, &stderr)
	require.NoError(t, err)
	l.Debug("hello", "k", "v")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[DEBUG] hello | k=v")
	assert.Contains(t, stderr.String(), "hello")
}

func TestNewQuietAndDiscard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.log")
	var stderr bytes.Buffer
	l, closer, err := newWithStderr(Config{File: path, Quiet: true}, &stderr)
	require.NoError(t, err)
	l.Info("only in file")
	require.NoError(t, closer.Close())
	assert.Empty(t, stderr.String())

	Discard().Error("dropped")
}
