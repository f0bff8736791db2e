package log

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		" warn ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		require.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestSetupConsole(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Setup(Options{Level: "info", Writer: &buf})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, Close()) })

	logger.Debug("hidden")
	logger.Info("Parsed launcher config", "runners", 2)

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "Parsed launcher config")
	require.Contains(t, out, "runners=2")
	require.Same(t, logger, slog.Default())
}

func TestSetupFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "launcher.log")

	logger, err := Setup(Options{Level: "debug", File: path, Writer: &buf})
	require.NoError(t, err)
	logger.With("runner_type", "javascript").Debug("Found runner config")
	require.NoError(t, Close())

	require.Contains(t, buf.String(), "Found runner config")

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	scanner := bufio.NewScanner(f)
	require.True(t, scanner.Scan())

	var record map[string]any
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &record))
	require.Equal(t, "Found runner config", record["msg"])
	require.Equal(t, "DEBUG", record["level"])
	require.Equal(t, "javascript", record["runner_type"])
}

func TestSetupOpensFileImmediately(t *testing.T) {
	path := filepath.Join(t.TempDir(), "launcher.log")

	logger, err := Setup(Options{Level: "info", File: path, Writer: io.Discard})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, Close()) })

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Zero(t, info.Size())
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// Below the level: nothing is written, but the file is already there.
	logger.Debug("Attempting to escalate")
	info, err = os.Stat(path)
	require.NoError(t, err)
	require.Zero(t, info.Size())
}

func TestSetupAppendsToExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "launcher.log")
	require.NoError(t, os.WriteFile(path, []byte("{\"msg\":\"earlier\"}\n"), 0o600))

	logger, err := Setup(Options{Level: "info", File: path, Writer: io.Discard})
	require.NoError(t, err)
	logger.Info("Found runner config")
	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	require.Len(t, lines, 2)
	require.Contains(t, string(lines[0]), "earlier")
	require.Contains(t, string(lines[1]), "Found runner config")
}

func TestSetupRotatesOversizedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "launcher.log")
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("x"), megabyte), 0o600))

	_, err := Setup(Options{Level: "info", File: path, MaxSize: 1, Writer: io.Discard})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, Close()) })

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Zero(t, info.Size())

	backups, err := filepath.Glob(filepath.Join(dir, "launcher-*.log"))
	require.NoError(t, err)
	require.Len(t, backups, 1)
}

func TestSetupFileError(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "missing", "launcher.log")

	logger, err := Setup(Options{Level: "info", File: path, Writer: &buf})
	require.ErrorContains(t, err, "open log file")
	require.ErrorIs(t, err, os.ErrNotExist)
	t.Cleanup(func() { require.NoError(t, Close()) })

	logger.Info("Still on the console")
	require.Contains(t, buf.String(), "Still on the console")
	require.Same(t, logger, slog.Default())
}
