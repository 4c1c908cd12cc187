package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "fuzzle.log")

	logger, err := New(Options{Level: "info", File: path})
	require.NoError(t, err)

	logger.With("session_id", "abc").Infof("session %s started", "abc")
	logger.Debug("hidden at info level")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, `"msg":"session abc started"`)
	assert.Contains(t, out, `"session_id":"abc"`)
	assert.NotContains(t, out, "hidden at info level")
	assert.Equal(t, 1, strings.Count(strings.TrimSpace(out), "\n")+1)
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(Options{Level: "loud", File: filepath.Join(t.TempDir(), "x.log")})
	assert.Error(t, err)
}

func TestNew_NoFileIsNop(t *testing.T) {
	logger, err := New(Options{Level: "debug"})
	require.NoError(t, err)
	logger.Info("discarded")
	assert.NotNil(t, logger.With("k", "v"))
}
