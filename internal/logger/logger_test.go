package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	out := filepath.Join(t.TempDir(), "log.json")
	l, err := New(Config{Level: "warn", OutputPaths: []string{out}})
	require.NoError(t, err)
	defer l.Sync()

	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}

func TestNewBadLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestDevelopment(t *testing.T) {
	l, err := New(Config{Level: "debug", Development: true})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestDefaults(t *testing.T) {
	assert.NotNil(t, NewDefault())
	assert.False(t, NewNop().Core().Enabled(zapcore.ErrorLevel))
}
