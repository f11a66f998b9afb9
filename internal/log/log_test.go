package log

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		logger, err := New(false, true, "")
		require.NoError(t, err)
		assert.False(t, logger.Core().Enabled(zapcore.ErrorLevel))
	})

	t.Run("Production", func(t *testing.T) {
		logger, err := New(true, false, filepath.Join(t.TempDir(), "folio.log"))
		require.NoError(t, err)
		assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
		assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("Verbose", func(t *testing.T) {
		logger, err := New(true, true, filepath.Join(t.TempDir(), "folio.log"))
		require.NoError(t, err)
		assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
	})
}

func TestReplace(t *testing.T) {
	defer Replace(nil)

	logger := zap.NewExample()
	Replace(logger)
	assert.Same(t, logger, Get())

	Replace(nil)
	assert.NotNil(t, Get())
}
