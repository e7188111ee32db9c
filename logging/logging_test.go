package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Run("verbose enables debug", func(t *testing.T) {
		l, err := New(true)
		require.NoError(t, err)
		assert.True(t, l.Desugar().Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("quiet stops at info", func(t *testing.T) {
		l, err := New(false)
		require.NoError(t, err)
		assert.False(t, l.Desugar().Core().Enabled(zapcore.DebugLevel))
		assert.True(t, l.Desugar().Core().Enabled(zapcore.InfoLevel))
	})
}

func TestNop(t *testing.T) {
	l := Nop()
	assert.False(t, l.Desugar().Core().Enabled(zapcore.ErrorLevel))
}
