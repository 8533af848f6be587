package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLevels(t *testing.T) {
	dev, err := New("development")
	require.NoError(t, err)
	assert.True(t, dev.SugaredLogger.Desugar().Core().Enabled(zap.DebugLevel))

	prod, err := New("production")
	require.NoError(t, err)
	core := prod.SugaredLogger.Desugar().Core()
	assert.False(t, core.Enabled(zap.DebugLevel))
	assert.True(t, core.Enabled(zap.InfoLevel))
}
