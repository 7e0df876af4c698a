package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	l := New("debug", StyleJSON)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l = New("nonsense", StyleConsole)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))

	assert.False(t, New("error", StyleNoop).Core().Enabled(zapcore.ErrorLevel))
}
