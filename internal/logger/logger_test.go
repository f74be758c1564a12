package logger

import (
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestSetLevel(t *testing.T) {
	original := Logger.GetLevel()
	defer Logger.SetLevel(original)

	tests := []struct {
		name string
		want log.Level
		ok   bool
	}{
		{"debug", log.DebugLevel, true},
		{"WARNING", log.WarnLevel, true},
		{" error ", log.ErrorLevel, true},
		{"info", log.InfoLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.ok, SetLevel(tt.name))
			assert.Equal(t, tt.want, Logger.GetLevel())
		})
	}

	Logger.SetLevel(log.WarnLevel)
	assert.False(t, SetLevel("chatty"))
	assert.False(t, SetLevel(""))
	assert.Equal(t, log.WarnLevel, Logger.GetLevel())
}

func TestSetVerbosity(t *testing.T) {
	original := Logger.GetLevel()
	defer Logger.SetLevel(original)

	Logger.SetLevel(log.WarnLevel)
	SetVerbosity(0)
	assert.Equal(t, log.WarnLevel, Logger.GetLevel())

	SetVerbosity(1)
	assert.Equal(t, log.InfoLevel, Logger.GetLevel())

	SetVerbosity(3)
	assert.Equal(t, log.DebugLevel, Logger.GetLevel())
}
