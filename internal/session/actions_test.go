package session

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionTable(t *testing.T) {
	table := NewActionTable()
	assert.True(t, table.Empty())

	require.NoError(t, table.Set(4, ActionLeft))
	require.NoError(t, table.Set(4, ActionRight))
	assert.Equal(t, ActionRight, table.Lookup(4), "last write wins")
	assert.Equal(t, ActionNone, table.Lookup(5))
	assert.Equal(t, ActionNone, table.Lookup(-1))
	assert.Equal(t, ActionNone, table.Lookup(MaxButtons))

	assert.True(t, table.Has(ActionRight))
	assert.False(t, table.Has(ActionMove))
	assert.False(t, table.Empty())

	assert.ErrorIs(t, table.Set(-1, ActionQuit), ErrInvalidButtonIndex)
	assert.ErrorIs(t, table.Set(MaxButtons, ActionQuit), ErrInvalidButtonIndex)
}

func TestActionTableString(t *testing.T) {
	table := NewActionTable()
	require.NoError(t, table.Set(0, ActionQuit))
	require.NoError(t, table.Set(2, ActionMove))

	lines := strings.Split(strings.TrimSuffix(table.String(), "\n"), "\n")
	require.Len(t, lines, MaxButtons)
	assert.Equal(t, "Button 0: quit", lines[0])
	assert.Equal(t, "Button 1: ", lines[1])
	assert.Equal(t, "Button 2: move", lines[2])
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		input string
		want  Action
	}{
		{"quit", ActionQuit},
		{"Move", ActionMove},
		{"lmb", ActionLeft},
		{"middle", ActionMiddle},
		{" right ", ActionRight},
		{"", ActionNone},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAction(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if tt.want != ActionNone {
				roundTrip, err := ParseAction(got.String())
				require.NoError(t, err)
				assert.Equal(t, got, roundTrip)
			}
		})
	}

	_, err := ParseAction("jump")
	assert.Error(t, err)
}
