package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTeam(t *testing.T) {
	t.Run("constructs a valid team", func(t *testing.T) {
		team, err := NewTeam("platform", 3)
		require.NoError(t, err)
		assert.Equal(t, "platform", team.Name())
		assert.Equal(t, 3, team.Size())
	})

	t.Run("rejects non-positive size", func(t *testing.T) {
		_, err := NewTeam("platform", 0)
		assert.ErrorIs(t, err, ErrInvalidTeam)
	})
}
