package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAcyclic(t *testing.T) {
	t.Run("accepts a linear chain", func(t *testing.T) {
		a, _ := NewTask("a", "", nil, "", 1, 1, nil)
		b, _ := NewTask("b", "", nil, "", 1, 1, []*Task{a})
		c, _ := NewTask("c", "", nil, "", 1, 1, []*Task{b})

		assert.NoError(t, ValidateAcyclic([]*Task{a, b, c}))
	})

	t.Run("accepts a diamond", func(t *testing.T) {
		a, _ := NewTask("a", "", nil, "", 1, 1, nil)
		b, _ := NewTask("b", "", nil, "", 1, 1, []*Task{a})
		c, _ := NewTask("c", "", nil, "", 1, 1, []*Task{a})
		d, _ := NewTask("d", "", nil, "", 1, 1, []*Task{b, c})

		assert.NoError(t, ValidateAcyclic([]*Task{a, b, c, d}))
	})

	t.Run("detects a direct cycle", func(t *testing.T) {
		a, err := NewTask("a", "", nil, "", 1, 1, nil)
		require.NoError(t, err)
		b, err := NewTask("b", "", nil, "", 1, 1, []*Task{a})
		require.NoError(t, err)

		// Close the cycle by hand: a now depends on b, b depends on a.
		cyclicA := &Task{name: "a", effort: 1, parallelizationFactor: 1, dependencies: []*Task{b}}

		assert.ErrorIs(t, ValidateAcyclic([]*Task{cyclicA, b}), ErrCycleDetected)
	})

	t.Run("detects a self-loop", func(t *testing.T) {
		a := &Task{name: "a", effort: 1, parallelizationFactor: 1}
		a.dependencies = []*Task{a}

		assert.ErrorIs(t, ValidateAcyclic([]*Task{a}), ErrCycleDetected)
	})

	t.Run("accepts an empty task list", func(t *testing.T) {
		assert.NoError(t, ValidateAcyclic(nil))
	})
}
