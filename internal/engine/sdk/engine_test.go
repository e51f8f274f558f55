package sdk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEngineType_String(t *testing.T) {
	tests := []struct {
		name     string
		et       EngineType
		expected string
	}{
		{"workday provider", EngineTypeWorkdayProvider, "workday_provider"},
		{"custom type", EngineType("custom"), "custom"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.et.String())
		})
	}
}

func TestEngineType_IsValid(t *testing.T) {
	t.Run("valid engine types return true", func(t *testing.T) {
		assert.True(t, EngineTypeWorkdayProvider.IsValid())
	})

	t.Run("invalid engine types return false", func(t *testing.T) {
		invalidTypes := []EngineType{
			EngineType(""),
			EngineType("custom"),
			EngineType("scheduler"),
			EngineType("WORKDAY_PROVIDER"), // Case sensitive
		}

		for _, et := range invalidTypes {
			assert.False(t, et.IsValid(), "Expected %q to be invalid", et)
		}
	})
}

func TestEngineTypeConstants(t *testing.T) {
	t.Run("constants have expected values", func(t *testing.T) {
		assert.Equal(t, EngineType("workday_provider"), EngineTypeWorkdayProvider)
	})
}
