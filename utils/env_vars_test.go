package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetStringEnv(t *testing.T) {
	t.Run("set", func(t *testing.T) {
		t.Setenv("EASYNUT_TEST_STRING", "some value")
		assert.Equal(t, "some value", GetStringEnv("EASYNUT_TEST_STRING", "fallback"))
	})

	t.Run("unset falls back", func(t *testing.T) {
		assert.Equal(t, "fallback", GetStringEnv("EASYNUT_TEST_STRING_UNSET", "fallback"))
	})

	t.Run("blank falls back", func(t *testing.T) {
		t.Setenv("EASYNUT_TEST_STRING", "")
		assert.Equal(t, "fallback", GetStringEnv("EASYNUT_TEST_STRING", "fallback"))
	})
}

func TestGetIntEnv(t *testing.T) {
	t.Run("set", func(t *testing.T) {
		t.Setenv("EASYNUT_TEST_INT", "42")
		assert.Equal(t, 42, GetIntEnv("EASYNUT_TEST_INT", 7))
	})

	t.Run("unset falls back", func(t *testing.T) {
		assert.Equal(t, 7, GetIntEnv("EASYNUT_TEST_INT_UNSET", 7))
	})
}
