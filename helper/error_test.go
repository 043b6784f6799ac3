package helper

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewError(t *testing.T) {
	t.Run("Message carries context and cause", func(t *testing.T) {
		err := NewError("open database", errors.New("connection refused"))
		assert.EqualError(t, err, "open database: connection refused")
	})

	t.Run("Cause is reachable with errors.Is", func(t *testing.T) {
		cause := errors.New("boom")
		err := NewError("outer", NewError("inner", cause))
		assert.ErrorIs(t, err, cause)
	})

	t.Run("Nil cause prints only the context", func(t *testing.T) {
		assert.EqualError(t, NewError("only context", nil), "only context")
	})
}

func TestNewDatabaseConfiguration(t *testing.T) {
	t.Run("Reads configuration from environment", func(t *testing.T) {
		SetTestDatabaseConfigEnvs(t, "6543")

		config, err := NewDatabaseConfiguration()
		assert.NoError(t, err)
		assert.Equal(t, "6543", config.Port)
		assert.Equal(t, "public", config.Schema)
		assert.Contains(t, config.ConnectionString(), "port=6543")
	})

	t.Run("Missing host is an error", func(t *testing.T) {
		SetTestDatabaseConfigEnvs(t, "6543")
		t.Setenv("DB_HOST", "")

		_, err := NewDatabaseConfiguration()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "DB_HOST")
	})
}
