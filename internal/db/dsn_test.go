package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithDBName(t *testing.T) {
	tests := []struct {
		name, dsn, db, want string
	}{
		{"replaces path", "postgres://u:p@h:5432/postgres?sslmode=disable", "scenarios", "postgres://u:p@h:5432/scenarios?sslmode=disable"},
		{"postgresql scheme", "postgresql://h/old", "new", "postgresql://h/new"},
		{"leading slash kept", "postgres://h/old", "/new", "postgres://h/new"},
		{"missing scheme", "h/old", "new", "postgres://h/new"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := WithDBName(tc.dsn, tc.db)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := WithDBName("", "x")
	assert.EqualError(t, err, "empty DSN")
	_, err = WithDBName("postgres://h/old", " / ")
	assert.EqualError(t, err, "empty database name")
	_, err = WithDBName("mysql://h/old", "new")
	assert.EqualError(t, err, "unsupported DSN scheme mysql")
}
