package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@h:5432/db", toMigrateURL("postgres://u:p@h:5432/db"))
	assert.Equal(t, "pgx5://u:p@h/db?sslmode=disable", toMigrateURL("postgresql://u:p@h/db?sslmode=disable"))
	assert.Equal(t, "pgx5://already", toMigrateURL("pgx5://already"))
}
