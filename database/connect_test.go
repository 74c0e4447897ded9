package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/blogicum/database"
)

func TestDSN(t *testing.T) {
	dsn, err := database.DSN(map[string]string{
		"DB_HOST":     "db",
		"DB_USER":     "blog",
		"DB_PASSWORD": "pw",
		"DB_NAME":     "blogicum",
	})
	require.NoError(t, err)
	assert.Equal(t, "host=db user=blog password=pw dbname=blogicum port=5432 sslmode=disable", dsn)

	dsn, err = database.DSN(map[string]string{"DB_TYPE": "supa", "SUPABASE_DB_HOST": "h"})
	require.NoError(t, err)
	assert.Contains(t, dsn, "host=h")
	assert.Contains(t, dsn, "sslmode=require")

	dsn, err = database.DSN(map[string]string{"DATABASE_URL": "postgres://x", "DB_TYPE": "bogus"})
	require.NoError(t, err)
	assert.Equal(t, "postgres://x", dsn)

	_, err = database.DSN(map[string]string{"DB_TYPE": "mysql"})
	assert.Error(t, err)
}
