package database_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

// sqlLike matches SQL containing every fragment, in order
func sqlLike(fragments ...string) string {
	quoted := make([]string, len(fragments))
	for i, f := range fragments {
		quoted[i] = regexp.QuoteMeta(f)
	}
	return "(?s)" + strings.Join(quoted, ".*")
}

var postColumns = []string{
	"id", "title", "text", "pub_date", "updated_at", "views_count",
	"is_published", "created_at", "author_id", "location_id", "category_id",
	"Category__id", "Category__title", "Category__slug", "Category__is_published",
}
