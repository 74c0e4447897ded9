package database_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/blogicum/database"
	"github.com/rpupo63/blogicum/errs"
)

func TestCategoryRepo_DeleteDetachesPosts(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(sqlLike(`UPDATE "posts" SET "category_id"`, `WHERE category_id = $2`)).
		WithArgs(nil, uint(7)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(sqlLike(`DELETE FROM "categories" WHERE "categories"."id" = $1`)).
		WithArgs(uint(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, database.NewCategoryRepo(db).Delete(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepo_DeleteMissingRollsBack(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(sqlLike(`UPDATE "posts" SET "category_id"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(sqlLike(`DELETE FROM "categories"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := database.NewCategoryRepo(db).Delete(context.Background(), 99)
	assert.True(t, errs.IsNotFound(err), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepo_SlugTakenIgnoresSelf(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(sqlLike(`SELECT count(*) FROM "categories"`, `slug = $1 AND id <> $2`)).
		WithArgs("travel", uint(3)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	taken, err := database.NewCategoryRepo(db).SlugTaken(context.Background(), "travel", 3)
	require.NoError(t, err)
	assert.False(t, taken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocationRepo_DeleteDetachesPosts(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(sqlLike(`UPDATE "posts" SET "location_id"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(sqlLike(`DELETE FROM "locations"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, database.NewLocationRepo(db).Delete(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}
