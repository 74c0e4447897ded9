package database_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/blogicum/database"
	"github.com/rpupo63/blogicum/errs"
)

// gorm parenthesises the scope's condition once another Where is added,
// so the predicate is matched after WHERE rather than right next to it
var visiblePredicate = `"posts"."is_published" = $1 AND "posts"."pub_date" <= $2 AND "Category"."is_published" = $3`

func TestSelectVisible_Index(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(postColumns).
		AddRow(2, "Newer", "body", now.Add(-time.Hour), now, 0, true, now, 1, nil, 7, 7, "Travel", "travel", true).
		AddRow(1, "Older", "body", now.Add(-48*time.Hour), now, 3, true, now, 1, nil, 7, 7, "Travel", "travel", true)

	mock.ExpectQuery(sqlLike(
		`FROM "posts"`,
		`INNER JOIN "categories" "Category" ON "posts"."category_id" = "Category"."id"`,
		`WHERE`,
		visiblePredicate,
		`ORDER BY "posts"."pub_date" DESC`,
		`LIMIT`,
	)).WillReturnRows(rows)

	repo := database.NewPostRepo(db)
	posts, err := repo.SelectVisible(context.Background(), database.VisibilityQuery{Now: now, Limit: 5})
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, uint(2), posts[0].ID)
	assert.Equal(t, uint(1), posts[1].ID)
	require.NotNil(t, posts[0].Category)
	assert.Equal(t, "travel", posts[0].Category.Slug)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectVisible_PassesNowAndPublishedFlags(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(sqlLike(`FROM "posts"`, `WHERE`, visiblePredicate)).
		WithArgs(true, now, true).
		WillReturnRows(sqlmock.NewRows(postColumns))

	posts, err := database.NewPostRepo(db).SelectVisible(context.Background(), database.VisibilityQuery{Now: now})
	require.NoError(t, err)
	assert.Empty(t, posts, "an empty listing is a success, not a NotFound")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectVisible_UnknownPostIsNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()

	mock.ExpectQuery(sqlLike(`FROM "posts"`, `WHERE`, visiblePredicate, `AND "posts"."id" = $4`)).
		WillReturnRows(sqlmock.NewRows(postColumns))

	_, err := database.NewPostRepo(db).SelectVisible(context.Background(), database.VisibilityQuery{Now: now, PostID: 42})
	assert.True(t, errs.IsNotFound(err), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindVisible(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(sqlLike(`FROM "posts"`, `WHERE`, visiblePredicate, `AND "posts"."id" = $4`)).
		WillReturnRows(sqlmock.NewRows(postColumns).
			AddRow(42, "Hello", "body", now, now, 0, true, now, 1, nil, 7, 7, "Travel", "travel", true))

	post, err := database.NewPostRepo(db).FindVisible(context.Background(), 42, now)
	require.NoError(t, err)
	assert.Equal(t, "Hello", post.Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindVisible_ZeroIDSkipsQuery(t *testing.T) {
	db, mock := newMockDB(t)

	_, err := database.NewPostRepo(db).FindVisible(context.Background(), 0, time.Now())
	assert.True(t, errs.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindVisible_IDBeyondBigintSkipsQuery(t *testing.T) {
	huge := ^uint(0)
	if uint64(huge) <= math.MaxInt64 {
		t.Skip("uint cannot exceed the bigint range on this platform")
	}
	db, mock := newMockDB(t)
	repo := database.NewPostRepo(db)

	_, err := repo.FindVisible(context.Background(), huge, time.Now())
	assert.True(t, errs.IsNotFound(err), "got %v", err)

	var justOver uint64 = math.MaxInt64 + 1
	_, err = repo.SelectVisible(context.Background(), database.VisibilityQuery{Now: time.Now(), PostID: uint(justOver)})
	assert.True(t, errs.IsNotFound(err), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectVisible_UnpublishedCategoryStopsBeforePosts(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(sqlLike(
		`FROM "categories"`,
		`WHERE "categories"."slug" = $1 AND "categories"."is_published" = $2`,
	)).WillReturnRows(sqlmock.NewRows([]string{"id", "title", "slug", "is_published"}))

	_, err := database.NewPostRepo(db).SelectVisible(context.Background(), database.VisibilityQuery{
		Now:          time.Now(),
		CategorySlug: "drafts",
	})
	assert.True(t, errs.IsNotFound(err), "got %v", err)
	// no posts query was expected, so a second query would have failed the call
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListVisibleInCategory(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(sqlLike(`FROM "categories"`, `"categories"."slug" = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "slug", "is_published", "created_at"}).
			AddRow(7, "Travel", "travel", true, now))
	mock.ExpectQuery(sqlLike(`FROM "posts"`, `WHERE`, visiblePredicate, `AND "posts"."category_id" = $4`, `ORDER BY`)).
		WillReturnRows(sqlmock.NewRows(postColumns).
			AddRow(3, "Trip", "body", now, now, 0, true, now, 1, nil, 7, 7, "Travel", "travel", true))

	category, posts, err := database.NewPostRepo(db).ListVisibleInCategory(context.Background(), "travel", now)
	require.NoError(t, err)
	assert.Equal(t, "Travel", category.Title)
	require.Len(t, posts, 1)
	assert.Equal(t, "Trip", posts[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectVisible_StorageFailureIsNotNotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(sqlLike(`FROM "posts"`)).WillReturnError(errors.New("connection reset by peer"))

	_, err := database.NewPostRepo(db).SelectVisible(context.Background(), database.VisibilityQuery{Now: time.Now(), PostID: 1})
	require.Error(t, err)
	assert.False(t, errs.IsNotFound(err))
	assert.ErrorIs(t, err, errs.ErrDatabaseQuery)
}
