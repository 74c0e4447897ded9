package database

import (
	"context"
	"errors"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/rpupo63/blogicum/errs"
	"github.com/rpupo63/blogicum/models"
)

// VisibleAt restricts a posts query to what the public may see at now:
// published, due, and filed under a published category. The category
// is inner joined, so posts without one never match. Every public read
// goes through this scope.
func VisibleAt(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.
			InnerJoins("Category").
			Where(`"posts"."is_published" = ? AND "posts"."pub_date" <= ? AND "Category"."is_published" = ?`, true, now, true)
	}
}

// NewestFirst is the default ordering of any post collection
func NewestFirst(db *gorm.DB) *gorm.DB {
	return db.Order(`"posts"."pub_date" DESC`).Order(`"posts"."id" DESC`)
}

// VisibilityQuery narrows the visible posts. Zero values mean "not given".
type VisibilityQuery struct {
	Now          time.Time
	CategorySlug string
	PostID       uint
	Limit        int
}

// SelectVisible returns the posts visible at q.Now, newest first.
//
// With CategorySlug set, the category must exist and be published or the
// call fails with NotFound before posts are read. With PostID set, an
// empty result is a NotFound too. Limit truncates after ordering.
func (r *PostRepo) SelectVisible(ctx context.Context, q VisibilityQuery) ([]models.Post, error) {
	if !storableID(q.PostID) {
		return nil, errs.NewNotFound("post")
	}

	var categoryID uint
	if q.CategorySlug != "" {
		category, err := findPublishedCategory(r.db.WithContext(ctx), q.CategorySlug)
		if err != nil {
			return nil, err
		}
		categoryID = category.ID
	}

	posts, err := r.visiblePosts(ctx, q, categoryID)
	if err != nil {
		return nil, err
	}
	if q.PostID != 0 && len(posts) == 0 {
		return nil, errs.NewNotFound("post")
	}
	return posts, nil
}

// FindVisible returns a single visible post for the detail page
func (r *PostRepo) FindVisible(ctx context.Context, id uint, now time.Time) (*models.Post, error) {
	if id == 0 || !storableID(id) {
		return nil, errs.NewNotFound("post")
	}
	posts, err := r.SelectVisible(ctx, VisibilityQuery{Now: now, PostID: id, Limit: 1})
	if err != nil {
		return nil, err
	}
	return &posts[0], nil
}

// ListVisibleInCategory resolves a published category by slug and lists
// its visible posts: one lookup, one list query.
func (r *PostRepo) ListVisibleInCategory(ctx context.Context, slug string, now time.Time) (*models.Category, []models.Post, error) {
	category, err := findPublishedCategory(r.db.WithContext(ctx), slug)
	if err != nil {
		return nil, nil, err
	}

	posts, err := r.visiblePosts(ctx, VisibilityQuery{Now: now}, category.ID)
	if err != nil {
		return nil, nil, err
	}
	return category, posts, nil
}

func (r *PostRepo) visiblePosts(ctx context.Context, q VisibilityQuery, categoryID uint) ([]models.Post, error) {
	tx := VisibleAt(q.Now)(r.db.WithContext(ctx))
	tx = tx.Joins("Location").Joins("Author")

	if categoryID != 0 {
		tx = tx.Where(`"posts"."category_id" = ?`, categoryID)
	}
	if q.PostID != 0 {
		tx = tx.Where(`"posts"."id" = ?`, q.PostID)
	}
	tx = NewestFirst(tx)
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	posts := []models.Post{}
	if err := tx.Find(&posts).Error; err != nil {
		return nil, errs.NewDatabaseError("list", "posts", err)
	}
	return posts, nil
}

// storableID reports whether id fits the bigint primary key columns.
// Larger ids cannot be sent to postgres, so no row can carry them.
func storableID(id uint) bool {
	return uint64(id) <= math.MaxInt64
}

func findPublishedCategory(db *gorm.DB, slug string) (*models.Category, error) {
	if slug == "" {
		return nil, errs.NewNotFound("category")
	}

	var category models.Category
	err := db.
		Where(`"categories"."slug" = ? AND "categories"."is_published" = ?`, slug, true).
		Take(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewNotFound("category")
	}
	if err != nil {
		return nil, errs.NewDatabaseError("find", "category", err)
	}
	return &category, nil
}
