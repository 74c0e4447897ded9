package database

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rpupo63/blogicum/errs"
	"github.com/rpupo63/blogicum/models"
)

type PostRepo struct {
	db *gorm.DB
}

func NewPostRepo(db *gorm.DB) *PostRepo {
	return &PostRepo{db}
}

// PostFilter holds the admin list filters; nil fields are ignored
type PostFilter struct {
	CategoryID  *uint
	AuthorID    *uint
	IsPublished *bool
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.Joins("Author").Joins("Category").Joins("Location")
}

// FindAll returns every post matching filter, regardless of visibility
func (r *PostRepo) FindAll(ctx context.Context, filter PostFilter) ([]models.Post, error) {
	tx := withRelations(r.db.WithContext(ctx))
	if filter.CategoryID != nil {
		tx = tx.Where(`"posts"."category_id" = ?`, *filter.CategoryID)
	}
	if filter.AuthorID != nil {
		tx = tx.Where(`"posts"."author_id" = ?`, *filter.AuthorID)
	}
	if filter.IsPublished != nil {
		tx = tx.Where(`"posts"."is_published" = ?`, *filter.IsPublished)
	}

	posts := []models.Post{}
	err := NewestFirst(tx).Find(&posts).Error
	return posts, err
}

// FindByID returns a post with its relations, or a NotFound error
func (r *PostRepo) FindByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := withRelations(r.db.WithContext(ctx)).Where(`"posts"."id" = ?`, id).Take(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewNotFound("post")
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Add inserts a new post; related records are referenced by id only
func (r *PostRepo) Add(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error
}

// Update writes every column of an existing post
func (r *PostRepo) Update(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(post).Error
}

// Delete removes a post by id
func (r *PostRepo) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewNotFound("post")
	}
	return nil
}
