package database

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/rpupo63/blogicum/errs"
	"github.com/rpupo63/blogicum/models"
)

type CategoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepo(db *gorm.DB) *CategoryRepo {
	return &CategoryRepo{db}
}

// FindAll returns all categories, newest first
func (r *CategoryRepo) FindAll(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&categories).Error
	return categories, err
}

func (r *CategoryRepo) FindByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).Take(&category, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewNotFound("category")
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// SlugTaken reports whether another category already uses slug
func (r *CategoryRepo) SlugTaken(ctx context.Context, slug string, exceptID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Category{}).
		Where("slug = ? AND id <> ?", slug, exceptID).
		Count(&count).Error
	return count > 0, err
}

func (r *CategoryRepo) Add(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *CategoryRepo) Update(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

// Delete removes a category and detaches its posts. The foreign key
// does the same on postgres; clearing it here keeps the behaviour when
// constraints were not migrated.
func (r *CategoryRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).Where("category_id = ?", id).UpdateColumn("category_id", nil).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Category{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errs.NewNotFound("category")
		}
		return nil
	})
}
