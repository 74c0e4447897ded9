package database

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/rpupo63/blogicum/errs"
	"github.com/rpupo63/blogicum/models"
)

type LocationRepo struct {
	db *gorm.DB
}

func NewLocationRepo(db *gorm.DB) *LocationRepo {
	return &LocationRepo{db}
}

func (r *LocationRepo) FindAll(ctx context.Context) ([]models.Location, error) {
	locations := []models.Location{}
	err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&locations).Error
	return locations, err
}

func (r *LocationRepo) FindByID(ctx context.Context, id uint) (*models.Location, error) {
	var location models.Location
	err := r.db.WithContext(ctx).Take(&location, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewNotFound("location")
	}
	if err != nil {
		return nil, err
	}
	return &location, nil
}

func (r *LocationRepo) Add(ctx context.Context, location *models.Location) error {
	return r.db.WithContext(ctx).Create(location).Error
}

func (r *LocationRepo) Update(ctx context.Context, location *models.Location) error {
	return r.db.WithContext(ctx).Save(location).Error
}

// Delete removes a location and clears it from the posts tagged with it
func (r *LocationRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).Where("location_id = ?", id).UpdateColumn("location_id", nil).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Location{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errs.NewNotFound("location")
		}
		return nil
	})
}
