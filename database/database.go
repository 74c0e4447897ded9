package database

import (
	"gorm.io/gorm"
)

type Database struct {
	postRepo     *PostRepo
	categoryRepo *CategoryRepo
	locationRepo *LocationRepo
	userRepo     *UserRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		postRepo:     NewPostRepo(db),
		categoryRepo: NewCategoryRepo(db),
		locationRepo: NewLocationRepo(db),
		userRepo:     NewUserRepo(db),
	}
}

// Accessor methods for each repository

func (d Database) PostRepo() *PostRepo {
	return d.postRepo
}

func (d Database) CategoryRepo() *CategoryRepo {
	return d.categoryRepo
}

func (d Database) LocationRepo() *LocationRepo {
	return d.locationRepo
}

func (d Database) UserRepo() *UserRepo {
	return d.userRepo
}
