package api

import (
	"time"

	"github.com/rpupo63/blogicum/database"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(db database.Database, pages *pages, m *metrics, tokens tokenIssuer, now func() time.Time, indexSize int) *routeHandlers {
	return &routeHandlers{
		publicHandler:   newPublicHandler(db.PostRepo(), pages, m, now, indexSize),
		authHandler:     newAuthHandler(db.UserRepo(), tokens),
		categoryHandler: newCategoryHandler(db.CategoryRepo()),
		locationHandler: newLocationHandler(db.LocationRepo()),
		postHandler:     newPostHandler(db.PostRepo(), db.UserRepo(), db.CategoryRepo(), db.LocationRepo(), now),
	}
}
