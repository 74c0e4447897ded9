package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// setupPublicRoutes mounts the HTML site. Every post listing here goes
// through the visibility filter.
func setupPublicRoutes(r chi.Router, handlers *routeHandlers) {
	r.Get("/", handlers.publicHandler.index())
	r.Get("/posts/{id}", handlers.publicHandler.postDetail())
	r.Get("/category/{slug}", handlers.publicHandler.categoryPosts())
	r.Get("/pages/about", handlers.publicHandler.staticPage("about.page.html", "About"))
	r.Get("/pages/rules", handlers.publicHandler.staticPage("rules.page.html", "Rules"))
}

// setupAdminRoutes mounts the JSON admin API; everything but login
// requires a staff token
func setupAdminRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware, acceptedOrigins []string) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(CORSCheckMiddleware(acceptedOrigins))
		r.Use(corsMiddleware(acceptedOrigins))

		r.Post("/login", handlers.authHandler.login())

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.authenticate)

			r.Get("/categories", handlers.categoryHandler.getAllCategories())
			r.Post("/categories", handlers.categoryHandler.createCategory())
			r.Get("/categories/{id}", handlers.categoryHandler.getCategory())
			r.Put("/categories/{id}", handlers.categoryHandler.updateCategory())
			r.Delete("/categories/{id}", handlers.categoryHandler.deleteCategory())

			r.Get("/locations", handlers.locationHandler.getAllLocations())
			r.Post("/locations", handlers.locationHandler.createLocation())
			r.Get("/locations/{id}", handlers.locationHandler.getLocation())
			r.Put("/locations/{id}", handlers.locationHandler.updateLocation())
			r.Delete("/locations/{id}", handlers.locationHandler.deleteLocation())

			r.Get("/posts", handlers.postHandler.getAllPosts())
			r.Post("/posts", handlers.postHandler.createPost())
			r.Get("/posts/{id}", handlers.postHandler.getPost())
			r.Put("/posts/{id}", handlers.postHandler.updatePost())
			r.Delete("/posts/{id}", handlers.postHandler.deletePost())
		})
	})
}

// setupOperationalRoutes mounts health and metrics endpoints
func setupOperationalRoutes(r chi.Router, health http.HandlerFunc, metricsHandler http.Handler) {
	r.Get("/healthz", health)
	r.Method(http.MethodGet, "/metrics", metricsHandler)
}
