package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/operman-code/petme/internal/adapter/http/handler"
	"github.com/operman-code/petme/internal/adapter/http/middleware"
	"github.com/operman-code/petme/internal/platform/logger"
	"github.com/operman-code/petme/internal/platform/metrics"
)

// Deps is everything the HTTP surface needs. UploadsDir is optional; when set, files
// written by the local image store are served under /uploads/.
type Deps struct {
	Listings   *handler.ListingHandler
	Users      *handler.UserHandler
	Contacts   *handler.ContactHandler
	Metrics    *metrics.MetricsManager
	JWTSecret  string
	UploadsDir string
	Logger     *logger.Logger
}

func New(d Deps) *chi.Mux {
	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	mux.Use(chimw.RealIP)
	mux.Use(middleware.Tracing)
	mux.Use(middleware.RequestLogger(d.Logger))
	mux.Use(middleware.Metrics(d.Metrics))
	mux.Use(chimw.Recoverer)

	mux.Get("/healthz", handler.Healthz)

	setupListingRoutes(mux, d)
	setupUserRoutes(mux, d)

	if d.UploadsDir != "" {
		mux.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(d.UploadsDir))))
	}
	return mux
}

func setupListingRoutes(mux *chi.Mux, d Deps) {
	mux.Get("/pets", d.Listings.List)
	mux.Get("/pets/{id}", d.Listings.Get)

	mux.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(d.JWTSecret, d.Logger))

		r.Post("/pets", d.Listings.Create)
		r.Put("/pets/{id}", d.Listings.Update)
		r.Delete("/pets/{id}", d.Listings.Delete)
		r.Post("/pets/{id}/favorite", d.Listings.ToggleFavorite)
		r.Get("/pets/user/me", d.Listings.Mine)
		r.Get("/pets/user/favorites", d.Listings.Favorites)
		r.Post("/contact/pet/{id}", d.Contacts.ContactOwner)
	})
}

func setupUserRoutes(mux *chi.Mux, d Deps) {
	mux.Get("/users/{id}", d.Users.Showcase)
}
