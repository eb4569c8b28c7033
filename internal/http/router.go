package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dclay/budgie/internal/http/auth"
	"github.com/dclay/budgie/internal/http/importwizard"
	"github.com/dclay/budgie/internal/http/ledgerapi"
)

func New(
	authSecret string,
	allowedOrigins []string,
	importsV1 *importwizard.Handler,
	ledgerV1 *ledgerapi.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(authSecret))

		r.Route("/imports", importsV1.Routes)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			ledgerV1.Routes(r)
		})
	})

	return router
}
