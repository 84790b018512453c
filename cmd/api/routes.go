package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/adearn/adearn-api/internal/config"
	"github.com/adearn/adearn-api/internal/domain/account"
	"github.com/adearn/adearn-api/internal/domain/adsession"
	"github.com/adearn/adearn-api/internal/domain/auth"
	"github.com/adearn/adearn-api/internal/domain/catalogue"
	"github.com/adearn/adearn-api/internal/domain/dashboard"
	"github.com/adearn/adearn-api/internal/domain/insight"
	"github.com/adearn/adearn-api/internal/domain/profile"
	"github.com/adearn/adearn-api/internal/domain/review"
	"github.com/adearn/adearn-api/internal/middleware"
	"github.com/adearn/adearn-api/internal/pkg/jwt"
	pkgresponse "github.com/adearn/adearn-api/internal/pkg/response"
	"github.com/adearn/adearn-api/internal/pkg/storage"
)

type handlers struct {
	auth      *auth.Handler
	catalogue *catalogue.Handler
	account   *account.Handler
	session   *adsession.Handler
	dashboard *dashboard.Handler
	profile   *profile.Handler
	insight   *insight.Handler
	review    *review.Handler
	uploads   *storage.LocalStorage
}

func newRouter(cfg *config.Config, h handlers, jwtService *jwt.Service) chi.Router {
	authMiddleware := middleware.Auth(jwtService)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	if h.uploads != nil {
		prefix := uploadsPath(cfg.UploadBaseURL)
		r.Handle(prefix+"/*", http.StripPrefix(prefix, http.FileServer(http.Dir(h.uploads.Dir()))))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", h.auth.Routes(authMiddleware))
		r.Mount("/catalogue", h.catalogue.Routes())

		r.Route("/me", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/", h.account.Me)
			r.Get("/dashboard", h.dashboard.Get)
			r.Post("/avatar", h.profile.UploadAvatar)
		})

		r.Mount("/packages", h.account.PackageRoutes(authMiddleware))
		r.Mount("/ads", h.session.Routes(authMiddleware))
		r.Mount("/wallet", h.account.WalletRoutes(authMiddleware))
		r.With(authMiddleware).Get("/insight", h.insight.Get)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Mount("/transactions", h.review.Routes(authMiddleware))
	})

	return r
}
