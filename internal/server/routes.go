package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marcogenualdo/godnsweb/internal/handlers"
	"github.com/marcogenualdo/godnsweb/internal/middleware"
	"github.com/marcogenualdo/godnsweb/internal/proxy"
)

func (s *Server) setupRoutes() (http.Handler, error) {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(s.logger))
	r.Use(middleware.Logging(s.logger, s.metrics))
	r.Use(middleware.SecurityHeaders)

	csrfMiddleware := middleware.NewCSRFMiddleware(s.cache, s.logger)
	authMiddleware := middleware.NewAuthMiddleware(s.cfg, s.cache, s.manager, s.logger)

	loginHandler, err := handlers.NewLoginHandler(s.cfg, csrfMiddleware, s.logger)
	if err != nil {
		return nil, err
	}
	callbackHandler, err := handlers.NewCallbackHandler(s.cfg, s.logger)
	if err != nil {
		return nil, err
	}
	homeHandler, err := handlers.NewHomeHandler(s.cfg, csrfMiddleware, s.logger)
	if err != nil {
		return nil, err
	}
	logoutHandler := handlers.NewLogoutHandler(s.cfg, s.cache, s.logger)
	healthHandler := handlers.NewHealthHandler(s.cfg, s.cache, &http.Client{Timeout: 5 * time.Second}, s.logger)
	uiHandler := handlers.NewUIHandler(s.cfg, s.cache, s.api, s.manager, csrfMiddleware, s.logger)

	reverseProxy, err := proxy.NewReverseProxy(s.cfg.API, s.logger)
	if err != nil {
		return nil, err
	}

	r.Get("/health", healthHandler.ServeHTTP)
	if s.registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Attach)

		r.Get(middleware.LoginPath, loginHandler.ServePage)
		r.Get("/auth/login", loginHandler.StartLogin)
		r.With(csrfMiddleware.ValidateCSRF).Post("/auth/login", loginHandler.StartLogin)
		r.Get("/auth/callback", callbackHandler.ServeHTTP)
		r.With(csrfMiddleware.ValidateCSRF).Post("/auth/logout", logoutHandler.ServeHTTP)

		r.Get("/ui/theme", uiHandler.Theme)
		r.Post("/ui/theme", uiHandler.Theme)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireAuth)

			r.Get("/", homeHandler.ServeHTTP)
			r.With(csrfMiddleware.ValidateCSRF).Handle("/api/v1/*", reverseProxy)

			r.Route("/ui", func(r chi.Router) {
				r.Use(csrfMiddleware.ValidateCSRF)

				r.Get("/me", uiHandler.Me)
				r.Get("/profile", uiHandler.Profile)
				r.Get("/csrf", uiHandler.CSRFToken)

				r.Get("/zones", uiHandler.Zones)
				r.Post("/zones", uiHandler.CreateZone)
				r.Post("/zones/sort", uiHandler.SortZones)
				r.Route("/zones/{domain}", func(r chi.Router) {
					r.Get("/", uiHandler.ZoneDetail)
					r.Put("/", uiHandler.UpdateZone)
					r.Delete("/", uiHandler.DeleteZone)
					r.Post("/sort", uiHandler.SortZone)
					r.Patch("/status", uiHandler.SetZoneStatus)

					r.Post("/records", uiHandler.CreateRecord)
					r.Put("/records/{name}/{type}", uiHandler.UpdateRecord)
					r.Delete("/records/{name}/{type}", uiHandler.DeleteRecord)
					r.Patch("/records/{name}/{type}/status", uiHandler.SetRecordStatus)
				})

				r.Get("/records", uiHandler.Records)
				r.Post("/records/sort", uiHandler.SortRecords)

				r.Get("/search", uiHandler.Search)
				r.Get("/export", uiHandler.Export)
				r.Get("/export/{domain}", uiHandler.Export)

				r.Get("/admin/{section}", uiHandler.Admin)
				r.Post("/admin/cache/clear", uiHandler.ClearCache)
			})
		})
	})

	return r, nil
}
