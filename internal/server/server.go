// Package server wires the HTTP surface: one platform router for the
// signup and system endpoints, one store router serving every tenant, and
// a dispatcher that resolves the tenant per request and routes between
// them.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/cors"

	"github.com/leanttro/storefront/internal/auth"
	"github.com/leanttro/storefront/internal/config"
	"github.com/leanttro/storefront/internal/content"
	"github.com/leanttro/storefront/internal/limiter"
	"github.com/leanttro/storefront/internal/metrics"
	"github.com/leanttro/storefront/internal/render"
	"github.com/leanttro/storefront/internal/server/middleware"
	"github.com/leanttro/storefront/internal/tenant"
)

// Deps carries the constructed application components the server routes to.
type Deps struct {
	Repos    *content.Repos
	Auth     *auth.Service
	Resolver *tenant.Resolver
	Limiter  limiter.Limiter
	Renderer *render.Renderer
	Metrics  *metrics.Collector
	Gatherer prometheus.Gatherer

	// Static serves /static/*; nil disables the route.
	Static fs.FS
}

// Server is the HTTP server for the whole platform.
type Server struct {
	resolver   *tenant.Resolver
	platform   chi.Router
	storefront chi.Router
	httpServer *http.Server
}

// New creates a Server with all routes wired.
func New(cfg *config.Config, d Deps) *Server {
	h := NewHandlers(d.Repos, d.Auth, d.Renderer)

	onLimited := func(action string) {
		if d.Metrics != nil {
			d.Metrics.RecordRateLimited(action)
		}
	}
	throttle := func(action string) func(http.Handler) http.Handler {
		return middleware.Throttle(d.Limiter, action, onLimited)
	}

	s := &Server{
		resolver:   d.Resolver,
		platform:   newPlatformRouter(cfg, h, throttle),
		storefront: newStoreRouter(h, d.Auth.Sessions(), throttle),
	}

	// Global middleware stack.
	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Logger)
	router.Use(chimw.Recoverer)
	if d.Metrics != nil {
		router.Use(d.Metrics.Middleware)
	}

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if d.Gatherer != nil {
		router.Method(http.MethodGet, "/metrics", metrics.Handler(d.Gatherer))
	}

	if d.Static != nil {
		router.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(d.Static)))
	}

	// Everything else goes through tenant resolution, behind a coarse
	// per-IP throttle. Assets and scrapes above stay unthrottled.
	router.With(httprate.LimitByIP(cfg.Server.RequestsPerMinute, time.Minute)).
		Handle("/*", http.HandlerFunc(s.dispatch))

	s.httpServer = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s
}

// dispatch resolves the request's store and routes it. Path-addressed
// stores get their "/{slug}" prefix stripped so the store router serves
// every addressing scheme from the same routes.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request) {
	tc := s.resolver.Resolve(r.Context(), r.Host, r.URL.Path)
	if !tc.Resolved() {
		s.platform.ServeHTTP(w, r)
		return
	}

	r2 := r.Clone(middleware.WithTenant(r.Context(), tc))
	if tc.BasePath != "" {
		r2.URL.Path = stripBase(r2.URL.Path, tc.BasePath)
		if r2.URL.RawPath != "" {
			r2.URL.RawPath = stripBase(r2.URL.RawPath, tc.BasePath)
		}
	}

	s.storefront.ServeHTTP(w, r2)
}

func stripBase(path, base string) string {
	trimmed := strings.TrimPrefix(path, base)
	if trimmed == "" {
		return "/"
	}
	return trimmed
}

func newPlatformRouter(cfg *config.Config, h *Handlers, throttle func(string) func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/signup", http.StatusFound)
	})

	r.Get("/signup", h.SignupForm)
	r.With(throttle("signup")).Post("/signup", h.Signup)
	r.Get("/logout", h.Logout)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.New(cors.Options{
			AllowedOrigins:   cfg.Server.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}).Handler)
		r.With(throttle("shipping")).Post("/shipping/quote", h.ShippingQuote)
	})

	r.NotFound(h.StoreNotFound)

	return r
}

func newStoreRouter(h *Handlers, sessions *auth.SessionManager, throttle func(string) func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Storefront)
	r.Get("/produto/{slug}", h.ProductDetail)
	r.Get("/post/{slug}", h.PostDetail)
	r.Get("/logout", h.Logout)

	r.Get("/recuperar-senha", h.ForgotPasswordForm)
	r.With(throttle("reset")).Post("/recuperar-senha", h.ForgotPassword)
	r.Get("/nova-senha/{token}", h.ResetPasswordForm)
	r.Post("/nova-senha/{token}", h.ResetPassword)

	r.Route("/admin", func(r chi.Router) {
		r.Get("/", h.AdminLoginForm)
		r.With(throttle("login")).Post("/", h.AdminLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireStoreAdmin(sessions))
			r.Get("/painel", h.AdminPanel)
			r.Post("/painel", h.AdminSaveSettings)
			r.Post("/categoria/salvar", h.SaveCategory)
			r.Get("/categoria/excluir/{id}", h.DeleteCategory)
			r.Post("/produto/salvar", h.SaveProduct)
			r.Get("/produto/excluir/{id}", h.DeleteProduct)
			r.Post("/post/salvar", h.SavePost)
			r.Get("/post/excluir/{id}", h.DeletePost)
		})
	})

	r.NotFound(h.PageNotFound)

	return r
}

// Start begins listening for HTTP requests.
func (s *Server) Start(_ context.Context) error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.Start: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

// Handler exposes the fully wired root handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
