package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ForeverInLaw/airdealer/internal/auth"
	"github.com/ForeverInLaw/airdealer/internal/config"
	"github.com/ForeverInLaw/airdealer/internal/gate"
	"github.com/ForeverInLaw/airdealer/internal/identity"
	"github.com/ForeverInLaw/airdealer/internal/reports"
	"github.com/ForeverInLaw/airdealer/internal/workflow"
	"github.com/ForeverInLaw/airdealer/repository"
)

// Deps bundles everything the router serves.
type Deps struct {
	Config   *config.Config
	Identity identity.ProviderI
	Gate     *gate.Gate
	Workflow *workflow.Workflow
	Reports  *reports.Service
	Admins   repository.AdminRepositoryI
	Orders   repository.OrderRepositoryI
	Users    repository.UserRepositoryI
	Products *repository.ProductRepository
	Catalog  *repository.CatalogRepository
}

// NewRouter builds the chi router. Everything under /api/v1/admin is behind
// the authentication middleware plus the approved-admin gate; auth endpoints
// and the health check are open.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	authHandler := &AuthHandler{Identity: d.Identity, Gate: d.Gate, Secret: d.Config.Auth.JWTSecret, TokenTTL: d.Config.Auth.TokenTTL}
	adminHandler := &AdminHandler{Gate: d.Gate, Admins: d.Admins}
	orderHandler := &OrderHandler{Workflow: d.Workflow, Orders: d.Orders}
	catalogHandler := &CatalogHandler{Products: d.Products, Catalog: d.Catalog, Users: d.Users}
	dashboardHandler := &DashboardHandler{Reports: d.Reports}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.With(auth.Authenticate(d.Config.Auth.JWTSecret)).Get("/session", authHandler.Session)
			r.With(auth.Authenticate(d.Config.Auth.JWTSecret)).Post("/logout", authHandler.Logout)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.Authenticate(d.Config.Auth.JWTSecret))
			r.Use(auth.RequireApproved(d.Gate))

			r.Get("/dashboard", dashboardHandler.Dashboard)

			r.Route("/admins", func(r chi.Router) {
				r.Get("/", adminHandler.List)
				r.Post("/{id}/approve", adminHandler.Approve)
				r.Post("/{id}/revoke", adminHandler.Revoke)
				r.Delete("/{id}", adminHandler.Delete)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", orderHandler.List)
				r.Get("/{id}", orderHandler.Get)
				r.Get("/{id}/transitions", orderHandler.Transitions)
				r.Post("/{id}/status", orderHandler.UpdateStatus)
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", catalogHandler.ListProducts)
				r.Post("/", catalogHandler.CreateProduct)
				r.Get("/{id}", catalogHandler.GetProduct)
				r.Put("/{id}", catalogHandler.UpdateProduct)
				r.Delete("/{id}", catalogHandler.DeleteProduct)
			})

			r.Route("/stock", func(r chi.Router) {
				r.Get("/", catalogHandler.ListStock)
				r.Put("/", catalogHandler.UpsertStock)
				r.Delete("/{productID}/{locationID}", catalogHandler.DeleteStock)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", catalogHandler.ListUsers)
				r.Post("/{id}/block", catalogHandler.BlockUser)
				r.Post("/{id}/unblock", catalogHandler.UnblockUser)
			})

			r.Route("/locations", func(r chi.Router) {
				r.Get("/", catalogHandler.ListLocations)
				r.Post("/", catalogHandler.CreateLocation)
				r.Put("/{id}", catalogHandler.UpdateLocation)
				r.Delete("/{id}", catalogHandler.DeleteLocation)
			})

			r.Route("/manufacturers", func(r chi.Router) {
				r.Get("/", catalogHandler.ListManufacturers)
				r.Post("/", catalogHandler.CreateManufacturer)
				r.Put("/{id}", catalogHandler.UpdateManufacturer)
				r.Delete("/{id}", catalogHandler.DeleteManufacturer)
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", catalogHandler.ListCategories)
				r.Post("/", catalogHandler.CreateCategory)
				r.Put("/{id}", catalogHandler.UpdateCategory)
				r.Delete("/{id}", catalogHandler.DeleteCategory)
			})
		})
	})

	return r
}

// Start runs the HTTP server and returns a shutdown function. The listener
// is opened before the serving goroutine starts, so a busy or invalid
// address fails the call instead of leaving a silent non-listening process.
func Start(d Deps) (func(context.Context) error, error) {
	srv := &http.Server{
		Addr:         d.Config.HTTP.Address,
		Handler:      NewRouter(d),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server: %v", err)
		}
	}()
	return srv.Shutdown, nil
}
