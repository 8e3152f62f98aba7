// internal/wire/wire.go
package wire

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"ppob-backend/internal/adaptor"
	"ppob-backend/internal/data/repository"
	"ppob-backend/internal/usecase"
	"ppob-backend/pkg/middleware"
	"ppob-backend/pkg/utils"
)

// App menyimpan semua dependencies
type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// Wiring menginisialisasi semua dependencies
func Wiring(repo *repository.Repository, config *utils.Config, deps usecase.Dependencies, logger *zap.Logger) *App {
	// Initialize services dan handlers
	service := usecase.NewService(repo, config, deps, logger)
	handler := adaptor.NewHandler(service, config, logger)

	// Setup router
	router := setupRouter(handler, service, config, logger)

	return &App{
		Router:  router,
		Service: service,
	}
}

// guards are the auth middlewares shared by the route groups.
type guards struct {
	auth  func(http.Handler) http.Handler
	admin func(http.Handler) http.Handler
	limit func(http.Handler) http.Handler
}

// setupRouter konfigurasi Chi router
func setupRouter(
	handler *adaptor.Handler,
	service *usecase.Service,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(chimw.RequestID)
	if config.App.TrustProxy {
		// header forwarded hanya dipercaya di belakang reverse proxy
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(config.App.CORSOrigins...))

	g := guards{
		auth:  middleware.Authenticate(service.Token, logger),
		admin: middleware.AuthorizeAdmin(logger),
		limit: middleware.RateLimit(
			middleware.NewRateLimiter(config.RateLimit.RPS, config.RateLimit.Burst, 3*time.Minute),
			logger,
		),
	}

	// Apply routes
	wireAuth(r, handler.Auth, g)
	wireUser(r, handler.User, g)
	wireProduct(r, handler.Product, g)
	wireBranch(r, handler.Branch, handler.Nasabah, g)
	wireTransaction(r, handler.Transaction, handler.Webhook, g)
	wireDigiflazz(r, handler.Webhook, handler.Provider, g)
	wireReport(r, handler.Report, g)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.ResponseSuccess(w, "OK", map[string]string{"app": config.App.Name})
	})

	return r
}
