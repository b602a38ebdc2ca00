package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mesterwork/worksite-api/internal/auth"
	"github.com/mesterwork/worksite-api/internal/config"
	"github.com/mesterwork/worksite-api/internal/database"
	"github.com/mesterwork/worksite-api/internal/http/handler"
	"github.com/mesterwork/worksite-api/internal/http/middleware"
	"github.com/mesterwork/worksite-api/internal/warehouse"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/mesterwork/worksite-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg                *config.Config
	logger             *zap.Logger
	db                 *gorm.DB
	warehouseClient    *warehouse.Client
	authMiddleware     *auth.Middleware
	rateLimiter        *middleware.RateLimiter
	authHandler        *handler.AuthHandler
	offerHandler       *handler.OfferHandler
	workHandler        *handler.WorkHandler
	diaryHandler       *handler.DiaryHandler
	workerHandler      *handler.WorkerHandler
	workforceHandler   *handler.WorkforceHandler
	materialHandler    *handler.MaterialHandler
	toolHandler        *handler.ToolHandler
	billingHandler     *handler.BillingHandler
	priceListHandler   *handler.PriceListHandler
	performanceHandler *handler.PerformanceHandler
	paymentHandler     *handler.PaymentHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	warehouseClient *warehouse.Client,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	authHandler *handler.AuthHandler,
	offerHandler *handler.OfferHandler,
	workHandler *handler.WorkHandler,
	diaryHandler *handler.DiaryHandler,
	workerHandler *handler.WorkerHandler,
	workforceHandler *handler.WorkforceHandler,
	materialHandler *handler.MaterialHandler,
	toolHandler *handler.ToolHandler,
	billingHandler *handler.BillingHandler,
	priceListHandler *handler.PriceListHandler,
	performanceHandler *handler.PerformanceHandler,
	paymentHandler *handler.PaymentHandler,
) *Router {
	return &Router{
		cfg:                cfg,
		logger:             logger,
		db:                 db,
		warehouseClient:    warehouseClient,
		authMiddleware:     authMiddleware,
		rateLimiter:        rateLimiter,
		authHandler:        authHandler,
		offerHandler:       offerHandler,
		workHandler:        workHandler,
		diaryHandler:       diaryHandler,
		workerHandler:      workerHandler,
		workforceHandler:   workforceHandler,
		materialHandler:    materialHandler,
		toolHandler:        toolHandler,
		billingHandler:     billingHandler,
		priceListHandler:   priceListHandler,
		performanceHandler: performanceHandler,
		paymentHandler:     paymentHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with detailed stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
				"max_idle_closed":      stats.MaxIdleClosed,
				"max_lifetime_closed":  stats.MaxLifetimeClosed,
			},
		})
	})

	// Combined readiness check. The warehouse is optional and write-only,
	// so its state is reported but never fails readiness.
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		checks["warehouse"] = rt.warehouseClient.HealthCheck(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if allHealthy {
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "healthy",
				"checks": checks,
			})
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "unhealthy",
				"checks": checks,
			})
		}
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Payment processor webhook authenticates by HMAC signature, not JWT
		r.Post("/payments/webhook", rt.paymentHandler.Webhook)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)

			// Auth
			r.Get("/me", rt.authHandler.Me)

			// Offers
			r.Route("/offers", func(r chi.Router) {
				r.Get("/", rt.offerHandler.List)
				r.Post("/", rt.offerHandler.Create)
				r.Post("/from-text", rt.offerHandler.CreateFromText)
				r.Get("/{id}", rt.offerHandler.GetByID)
				r.Put("/{id}", rt.offerHandler.Update)
				r.Delete("/{id}", rt.offerHandler.Delete)
				r.Put("/{id}/status", rt.offerHandler.UpdateStatus)
				r.Post("/{id}/items", rt.offerHandler.AddItem)
			})

			// Offer items
			r.Route("/offer-items", func(r chi.Router) {
				r.Put("/{itemId}", rt.offerHandler.UpdateItem)
				r.Delete("/{itemId}", rt.offerHandler.DeleteItem)
			})

			// Works
			r.Route("/works", func(r chi.Router) {
				r.Get("/", rt.workHandler.List)
				r.Get("/stuck", rt.workHandler.ListStuck)
				r.Delete("/stuck/{id}", rt.workHandler.DeleteStuck)
				r.Post("/from-offer/{offerId}", rt.workHandler.ConvertFromOffer)
				r.Get("/{id}", rt.workHandler.GetByID)
				r.Put("/{id}", rt.workHandler.Update)
				r.Delete("/{id}", rt.workHandler.Delete)
				r.Get("/{id}/items", rt.workHandler.ListItems)
				r.Get("/{id}/profit", rt.workHandler.Profit)

				// Diary
				r.Get("/{id}/diary", rt.diaryHandler.List)
				r.Post("/{id}/diary", rt.diaryHandler.Create)
				r.Post("/{id}/diary/refresh", rt.diaryHandler.Refresh)
				r.Get("/{id}/diary/groups/{groupNo}/approval", rt.diaryHandler.GroupApprovalStatus)
				r.Put("/{id}/diary/groups/{groupNo}/approval", rt.diaryHandler.SetGroupApproval)

				// Workers
				r.Get("/{id}/workers", rt.workerHandler.List)
				r.Post("/{id}/workers", rt.workerHandler.Assign)

				// Materials
				r.Get("/{id}/materials", rt.materialHandler.List)
				r.Post("/{id}/materials", rt.materialHandler.Create)
				r.Post("/{id}/materials/scout", rt.materialHandler.ScoutPrices)

				// Tools
				r.Get("/{id}/tools", rt.toolHandler.List)
				r.Post("/{id}/tools", rt.toolHandler.Create)

				// Performance
				r.Get("/{id}/performance", rt.performanceHandler.Report)
				r.Put("/{id}/performance", rt.performanceHandler.UpdateExpectations)
			})

			// Work items
			r.Route("/work-items", func(r chi.Router) {
				r.Put("/{itemId}", rt.workHandler.UpdateItem)
				r.Get("/{itemId}/workers", rt.workerHandler.ListAssignments)
			})

			// Diary entries and photos
			r.Route("/diary-entries", func(r chi.Router) {
				r.Get("/{entryId}", rt.diaryHandler.GetByID)
				r.Delete("/{entryId}", rt.diaryHandler.Delete)
				r.Post("/{entryId}/photos", rt.diaryHandler.UploadPhoto)
			})
			r.Get("/diary-photos/{photoId}", rt.diaryHandler.DownloadPhoto)

			// Worker assignments
			r.Delete("/assignments/{assignmentId}", rt.workerHandler.RemoveAssignment)

			// Workforce register
			r.Route("/workforce", func(r chi.Router) {
				r.Get("/", rt.workforceHandler.List)
				r.Post("/", rt.workforceHandler.Create)
				r.Get("/{id}", rt.workforceHandler.GetByID)
				r.Put("/{id}", rt.workforceHandler.Update)
				r.Delete("/{id}", rt.workforceHandler.Delete)
			})

			// Materials and tools by ID
			r.Put("/materials/{materialId}", rt.materialHandler.Update)
			r.Delete("/materials/{materialId}", rt.materialHandler.Delete)
			r.Delete("/tools/{toolId}", rt.toolHandler.Delete)

			// Billing
			r.Route("/billings", func(r chi.Router) {
				r.Get("/", rt.billingHandler.List)
				r.Post("/", rt.billingHandler.Create)
				r.Get("/{id}", rt.billingHandler.GetByID)
				r.Delete("/{id}", rt.billingHandler.Delete)
				r.Post("/{id}/issue", rt.billingHandler.Issue)
			})

			// Price list
			r.Route("/price-list", func(r chi.Router) {
				r.Get("/", rt.priceListHandler.List)
				r.Post("/", rt.priceListHandler.Create)
				r.Put("/{id}", rt.priceListHandler.Update)
				r.Delete("/{id}", rt.priceListHandler.Delete)
			})

			// Payments
			r.Post("/payments/checkout", rt.paymentHandler.StartCheckout)
			r.Post("/payments/portal", rt.paymentHandler.OpenPortal)
		})
	})

	return r
}
