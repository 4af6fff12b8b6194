package router

import (
	"github.com/gin-gonic/gin"

	"billvox/internal/config"
	"billvox/internal/domain"
	"billvox/internal/handler"
	"billvox/internal/middleware"
	"billvox/internal/service"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	authSvc service.AuthService,
	authH *handler.AuthHandler,
	catalogH *handler.CatalogHandler,
	customerH *handler.CustomerHandler,
	voiceH *handler.VoiceHandler,
	invoiceH *handler.InvoiceHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/login", authH.Login)
	auth.POST("/refresh", authH.RefreshToken)

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))

	// Product catalog
	products := protected.Group("/products")
	products.POST("", middleware.RequireRole(domain.RoleAdmin), catalogH.Create)
	products.GET("", catalogH.List)
	products.GET("/match", catalogH.Match)
	products.POST("/corrections", catalogH.RecordCorrection)
	products.GET("/:id", catalogH.GetByID)
	products.PUT("/:id", middleware.RequireRole(domain.RoleAdmin), catalogH.Update)
	products.DELETE("/:id", middleware.RequireRole(domain.RoleAdmin), catalogH.Delete)

	// Customer directory
	customers := protected.Group("/customers")
	customers.POST("", customerH.Create)
	customers.GET("", customerH.List)
	customers.GET("/lookup", customerH.Lookup)
	customers.GET("/:id", customerH.GetByID)
	customers.PUT("/:id", customerH.Update)
	customers.DELETE("/:id", middleware.RequireRole(domain.RoleAdmin), customerH.Delete)

	// Invoices
	invoices := protected.Group("/invoices")
	invoices.GET("", invoiceH.List)
	invoices.GET("/export", invoiceH.Export)
	invoices.GET("/:id", invoiceH.GetByID)
	invoices.GET("/:id/archive", invoiceH.ArchiveLink)

	// Voice billing sessions. Utterances fan out to the remote parser, so the
	// group carries a per-user rate limit.
	sessions := protected.Group("/voice/sessions")
	sessions.Use(middleware.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	sessions.POST("", voiceH.Start)
	sessions.GET("/:id", voiceH.Get)
	sessions.DELETE("/:id", voiceH.End)
	sessions.POST("/:id/utterances", voiceH.Utterance)
	sessions.POST("/:id/pick", voiceH.PickSuggestion)
	sessions.POST("/:id/pick-customer", voiceH.PickCustomer)
	sessions.POST("/:id/dismiss", voiceH.Dismiss)
	sessions.POST("/:id/listen", voiceH.StartListening)
	sessions.POST("/:id/mute", voiceH.StopListening)
	sessions.POST("/:id/lines", voiceH.AddLine)
	sessions.PUT("/:id/lines/:lineID", voiceH.UpdateLine)
	sessions.DELETE("/:id/lines/:lineID", voiceH.RemoveLine)
	sessions.PUT("/:id/settings", voiceH.UpdateSettings)
	sessions.PUT("/:id/customer", voiceH.SetCustomer)
	sessions.GET("/:id/totals", voiceH.Totals)
	sessions.POST("/:id/finalize", voiceH.Finalize)

	return r
}
