package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Skryldev/sharebnb/apierr"
	"github.com/Skryldev/sharebnb/middleware"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	Logger      *slog.Logger
	CORSOrigin  string
	AuthLimiter *middleware.RateLimiter
	// Metrics is mounted on GET /metrics when set.
	Metrics http.Handler
}

// NewRouter wires every route of the API.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	origin := opts.CORSOrigin
	if origin == "" {
		origin = "*"
	}

	r := gin.New()
	r.Use(
		gin.CustomRecovery(func(c *gin.Context, p any) {
			logger.ErrorContext(c.Request.Context(), "panic in handler", "panic", p, "path", c.Request.URL.Path)
			apierr.Abort(c, apierr.New(http.StatusInternalServerError, "Internal Server Error", nil))
		}),
		middleware.CORS(origin),
		middleware.AuthenticateJWT(h.Tokens),
		middleware.RequestLogger(logger),
	)
	r.NoRoute(func(c *gin.Context) { apierr.Abort(c, apierr.NotFound("Not Found")) })

	r.GET("/health", h.Health)
	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics))
	}

	authGroup := r.Group("/auth")
	if opts.AuthLimiter != nil {
		authGroup.Use(middleware.RateLimit(opts.AuthLimiter))
	}
	authGroup.POST("/register", h.Register)
	authGroup.POST("/login", h.Login)

	users := r.Group("/users", middleware.RequireLoggedIn())
	users.GET("", h.ListUsers)
	users.GET("/:username", h.GetUser)
	users.PATCH("/:username", middleware.RequireCorrectUserOrAdmin(), h.UpdateUser)
	users.DELETE("/:username", middleware.RequireCorrectUserOrAdmin(), h.DeleteUser)

	listings := r.Group("/listings")
	listings.GET("", h.ListListings)
	listings.GET("/:id", h.GetListing)
	listings.POST("", middleware.RequireLoggedIn(), h.CreateListing)
	listings.PATCH("/:id", middleware.RequireLoggedIn(), h.UpdateListing)
	listings.DELETE("/:id", middleware.RequireLoggedIn(), h.DeleteListing)
	listings.POST("/:id/photos", middleware.RequireLoggedIn(), h.AddListingPhoto)

	r.POST("/upload/image", middleware.RequireLoggedIn(), h.UploadImage)

	return r
}

// Health handles GET /health. It reports 503 when the database is
// unreachable.
func (h *Handler) Health(c *gin.Context) {
	status := gin.H{"status": "ok", "storage": h.Images != nil && h.Images.Enabled()}
	if h.DB != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.DB.Ping(ctx); err != nil {
			status["status"] = "degraded"
			status["database"] = "unreachable"
			c.JSON(http.StatusServiceUnavailable, status)
			return
		}
	}
	c.JSON(http.StatusOK, status)
}
