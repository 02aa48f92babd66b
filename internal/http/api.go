package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"inkwell/internal/metrics"
	"inkwell/internal/service"
)

const siteTitle = "Inkwell"

// Config wires the handler to its services.
type Config struct {
	Users   service.UserService
	Posts   service.PostService
	Archive service.ArchiveService
	Tokens  TokenVerifier

	CookieName   string
	CookieSecure bool
	// AllowOrigin is the one origin granted credentialed CORS access.
	AllowOrigin string
	// TokenTTL bounds the cookie lifetime; zero makes it a session cookie.
	TokenTTL time.Duration

	RateLimiter *RateLimiter
	Metrics     metrics.Recorder
	// Gatherer backs /metrics; the route is omitted when nil.
	Gatherer prometheus.Gatherer
	// Health is called by /healthz, typically a database ping.
	Health func(ctx context.Context) error
	Logger *logrus.Logger
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	users   service.UserService
	posts   service.PostService
	archive service.ArchiveService
	tokens  TokenVerifier

	cookieName   string
	cookieSecure bool
	allowOrigin  string
	tokenTTL     time.Duration

	limiter  *RateLimiter
	metrics  metrics.Recorder
	gatherer prometheus.Gatherer
	health   func(ctx context.Context) error
	logger   *logrus.Logger
}

func NewHandler(cfg Config) *Handler {
	if cfg.CookieName == "" {
		cfg.CookieName = "token"
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.Nop{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	return &Handler{
		users:        cfg.Users,
		posts:        cfg.Posts,
		archive:      cfg.Archive,
		tokens:       cfg.Tokens,
		cookieName:   cfg.CookieName,
		cookieSecure: cfg.CookieSecure,
		allowOrigin:  cfg.AllowOrigin,
		tokenTTL:     cfg.TokenTTL,
		limiter:      cfg.RateLimiter,
		metrics:      cfg.Metrics,
		gatherer:     cfg.Gatherer,
		health:       cfg.Health,
		logger:       cfg.Logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(requestLogger(h.logger, h.metrics), corsMiddleware(h.allowOrigin))

	limited := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		if h.limiter == nil {
			return []gin.HandlerFunc{handler}
		}
		return []gin.HandlerFunc{h.limiter.Middleware(h.metrics), handler}
	}

	router.GET("/", h.home)
	router.GET("/post/:id", h.showPost)
	router.GET("/search", h.sortedPosts)
	router.POST("/search", h.searchPosts)
	router.GET("/about", h.about)
	router.GET("/logout", h.logout)
	router.POST("/register", limited(h.register)...)
	router.POST("/admin", limited(h.login)...)
	router.GET("/healthz", h.healthz)
	if h.gatherer != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler(h.gatherer)))
	}

	admin := router.Group("/", AuthRequired(h.tokens, h.cookieName))
	{
		admin.GET("/dashboard", h.dashboard)
		admin.GET("/add-post", h.addPostForm)
		admin.POST("/add-post", h.createPost)
		admin.GET("/edit-post/:id", h.editPostForm)
		admin.PUT("/edit-post/:id", h.updatePost)
		admin.DELETE("/delete-post/:id", h.deletePost)
		admin.GET("/profile", h.profile)
		admin.POST("/profile", h.updateProfile)
		admin.POST("/profile/delete", h.deleteProfile)
		admin.POST("/exports", h.createExport)
		admin.GET("/exports", h.listExports)
		admin.DELETE("/exports", h.purgeExports)
	}
}

func (h *Handler) about(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"locals":        locals("About", "About this blog"),
		"data":          gin.H{},
		"currentRoute":  "/about",
		"authenticated": h.authenticated(c),
	})
}

func (h *Handler) healthz(c *gin.Context) {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.health(ctx); err != nil {
			h.logger.WithError(err).Warn("health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// authenticated reports whether the request carries a valid session, for
// views that render differently for signed-in users.
func (h *Handler) authenticated(c *gin.Context) bool {
	_, ok := resolveUser(c, h.tokens, h.cookieName)
	return ok
}

func (h *Handler) setSessionCookie(c *gin.Context, token string) {
	maxAge := 0
	if h.tokenTTL > 0 {
		maxAge = int(h.tokenTTL.Seconds())
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, token, maxAge, "/", "", h.cookieSecure, true)
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, "", -1, "/", "", h.cookieSecure, true)
}

func locals(title, description string) gin.H {
	return gin.H{"title": title, "description": description}
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
