package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/bookmarks/pkg/bookmarks/auth"
	"github.com/mikepea/bookmarks/pkg/bookmarks/bookmarks"
	"github.com/mikepea/bookmarks/pkg/bookmarks/httpx"
	"github.com/mikepea/bookmarks/pkg/bookmarks/redirect"
	"github.com/mikepea/bookmarks/pkg/bookmarks/shortcode"
	"github.com/mikepea/bookmarks/pkg/bookmarks/store"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/mikepea/bookmarks/api/swagger"
)

// Options carries the dependencies the router is built from.
type Options struct {
	DB              *gorm.DB
	Logger          *zap.Logger
	Tokens          *auth.TokenIssuer
	BaseURL         string
	ShortCodeLength int
	// Swagger mounts the API document UI at /swagger/*any.
	Swagger bool
}

// NewRouter builds the gin engine with every route registered.
// The public redirect is registered last so it never shadows /api or /health.
func NewRouter(opts Options) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(httpx.RequestID(), httpx.Logger(log), httpx.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if opts.Swagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	userStore := store.NewUserStore(opts.DB)
	bookmarkStore := store.NewBookmarkStore(opts.DB)
	authService := auth.NewService(userStore, opts.Tokens)
	bookmarkService := bookmarks.NewService(bookmarkStore, shortcode.NewBase62(opts.ShortCodeLength))

	api := r.Group("/api/v1")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":  "ok",
				"service": "bookmarks",
			})
		})

		// Auth routes (public, except /me and /token/refresh)
		authHandler := auth.NewHandler(authService)
		authHandler.RegisterRoutes(api.Group("/auth"))

		// Bookmark routes (access token required)
		bookmarksHandler := bookmarks.NewHandler(bookmarkService, opts.BaseURL)
		bookmarksGroup := api.Group("/bookmarks")
		bookmarksGroup.Use(auth.AuthMiddleware(authService))
		bookmarksHandler.RegisterRoutes(bookmarksGroup)
	}

	// Redirect routes (public, must be registered LAST to avoid conflicts)
	redirectHandler := redirect.NewHandler(redirect.NewResolver(bookmarkStore))
	redirectHandler.RegisterRoutes(r)

	return r
}
