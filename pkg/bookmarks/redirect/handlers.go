package redirect

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/bookmarks/pkg/bookmarks/httpx"
)

// Handler handles redirect requests
type Handler struct {
	resolver *Resolver
}

// NewHandler creates a new redirect handler
func NewHandler(resolver *Resolver) *Handler {
	return &Handler{resolver: resolver}
}

// Redirect sends the caller to the bookmark behind a short code
// @Summary Follow short link
// @Description Public. Redirects to the bookmarked URL and counts the visit.
// @Tags redirect
// @Param shortCode path string true "Short code"
// @Success 302
// @Failure 404 {object} httpx.ErrorResponse "Item not found"
// @Router /{shortCode} [get]
func (h *Handler) Redirect(c *gin.Context) {
	target, err := h.resolver.Resolve(c.Request.Context(), c.Param("shortCode"))
	if err != nil {
		httpx.Error(c, err)
		return
	}

	c.Redirect(http.StatusFound, target)
}

// RegisterRoutes registers the redirect route on the root router.
// Call it after every other route so /api and /health keep precedence.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/:shortCode", h.Redirect)
}
