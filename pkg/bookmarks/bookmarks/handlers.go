package bookmarks

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/bookmarks/pkg/bookmarks/auth"
	"github.com/mikepea/bookmarks/pkg/bookmarks/errx"
	"github.com/mikepea/bookmarks/pkg/bookmarks/httpx"
	"github.com/mikepea/bookmarks/pkg/bookmarks/models"
)

// Handler handles bookmark requests
type Handler struct {
	svc     *Service
	baseURL string
}

// NewHandler creates a new bookmark handler. Short URLs are built from
// baseURL; when it is empty the request's own scheme and host are used.
func NewHandler(svc *Service, baseURL string) *Handler {
	return &Handler{
		svc:     svc,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// BookmarkRequest is the body of create and update requests
type BookmarkRequest struct {
	URL  string `json:"url"`
	Body string `json:"body"`
}

// BookmarkResponse represents a bookmark in API responses
type BookmarkResponse struct {
	ID        uint      `json:"id"`
	URL       string    `json:"url"`
	ShortCode string    `json:"short_code"`
	ShortURL  string    `json:"short_url"`
	Body      string    `json:"body"`
	Visits    uint      `json:"visits"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListResponse is a page of bookmarks
type ListResponse struct {
	Data []BookmarkResponse `json:"data"`
	Meta Meta               `json:"meta"`
}

// StatResponse is the visit summary of one bookmark
type StatResponse struct {
	ID       uint   `json:"id"`
	URL      string `json:"url"`
	ShortURL string `json:"short_url"`
	Visits   uint   `json:"visits"`
}

// StatsResponse wraps the owner's stats
type StatsResponse struct {
	Data []StatResponse `json:"data"`
}

func (h *Handler) shortURL(c *gin.Context, code string) string {
	base := h.baseURL
	if base == "" {
		scheme := "http"
		if c.Request.TLS != nil {
			scheme = "https"
		}
		base = scheme + "://" + c.Request.Host
	}
	return base + "/" + code
}

func (h *Handler) toResponse(c *gin.Context, b *models.Bookmark) BookmarkResponse {
	return BookmarkResponse{
		ID:        b.ID,
		URL:       b.URL,
		ShortCode: b.ShortCode,
		ShortURL:  h.shortURL(c, b.ShortCode),
		Body:      b.Body,
		Visits:    b.Visits,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func ownerFrom(c *gin.Context) (uint, bool) {
	id, ok := auth.GetUserID(c)
	if !ok {
		httpx.Error(c, errx.New("bookmarks.owner", errx.Unauthorized, "Authentication required"))
	}
	return id, ok
}

// parseID treats a malformed id like an unknown one.
func parseID(c *gin.Context) (uint, bool) {
	// Ids beyond MaxInt64 cannot exist and are rejected by database/sql.
	id, err := strconv.ParseUint(c.Param("id"), 10, 63)
	if err != nil || id == 0 {
		httpx.Error(c, errx.New("bookmarks.parseID", errx.NotFound, msgNotFound))
		return 0, false
	}
	return uint(id), true
}

// Create adds a bookmark for the current user
// @Summary Create bookmark
// @Description Bookmark a URL and assign it a short code
// @Tags bookmarks
// @Accept json
// @Produce json
// @Param request body BookmarkRequest true "Bookmark details"
// @Success 201 {object} BookmarkResponse
// @Failure 400 {object} httpx.ErrorResponse "Invalid URL"
// @Failure 401 {object} httpx.ErrorResponse "Authentication required"
// @Failure 409 {object} httpx.ErrorResponse "URL already exists"
// @Security BearerAuth
// @Router /bookmarks [post]
func (h *Handler) Create(c *gin.Context) {
	ownerID, ok := ownerFrom(c)
	if !ok {
		return
	}

	var req BookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, "Invalid request body")
		return
	}

	bookmark, err := h.svc.Create(c.Request.Context(), ownerID, req.URL, req.Body)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, h.toResponse(c, bookmark))
}

// List returns a page of the current user's bookmarks
// @Summary List bookmarks
// @Description Paginated list of the current user's bookmarks in creation order
// @Tags bookmarks
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page (max 100)" default(5)
// @Success 200 {object} ListResponse
// @Failure 401 {object} httpx.ErrorResponse "Authentication required"
// @Security BearerAuth
// @Router /bookmarks [get]
func (h *Handler) List(c *gin.Context) {
	ownerID, ok := ownerFrom(c)
	if !ok {
		return
	}

	page, perPage := parsePagination(c)
	result, err := h.svc.List(c.Request.Context(), ownerID, page, perPage)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	data := make([]BookmarkResponse, len(result.Items))
	for i := range result.Items {
		data[i] = h.toResponse(c, &result.Items[i])
	}
	c.JSON(http.StatusOK, ListResponse{Data: data, Meta: result.Meta})
}

// Get returns a single bookmark
// @Summary Get bookmark
// @Tags bookmarks
// @Produce json
// @Param id path int true "Bookmark ID"
// @Success 200 {object} BookmarkResponse
// @Failure 401 {object} httpx.ErrorResponse "Authentication required"
// @Failure 404 {object} httpx.ErrorResponse "Item not found"
// @Security BearerAuth
// @Router /bookmarks/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	ownerID, ok := ownerFrom(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	bookmark, err := h.svc.Get(c.Request.Context(), ownerID, id)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, h.toResponse(c, bookmark))
}

// Update replaces a bookmark's url and body
// @Summary Update bookmark
// @Description Replace url and body. The short code and visit count are kept.
// @Tags bookmarks
// @Accept json
// @Produce json
// @Param id path int true "Bookmark ID"
// @Param request body BookmarkRequest true "Bookmark details"
// @Success 200 {object} BookmarkResponse
// @Failure 400 {object} httpx.ErrorResponse "Invalid URL"
// @Failure 401 {object} httpx.ErrorResponse "Authentication required"
// @Failure 404 {object} httpx.ErrorResponse "Item not found"
// @Failure 409 {object} httpx.ErrorResponse "URL already exists"
// @Security BearerAuth
// @Router /bookmarks/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	ownerID, ok := ownerFrom(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req BookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, "Invalid request body")
		return
	}

	bookmark, err := h.svc.Update(c.Request.Context(), ownerID, id, req.URL, req.Body)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, h.toResponse(c, bookmark))
}

// Delete removes a bookmark
// @Summary Delete bookmark
// @Tags bookmarks
// @Param id path int true "Bookmark ID"
// @Success 204
// @Failure 401 {object} httpx.ErrorResponse "Authentication required"
// @Failure 404 {object} httpx.ErrorResponse "Item not found"
// @Security BearerAuth
// @Router /bookmarks/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	ownerID, ok := ownerFrom(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), ownerID, id); err != nil {
		httpx.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Stats returns visit counts for all of the current user's bookmarks
// @Summary Bookmark stats
// @Tags bookmarks
// @Produce json
// @Success 200 {object} StatsResponse
// @Failure 401 {object} httpx.ErrorResponse "Authentication required"
// @Security BearerAuth
// @Router /bookmarks/stats [get]
func (h *Handler) Stats(c *gin.Context) {
	ownerID, ok := ownerFrom(c)
	if !ok {
		return
	}

	stats, err := h.svc.Stats(c.Request.Context(), ownerID)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	data := make([]StatResponse, len(stats))
	for i, s := range stats {
		data[i] = StatResponse{
			ID:       s.ID,
			URL:      s.URL,
			ShortURL: h.shortURL(c, s.ShortCode),
			Visits:   s.Visits,
		}
	}
	c.JSON(http.StatusOK, StatsResponse{Data: data})
}

// RegisterRoutes registers bookmark routes on a group that already
// carries the access-token middleware
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/stats", h.Stats)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}
