package usage

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"roast-backend/internal/shared/server/middleware"
	"roast-backend/internal/shared/server/respond"
)

// Handler exposes the caller's quota state over HTTP.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the public usage route.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/usage", h.get)
}

// RegisterDevRoutes attaches routes that only make sense outside
// production.
func (h *Handler) RegisterDevRoutes(rg *gin.RouterGroup) {
	rg.POST("/usage/reset", h.reset)
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	u, err := h.Svc.Get(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load usage")
		return
	}
	respond.OK(c, u)
}

func (h *Handler) reset(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if err := h.Svc.Reset(c.Request.Context(), userID); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to reset usage")
		return
	}
	respond.OK(c, gin.H{"reset": true})
}
