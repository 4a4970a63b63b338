package payments

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"roast-backend/internal/shared/server/middleware"
	"roast-backend/internal/shared/server/respond"
	"roast-backend/internal/usage"
)

// Handler implements the mocked checkout flow. No money moves; every
// valid request succeeds and upgrades the caller's plan.
type Handler struct {
	Usage *usage.Service
}

func NewHandler(usageSvc *usage.Service) *Handler {
	return &Handler{Usage: usageSvc}
}

// RegisterRoutes attaches payment routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments/checkout", h.checkout)
}

type checkoutRequest struct {
	Plan        string `json:"plan"`
	Method      string `json:"method"`
	PhoneNumber string `json:"phoneNumber"`
}

type checkoutResponse struct {
	Reference string      `json:"reference"`
	Status    string      `json:"status"`
	Plan      string      `json:"plan"`
	Method    string      `json:"method"`
	PaidAt    time.Time   `json:"paidAt"`
	Usage     usage.Usage `json:"usage"`
}

func (h *Handler) checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Invalid checkout request")
		return
	}

	switch req.Plan {
	case usage.PlanHustler, usage.PlanPro:
	default:
		respond.Error(c, http.StatusBadRequest, "validation_error", `plan must be "hustler" or "pro"`)
		return
	}

	switch req.Method {
	case "mpesa", "airtel":
		if strings.TrimSpace(req.PhoneNumber) == "" {
			respond.Error(c, http.StatusBadRequest, "validation_error", "Phone number required for mobile money")
			return
		}
	case "card":
	default:
		respond.Error(c, http.StatusBadRequest, "validation_error", `method must be "mpesa", "airtel" or "card"`)
		return
	}

	userID := middleware.UserIDFromContext(c)
	u, err := h.Usage.UpgradePlan(c.Request.Context(), userID, req.Plan)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to activate plan")
		return
	}

	respond.OK(c, checkoutResponse{
		Reference: uuid.NewString(),
		Status:    "completed",
		Plan:      req.Plan,
		Method:    req.Method,
		PaidAt:    time.Now().UTC(),
		Usage:     u,
	})
}
