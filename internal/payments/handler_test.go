package payments

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"roast-backend/internal/shared/server/middleware"
	"roast-backend/internal/usage"
)

func newTestRouter(t *testing.T) (*gin.Engine, *usage.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	usageSvc := usage.NewService(nil)
	r := gin.New()
	r.Use(middleware.Identity())
	NewHandler(usageSvc).RegisterRoutes(r.Group("/api/v1"))
	return r, usageSvc
}

func postCheckout(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/checkout", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Guest-Id", "tester")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCheckoutUpgradesPlan(t *testing.T) {
	r, usageSvc := newTestRouter(t)

	w := postCheckout(t, r, `{"plan":"hustler","method":"mpesa","phoneNumber":"+254700000000"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success bool             `json:"success"`
		Data    checkoutResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success {
		t.Fatal("expected success envelope")
	}
	if resp.Data.Status != "completed" || resp.Data.Reference == "" {
		t.Fatalf("got %+v", resp.Data)
	}

	u, err := usageSvc.Get(t.Context(), "guest:tester")
	if err != nil {
		t.Fatalf("usage get: %v", err)
	}
	if u.Plan != usage.PlanHustler {
		t.Fatalf("plan = %q, want hustler", u.Plan)
	}
}

func TestCheckoutCardNeedsNoPhone(t *testing.T) {
	r, _ := newTestRouter(t)
	w := postCheckout(t, r, `{"plan":"pro","method":"card"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestCheckoutValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"unknown plan", `{"plan":"free","method":"card"}`},
		{"unknown method", `{"plan":"pro","method":"cash"}`},
		{"mpesa without phone", `{"plan":"pro","method":"mpesa"}`},
		{"bad json", `{`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := newTestRouter(t)
			w := postCheckout(t, r, tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400, body %s", w.Code, w.Body.String())
			}
		})
	}
}
