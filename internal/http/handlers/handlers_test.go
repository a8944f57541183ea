// README: Handler tests for request parsing and auth short-circuits.
package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"waypool/internal/http/handlers"
	"waypool/internal/http/middleware"
	"waypool/internal/infra"
)

type stubVerifier struct {
	identity *infra.Identity
	err      error
}

func (s *stubVerifier) VerifyIDToken(_ context.Context, _ string) (*infra.Identity, error) {
	return s.identity, s.err
}

// buildTestRouter wires the auth middleware plus the create routes.
// Nil services are safe: malformed bodies are rejected before any
// service method runs.
func buildTestRouter(verifier infra.TokenVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Auth(verifier))

	rideHandler := handlers.NewRideHandler(nil, nil)
	r.POST("/api/rides", rideHandler.Create)

	bookingHandler := handlers.NewBookingHandler(nil)
	r.POST("/api/bookings", bookingHandler.Create)

	vehicleHandler := handlers.NewVehicleHandler(nil)
	r.POST("/api/vehicles", vehicleHandler.Create)
	return r
}

func doPost(r *gin.Engine, path, body, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateEndpointsRequireAuth(t *testing.T) {
	r := buildTestRouter(&stubVerifier{identity: &infra.Identity{UID: "u1"}})
	for _, path := range []string{"/api/rides", "/api/bookings", "/api/vehicles"} {
		if w := doPost(r, path, `{}`, ""); w.Code != http.StatusUnauthorized {
			t.Errorf("%s without token: expected 401, got %d", path, w.Code)
		}
	}
}

func TestCreateEndpointsRejectMalformedJSON(t *testing.T) {
	r := buildTestRouter(&stubVerifier{identity: &infra.Identity{UID: "u1"}})
	for _, path := range []string{"/api/rides", "/api/bookings", "/api/vehicles"} {
		if w := doPost(r, path, `{not json`, "Bearer t"); w.Code != http.StatusBadRequest {
			t.Errorf("%s with bad body: expected 400, got %d", path, w.Code)
		}
	}
}
