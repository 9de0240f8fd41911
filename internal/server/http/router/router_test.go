package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/B3hnamR/viranumpro/internal/server/http/dto"
	"github.com/B3hnamR/viranumpro/internal/server/http/middleware"
	testhelpers "github.com/B3hnamR/viranumpro/internal/test"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestSetupRoutes(t *testing.T) {
	facade := &testhelpers.FacadeStub{GatewaySecret: "secret", OwnerID: 7}
	engine := Setup(facade, testhelpers.NewLogger())

	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("healthz: expected 200, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	engine.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/catalog/countries", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("countries: expected 200, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	engine.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/catalog/prices?product=telegram", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("prices: expected 200, got %d", resp.Code)
	}
}

func TestSetupGuardsOwnerRoutes(t *testing.T) {
	facade := &testhelpers.FacadeStub{GatewaySecret: "secret"}
	engine := Setup(facade, testhelpers.NewLogger())

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/purchase"},
		{http.MethodPost, "/api/purchase/reply"},
		{http.MethodPost, "/api/purchase/cancel"},
		{http.MethodGet, "/api/orders"},
		{http.MethodGet, "/api/orders/42"},
		{http.MethodPost, "/api/orders/42/cancel"},
	}
	for _, p := range paths {
		resp := httptest.NewRecorder()
		engine.ServeHTTP(resp, httptest.NewRequest(p.method, p.path, nil))
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401 without token, got %d", p.method, p.path, resp.Code)
		}
	}
}

func TestSetupGuardsGatewayRoutes(t *testing.T) {
	facade := &testhelpers.FacadeStub{GatewaySecret: "secret"}
	engine := Setup(facade, testhelpers.NewLogger())

	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/profile", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("profile: expected 401 without secret, got %d", resp.Code)
	}
}

func TestSetupOwnerFlow(t *testing.T) {
	facade := &testhelpers.FacadeStub{GatewaySecret: "secret", OwnerID: 7}
	engine := Setup(facade, testhelpers.NewLogger())

	payload, _ := json.Marshal(dto.StartPurchaseRequest{Product: "telegram"})
	req := httptest.NewRequest(http.MethodPost, "/api/purchase", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer token")
	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("purchase: expected 200, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	req.Header.Set("Authorization", "Bearer token")
	resp = httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("orders: expected 200, got %d", resp.Code)
	}
}

func TestSetupGatewayFlow(t *testing.T) {
	facade := &testhelpers.FacadeStub{GatewaySecret: "secret"}
	engine := Setup(facade, testhelpers.NewLogger())

	payload, _ := json.Marshal(dto.TokenRequest{OwnerID: 7})
	req := httptest.NewRequest(http.MethodPost, "/api/gateway/token", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.GatewaySecretHeader, "secret")
	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("token: expected 200, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set(middleware.GatewaySecretHeader, "secret")
	resp = httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("profile: expected 200, got %d", resp.Code)
	}
}
