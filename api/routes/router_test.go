package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	productsvc "github.com/mweidner/product-inventory-backend/internal/products"
	"github.com/mweidner/product-inventory-backend/pkg/config"
	"github.com/mweidner/product-inventory-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubProductService struct{}

func (stubProductService) CreateProduct(context.Context, productsvc.CreateProductInput) (*productsvc.ProductDTO, error) {
	return &productsvc.ProductDTO{Ident: "created"}, nil
}

func (stubProductService) UpdateProduct(_ context.Context, ident string, _ productsvc.UpdateProductInput) (*productsvc.ProductDTO, error) {
	return &productsvc.ProductDTO{Ident: ident}, nil
}

func (stubProductService) GetProduct(_ context.Context, ident string) (*productsvc.ProductDTO, error) {
	return &productsvc.ProductDTO{Ident: ident}, nil
}

func (stubProductService) GetProducts(context.Context, []string) ([]*productsvc.ProductDTO, error) {
	return nil, nil
}

func (stubProductService) DeleteProduct(context.Context, string) error { return nil }

func (stubProductService) ListProducts(context.Context, productsvc.ListProductsInput) (*productsvc.ProductListDTO, error) {
	return &productsvc.ProductListDTO{}, nil
}

func (stubProductService) ExportProducts(context.Context, []string) ([]byte, error) {
	return []byte("Product name\n"), nil
}

func (stubProductService) TerminateExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{App: config.AppConfig{Env: "test", Port: "0"}}
	logg := logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard})
	return NewRouter(cfg, logg, stubPinger{}, stubPinger{}, stubProductService{}, prometheus.NewRegistry())
}

func TestRouterWiresRoutes(t *testing.T) {
	router := newTestRouter(t)

	cases := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/health/live", "", http.StatusOK},
		{http.MethodGet, "/health/ready", "", http.StatusOK},
		{http.MethodGet, "/metrics", "", http.StatusOK},
		{http.MethodGet, "/api/v1/products", "", http.StatusOK},
		{http.MethodPost, "/api/v1/products", `{"name":"X","baseType":"root"}`, http.StatusCreated},
		{http.MethodGet, "/api/v1/products/some-ident", "", http.StatusOK},
		{http.MethodDelete, "/api/v1/products/some-ident", "", http.StatusNoContent},
		{http.MethodGet, "/api/v1/products/unknown/nested", "", http.StatusNotFound},
	}

	for _, c := range cases {
		var body io.Reader
		if c.body != "" {
			body = strings.NewReader(c.body)
		}
		req := httptest.NewRequest(c.method, c.path, body)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != c.want {
			t.Errorf("%s %s: expected %d, got %d (%s)", c.method, c.path, c.want, rec.Code, rec.Body.String())
		}
	}
}

func TestRouterExportRouteTakesPrecedenceOverIdent(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/export?ids=a", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "text/csv" {
		t.Fatalf("expected csv response, got content type %q", got)
	}
}

func TestRouterEchoesRequestID(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-Id"); got != "req-123" {
		t.Fatalf("expected request id to be echoed, got %q", got)
	}
}
