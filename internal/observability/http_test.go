package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func TestTraceSkipper(t *testing.T) {
	t.Parallel()

	e := echo.New()
	tests := map[string]bool{
		"/healthz":             true,
		"/api/orgs/acme/stats": true,
		"/webhooks/acme":       false,
		"/api/orgs/acme":       false,
	}
	for path, want := range tests {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, path, nil), httptest.NewRecorder())
		if got := traceSkipper(c); got != want {
			t.Fatalf("traceSkipper(%s) = %v, want %v", path, got, want)
		}
	}
}

func TestEchoSpanEnrichmentMiddlewareStoresRequestContext(t *testing.T) {
	t.Parallel()

	e := echo.New()
	e.Use(middleware.RequestID())
	e.Use(EchoSpanEnrichmentMiddleware())

	var route, slug, requestID string
	e.POST("/webhooks/:org", func(c echo.Context) error {
		ctx := c.Request().Context()
		route, _ = RouteFromContext(ctx)
		slug, _ = OrgSlugFromContext(ctx)
		requestID, _ = RequestIDFromContext(ctx)
		return c.NoContent(http.StatusAccepted)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhooks/acme", nil))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if route != "/webhooks/:org" || slug != "acme" || requestID == "" {
		t.Fatalf("unexpected context: route=%q slug=%q request_id=%q", route, slug, requestID)
	}
}
