package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
)

func scrape(t *testing.T, handler http.Handler) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusOK)
	}
	return rr.Body.String()
}

func TestInitMetrics(t *testing.T) {
	handler, shutdown, err := InitMetrics()
	if err != nil {
		t.Fatalf("InitMetrics failed: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()
		_ = shutdown(shutdownCtx)
	}()

	if handler == nil || shutdown == nil {
		t.Fatal("expected handler and shutdown to be non-nil")
	}
	if body := scrape(t, handler); body == "" {
		t.Error("handler returned empty body")
	}
}

func TestInitMetrics_CounterAppearsInOutput(t *testing.T) {
	ctx := context.Background()

	handler, shutdown, err := InitMetrics()
	if err != nil {
		t.Fatalf("InitMetrics failed: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()
		_ = shutdown(shutdownCtx)
	}()

	counter, err := otel.Meter("layerplane-test").Int64Counter("layerplane.jobs.created")
	if err != nil {
		t.Fatalf("failed to create counter: %v", err)
	}
	counter.Add(ctx, 42)

	body := scrape(t, handler)
	if !strings.Contains(body, "layerplane_jobs_created") {
		t.Errorf("expected layerplane_jobs_created in output, got:\n%s", body)
	}
	if !strings.Contains(body, "42") {
		t.Errorf("expected value 42 in output, got:\n%s", body)
	}
}

func TestInitMetrics_CanBeCalledTwice(t *testing.T) {
	for i := 0; i < 2; i++ {
		_, shutdown, err := InitMetrics()
		if err != nil {
			t.Fatalf("InitMetrics call %d failed: %v", i+1, err)
		}
		_ = shutdown(context.Background())
	}
}
