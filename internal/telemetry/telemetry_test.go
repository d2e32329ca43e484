package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestSetup_DisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := Setup(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("noop shutdown returned %v", err)
	}
}

func TestSetup_ExplicitlyDisabled(t *testing.T) {
	prev := otel.GetTracerProvider()

	shutdown, err := Setup(context.Background(), Options{Endpoint: "http://collector:4318", Disabled: true})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("noop shutdown returned %v", err)
	}
	if otel.GetTracerProvider() != prev {
		t.Error("expected no global provider to be registered")
	}
}

func TestSetup_Endpoint(t *testing.T) {
	collector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer collector.Close()

	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	shutdown, err := Setup(context.Background(), Options{Endpoint: collector.URL, ServiceVersion: "test"})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	if otel.GetTracerProvider() == prev {
		t.Error("expected a global provider to be registered")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown returned %v", err)
	}
}
