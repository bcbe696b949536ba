package out_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	endpointout "airpulse/internal/modules/endpoint/adapter/out"
)

func TestHTTPProber(t *testing.T) {
	t.Parallel()
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer healthy.Close()
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer broken.Close()

	prober := endpointout.NewHTTPProber(nil)
	if err := prober.Probe(context.Background(), healthy.URL+"/api"); err != nil {
		t.Fatalf("expected healthy probe, got %v", err)
	}
	if err := prober.Probe(context.Background(), broken.URL+"/api"); err == nil {
		t.Fatalf("expected non-2xx probe to fail")
	}
}
