package out

import (
	"context"
	"net/http"

	endpointout "airpulse/internal/modules/endpoint/port/out"
	"airpulse/internal/platform/httpapi"
)

type HTTPProber struct {
	client *http.Client
}

func NewHTTPProber(client *http.Client) endpointout.Prober {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPProber{client: client}
}

// Probe issues GET {baseURL}/health. Any 2xx is healthy; the body is ignored.
func (p *HTTPProber) Probe(ctx context.Context, baseURL string) error {
	return httpapi.New(baseURL, httpapi.WithHTTPClient(p.client)).GetJSON(ctx, "/health", nil)
}
