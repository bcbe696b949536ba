package out

import "context"

// Prober checks whether the backend rooted at baseURL is reachable.
type Prober interface {
	Probe(ctx context.Context, baseURL string) error
}
