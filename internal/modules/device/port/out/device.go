package out

import (
	"context"
	"time"

	"airpulse/internal/modules/device/domain"
)

// Radio is the Bluetooth stack. Scan may return duplicates and unnamed
// devices; filtering happens in the service.
type Radio interface {
	Scan(ctx context.Context, window time.Duration) ([]domain.Device, error)
	Connect(ctx context.Context, id string) error
}
