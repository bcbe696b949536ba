package in

import (
	"context"

	"airpulse/internal/modules/device/dto"
)

type Usecase interface {
	Scan(ctx context.Context, input dto.ScanInput) ([]dto.DeviceOutput, error)
	Connect(ctx context.Context, id string) (dto.DeviceOutput, error)
}
