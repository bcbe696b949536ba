package in

import (
	"context"
	"time"

	"airpulse/internal/modules/device/dto"
	devicein "airpulse/internal/modules/device/port/in"
)

type CLIHandler struct {
	usecase devicein.Usecase
}

func NewCLIHandler(usecase devicein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Scan(ctx context.Context, window time.Duration) ([]dto.DeviceOutput, error) {
	return h.usecase.Scan(ctx, dto.ScanInput{Window: window})
}

func (h CLIHandler) Connect(ctx context.Context, id string) (dto.DeviceOutput, error) {
	return h.usecase.Connect(ctx, id)
}
