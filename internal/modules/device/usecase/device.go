package usecase

import (
	"context"

	"airpulse/internal/modules/device/domain"
	"airpulse/internal/modules/device/dto"
	devicein "airpulse/internal/modules/device/port/in"
	"airpulse/internal/modules/device/service"
)

type Interactor struct {
	svc *service.DeviceService
}

func NewInteractor(svc *service.DeviceService) devicein.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Scan(ctx context.Context, input dto.ScanInput) ([]dto.DeviceOutput, error) {
	devices, err := i.svc.Scan(ctx, input.Window)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DeviceOutput, 0, len(devices))
	for _, d := range devices {
		out = append(out, toOutput(d))
	}
	return out, nil
}

func (i *Interactor) Connect(ctx context.Context, id string) (dto.DeviceOutput, error) {
	d, err := i.svc.Connect(ctx, id)
	if err != nil {
		return dto.DeviceOutput{}, err
	}
	return toOutput(d), nil
}

func toOutput(d domain.Device) dto.DeviceOutput {
	return dto.DeviceOutput{ID: d.ID, Name: d.Name}
}
