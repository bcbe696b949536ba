package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"airpulse/internal/modules/device/domain"
	"airpulse/internal/modules/device/service"
	apperrors "airpulse/internal/platform/errors"
)

type fakeRadio struct {
	devices    []domain.Device
	window     time.Duration
	connected  []string
	connectErr error
}

func (f *fakeRadio) Scan(_ context.Context, window time.Duration) ([]domain.Device, error) {
	f.window = window
	return f.devices, nil
}

func (f *fakeRadio) Connect(_ context.Context, id string) error {
	f.connected = append(f.connected, id)
	return f.connectErr
}

func TestScanFiltersAndConnectNamesDevice(t *testing.T) {
	t.Parallel()
	radio := &fakeRadio{devices: []domain.Device{
		{ID: "01", Name: "AirPulse"},
		{ID: "02"},
		{ID: "01", Name: "AirPulse"},
	}}
	svc := service.NewDeviceService(radio, 8*time.Second, nil)
	devices, err := svc.Scan(context.Background(), 0)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(devices) != 1 || radio.window != 8*time.Second {
		t.Fatalf("unexpected scan result %+v window=%s", devices, radio.window)
	}
	device, err := svc.Connect(context.Background(), "01")
	if err != nil || device.Name != "AirPulse" {
		t.Fatalf("connect: %+v %v", device, err)
	}
	if _, err := svc.Connect(context.Background(), " "); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if len(radio.connected) != 1 {
		t.Fatalf("blank id must not reach the radio")
	}
}
