package service

import (
	"context"
	"strings"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"airpulse/internal/modules/device/domain"
	deviceout "airpulse/internal/modules/device/port/out"
	apperrors "airpulse/internal/platform/errors"
	"airpulse/internal/platform/logging"
)

type DeviceService struct {
	radio  deviceout.Radio
	window time.Duration
	logger hclog.Logger

	mu   sync.Mutex
	last map[string]domain.Device
}

func NewDeviceService(radio deviceout.Radio, window time.Duration, logger hclog.Logger) *DeviceService {
	if window <= 0 {
		window = 8 * time.Second
	}
	return &DeviceService{radio: radio, window: window, logger: logging.OrDiscard(logger), last: map[string]domain.Device{}}
}

func (s *DeviceService) Scan(ctx context.Context, window time.Duration) ([]domain.Device, error) {
	if window <= 0 {
		window = s.window
	}
	raw, err := s.radio.Scan(ctx, window)
	if err != nil {
		return nil, err
	}
	discovery := domain.NewDiscovery()
	for _, d := range raw {
		discovery.Observe(d)
	}
	devices := discovery.Devices()

	s.mu.Lock()
	s.last = make(map[string]domain.Device, len(devices))
	for _, d := range devices {
		s.last[d.ID] = d
	}
	s.mu.Unlock()
	s.logger.Info("scan finished", "window", window, "seen", len(raw), "named", len(devices))
	return devices, nil
}

func (s *DeviceService) Connect(ctx context.Context, id string) (domain.Device, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Device{}, apperrors.Invalid("device id is required")
	}
	if err := s.radio.Connect(ctx, id); err != nil {
		s.logger.Warn("connect failed", "id", id, "error", err)
		return domain.Device{}, err
	}
	s.mu.Lock()
	device, ok := s.last[id]
	s.mu.Unlock()
	if !ok {
		device = domain.Device{ID: id, Name: id}
	}
	s.logger.Info("connected", "id", id, "name", device.Name)
	return device, nil
}
