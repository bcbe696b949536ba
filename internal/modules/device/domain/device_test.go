package domain_test

import (
	"testing"

	"airpulse/internal/modules/device/domain"
)

func TestDiscoveryKeepsNamedUniqueDevices(t *testing.T) {
	t.Parallel()
	d := domain.NewDiscovery()
	inputs := []domain.Device{
		{ID: "AA:BB:CC:DD:EE:01", Name: "AirPulse Stethoscope"},
		{ID: "AA:BB:CC:DD:EE:02", Name: ""},
		{ID: "AA:BB:CC:DD:EE:03", Name: "AA-BB-CC-DD-EE-03"},
		{ID: "AA:BB:CC:DD:EE:01", Name: "AirPulse Stethoscope (again)"},
		{ID: "AA:BB:CC:DD:EE:04", Name: " Headphones "},
	}
	for _, in := range inputs {
		d.Observe(in)
	}
	got := d.Devices()
	if len(got) != 2 {
		t.Fatalf("expected 2 devices, got %+v", got)
	}
	if got[0].Name != "AirPulse Stethoscope" || got[1].Name != "Headphones" {
		t.Fatalf("unexpected devices %+v", got)
	}
}
