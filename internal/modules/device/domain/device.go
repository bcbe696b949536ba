package domain

import "strings"

type Device struct {
	ID   string
	Name string
}

// Named reports whether the device advertised a real name. Some stacks use
// the address itself as a placeholder.
func (d Device) Named() bool {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return false
	}
	placeholder := strings.ReplaceAll(d.ID, ":", "-")
	return !strings.EqualFold(name, d.ID) && !strings.EqualFold(name, placeholder)
}

// Discovery accumulates scan results: unnamed devices are dropped and each
// id is kept once, in first-seen order.
type Discovery struct {
	seen    map[string]struct{}
	devices []Device
}

func NewDiscovery() *Discovery {
	return &Discovery{seen: map[string]struct{}{}}
}

func (d *Discovery) Observe(device Device) bool {
	device.ID = strings.TrimSpace(device.ID)
	device.Name = strings.TrimSpace(device.Name)
	if device.ID == "" || !device.Named() {
		return false
	}
	if _, ok := d.seen[device.ID]; ok {
		return false
	}
	d.seen[device.ID] = struct{}{}
	d.devices = append(d.devices, device)
	return true
}

func (d *Discovery) Devices() []Device {
	return append([]Device(nil), d.devices...)
}
