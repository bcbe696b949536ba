package dto

import "time"

type ScanInput struct {
	Window time.Duration
}

type DeviceOutput struct {
	ID   string
	Name string
}
