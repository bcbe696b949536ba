package out

import (
	"bufio"
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"airpulse/internal/modules/device/domain"
	deviceout "airpulse/internal/modules/device/port/out"
	apperrors "airpulse/internal/platform/errors"
)

type runner func(ctx context.Context, bin string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, bin string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, bin, args...).CombinedOutput()
}

// BluetoothctlRadio drives BlueZ through the bluetoothctl CLI.
type BluetoothctlRadio struct {
	bin      string
	run      runner
	lookPath func(string) (string, error)
}

func NewBluetoothctlRadio(bin string) deviceout.Radio {
	if bin == "" {
		bin = "bluetoothctl"
	}
	return &BluetoothctlRadio{bin: bin, run: execRunner, lookPath: exec.LookPath}
}

func (r *BluetoothctlRadio) resolve() (string, error) {
	path, err := r.lookPath(r.bin)
	if err != nil {
		return "", apperrors.Device("Bluetooth is unavailable: %s not found", r.bin)
	}
	return path, nil
}

func (r *BluetoothctlRadio) Scan(ctx context.Context, window time.Duration) ([]domain.Device, error) {
	bin, err := r.resolve()
	if err != nil {
		return nil, err
	}
	secs := int(window.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	scanCtx, cancel := context.WithTimeout(ctx, window+5*time.Second)
	defer cancel()
	if out, err := r.run(scanCtx, bin, "--timeout", strconv.Itoa(secs), "scan", "on"); err != nil && ctx.Err() == nil {
		return nil, apperrors.Device("scan failed: %s", lastLine(out, err))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := r.run(ctx, bin, "devices")
	if err != nil {
		return nil, apperrors.Device("list devices: %s", lastLine(out, err))
	}
	return ParseDevices(string(out)), nil
}

func (r *BluetoothctlRadio) Connect(ctx context.Context, id string) error {
	bin, err := r.resolve()
	if err != nil {
		return err
	}
	out, err := r.run(ctx, bin, "connect", id)
	if strings.Contains(string(out), "Connection successful") {
		return nil
	}
	return apperrors.Device("Could not connect to %s: %s", id, lastLine(out, err))
}

// ParseDevices reads `bluetoothctl devices` output, one
// "Device <address> <name>" per line.
func ParseDevices(output string) []domain.Device {
	var devices []domain.Device
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 || fields[0] != "Device" {
			continue
		}
		name := ""
		if len(fields) > 2 {
			name = strings.Join(fields[2:], " ")
		}
		devices = append(devices, domain.Device{ID: fields[1], Name: name})
	}
	return devices
}

func lastLine(out []byte, err error) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if last := strings.TrimSpace(lines[len(lines)-1]); last != "" {
		return last
	}
	if err != nil {
		return err.Error()
	}
	return "no output"
}
