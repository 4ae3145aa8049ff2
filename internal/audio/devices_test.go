// SPDX-License-Identifier: MIT
package audio

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"talkulizer/internal/config"

	"github.com/gordonklaus/portaudio"
)

var errMock = errors.New("mock error")

func mockDevices(t *testing.T, devices []*portaudio.DeviceInfo, err error) {
	t.Helper()
	origDevices := paLibDevicesFunc
	origDefault := paLibDefaultInputDeviceFunc
	t.Cleanup(func() {
		paLibDevicesFunc = origDevices
		paLibDefaultInputDeviceFunc = origDefault
	})

	paLibDevicesFunc = func() ([]*portaudio.DeviceInfo, error) {
		return devices, err
	}
	paLibDefaultInputDeviceFunc = func() (*portaudio.DeviceInfo, error) {
		for _, d := range devices {
			if d.MaxInputChannels > 0 {
				return d, nil
			}
		}
		return nil, errMock
	}
}

func testDevices() []*portaudio.DeviceInfo {
	return []*portaudio.DeviceInfo{
		{Name: "Speakers", MaxOutputChannels: 2, DefaultSampleRate: 48000},
		{
			Name:                    "Microphone",
			MaxInputChannels:        1,
			DefaultSampleRate:       44100,
			DefaultLowInputLatency:  5 * time.Millisecond,
			DefaultHighInputLatency: 20 * time.Millisecond,
		},
		{Name: "Interface", MaxInputChannels: 2, MaxOutputChannels: 2, DefaultSampleRate: 96000},
	}
}

func TestInitializeTerminate(t *testing.T) {
	origInit, origTerm := paLibInitialize, paLibTerminate
	t.Cleanup(func() { paLibInitialize, paLibTerminate = origInit, origTerm })

	paLibInitialize = func() error { return errMock }
	paLibTerminate = func() error { return errMock }

	if err := Initialize(); !errors.Is(err, errMock) {
		t.Errorf("Initialize() error = %v, want wrapped mock error", err)
	}
	if err := Terminate(); !errors.Is(err, errMock) {
		t.Errorf("Terminate() error = %v, want wrapped mock error", err)
	}

	paLibInitialize = func() error { return nil }
	paLibTerminate = func() error { return nil }
	if err := Initialize(); err != nil {
		t.Errorf("Initialize() error = %v", err)
	}
	if err := Terminate(); err != nil {
		t.Errorf("Terminate() error = %v", err)
	}
}

func TestHostDevices(t *testing.T) {
	mockDevices(t, testDevices(), nil)

	devices, err := HostDevices()
	if err != nil {
		t.Fatalf("HostDevices error: %v", err)
	}
	if len(devices) != 3 {
		t.Fatalf("got %d devices, want 3", len(devices))
	}
	for i, d := range devices {
		if d.ID != i {
			t.Errorf("Device ID mismatch: got %d, want %d", d.ID, i)
		}
	}
	if d := devices[1]; d.Name != "Microphone" || d.LowInputLatency != 5*time.Millisecond || d.HighInputLatency != 20*time.Millisecond {
		t.Errorf("device 1 = %+v", d)
	}
}

func TestHostDevicesError(t *testing.T) {
	mockDevices(t, nil, errMock)

	if _, err := HostDevices(); !errors.Is(err, errMock) {
		t.Errorf("expected mock error, got %v", err)
	}
}

func TestHostDevicesNilSlice(t *testing.T) {
	mockDevices(t, nil, nil)

	devices, err := HostDevices()
	if err != nil {
		t.Fatalf("HostDevices error: %v", err)
	}
	if devices == nil || len(devices) != 0 {
		t.Errorf("HostDevices() = %v, want empty non-nil slice", devices)
	}
}

func TestInputDevice(t *testing.T) {
	tests := []struct {
		desc     string
		id       int
		wantName string
		wantErr  string
	}{
		{"Default", config.MinDeviceID, "Microphone", ""},
		{"Input device", 1, "Microphone", ""},
		{"Duplex device", 2, "Interface", ""},
		{"Output only", 0, "", "does not support input"},
		{"Out of range", 3, "", "invalid device ID"},
		{"Negative", -2, "", "invalid device ID"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			mockDevices(t, testDevices(), nil)

			got, err := InputDevice(tt.id)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("InputDevice(%d) error = %v, want %q", tt.id, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("InputDevice(%d) error = %v", tt.id, err)
			}
			if got.Name != tt.wantName {
				t.Errorf("InputDevice(%d) = %q, want %q", tt.id, got.Name, tt.wantName)
			}
		})
	}
}

func TestInputDeviceNoDefault(t *testing.T) {
	mockDevices(t, testDevices()[:1], nil)

	_, err := InputDevice(config.MinDeviceID)
	if err == nil || !strings.Contains(err.Error(), "no default input device") {
		t.Errorf("expected no default input device error, got %v", err)
	}
}

func TestNewEngineInvalidDevice(t *testing.T) {
	mockDevices(t, testDevices(), nil)

	cfg := testAudioConfig(1, 0)
	cfg.InputDevice = 0
	if _, err := NewEngine(cfg, &countingProcessor{}); err == nil {
		t.Error("expected error for an output-only device")
	}
}

func TestNewEngineLatency(t *testing.T) {
	tests := []struct {
		lowLatency bool
		want       time.Duration
	}{
		{true, 5 * time.Millisecond},
		{false, 20 * time.Millisecond},
	}

	for _, tt := range tests {
		mockDevices(t, testDevices(), nil)

		cfg := testAudioConfig(1, 0)
		cfg.InputDevice = 1
		cfg.LowLatency = tt.lowLatency
		engine, err := NewEngine(cfg, &countingProcessor{})
		if err != nil {
			t.Fatal(err)
		}
		if engine.inputLatency != tt.want {
			t.Errorf("low=%v: latency = %v, want %v", tt.lowLatency, engine.inputLatency, tt.want)
		}
	}
}

func TestDeviceDirection(t *testing.T) {
	tests := []struct {
		in, out int
		want    string
	}{
		{1, 1, "Input/Output"},
		{2, 0, "Input"},
		{0, 2, "Output"},
		{0, 0, "None"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			d := Device{MaxInputChannels: tt.in, MaxOutputChannels: tt.out}
			if got := d.Direction(); got != tt.want {
				t.Errorf("Direction() = %q, want %q", got, tt.want)
			}
			if d.IsInput() != (tt.in > 0) {
				t.Errorf("IsInput() = %v", d.IsInput())
			}
		})
	}
}

func TestListDevices(t *testing.T) {
	mockDevices(t, testDevices(), nil)

	var buf bytes.Buffer
	if err := ListDevices(&buf); err != nil {
		t.Fatalf("ListDevices error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Available Audio Devices",
		"[0] Speakers (Output)",
		"[1] Microphone (Input)",
		"[2] Interface (Input/Output)",
		"Default sample rate: 44100 Hz",
		"Latency: Low=5.00ms, High=20.00ms",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestListDevicesError(t *testing.T) {
	mockDevices(t, nil, errMock)

	if err := ListDevices(&bytes.Buffer{}); !errors.Is(err, errMock) {
		t.Errorf("expected mock error, got %v", err)
	}
}
