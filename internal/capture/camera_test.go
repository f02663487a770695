package capture

import "testing"

func TestNewCamera(t *testing.T) {
	for _, deviceID := range []int{0, 1, 2} {
		cam := NewCamera(Options{Device: deviceID})

		if cam == nil {
			t.Fatal("NewCamera returned nil")
		}
		if got := cam.FPS(); got != DefaultFPS {
			t.Errorf("device %d: FPS() = %d, want %d (default)", deviceID, got, DefaultFPS)
		}
		if cam.IsOpen() {
			t.Errorf("device %d: camera should not be running initially", deviceID)
		}
	}
}

func TestCamera_SetFPS(t *testing.T) {
	cam := NewCamera(DefaultOptions())

	tests := []struct {
		name    string
		fps     int
		wantFPS int
	}{
		{name: "set to 15", fps: 15, wantFPS: 15},
		{name: "set to 60", fps: 60, wantFPS: 60},
		{name: "set to 0 should keep previous", fps: 0, wantFPS: 60},
		{name: "set to negative should keep previous", fps: -5, wantFPS: 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam.SetFPS(tt.fps)

			if got := cam.FPS(); got != tt.wantFPS {
				t.Errorf("FPS() = %d, want %d", got, tt.wantFPS)
			}
		})
	}
}

func TestOptions_WithDefaults(t *testing.T) {
	tests := []struct {
		name string
		in   Options
		want Options
	}{
		{"zero", Options{}, DefaultOptions()},
		{"device kept", Options{Device: 2}, Options{Device: 2, Width: DefaultWidth, Height: DefaultHeight, FPS: DefaultFPS}},
		{"size needs both", Options{Width: 1280}, DefaultOptions()},
		{"explicit", Options{Width: 1280, Height: 720, FPS: 24}, Options{Width: 1280, Height: 720, FPS: 24}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.withDefaults(); got != tt.want {
				t.Errorf("withDefaults() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCamera_ReadFrame_NotOpened(t *testing.T) {
	cam := NewCamera(DefaultOptions())

	if _, err := cam.ReadFrame(); err != ErrCameraNotOpen {
		t.Errorf("ReadFrame() error = %v, want ErrCameraNotOpen", err)
	}
}

func TestCamera_Close_NotOpened(t *testing.T) {
	cam := NewCamera(DefaultOptions())

	if err := cam.Close(); err != nil {
		t.Errorf("Close() on not opened camera should return nil, got: %v", err)
	}
}

func TestFrame_CloseNil(t *testing.T) {
	var f *Frame
	if err := f.Close(); err != nil {
		t.Errorf("Close() on nil frame = %v", err)
	}
}

func TestCamera_OpenClose_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cam := NewCamera(DefaultOptions())

	if err := cam.Open(); err != nil {
		t.Skipf("skipping test - camera not available: %v", err)
	}

	if !cam.IsOpen() {
		t.Error("IsOpen() should return true after Open()")
	}

	frame, err := cam.ReadFrame()
	if err != nil {
		t.Errorf("ReadFrame() failed: %v", err)
	} else {
		if frame.Mat.Empty() {
			t.Error("ReadFrame() returned empty mat")
		}
		if frame.Timestamp <= 0 {
			t.Errorf("Timestamp = %d, want positive", frame.Timestamp)
		}
		frame.Close()
	}

	if err := cam.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}

	if cam.IsOpen() {
		t.Error("IsOpen() should return false after Close()")
	}
}
