package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls reports how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// OpenHandLandmarks returns a relaxed open hand: fingers extended, thumb out
// to the side. It is neither a pinch, a fist nor a pan pose.
func OpenHandLandmarks(handedness string) HandLandmarks {
	h := HandLandmarks{
		Handedness: handedness,
		Score:      0.95,
	}

	h.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	h.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	h.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.70, Z: 0.03}
	h.Points[ThumbIP] = Point3D{X: 0.68, Y: 0.65, Z: 0.03}
	h.Points[ThumbTip] = Point3D{X: 0.73, Y: 0.60, Z: 0.03}

	h.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68, Z: 0.0}
	h.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.55, Z: 0.0}
	h.Points[IndexDIP] = Point3D{X: 0.58, Y: 0.45, Z: 0.0}
	h.Points[IndexTip] = Point3D{X: 0.58, Y: 0.35, Z: 0.0}

	h.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66, Z: 0.0}
	h.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.52, Z: 0.0}
	h.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.40, Z: 0.0}
	h.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.28, Z: 0.0}

	h.Points[RingMCP] = Point3D{X: 0.45, Y: 0.68, Z: 0.0}
	h.Points[RingPIP] = Point3D{X: 0.43, Y: 0.55, Z: 0.0}
	h.Points[RingDIP] = Point3D{X: 0.42, Y: 0.45, Z: 0.0}
	h.Points[RingTip] = Point3D{X: 0.42, Y: 0.35, Z: 0.0}

	h.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.70, Z: 0.0}
	h.Points[PinkyPIP] = Point3D{X: 0.37, Y: 0.60, Z: 0.0}
	h.Points[PinkyDIP] = Point3D{X: 0.35, Y: 0.50, Z: 0.0}
	h.Points[PinkyTip] = Point3D{X: 0.34, Y: 0.42, Z: 0.0}

	return h
}

// PinchLandmarks returns an open hand whose thumb tip sits exactly gap away
// from the index tip along X.
func PinchLandmarks(handedness string, gap float64) HandLandmarks {
	h := OpenHandLandmarks(handedness)
	tip := h.Points[IndexTip]
	h.Points[ThumbTip] = Point3D{X: tip.X + gap, Y: tip.Y, Z: tip.Z}
	return h
}

// FistLandmarks returns a closed hand: every non-thumb fingertip curled in
// to within 0.05 of the wrist.
func FistLandmarks(handedness string) HandLandmarks {
	h := OpenHandLandmarks(handedness)
	w := h.Points[Wrist]
	h.Points[IndexTip] = Point3D{X: w.X + 0.04, Y: w.Y - 0.03, Z: w.Z}
	h.Points[MiddleTip] = Point3D{X: w.X + 0.01, Y: w.Y - 0.04, Z: w.Z}
	h.Points[RingTip] = Point3D{X: w.X - 0.02, Y: w.Y - 0.04, Z: w.Z}
	h.Points[PinkyTip] = Point3D{X: w.X - 0.04, Y: w.Y - 0.03, Z: w.Z}
	return h
}

// PanLandmarks returns an open hand with the thumb tip pressed between the
// index and middle fingertips.
func PanLandmarks(handedness string) HandLandmarks {
	h := OpenHandLandmarks(handedness)
	index := h.Points[IndexTip]
	middle := h.Points[MiddleTip]
	h.Points[ThumbTip] = Point3D{
		X: (index.X + middle.X) / 2,
		Y: (index.Y + middle.Y) / 2,
		Z: (index.Z + middle.Z) / 2,
	}
	return h
}

// Shift returns a copy of h with every landmark translated by (dx, dy).
// The pose is preserved, so gesture classification is unchanged.
func Shift(h HandLandmarks, dx, dy float64) HandLandmarks {
	for i := range h.Points {
		h.Points[i].X += dx
		h.Points[i].Y += dy
	}
	return h
}
