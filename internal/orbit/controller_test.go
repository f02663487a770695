package orbit

import (
	"math"
	"testing"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

const epsilon = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < epsilon }

// drive classifies hands in sequence and feeds each frame to the controller.
func drive(c *Controller, cl *gesture.Classifier, frames ...[]detector.HandLandmarks) State {
	var s State
	for i, hands := range frames {
		s = c.Update(cl.Classify(hands, int64(i+1)))
	}
	return s
}

func one(h detector.HandLandmarks) []detector.HandLandmarks {
	return []detector.HandLandmarks{h}
}

func TestDefaultState(t *testing.T) {
	s := NewController(DefaultState()).State()
	if s.Yaw != 0.5 || s.Pitch != 0.5 || s.Zoom != 50 || s.Pan != [2]float64{} {
		t.Errorf("initial state = %+v", s)
	}
}

func TestController_FistRotates(t *testing.T) {
	c := NewController(DefaultState())
	cl := gesture.NewClassifier(gesture.DefaultConfig())
	fist := detector.FistLandmarks(detector.Left)

	s := drive(c, cl, one(fist))
	if s.Yaw != 0.5 || s.Pitch != 0.5 {
		t.Fatalf("first fist frame should only set the reference, got %+v", s)
	}

	s = drive(c, cl, one(detector.Shift(fist, 0.05, -0.02)))
	if !near(s.Yaw, 0.5-0.05*RotateGain) {
		t.Errorf("Yaw = %f, want %f", s.Yaw, 0.5-0.05*RotateGain)
	}
	if !near(s.Pitch, 0.5+0.02*RotateGain) {
		t.Errorf("Pitch = %f, want %f", s.Pitch, 0.5+0.02*RotateGain)
	}
	if s.Zoom != 50 {
		t.Errorf("fist must not change zoom, got %f", s.Zoom)
	}
}

func TestController_PitchClamp(t *testing.T) {
	c := NewController(DefaultState())
	cl := gesture.NewClassifier(gesture.DefaultConfig())
	fist := detector.FistLandmarks(detector.Left)

	check := func(step int, s State) {
		t.Helper()
		if s.Pitch < -MaxPitch || s.Pitch > MaxPitch {
			t.Fatalf("step %d: pitch %f escaped the clamp", step, s.Pitch)
		}
	}

	// Dragging up lowers the wrist Y each frame, which raises pitch.
	var s State
	for i := 0; i < 20; i++ {
		s = drive(c, cl, one(detector.Shift(fist, 0, -0.05*float64(i))))
		check(i, s)
	}
	if !near(s.Pitch, MaxPitch) {
		t.Errorf("Pitch = %f, want clamp at %f", s.Pitch, MaxPitch)
	}

	for i := 0; i < 40; i++ {
		s = drive(c, cl, one(detector.Shift(fist, 0, 0.05*float64(i))))
		check(i, s)
	}
	if !near(s.Pitch, -MaxPitch) {
		t.Errorf("Pitch = %f, want clamp at %f", s.Pitch, -MaxPitch)
	}

	if got := NewController(State{Pitch: 10}).State().Pitch; !near(got, MaxPitch) {
		t.Errorf("initial pitch not clamped: %f", got)
	}
}

func TestController_PanIsSetNotAccumulated(t *testing.T) {
	c := NewController(DefaultState())
	cl := gesture.NewClassifier(gesture.DefaultConfig())
	pan := detector.PanLandmarks(detector.Left)

	drive(c, cl, one(pan))
	s := drive(c, cl, one(detector.Shift(pan, 0.01, 0.02)))
	want := [2]float64{0.01 * PanGain, 0.02 * PanGain}
	if !near(s.Pan[0], want[0]) || !near(s.Pan[1], want[1]) {
		t.Fatalf("Pan = %v, want %v", s.Pan, want)
	}

	s = drive(c, cl, one(detector.Shift(pan, 0.02, 0.04)))
	if !near(s.Pan[0], want[0]) || !near(s.Pan[1], want[1]) {
		t.Errorf("Pan should reflect the latest delta only, got %v", s.Pan)
	}

	s = drive(c, cl, one(detector.Shift(pan, 0.02, 0.04)))
	if s.Pan != [2]float64{} {
		t.Errorf("stationary pan hand should give zero pan, got %v", s.Pan)
	}
}

func TestController_Zoom(t *testing.T) {
	tests := []struct {
		spread float64
		want   float64
	}{
		{0.0, 70},
		{0.05, 70},
		{0.20, 40},
		{0.35, 10},
		{0.9, 10},
	}

	for _, tt := range tests {
		if got := ZoomForSpread(tt.spread); !near(got, tt.want) {
			t.Errorf("ZoomForSpread(%f) = %f, want %f", tt.spread, got, tt.want)
		}
	}

	c := NewController(DefaultState())
	cl := gesture.NewClassifier(gesture.DefaultConfig())
	open := detector.OpenHandLandmarks(detector.Left)
	spread := detector.Distance(open.Points[detector.IndexTip], open.Points[detector.PinkyTip])

	s := drive(c, cl, one(open))
	if !near(s.Zoom, ZoomForSpread(spread)) {
		t.Errorf("Zoom = %f, want %f", s.Zoom, ZoomForSpread(spread))
	}
}

func TestController_HandAbsent(t *testing.T) {
	c := NewController(DefaultState())
	cl := gesture.NewClassifier(gesture.DefaultConfig())
	fist := detector.FistLandmarks(detector.Left)
	pan := detector.PanLandmarks(detector.Left)

	drive(c, cl, one(fist), one(detector.Shift(fist, 0.05, 0.05)))
	rotated := c.State()

	drive(c, cl, one(pan), one(detector.Shift(pan, 0.01, 0)))
	if c.State().Pan == [2]float64{} {
		t.Fatal("expected non-zero pan before the hand leaves")
	}

	s := drive(c, cl, nil)
	if s.Pan != [2]float64{} {
		t.Errorf("pan should reset when the off hand is absent, got %v", s.Pan)
	}
	if s.Yaw != rotated.Yaw || s.Pitch != rotated.Pitch || s.Zoom != rotated.Zoom {
		t.Errorf("rotation and zoom are sticky: got %+v, want %+v", s, rotated)
	}

	// Returning hand starts a fresh reference: no jump from the old position.
	s = drive(c, cl, one(detector.Shift(fist, 0.3, 0.3)))
	if s.Yaw != rotated.Yaw || s.Pitch != rotated.Pitch {
		t.Errorf("first frame after return must not rotate, got %+v", s)
	}
}

func TestController_DominantHandIgnored(t *testing.T) {
	c := NewController(DefaultState())
	cl := gesture.NewClassifier(gesture.DefaultConfig())
	fist := detector.FistLandmarks(detector.Right)

	s := drive(c, cl, one(fist), one(detector.Shift(fist, 0.1, 0.1)))
	if s != DefaultState() {
		t.Errorf("dominant hand must not move the camera, got %+v", s)
	}
}
