// Package orbit converts off-hand gestures into orbit camera parameters.
package orbit

import (
	"math"

	"github.com/ayusman/mudra/internal/gesture"
)

// Gains and limits for the off-hand camera gestures.
const (
	RotateGain = 4.0
	PanGain    = 20.0

	// MaxPitch keeps the camera short of the poles.
	MaxPitch = math.Pi / 2.1

	spreadMin = 0.05
	spreadMax = 0.35
	zoomMin   = 10.0
	zoomMax   = 70.0
)

// State is the camera pose consumed by the renderer.
type State struct {
	Yaw   float64    `json:"yaw"`
	Pitch float64    `json:"pitch"`
	Pan   [2]float64 `json:"pan"`
	Zoom  float64    `json:"zoom"`
}

// DefaultState is the pose on startup.
func DefaultState() State {
	return State{Yaw: 0.5, Pitch: 0.5, Zoom: 50}
}

// Controller integrates classified frames into a camera State.
//
// Rotation and zoom persist while the off hand is out of view. Pan is a
// per-frame nudge and drops to zero whenever it is not being driven.
type Controller struct {
	state State
}

// NewController creates a controller starting at initial.
func NewController(initial State) *Controller {
	initial.Pitch = clampPitch(initial.Pitch)
	return &Controller{state: initial}
}

// State returns the current camera pose.
func (c *Controller) State() State {
	return c.state
}

// Update applies one classified frame and returns the new pose.
func (c *Controller) Update(f gesture.Frame) State {
	off := f.Off
	c.state.Pan = [2]float64{}

	if !off.Detected {
		return c.state
	}

	switch {
	case off.Fist:
		if off.HasDelta {
			c.state.Yaw -= off.Delta.X * RotateGain
			c.state.Pitch = clampPitch(c.state.Pitch - off.Delta.Y*RotateGain)
		}
	case off.Panning:
		if off.HasDelta {
			c.state.Pan = [2]float64{off.Delta.X * PanGain, off.Delta.Y * PanGain}
		}
	default:
		c.state.Zoom = ZoomForSpread(off.Spread)
	}

	return c.state
}

// ZoomForSpread maps the index-to-pinky spread onto a camera distance. A
// wider hand brings the camera closer.
func ZoomForSpread(spread float64) float64 {
	t := (spread - spreadMin) / (spreadMax - spreadMin)
	t = math.Max(0, math.Min(1, t))
	return zoomMax - t*(zoomMax-zoomMin)
}

func clampPitch(p float64) float64 {
	return math.Max(-MaxPitch, math.Min(MaxPitch, p))
}
