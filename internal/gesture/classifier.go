// Package gesture turns per-frame hand landmarks into cursor positions and
// discrete gesture flags for the dominant and off hand.
package gesture

import (
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/detector"
)

// GridSize is the side length of the editable voxel volume.
const GridSize = 32

// Thresholds are distances in normalized landmark space.
type Thresholds struct {
	Pinch float64 `yaml:"pinch"` // thumb tip to index tip
	Fist  float64 `yaml:"fist"`  // mean wrist to non-thumb fingertips
	Pan   float64 `yaml:"pan"`   // mean thumb tip to index and middle tips
}

// Projection maps a normalized fingertip into grid space. The factors are
// tuned by hand, not derived from camera intrinsics.
type Projection struct {
	Planar float64 `yaml:"planar"`
	Depth  float64 `yaml:"depth"`
}

// Config configures a Classifier.
type Config struct {
	DominantHand string     `yaml:"dominant_hand"`
	OffHand      string     `yaml:"off_hand"`
	Thresholds   Thresholds `yaml:"thresholds"`
	Projection   Projection `yaml:"projection"`
}

// DefaultConfig returns the stock configuration: right hand edits, left hand
// drives the camera.
func DefaultConfig() Config {
	return Config{
		DominantHand: detector.Right,
		OffHand:      detector.Left,
		Thresholds: Thresholds{
			Pinch: 0.05,
			Fist:  0.1,
			Pan:   0.06,
		},
		Projection: Projection{
			Planar: 1.5,
			Depth:  3,
		},
	}
}

// DominantState is the classification of the editing hand.
type DominantState struct {
	Detected bool    `json:"detected"`
	Cursor   r3.Vec  `json:"-"`
	Pinching bool    `json:"pinching"`
	Distance float64 `json:"-"`
}

// OffState is the classification of the camera hand.
type OffState struct {
	Detected bool   `json:"detected"`
	Cursor   r3.Vec `json:"-"`
	Fist     bool   `json:"fist"`
	Panning  bool   `json:"panning"`
	// Delta is the wrist movement since the previous frame. HasDelta is false
	// on the first frame after the hand appears.
	Delta    r2.Vec  `json:"-"`
	HasDelta bool    `json:"-"`
	Spread   float64 `json:"-"`
}

// Gesturing reports whether the off hand is rotating or panning.
func (s OffState) Gesturing() bool {
	return s.Fist || s.Panning
}

// Frame is the classified result of one detector frame.
type Frame struct {
	Timestamp int64         `json:"timestamp"`
	Dominant  DominantState `json:"dominant"`
	Off       OffState      `json:"off"`
}

// AnyHand reports whether either hand was detected.
func (f Frame) AnyHand() bool {
	return f.Dominant.Detected || f.Off.Detected
}

// Classifier classifies hands frame by frame. It carries the previous off-hand
// wrist position between calls and is not safe for concurrent use.
type Classifier struct {
	config  Config
	lastRef *r2.Vec
}

// NewClassifier creates a Classifier with the given configuration.
func NewClassifier(config Config) *Classifier {
	return &Classifier{config: config}
}

// Classify evaluates one frame of detections. Hands are picked by handedness
// label; the first match of each label wins.
func (c *Classifier) Classify(hands []detector.HandLandmarks, timestamp int64) Frame {
	frame := Frame{Timestamp: timestamp}

	if h := detector.FindHand(hands, c.config.DominantHand); h != nil {
		pinch := detector.Distance(h.Points[detector.ThumbTip], h.Points[detector.IndexTip])
		frame.Dominant = DominantState{
			Detected: true,
			Cursor:   c.cursor(h),
			Pinching: pinch < c.config.Thresholds.Pinch,
			Distance: pinch,
		}
	}

	h := detector.FindHand(hands, c.config.OffHand)
	if h == nil {
		c.lastRef = nil
		return frame
	}

	off := OffState{
		Detected: true,
		Cursor:   c.cursor(h),
		Fist:     c.isFist(h),
		Spread:   detector.Distance(h.Points[detector.IndexTip], h.Points[detector.PinkyTip]),
	}
	if !off.Fist {
		off.Panning = c.isPanning(h)
	}

	ref := r2.Vec{X: h.Points[detector.Wrist].X, Y: h.Points[detector.Wrist].Y}
	if c.lastRef != nil {
		off.Delta = r2.Sub(ref, *c.lastRef)
		off.HasDelta = true
	}
	c.lastRef = &ref
	frame.Off = off

	return frame
}

// Reset forgets the carried off-hand reference.
func (c *Classifier) Reset() {
	c.lastRef = nil
}

// Cursor projects a hand's index fingertip into grid space.
func (c *Classifier) cursor(h *detector.HandLandmarks) r3.Vec {
	return Project(h.Points[detector.IndexTip], c.config.Projection)
}

// Project maps a normalized landmark to grid coordinates, mirrored on X and Y
// around the frame centre.
func Project(p detector.Point3D, proj Projection) r3.Vec {
	return r3.Vec{
		X: (0.5 - p.X) * GridSize * proj.Planar,
		Y: (0.5 - p.Y) * GridSize * proj.Planar,
		Z: -p.Z * GridSize * proj.Depth,
	}
}

func (c *Classifier) isFist(h *detector.HandLandmarks) bool {
	wrist := h.Points[detector.Wrist]
	sum := 0.0
	for _, tip := range []int{detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.PinkyTip} {
		sum += detector.Distance(wrist, h.Points[tip])
	}
	return sum/4 < c.config.Thresholds.Fist
}

func (c *Classifier) isPanning(h *detector.HandLandmarks) bool {
	thumb := h.Points[detector.ThumbTip]
	avg := (detector.Distance(thumb, h.Points[detector.IndexTip]) +
		detector.Distance(thumb, h.Points[detector.MiddleTip])) / 2
	return avg < c.config.Thresholds.Pan
}
