// Package detector provides hand-landmark detection interfaces and types.
package detector

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Handedness labels reported by the landmark model.
const (
	Left  = "Left"
	Right = "Right"
)

// Point3D is a landmark position in normalized image coordinates.
// X and Y are in [0,1] across the frame; Z is relative depth with the
// wrist as reference (smaller is closer to the camera).
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks is one detected hand: 21 landmarks plus its handedness label.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Distance returns the Euclidean distance between two landmarks.
func Distance(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// FindHand returns the first hand carrying the given handedness label.
// Detection may report the same label twice; later duplicates are ignored.
func FindHand(hands []HandLandmarks, handedness string) *HandLandmarks {
	for i := range hands {
		if hands[i].Handedness == handedness {
			return &hands[i]
		}
	}
	return nil
}
