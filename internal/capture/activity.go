package capture

import (
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Idle throttling. With no hands in view and a still picture for IdleAfter,
// the pipeline drops to IdleFPS; any motion or hand brings it back.
const (
	IdleFPS   = 5
	IdleAfter = 2 * time.Second

	// DefaultMotionThreshold is the percentage of changed pixels that counts
	// as motion.
	DefaultMotionThreshold = 1.0
)

// Frames are compared at thumbnail size; the blur kernel is scaled to match.
const (
	motionWidth   = 160
	motionHeight  = 90
	motionBlur    = 7
	diffThreshold = 25
)

// ActivityMonitor decides when the capture loop may idle. It compares each
// frame against the previous one by blurred grayscale differencing.
type ActivityMonitor struct {
	mu         sync.Mutex
	threshold  float64
	prev       gocv.Mat
	hasPrev    bool
	lastActive time.Time
	idle       bool
	now        func() time.Time
}

// NewActivityMonitor creates a monitor that treats a change above threshold
// percent of pixels as motion. Non-positive thresholds use the default.
func NewActivityMonitor(threshold float64) *ActivityMonitor {
	if threshold <= 0 {
		threshold = DefaultMotionThreshold
	}
	return &ActivityMonitor{
		threshold:  threshold,
		prev:       gocv.NewMat(),
		lastActive: time.Now(),
		now:        time.Now,
	}
}

// Observe records one frame and whether any hand was detected in it. It
// returns the idle state and whether that state just changed.
func (m *ActivityMonitor) Observe(frame *gocv.Mat, handsSeen bool) (idle, changed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	active := handsSeen
	if !active {
		active = m.motion(frame) > m.threshold
	} else {
		// Keep the baseline fresh so the first still frame after the hands
		// leave is not compared against a stale picture.
		m.motion(frame)
	}
	return m.update(active)
}

func (m *ActivityMonitor) update(active bool) (idle, changed bool) {
	now := m.now()
	if active {
		m.lastActive = now
	}

	next := !active && now.Sub(m.lastActive) >= IdleAfter
	changed = next != m.idle
	m.idle = next
	return next, changed
}

// motion returns the percentage of thumbnail pixels that changed since the
// previous call. The first frame after a reset reports zero.
func (m *ActivityMonitor) motion(frame *gocv.Mat) float64 {
	if frame == nil || frame.Empty() {
		return 0
	}

	small := gocv.NewMat()
	defer small.Close()
	gocv.Resize(*frame, &small, image.Pt(motionWidth, motionHeight), 0, 0, gocv.InterpolationArea)

	gray := gocv.NewMat()
	defer gray.Close()
	if small.Channels() > 1 {
		gocv.CvtColor(small, &gray, gocv.ColorBGRToGray)
	} else {
		small.CopyTo(&gray)
	}
	gocv.GaussianBlur(gray, &gray, image.Pt(motionBlur, motionBlur), 0, 0, gocv.BorderDefault)

	if !m.hasPrev {
		gray.CopyTo(&m.prev)
		m.hasPrev = true
		return 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(gray, m.prev, &diff)
	gocv.Threshold(diff, &diff, diffThreshold, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(diff)) / float64(diff.Rows()*diff.Cols()) * 100
	gray.CopyTo(&m.prev)
	return changed
}

// Idle reports the current idle state.
func (m *ActivityMonitor) Idle() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.idle
}

// Reset forgets the baseline frame and leaves idle.
func (m *ActivityMonitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hasPrev = false
	m.idle = false
	m.lastActive = m.now()
}

// Close releases the baseline frame.
func (m *ActivityMonitor) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.prev.Empty() {
		m.prev.Close()
		m.prev = gocv.NewMat()
	}
	m.hasPrev = false
}
