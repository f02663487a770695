package capture

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// MockCamera plays back pre-recorded frames for testing.
// Frame i is stamped with timestamps[i] when provided, otherwise with a
// strictly increasing counter.
type MockCamera struct {
	frames     []*gocv.Mat
	timestamps []int64
	index      int
	served     int64
	loop       bool
	fps        int
	mu         sync.Mutex
	running    bool
}

// NewMockCamera creates a MockCamera over frames.
func NewMockCamera(frames []*gocv.Mat, loop bool) *MockCamera {
	return &MockCamera{
		frames: frames,
		loop:   loop,
		fps:    DefaultFPS,
	}
}

func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = true
	c.index = 0
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	return nil
}

func (c *MockCamera) ReadFrame() (*Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil, ErrCameraNotOpen
	}

	if len(c.frames) == 0 {
		return nil, fmt.Errorf("no frames available")
	}

	if c.index >= len(c.frames) {
		if !c.loop {
			return nil, fmt.Errorf("no more frames")
		}
		c.index = 0
	}

	c.served++
	ts := c.served
	if c.index < len(c.timestamps) {
		ts = c.timestamps[c.index]
	}

	// Clone the frame so the original isn't modified
	frame := &Frame{Mat: c.frames[c.index].Clone(), Timestamp: ts}
	c.index++

	return frame, nil
}

func (c *MockCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fps = fps
}

func (c *MockCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// SetFrames replaces the frame sequence
func (c *MockCamera) SetFrames(frames []*gocv.Mat) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = frames
	c.index = 0
}

// SetTimestamps pins the timestamps reported for each frame index.
// Repeating a value simulates the device returning the same video frame twice.
func (c *MockCamera) SetTimestamps(ts []int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timestamps = ts
}

// Reset restarts playback from the beginning
func (c *MockCamera) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = 0
}
