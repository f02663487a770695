// Package app ties the hand tracking pipeline, the voxel scene and the tool
// state together behind one aggregate.
package app

import (
	"errors"
	"log"
	"sync"
	"sync/atomic"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/orbit"
	"github.com/ayusman/mudra/internal/scene"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tool"
)

var (
	// ErrLayerNotFound is returned for layer operations on an unknown id.
	ErrLayerNotFound = errors.New("layer not found")
	// ErrLastLayer is returned when removing the only remaining layer.
	ErrLastLayer = errors.New("cannot remove the last layer")
	// ErrBlankName is returned when renaming a layer to whitespace.
	ErrBlankName = errors.New("layer name is blank")
)

// Config holds configuration options for the application.
type Config struct {
	// Store persists preferences. Nil disables persistence.
	Store        *store.Store
	Capture      capture.Options
	MotionThresh float64
	Detector     detector.Config
	Gesture      gesture.Config
}

// App is the editor aggregate. Every mutation goes through frameMu and ends
// by publishing a fresh RenderState.
type App struct {
	config     Config
	camera     capture.Camera
	detector   detector.Detector
	activity   *capture.ActivityMonitor
	scene      *scene.Store
	tool       *tool.Machine
	classifier *gesture.Classifier
	orbit      *orbit.Controller
	metrics    *Metrics

	enabled bool
	mu      sync.RWMutex
	stopCh  chan struct{}
	doneCh  chan struct{}

	frameMu       sync.Mutex
	pinch         gesture.EdgeTracker
	frame         gesture.Frame
	hover         *r3.Vec
	lastTimestamp int64
	hasTimestamp  bool
	version       uint64

	state   atomic.Pointer[RenderState]
	preview atomic.Pointer[[]byte]
	viewers atomic.Int32
}

// New creates a new App instance with the given configuration. Saved
// preferences are applied before the first state is published.
func New(config Config) *App {
	if config.Capture.FPS <= 0 {
		config.Capture.FPS = capture.DefaultFPS
	}
	if config.Gesture.DominantHand == "" {
		config.Gesture = gesture.DefaultConfig()
	}

	sc := scene.NewStore()
	a := &App{
		config:     config,
		camera:     capture.NewCamera(config.Capture),
		activity:   capture.NewActivityMonitor(config.MotionThresh),
		scene:      sc,
		tool:       tool.NewMachine(sc),
		classifier: gesture.NewClassifier(config.Gesture),
		orbit:      orbit.NewController(orbit.DefaultState()),
		metrics:    NewMetrics(),
		enabled:    true,
	}

	// Try MediaPipe first, fall back to mock detector
	if mp, err := detector.NewMediaPipeDetector(config.Detector); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	a.loadPreferences()

	a.frameMu.Lock()
	a.commit()
	a.frameMu.Unlock()
	return a
}

// SetEnabled turns hand tracking on or off. While disabled the hands are
// treated as absent, which hands control back to the pointer.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	a.enabled = enabled
	a.mu.Unlock()

	if !enabled {
		a.frameMu.Lock()
		a.apply(a.classifier.Classify(nil, a.lastTimestamp))
		a.frameMu.Unlock()
	} else {
		a.frameMu.Lock()
		a.commit()
		a.frameMu.Unlock()
	}

	if a.config.Store != nil {
		if err := a.config.Store.Preferences().SetTrackingEnabled(enabled); err != nil {
			log.Printf("Failed to save tracking preference: %v", err)
		}
	}
}

// IsEnabled returns whether hand tracking is on.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetCamera replaces the camera. It must be called before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Scene returns the voxel store.
func (a *App) Scene() *scene.Store {
	return a.scene
}

// Metrics returns the App's Prometheus collectors.
func (a *App) Metrics() *Metrics {
	return a.metrics
}

// RenderState returns the latest published state. It never blocks on
// writers.
func (a *App) RenderState() *RenderState {
	return a.state.Load()
}

// ProcessHands applies one frame of detected hands. Frames whose timestamp
// is not newer than the last processed one are dropped, as are frames that
// arrive after tracking was disabled; the return value reports whether the
// frame was applied.
func (a *App) ProcessHands(hands []detector.HandLandmarks, timestamp int64) bool {
	a.frameMu.Lock()
	defer a.frameMu.Unlock()

	// Checked under frameMu: once SetEnabled(false) has cleared the hands, a
	// late frame cannot bring them back.
	if !a.IsEnabled() {
		return false
	}
	if a.hasTimestamp && timestamp <= a.lastTimestamp {
		a.metrics.framesSkipped.Inc()
		return false
	}
	a.lastTimestamp, a.hasTimestamp = timestamp, true

	a.apply(a.classifier.Classify(hands, timestamp))
	a.metrics.framesProcessed.Inc()
	return true
}

// apply feeds a classified frame to the camera controller and the pinch
// edge. Must be called with frameMu held.
func (a *App) apply(f gesture.Frame) {
	a.frame = f
	a.orbit.Update(f)
	if a.pinch.Rising(f.Dominant.Pinching) {
		a.primary(f.Dominant.Cursor, SourceHand)
	}
	a.commit()
}

func (a *App) primary(pos r3.Vec, source string) tool.Result {
	res := a.tool.PrimaryAction(pos)
	a.metrics.actions.WithLabelValues(string(res.Mode), source, string(res.Outcome)).Inc()
	return res
}

// PointerAction runs the active tool at pos for a pointer press. It is
// ignored while any hand is detected.
func (a *App) PointerAction(pos r3.Vec) (tool.Result, bool) {
	a.frameMu.Lock()
	defer a.frameMu.Unlock()

	if a.frame.AnyHand() {
		return tool.Result{}, false
	}
	res := a.primary(pos, SourcePointer)
	a.commit()
	return res, true
}

// PointerHover moves the pointer cursor. It is ignored while any hand is
// detected.
func (a *App) PointerHover(pos r3.Vec) bool {
	a.frameMu.Lock()
	defer a.frameMu.Unlock()

	if a.frame.AnyHand() {
		return false
	}
	a.hover = &pos
	a.commit()
	return true
}

// PointerMissed clears the pointer cursor when the pointer leaves the scene.
func (a *App) PointerMissed() {
	a.frameMu.Lock()
	defer a.frameMu.Unlock()
	a.hover = nil
	a.commit()
}

// commit publishes a new RenderState. Must be called with frameMu held.
func (a *App) commit() {
	a.version++
	snap := a.scene.Snapshot()

	a.state.Store(buildRenderState(renderInput{
		version:  a.version,
		tracking: a.IsEnabled(),
		snap:     snap,
		camera:   a.orbit.State(),
		frame:    a.frame,
		hover:    a.hover,
		session:  a.tool.Session(),
		preview:  a.tool.Preview,
	}))

	a.metrics.voxels.Set(float64(snap.Len()))
	a.metrics.layers.Set(float64(len(snap.Layers())))
}

// mutate runs fn under frameMu and publishes the result.
func (a *App) mutate(fn func() error) error {
	a.frameMu.Lock()
	defer a.frameMu.Unlock()

	if err := fn(); err != nil {
		return err
	}
	a.commit()
	return nil
}
