package app

import (
	"log"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
)

// Start opens the camera and begins the detection pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(a.config.Capture.FPS)
	a.activity.Reset()

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	go a.runPipeline(a.stopCh, a.doneCh)

	log.Println("Detection pipeline started")
	return nil
}

// Stop halts the detection pipeline and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, doneCh := a.stopCh, a.doneCh
	a.stopCh, a.doneCh = nil, nil
	a.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-doneCh
	}

	a.saveCamera()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.camera.IsOpen() {
		if err := a.camera.Close(); err != nil {
			log.Printf("Error closing camera: %v", err)
		}
	}
	a.activity.Close()
	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	log.Println("Detection pipeline stopped")
}

// runPipeline reads frames at the configured rate until stopCh closes.
//
// Each frame is detected, classified and applied. When nothing moves and no
// hand is in view for a while the loop drops to the idle rate; any motion or
// hand brings it back.
func (a *App) runPipeline(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	interval := func(fps int) time.Duration { return time.Second / time.Duration(fps) }
	ticker := time.NewTicker(interval(a.config.Capture.FPS))
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			idle, changed := a.step()
			if !changed {
				continue
			}

			fps := a.config.Capture.FPS
			if idle {
				fps = capture.IdleFPS
				log.Println("Switched to idle mode")
			} else {
				log.Println("Switched to active mode")
			}
			a.Camera().SetFPS(fps)
			ticker.Reset(interval(fps))
			a.metrics.setIdle(idle)
		}
	}
}

// step processes one camera frame and reports the activity monitor's
// verdict.
func (a *App) step() (idle, changed bool) {
	if !a.IsEnabled() {
		return false, false
	}

	frame, err := a.Camera().ReadFrame()
	if err != nil {
		log.Printf("Error reading frame: %v", err)
		return false, false
	}
	defer frame.Close()

	var hands []detector.HandLandmarks
	if d := a.Detector(); d != nil {
		hands, err = d.Detect(&frame.Mat)
		if err != nil {
			log.Printf("Error detecting hands: %v", err)
			a.metrics.detectorErrors.Inc()
			hands = nil
		}
	}

	// A failed detection still counts as a frame with no hands so stale
	// gestures never linger.
	a.ProcessHands(hands, frame.Timestamp)

	if a.viewers.Load() > 0 {
		if jpeg, err := capture.PreviewJPEG(&frame.Mat, hands); err == nil {
			a.preview.Store(&jpeg)
		} else {
			log.Printf("Error encoding preview: %v", err)
		}
	}

	return a.activity.Observe(&frame.Mat, len(hands) > 0)
}

// WatchPreview registers a preview viewer. Frames are only encoded while at
// least one viewer is registered; call the returned func to unregister.
func (a *App) WatchPreview() (release func()) {
	a.viewers.Add(1)
	return func() { a.viewers.Add(-1) }
}

// Preview returns the latest preview JPEG, or nil if none has been encoded.
func (a *App) Preview() []byte {
	if p := a.preview.Load(); p != nil {
		return *p
	}
	return nil
}
