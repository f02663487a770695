// Package tray provides the system tray menu for mudra.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle   func(enabled bool)
	onAddLayer func()
	onClear    func()
	onOpen     func()
	onQuit     func()
	enabled    bool
	status     string
	mu         sync.RWMutex

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuStatus *systray.MenuItem
}

// New creates a new Tray with hand tracking shown as enabled.
func New() *Tray {
	return &Tray{
		enabled: true,
		status:  statusTitle(0, ""),
	}
}

// OnToggle sets the callback for the hand tracking toggle.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnAddLayer sets the callback for the Add Layer item.
func (t *Tray) OnAddLayer(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onAddLayer = fn
}

// OnClear sets the callback for the Clear Scene item.
func (t *Tray) OnClear(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onClear = fn
}

// OnOpen sets the callback for the Open Editor item.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit stops a running tray loop from outside the menu, for example on a
// signal.
func Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra hand-tracked voxel editor")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle hand tracking")
	systray.AddSeparator()

	t.menuStatus = systray.AddMenuItem(t.status, "Scene status")
	t.menuStatus.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open Editor...", "Open the editor in a browser")
	menuAddLayer := systray.AddMenuItem("Add Layer", "Add a layer and make it active")
	menuClear := systray.AddMenuItem("Clear Scene", "Remove every voxel and layer")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Mudra")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuOpen.ClickedCh:
				t.call(func() func() { return t.onOpen })
			case <-menuAddLayer.ClickedCh:
				t.call(func() func() { return t.onAddLayer })
			case <-menuClear.ClickedCh:
				t.call(func() func() { return t.onClear })
			case <-menuQuit.ClickedCh:
				t.call(func() func() { return t.onQuit })
				systray.Quit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

// call invokes the callback returned by get outside the lock.
func (t *Tray) call(get func() func()) {
	t.mu.RLock()
	callback := get()
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

// SetEnabled syncs the toggle with the tracking state without firing the
// callback.
func (t *Tray) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
}

// SetStatus updates the status line.
func (t *Tray) SetStatus(voxels int, mode string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = statusTitle(voxels, mode)
	if t.menuStatus != nil {
		t.menuStatus.SetTitle(t.status)
	}
}

// Status returns the current status line.
func (t *Tray) Status() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Tracking"
	}
	return "○ Tracking off"
}

func statusTitle(voxels int, mode string) string {
	if mode == "" {
		return fmt.Sprintf("Voxels: %d", voxels)
	}
	return fmt.Sprintf("Voxels: %d · %s", voxels, mode)
}
