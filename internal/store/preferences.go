package store

// Keys under which preferences are stored.
const (
	keyTool     = "tool"
	keyTracking = "tracking_enabled"
	keyCamera   = "camera"
)

// ToolPreferences are the tool defaults restored on startup.
type ToolPreferences struct {
	Mode       string     `json:"mode"`
	Color      string     `json:"color"`
	Shape      string     `json:"shape"`
	Dimensions [3]float64 `json:"dimensions"`
}

// CameraView is the orbit camera pose restored on startup.
type CameraView struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
	Zoom  float64 `json:"zoom"`
}

// PreferenceRepository provides typed access to the user's preferences.
type PreferenceRepository struct {
	settings *SettingsRepository
}

// Preferences returns the preference repository for this store.
func (s *Store) Preferences() *PreferenceRepository {
	return &PreferenceRepository{settings: s.Settings()}
}

// Tool returns the saved tool defaults, or ErrNotFound.
func (r *PreferenceRepository) Tool() (*ToolPreferences, error) {
	p := &ToolPreferences{}
	if err := r.settings.Get(keyTool, p); err != nil {
		return nil, err
	}
	return p, nil
}

// SaveTool stores the tool defaults.
func (r *PreferenceRepository) SaveTool(p *ToolPreferences) error {
	return r.settings.Set(keyTool, p)
}

// TrackingEnabled returns whether hand tracking was left on. It defaults to
// true when never saved.
func (r *PreferenceRepository) TrackingEnabled() (bool, error) {
	var enabled bool
	err := r.settings.Get(keyTracking, &enabled)
	if err == ErrNotFound {
		return true, nil
	}
	return enabled, err
}

// SetTrackingEnabled stores the hand tracking flag.
func (r *PreferenceRepository) SetTrackingEnabled(enabled bool) error {
	return r.settings.Set(keyTracking, enabled)
}

// Camera returns the saved camera pose, or ErrNotFound.
func (r *PreferenceRepository) Camera() (*CameraView, error) {
	v := &CameraView{}
	if err := r.settings.Get(keyCamera, v); err != nil {
		return nil, err
	}
	return v, nil
}

// SaveCamera stores the camera pose.
func (r *PreferenceRepository) SaveCamera(v *CameraView) error {
	return r.settings.Set(keyCamera, v)
}
