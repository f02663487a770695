// Package config loads mudra's YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

// EnvConfig names the environment variable holding the config file path.
const EnvConfig = "MUDRA_CONFIG"

// Config is the root of the configuration file.
type Config struct {
	Server   ServerConfig    `yaml:"server"`
	Camera   CameraConfig    `yaml:"camera"`
	Detector detector.Config `yaml:"detector"`
	Gesture  gesture.Config  `yaml:"gesture"`

	// DataDir holds the preferences database. Defaults to ~/.mudra.
	DataDir string `yaml:"data_dir"`
}

type ServerConfig struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
	Metrics   bool   `yaml:"metrics"`
	// StateInterval is how often render state is pushed to WebSocket clients.
	StateInterval time.Duration `yaml:"state_interval"`
}

type CameraConfig struct {
	capture.Options `yaml:",inline"`
	// MotionThreshold is the percentage of changed pixels that keeps the
	// capture loop out of idle.
	MotionThreshold float64 `yaml:"motion_threshold"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:          ":8080",
			Metrics:       true,
			StateInterval: 33 * time.Millisecond,
		},
		Camera: CameraConfig{
			Options:         capture.DefaultOptions(),
			MotionThreshold: 1.0,
		},
		Detector: detector.DefaultConfig(),
		Gesture:  gesture.DefaultConfig(),
	}
}

// Load reads the YAML file at path over the defaults. When path is empty it
// falls back to $MUDRA_CONFIG, then ~/.mudra/config.yaml; if none of those
// exist the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		path = defaultPath()
		if _, err := os.Stat(path); err != nil {
			path = ""
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv lets MUDRA_ADDR and MUDRA_CAMERA override the file.
func applyEnv(cfg *Config) {
	if addr := os.Getenv("MUDRA_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if v := os.Getenv("MUDRA_CAMERA"); v != "" {
		if dev, err := strconv.Atoi(v); err == nil && dev >= 0 {
			cfg.Camera.Device = dev
		}
	}
}

// Validate checks values that would otherwise fail at runtime.
func (c *Config) Validate() error {
	var errs []error
	if c.Camera.FPS <= 0 {
		errs = append(errs, fmt.Errorf("camera.fps must be positive, got %d", c.Camera.FPS))
	}
	if c.Gesture.DominantHand == c.Gesture.OffHand {
		errs = append(errs, fmt.Errorf("gesture.dominant_hand and gesture.off_hand are both %q", c.Gesture.OffHand))
	}
	for _, h := range []string{c.Gesture.DominantHand, c.Gesture.OffHand} {
		if h != detector.Left && h != detector.Right {
			errs = append(errs, fmt.Errorf("handedness must be Left or Right, got %q", h))
		}
	}
	t := c.Gesture.Thresholds
	if t.Pinch <= 0 || t.Fist <= 0 || t.Pan <= 0 {
		errs = append(errs, errors.New("gesture thresholds must be positive"))
	}
	if c.Server.StateInterval <= 0 {
		errs = append(errs, errors.New("server.state_interval must be positive"))
	}
	return errors.Join(errs...)
}

// DataPath returns DataDir, defaulting to ~/.mudra.
func (c *Config) DataPath() (string, error) {
	if c.DataDir != "" {
		return c.DataDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".mudra"), nil
}

func defaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".mudra", "config.yaml")
}
