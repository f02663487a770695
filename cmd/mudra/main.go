package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

const statusInterval = 500 * time.Millisecond

func main() {
	configPath := flag.String("config", "", "path to config.yaml (default $MUDRA_CONFIG or ~/.mudra/config.yaml)")
	noTray := flag.Bool("no-tray", false, "run without the system tray")
	flag.Parse()

	fmt.Println("Mudra - Hand-tracked Voxel Editor")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	dataDir, err := cfg.DataPath()
	if err != nil {
		log.Fatalf("Failed to resolve data directory: %v", err)
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(filepath.Join(dataDir, "mudra.db"))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	a := app.New(app.Config{
		Store:        st,
		Capture:      cfg.Camera.Options,
		MotionThresh: cfg.Camera.MotionThreshold,
		Detector:     cfg.Detector,
		Gesture:      cfg.Gesture,
	})

	// Without a camera the editor still works with the pointer alone.
	if err := a.Start(); err != nil {
		log.Printf("Camera unavailable (%v), running pointer-only", err)
	}
	defer a.Stop()

	webDir := cfg.Server.StaticDir
	if webDir == "" {
		webDir = findWebDir(dataDir)
	}
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir:     webDir,
		App:           a,
		Metrics:       cfg.Server.Metrics,
		StateInterval: cfg.Server.StateInterval,
	})
	defer srv.Close()

	httpSrv := &http.Server{Addr: cfg.Server.Addr, Handler: srv}
	go func() {
		fmt.Printf("Starting server on %s\n", cfg.Server.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *noTray {
		<-ctx.Done()
	} else {
		runTray(ctx, a, editorURL(cfg.Server.Addr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
}

// runTray blocks in the tray loop until Quit is chosen or ctx is cancelled.
func runTray(ctx context.Context, a *app.App, url string) {
	t := tray.New()
	t.SetEnabled(a.IsEnabled())
	t.OnToggle(a.SetEnabled)
	t.OnAddLayer(func() { a.AddLayer() })
	t.OnClear(a.ClearScene)
	t.OnOpen(func() {
		if err := openBrowser(url); err != nil {
			log.Printf("Failed to open browser: %v", err)
		}
	})

	t.OnQuit(func() { log.Println("Quit requested from tray") })

	done := make(chan struct{})
	defer close(done)

	go func() {
		ticker := time.NewTicker(statusInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				tray.Quit()
				return
			case <-done:
				return
			case <-ticker.C:
				rs := a.RenderState()
				t.SetStatus(len(rs.Voxels), string(rs.Tool.Mode))
			}
		}
	}()

	t.Run()
}

// editorURL turns a listen address into a browsable URL.
func editorURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}

// findWebDir searches for the renderer's static files in common locations.
// It checks: "web", "../web", "../../web", and <dataDir>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	for _, p := range []string{"web", "../web", "../../web", filepath.Join(dataDir, "web")} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}
