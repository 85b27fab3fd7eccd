package shell

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vesselhq/vessel/internal/runtime"
)

const hostManifest = `{
	"identifier": "com.example.notes",
	"product_name": "Notes",
	"version": "1.2.0",
	"windows": [
		{"label": "main", "title": "Notes", "width": 800, "height": 600},
		{"label": "settings", "title": "Settings"}
	]
}`

// startShell runs a builder against a temp manifest and waits for the run
// loop to bind. The returned channel yields Run's result.
func startShell(t *testing.T, b *Builder) (*runtime.Context, string, chan error) {
	t.Helper()
	return startShellWith(t, b, hostManifest)
}

func startShellWith(t *testing.T, b *Builder, manifest string) (*runtime.Context, string, chan error) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "vessel.conf.json")
	if err := os.WriteFile(path, []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}

	rt, err := runtime.Generate(path, runtime.Options{DataDir: filepath.Join(dir, "data")})
	if err != nil {
		t.Fatal(err)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- b.Run(rt) }()

	deadline := time.Now().Add(5 * time.Second)
	for b.Addr() == "" {
		if time.Now().After(deadline) {
			t.Fatal("run loop did not bind in time")
		}
		select {
		case err := <-errCh:
			t.Fatalf("run loop exited early: %v", err)
		default:
		}
		time.Sleep(10 * time.Millisecond)
	}

	return rt, "http://" + b.Addr(), errCh
}

func stopShell(t *testing.T, b *Builder, errCh chan error) {
	t.Helper()
	b.Stop()
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("expected clean termination, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run loop did not terminate")
	}
}

func getJSON(t *testing.T, url string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatal(err)
		}
	}
	return resp.StatusCode
}

func TestHostHealthAndRoot(t *testing.T) {
	b := New(testConfig()).Plugin(&echoProvider{id: "storage"})
	_, base, errCh := startShell(t, b)
	defer stopShell(t, b, errCh)

	var health map[string]interface{}
	if code := getJSON(t, base+"/health", &health); code != http.StatusOK {
		t.Fatalf("health returned %d", code)
	}
	if health["status"] != "healthy" {
		t.Errorf("unexpected health payload: %v", health)
	}
	if health["windows"].(float64) != 2 {
		t.Errorf("expected 2 open windows, got %v", health["windows"])
	}

	var root map[string]interface{}
	getJSON(t, base+"/", &root)
	if root["identifier"] != "com.example.notes" {
		t.Errorf("unexpected root payload: %v", root)
	}
}

func TestHostListCapabilities(t *testing.T) {
	b := New(testConfig()).
		Plugin(&echoProvider{id: "storage"}).
		Plugin(&echoProvider{id: "notification"})
	_, base, errCh := startShell(t, b)
	defer stopShell(t, b, errCh)

	var payload struct {
		Capabilities []struct {
			ID string `json:"id"`
		} `json:"capabilities"`
	}
	getJSON(t, base+"/capabilities", &payload)

	if len(payload.Capabilities) != 2 {
		t.Fatalf("expected 2 capabilities, got %d", len(payload.Capabilities))
	}
	if payload.Capabilities[0].ID != "storage" || payload.Capabilities[1].ID != "notification" {
		t.Errorf("registration order not preserved: %v", payload.Capabilities)
	}
}

func TestHostInvoke(t *testing.T) {
	b := New(testConfig()).Plugin(&echoProvider{id: "storage"})
	_, base, errCh := startShell(t, b)
	defer stopShell(t, b, errCh)

	body, _ := json.Marshal(map[string]interface{}{
		"tool_id": "storage.echo",
		"params":  map[string]interface{}{"key": "theme"},
	})
	resp, err := http.Post(base+"/capability/invoke", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("invoke returned %d", resp.StatusCode)
	}

	var result struct {
		Success bool                   `json:"success"`
		Data    map[string]interface{} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if !result.Success {
		t.Fatal("expected successful invocation")
	}
}

func TestHostInvokeUnknownCapability(t *testing.T) {
	b := New(testConfig()).Plugin(&echoProvider{id: "storage"})
	_, base, errCh := startShell(t, b)
	defer stopShell(t, b, errCh)

	body, _ := json.Marshal(map[string]interface{}{"tool_id": "missing.echo"})
	resp, err := http.Post(base+"/capability/invoke", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown capability, got %d", resp.StatusCode)
	}
}

func TestHostClosingAllWindowsEndsRun(t *testing.T) {
	b := New(testConfig())
	_, base, errCh := startShell(t, b)

	var payload struct {
		Windows []struct {
			ID string `json:"id"`
		} `json:"windows"`
	}
	getJSON(t, base+"/windows", &payload)
	if len(payload.Windows) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(payload.Windows))
	}

	client := &http.Client{}
	for _, w := range payload.Windows {
		req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/windows/%s", base, w.ID), nil)
		resp, err := client.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
	}

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("expected normal termination after last window closed, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run loop did not end after last window closed")
	}

	if got := b.CurrentState(); got != StateTerminated {
		t.Errorf("expected %s, got %s", StateTerminated, got)
	}
}

func TestHostWindowDefaultsAndMainFocus(t *testing.T) {
	// The main window is listed second and neither window declares
	// dimensions; the manifest defaults apply and "main" still gets focus.
	manifest := `{
		"identifier": "com.example.notes",
		"product_name": "Notes",
		"windows": [
			{"label": "settings", "title": "Settings"},
			{"label": "main", "title": "Notes"}
		]
	}`
	b := New(testConfig())
	_, base, errCh := startShellWith(t, b, manifest)
	defer stopShell(t, b, errCh)

	var payload struct {
		Windows []struct {
			Label  string `json:"label"`
			Width  int    `json:"width"`
			Height int    `json:"height"`
			State  string `json:"state"`
		} `json:"windows"`
	}
	getJSON(t, base+"/windows", &payload)
	if len(payload.Windows) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(payload.Windows))
	}

	for _, w := range payload.Windows {
		if w.Width != runtime.DefaultWindowWidth || w.Height != runtime.DefaultWindowHeight {
			t.Errorf("window %s missing default dimensions: %dx%d", w.Label, w.Width, w.Height)
		}
		wantActive := w.Label == "main"
		if (w.State == "active") != wantActive {
			t.Errorf("window %s state %s; main must hold initial focus", w.Label, w.State)
		}
	}
}

func TestHostRunFailsOnBadAddress(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Host = "256.0.0.1"

	dir := t.TempDir()
	path := filepath.Join(dir, "vessel.conf.json")
	if err := os.WriteFile(path, []byte(hostManifest), 0o644); err != nil {
		t.Fatal(err)
	}
	rt, err := runtime.Generate(path, runtime.Options{DataDir: filepath.Join(dir, "data")})
	if err != nil {
		t.Fatal(err)
	}

	runErr := New(cfg).Run(rt)
	if runErr == nil {
		t.Fatal("expected run loop start failure")
	}
}

func TestHostServesAssets(t *testing.T) {
	b := New(testConfig())
	rt, base, errCh := startShell(t, b)
	defer stopShell(t, b, errCh)

	if err := os.MkdirAll(rt.AssetsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	page := []byte("<!doctype html><title>Notes</title>")
	if err := os.WriteFile(filepath.Join(rt.AssetsDir, "index.html"), page, 0o644); err != nil {
		t.Fatal(err)
	}

	resp, err := http.Get(base + "/app/index.html")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("asset request returned %d", resp.StatusCode)
	}

	resp2, err := http.Get(base + "/app/missing.js")
	if err != nil {
		t.Fatal(err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for missing asset, got %d", resp2.StatusCode)
	}
}
