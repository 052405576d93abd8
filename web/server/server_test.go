package server

import (
	"bufio"
	"context"
	"encoding/json"
	"image/png"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/df07/go-progressive-pathtracer/pkg/config"
	"github.com/df07/go-progressive-pathtracer/pkg/integrator"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// newTestServer builds the default scene in a 40x28 window, a 10x7 image at
// the default subsampling of 4
func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := config.Default()
	cfg.Settings.MaxBounces = 1
	sc, err := scene.Build(cfg)
	if err != nil {
		t.Fatalf("Failed to build scene: %v", err)
	}

	pool := renderer.NewWorkerPool(2, 42)
	t.Cleanup(pool.Stop)

	rc, err := renderer.NewContext(cfg.Settings, sc.Accelerator, sc.Light, sc.Environment, pool)
	if err != nil {
		t.Fatalf("Failed to create render context: %v", err)
	}
	if err := rc.Resize(40, 28); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	return NewServer(0, sc, rc, nil)
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var body map[string]string
	decode(t, rec, &body)
	if body["status"] != "ok" {
		t.Errorf("Expected status ok, got %v", body)
	}
}

func TestHandleImage(t *testing.T) {
	s := newTestServer(t)
	if !s.tracePass() {
		t.Fatal("Expected a pass to run")
	}

	rec := doRequest(t, s, http.MethodGet, "/api/image", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Expected image/png, got %s", ct)
	}
	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatalf("Failed to decode PNG: %v", err)
	}
	if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 28 {
		t.Errorf("Expected the image upscaled to 40x28, got %v", img.Bounds())
	}

	rec = doRequest(t, s, http.MethodGet, "/api/image?format=webp", "")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/webp" {
		t.Errorf("Expected a webp image, got %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}

	rec = doRequest(t, s, http.MethodGet, "/api/image?format=gif", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for an unknown format, got %d", rec.Code)
	}
}

func TestHandleStats(t *testing.T) {
	s := newTestServer(t)
	s.tracePass()
	s.tracePass()

	rec := doRequest(t, s, http.MethodGet, "/api/stats", "")
	var stats renderer.RenderStats
	decode(t, rec, &stats)
	if stats.Passes != 2 || stats.SamplesPerPixel != 2 {
		t.Errorf("Expected 2 passes, got %+v", stats)
	}
	if stats.Width != 10 || stats.Height != 7 || stats.Workers != 2 {
		t.Errorf("Unexpected image or worker stats: %+v", stats)
	}
}

func TestHandleSettings(t *testing.T) {
	s := newTestServer(t)
	s.tracePass()

	rec := doRequest(t, s, http.MethodPut, "/api/settings", `{"max_bounces": 3, "max_paths_per_pixel": 16}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var settings renderer.Settings
	decode(t, rec, &settings)
	if settings.MaxBounces != 3 || settings.MaxPathsPerPixel != 16 {
		t.Errorf("Expected updated settings, got %+v", settings)
	}
	// Fields absent from the request keep their values
	if settings.Subsampling != 4 {
		t.Errorf("Expected subsampling to stay 4, got %d", settings.Subsampling)
	}
	if s.render.SampleCount() != 0 {
		t.Error("Settings change should restart accumulation")
	}

	rec = doRequest(t, s, http.MethodPut, "/api/settings", `{"subsampling": 0}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid settings, got %d", rec.Code)
	}
	if s.render.Settings().Subsampling != 4 {
		t.Error("Invalid settings must not be applied")
	}

	// Subsampling 2 halves a 40x28 window to 20x14
	rec = doRequest(t, s, http.MethodPut, "/api/settings", `{"subsampling": 2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if w, h := s.render.ImageSize(); w != 20 || h != 14 {
		t.Errorf("Expected a 20x14 image, got %dx%d", w, h)
	}
}

func TestHandleMoveCamera(t *testing.T) {
	s := newTestServer(t)
	before := s.Camera()
	s.tracePass()

	rec := doRequest(t, s, http.MethodPost, "/api/camera", `{"forward": 2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var cam renderer.Camera
	decode(t, rec, &cam)
	want := before.Position.Add(before.Direction.Multiply(2))
	if cam.Position.Subtract(want).Length() > 1e-9 {
		t.Errorf("Expected position %v, got %v", want, cam.Position)
	}
	if rcCam, ok := s.render.Camera(); !ok || rcCam.Position != cam.Position {
		t.Error("Render camera should match the response")
	}
	if s.render.SampleCount() != 0 {
		t.Error("Camera move should restart accumulation")
	}

	rec = doRequest(t, s, http.MethodPost, "/api/camera", `{"yaw": 90}`)
	decode(t, rec, &cam)
	if math.Abs(cam.Direction.Dot(before.Direction)) > 1e-9 {
		t.Errorf("Expected a 90 degree turn, got direction %v", cam.Direction)
	}
}

func TestHandleMoveCamera_WhileRendering(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	var cam renderer.Camera
	for i := 0; i < 8; i++ {
		rec := doRequest(t, s, http.MethodPost, "/api/camera", `{"yaw": 45, "forward": 0.5}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}
		decode(t, rec, &cam)
	}
	cancel()
	<-done

	// Every pass since the last move was traced from the final pose
	rcCam, _ := s.render.Camera()
	if rcCam != cam {
		t.Errorf("Expected render camera %+v, got %+v", cam, rcCam)
	}
	n := s.render.SampleCount()
	if !s.tracePass() || s.render.SampleCount() != n+1 {
		t.Errorf("Expected one more sample after %d", n)
	}
}

func TestHandleLight(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPut, "/api/light", `{"intensity": 100}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	light := s.render.Light()
	if light == nil || light.Intensity != 100 {
		t.Fatalf("Expected intensity 100, got %+v", light)
	}
	// Position comes from the existing light
	if light.Position != config.Default().Light.Position {
		t.Errorf("Expected position to be kept, got %v", light.Position)
	}

	rec = doRequest(t, s, http.MethodPut, "/api/light", `{"intensity": -1}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for negative intensity, got %d", rec.Code)
	}

	doRequest(t, s, http.MethodPut, "/api/light", `{"intensity": 0}`)
	if s.render.Light() != nil {
		t.Error("Zero intensity should remove the light")
	}
	rec = doRequest(t, s, http.MethodGet, "/api/light", "")
	var got integrator.PointLight
	decode(t, rec, &got)
	if got.Intensity != 0 {
		t.Errorf("Expected an empty light, got %+v", got)
	}
}

func TestHandleEnvironment(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPut, "/api/environment", `{"multiplier": 3}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if m := s.render.EnvironmentMultiplier(); m != 3 {
		t.Errorf("Expected multiplier 3, got %g", m)
	}

	rec = doRequest(t, s, http.MethodPut, "/api/environment", `{"multiplier": -3}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a negative multiplier, got %d", rec.Code)
	}
}

func TestHandleResizeAndRestart(t *testing.T) {
	s := newTestServer(t)
	s.tracePass()

	rec := doRequest(t, s, http.MethodPost, "/api/resize", `{"width": 80, "height": 40}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if w, h := s.render.ImageSize(); w != 20 || h != 10 {
		t.Errorf("Expected a 20x10 image, got %dx%d", w, h)
	}

	rec = doRequest(t, s, http.MethodPost, "/api/resize", `{"width": 2, "height": 2}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a window smaller than the subsampling, got %d", rec.Code)
	}

	s.tracePass()
	rec = doRequest(t, s, http.MethodPost, "/api/restart", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", rec.Code)
	}
	if s.render.SampleCount() != 0 {
		t.Error("Restart should zero the sample count")
	}
}

func TestHandleMaterials(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/materials", "")
	var materials []material.Params
	decode(t, rec, &materials)
	if len(materials) != len(s.scene.Materials) {
		t.Fatalf("Expected %d materials, got %d", len(s.scene.Materials), len(materials))
	}

	rec = doRequest(t, s, http.MethodPut, "/api/materials/gold", `{"shininess": 10, "fresnel": 2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	gold := s.scene.Material("gold")
	if gold.Shininess != 10 {
		t.Errorf("Expected shininess 10, got %g", gold.Shininess)
	}
	if gold.Fresnel != 1 {
		t.Errorf("Expected fresnel clamped to 1, got %g", gold.Fresnel)
	}
	// Unchanged fields are kept
	if gold.Metalness != 1 {
		t.Errorf("Expected metalness to stay 1, got %g", gold.Metalness)
	}

	rec = doRequest(t, s, http.MethodPut, "/api/materials/velvet", `{"shininess": 10}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for an unknown material, got %d", rec.Code)
	}
}

func TestHandleInspect(t *testing.T) {
	s := newTestServer(t)

	// The default camera looks straight at the hull
	rec := doRequest(t, s, http.MethodGet, "/api/inspect?x=5&y=3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var resp InspectResponse
	decode(t, rec, &resp)
	if !resp.Hit || resp.Mesh != "hull" {
		t.Fatalf("Expected to hit the hull, got %+v", resp)
	}
	if resp.Material == nil || resp.Material.Name != "hull" {
		t.Errorf("Expected the hull material, got %+v", resp.Material)
	}
	if resp.Distance <= 0 {
		t.Errorf("Expected a positive distance, got %g", resp.Distance)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/inspect?x=50&y=3", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 outside the image, got %d", rec.Code)
	}
}

func TestHandleRender_StreamsPasses(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/render")
	if err != nil {
		t.Fatalf("Failed to open stream: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Expected text/event-stream, got %s", ct)
	}

	deadline := time.Now().Add(5 * time.Second)
	for s.numSubscribers() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("Timeout waiting for the subscriber")
		}
		time.Sleep(5 * time.Millisecond)
	}

	s.tracePass()
	s.publishPass()

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("Failed to read event: %v", err)
	}
	if line != "event: pass\n" {
		t.Fatalf("Expected a pass event, got %q", line)
	}
	data, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("Failed to read event data: %v", err)
	}

	var update PassUpdate
	if err := json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(data), "data: ")), &update); err != nil {
		t.Fatalf("Failed to decode pass update: %v", err)
	}
	if update.SampleCount != 1 || update.ImageData == "" {
		t.Errorf("Expected one sample and an image, got sample count %d", update.SampleCount)
	}
}
