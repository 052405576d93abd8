package renderer

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/environment"
	"github.com/df07/go-progressive-pathtracer/pkg/integrator"
	"github.com/df07/go-progressive-pathtracer/pkg/log"
)

var logger = log.New("renderer")

// Context owns the accumulation image and everything a pass reads. Passes and
// mutations are serialized, so a change requested while a pass is running
// takes effect once that pass has finished.
type Context struct {
	mu sync.Mutex

	settings Settings
	image    *Image
	windowW  int
	windowH  int
	camera   *Camera // Set by SetCamera, used by TraceCamera

	tracer *integrator.PathTracer
	pool   *WorkerPool
	stats  RenderStats
}

// NewContext creates a render context over a built scene. The image stays
// empty until the first Resize.
func NewContext(settings Settings, oracle integrator.Oracle, light *integrator.PointLight, env *environment.Environment, pool *WorkerPool) (*Context, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &Context{
		settings: settings,
		image:    NewImage(0, 0),
		tracer:   integrator.NewPathTracer(oracle, light, env, settings.integratorConfig()),
		pool:     pool,
		stats:    RenderStats{Workers: pool.NumWorkers()},
	}, nil
}

// Resize reallocates the image for a window of w×h pixels divided by the
// subsampling factor, and restarts accumulation.
func (c *Context) Resize(w, h int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resizeLocked(w, h)
}

func (c *Context) resizeLocked(w, h int) error {
	iw, ih := w/c.settings.Subsampling, h/c.settings.Subsampling
	if iw <= 0 || ih <= 0 {
		return fmt.Errorf("%w: %dx%d at subsampling %d", ErrImageTooSmall, w, h, c.settings.Subsampling)
	}
	c.windowW, c.windowH = w, h
	c.image = NewImage(iw, ih)
	c.resetStatsLocked()
	logger.Infof("Resized to %dx%d (window %dx%d)", iw, ih, w, h)
	return nil
}

// Restart discards accumulated samples. The next pass overwrites every pixel.
func (c *Context) Restart() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.restartLocked()
}

func (c *Context) restartLocked() {
	c.image.SampleCount = 0
	c.resetStatsLocked()
	logger.Debug("Restarted accumulation")
}

func (c *Context) resetStatsLocked() {
	c.stats = RenderStats{
		Workers: c.pool.NumWorkers(),
		Width:   c.image.Width,
		Height:  c.image.Height,
	}
}

// TracePaths adds one path sample to every pixel, looking through the given
// view and projection. It returns false without touching the image when the
// per-pixel path cap has been reached.
func (c *Context) TracePaths(view, proj mgl64.Mat4) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracePathsLocked(view, proj)
}

// TraceCamera is TracePaths through the context's own camera at the window
// aspect ratio. Camera edits wait for the pass to finish. It returns false
// when no camera has been set.
func (c *Context) TraceCamera() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.camera == nil || c.windowW == 0 || c.windowH == 0 {
		return false
	}
	proj := c.camera.Projection(float64(c.windowW) / float64(c.windowH))
	return c.tracePathsLocked(c.camera.View(), proj)
}

func (c *Context) tracePathsLocked(view, proj mgl64.Mat4) bool {
	img := c.image
	if c.settings.MaxPathsPerPixel > 0 && img.SampleCount >= c.settings.MaxPathsPerPixel {
		return false
	}
	if img.Width == 0 || img.Height == 0 {
		return false
	}

	start := time.Now()
	gen := newUnprojector(view, proj, img.Width, img.Height)
	n := float64(img.SampleCount)
	jitter := c.settings.Jitter
	tracer := c.tracer

	var rays atomic.Int64
	c.pool.Run(img.Height, func(y int, sampler core.Sampler) {
		rowRays := int64(0)
		for x := 0; x < img.Width; x++ {
			px, py := float64(x), float64(y)
			if jitter {
				j := sampler.Get2D()
				px += j.X
				py += j.Y
			}

			ray := gen.ray(px, py)
			dir := ray.Direction
			rowRays++

			var color core.Vec3
			if tracer.Oracle.Intersect(&ray) {
				L, traced := tracer.Trace(ray, sampler)
				color = L
				rowRays += int64(traced)
			} else {
				color = tracer.Background(dir)
			}
			img.Blend(x, y, color, n)
		}
		rays.Add(rowRays)
	})

	img.SampleCount++

	elapsed := time.Since(start)
	c.stats.Passes++
	c.stats.SamplesPerPixel = img.SampleCount
	c.stats.RaysTraced += rays.Load()
	c.stats.LastPass = elapsed
	c.stats.TotalTime += elapsed
	logger.Debugf("Pass %d finished in %v (%d rays)", img.SampleCount, elapsed, rays.Load())
	return true
}

// unprojector maps image positions to primary rays through the near plane
type unprojector struct {
	eye   core.Vec3
	invVP mgl64.Mat4
	w, h  float64
}

func newUnprojector(view, proj mgl64.Mat4, width, height int) unprojector {
	e := view.Inv().Mul4x1(mgl64.Vec4{0, 0, 0, 1})
	return unprojector{
		eye:   core.NewVec3(e[0]/e[3], e[1]/e[3], e[2]/e[3]),
		invVP: proj.Mul4(view).Inv(),
		w:     float64(width),
		h:     float64(height),
	}
}

func (u unprojector) ray(px, py float64) core.Ray {
	p := u.invVP.Mul4x1(mgl64.Vec4{2*px/u.w - 1, 2*py/u.h - 1, 1, 1})
	target := core.NewVec3(p[0]/p[3], p[1]/p[3], p[2]/p[3])
	return core.NewRay(u.eye, target.Subtract(u.eye).Normalize())
}

// PrimaryRay returns the camera ray through image position (px, py) of a
// width×height image, with row 0 at the bottom
func PrimaryRay(view, proj mgl64.Mat4, width, height int, px, py float64) core.Ray {
	return newUnprojector(view, proj, width, height).ray(px, py)
}

// Camera returns a copy of the camera set by SetCamera
func (c *Context) Camera() (Camera, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.camera == nil {
		return Camera{}, false
	}
	return *c.camera, true
}

// SetCamera replaces the camera used by TraceCamera and restarts
func (c *Context) SetCamera(cam Camera) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.camera = &cam
	c.restartLocked()
}

// UpdateCamera edits the camera between passes and restarts. It returns the
// edited camera.
func (c *Context) UpdateCamera(fn func(*Camera)) (Camera, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.camera == nil {
		return Camera{}, ErrNoCamera
	}
	fn(c.camera)
	c.restartLocked()
	return *c.camera, nil
}

// SampleCount returns the number of paths accumulated per pixel
func (c *Context) SampleCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.image.SampleCount
}

// ImageSize returns the size of the accumulation image
func (c *Context) ImageSize() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.image.Width, c.image.Height
}

// Settings returns the current settings
func (c *Context) Settings() Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// UpdateSettings validates and applies new settings. A subsampling change
// reallocates the image for the current window; any change restarts.
func (c *Context) UpdateSettings(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.settings
	c.settings = s
	c.tracer.Config = s.integratorConfig()

	if s.Subsampling != old.Subsampling && c.windowW > 0 {
		if err := c.resizeLocked(c.windowW, c.windowH); err != nil {
			c.settings = old
			c.tracer.Config = old.integratorConfig()
			return err
		}
		return nil
	}
	c.restartLocked()
	return nil
}

// Light returns a copy of the point light, or nil when the scene has none
func (c *Context) Light() *integrator.PointLight {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tracer.Light == nil {
		return nil
	}
	l := *c.tracer.Light
	return &l
}

// SetLight replaces the point light and restarts
func (c *Context) SetLight(light *integrator.PointLight) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tracer.Light = light
	c.restartLocked()
}

// EnvironmentMultiplier returns the environment scale, 0 without an environment
func (c *Context) EnvironmentMultiplier() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tracer.Environment == nil {
		return 0
	}
	return c.tracer.Environment.Multiplier
}

// SetEnvironmentMultiplier scales the environment radiance and restarts
func (c *Context) SetEnvironmentMultiplier(m float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tracer.Environment != nil {
		c.tracer.Environment.Multiplier = m
	}
	c.restartLocked()
}

// Update runs fn between passes and restarts. Use it for any change to data a
// pass reads, such as material parameters.
func (c *Context) Update(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn()
	c.restartLocked()
}

// Read runs fn between passes without restarting
func (c *Context) Read(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn()
}

// Snapshot returns a copy of the accumulation image
func (c *Context) Snapshot() *Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.image.Clone()
}

// WindowSize returns the size last passed to Resize
func (c *Context) WindowSize() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.windowW, c.windowH
}

// Stats returns statistics for the current accumulation
func (c *Context) Stats() RenderStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.AverageLuminance = c.image.AverageLuminance()
	return s
}
