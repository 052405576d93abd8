package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/df07/go-progressive-pathtracer/pkg/integrator"
	"github.com/df07/go-progressive-pathtracer/pkg/log"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

var logger = log.New("server")

// Server exposes a render context over HTTP: the current image, statistics,
// and every parameter that can be edited while rendering
type Server struct {
	port    int
	echo    *echo.Echo
	scene   *scene.Scene
	render  *renderer.Context
	console *Console

	mu          sync.Mutex // Guards subscribers
	subscribers map[chan SSEEvent]struct{}
}

// NewServer creates a preview server for a built scene. console may be nil.
func NewServer(port int, sc *scene.Scene, rc *renderer.Context, console *Console) *Server {
	s := &Server{
		port:        port,
		scene:       sc,
		render:      rc,
		console:     console,
		subscribers: make(map[chan SSEEvent]struct{}),
	}
	rc.SetCamera(*sc.Camera)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	api := e.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/image", s.handleImage)
	api.GET("/stats", s.handleStats)
	api.GET("/settings", s.handleGetSettings)
	api.PUT("/settings", s.handlePutSettings)
	api.GET("/camera", s.handleGetCamera)
	api.POST("/camera", s.handleMoveCamera)
	api.GET("/light", s.handleGetLight)
	api.PUT("/light", s.handlePutLight)
	api.PUT("/environment", s.handlePutEnvironment)
	api.POST("/resize", s.handleResize)
	api.POST("/restart", s.handleRestart)
	api.GET("/materials", s.handleGetMaterials)
	api.PUT("/materials/:name", s.handlePutMaterial)
	api.GET("/inspect", s.handleInspect)
	api.GET("/render", s.handleRender)
	s.echo = e

	return s
}

// Handler returns the HTTP handler serving the API
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start runs the render loop and serves until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	go s.Run(ctx)
	if s.console != nil {
		go s.forwardConsole(ctx)
	}

	go func() {
		<-ctx.Done()
		s.echo.Shutdown(context.Background())
	}()

	addr := fmt.Sprintf(":%d", s.port)
	logger.Noticef("Starting preview server on http://localhost%s", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Camera returns a copy of the current camera
func (s *Server) Camera() renderer.Camera {
	cam, _ := s.render.Camera()
	return cam
}

// errorResponse is the body of every failed request
type errorResponse struct {
	Error string `json:"error"`
}

func badRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleImage returns the current image scaled to the window size
func (s *Server) handleImage(c echo.Context) error {
	format, err := renderer.ParseFormat(c.QueryParam("format"))
	if err != nil {
		return badRequest(c, err)
	}
	smooth, _ := strconv.ParseBool(c.QueryParam("smooth"))

	var buf bytes.Buffer
	if err := renderer.Encode(&buf, format, s.windowImage(smooth)); err != nil {
		return err
	}
	return c.Blob(http.StatusOK, format.ContentType(), buf.Bytes())
}

func (s *Server) handleStats(c echo.Context) error {
	return c.JSON(http.StatusOK, s.render.Stats())
}

func (s *Server) handleGetSettings(c echo.Context) error {
	return c.JSON(http.StatusOK, s.render.Settings())
}

// handlePutSettings replaces the render settings. Absent fields keep their
// current values.
func (s *Server) handlePutSettings(c echo.Context) error {
	settings := s.render.Settings()
	if err := c.Bind(&settings); err != nil {
		return err
	}
	if err := s.render.UpdateSettings(settings); err != nil {
		return badRequest(c, err)
	}
	return c.JSON(http.StatusOK, s.render.Settings())
}

func (s *Server) handleGetCamera(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Camera())
}

// CameraRequest moves the camera relative to its current frame
type CameraRequest struct {
	Forward float64 `json:"forward"`
	Right   float64 `json:"right"`
	Up      float64 `json:"up"`
	Yaw     float64 `json:"yaw"`   // Degrees, positive turns left
	Pitch   float64 `json:"pitch"` // Degrees, positive looks up
}

func (s *Server) handleMoveCamera(c echo.Context) error {
	var req CameraRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	cam, err := s.render.UpdateCamera(func(cam *renderer.Camera) {
		cam.Move(req.Forward, req.Right, req.Up)
		cam.Rotate(req.Yaw, req.Pitch)
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cam)
}

func (s *Server) handleGetLight(c echo.Context) error {
	light := s.render.Light()
	if light == nil {
		light = &integrator.PointLight{}
	}
	return c.JSON(http.StatusOK, light)
}

// handlePutLight replaces the point light. Zero intensity removes it.
func (s *Server) handlePutLight(c echo.Context) error {
	light := s.render.Light()
	if light == nil {
		light = &integrator.PointLight{}
	}
	if err := c.Bind(light); err != nil {
		return err
	}
	if light.Intensity < 0 {
		return badRequest(c, fmt.Errorf("light intensity must not be negative, got %g", light.Intensity))
	}

	if light.Intensity == 0 {
		s.render.SetLight(nil)
	} else {
		s.render.SetLight(light)
	}
	logger.Infof("Light set to %+v", *light)
	return c.JSON(http.StatusOK, light)
}

// EnvironmentRequest edits the environment
type EnvironmentRequest struct {
	Multiplier float64 `json:"multiplier"`
}

func (s *Server) handlePutEnvironment(c echo.Context) error {
	req := EnvironmentRequest{Multiplier: s.render.EnvironmentMultiplier()}
	if err := c.Bind(&req); err != nil {
		return err
	}
	if req.Multiplier < 0 {
		return badRequest(c, fmt.Errorf("environment multiplier must not be negative, got %g", req.Multiplier))
	}
	s.render.SetEnvironmentMultiplier(req.Multiplier)
	return c.JSON(http.StatusOK, req)
}

// ResizeRequest carries a new window size
type ResizeRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s *Server) handleResize(c echo.Context) error {
	var req ResizeRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := s.render.Resize(req.Width, req.Height); err != nil {
		return badRequest(c, err)
	}
	return c.JSON(http.StatusOK, s.render.Stats())
}

func (s *Server) handleRestart(c echo.Context) error {
	s.render.Restart()
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleGetMaterials(c echo.Context) error {
	var materials []material.Params
	s.render.Read(func() {
		for _, m := range s.scene.Materials {
			materials = append(materials, *m)
		}
	})
	return c.JSON(http.StatusOK, materials)
}

// handlePutMaterial replaces the parameters of a named material. The edit is
// applied between passes.
func (s *Server) handlePutMaterial(c echo.Context) error {
	name := c.Param("name")
	if s.scene.Material(name) == nil {
		return c.JSON(http.StatusNotFound, errorResponse{Error: fmt.Sprintf("unknown material %q", name)})
	}

	var params material.Params
	var err error
	s.render.Read(func() {
		params = *s.scene.Material(name)
	})
	if err := c.Bind(&params); err != nil {
		return err
	}

	s.render.Update(func() {
		err = s.scene.UpdateMaterial(name, params)
		params = *s.scene.Material(name)
	})
	if err != nil {
		return badRequest(c, err)
	}
	logger.Infof("Material %s updated", name)
	return c.JSON(http.StatusOK, params)
}
