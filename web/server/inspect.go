package server

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/df07/go-progressive-pathtracer/pkg/material"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
)

// InspectResponse describes what the camera sees through one pixel
type InspectResponse struct {
	Hit      bool             `json:"hit"`
	Mesh     string           `json:"mesh,omitempty"`
	Material *material.Params `json:"material,omitempty"`
	Point    [3]float64       `json:"point"`
	Normal   [3]float64       `json:"normal"`
	Distance float64          `json:"distance"`
}

// handleInspect casts a ray through a pixel of the accumulation image. x and
// y count from the top-left corner as the image is displayed.
func (s *Server) handleInspect(c echo.Context) error {
	w, h := s.render.ImageSize()
	if w == 0 || h == 0 {
		return badRequest(c, fmt.Errorf("no image to inspect"))
	}

	x, err := parseIntParam(c.QueryParams(), "x", 0, 0, w-1)
	if err != nil {
		return badRequest(c, err)
	}
	y, err := parseIntParam(c.QueryParams(), "y", 0, 0, h-1)
	if err != nil {
		return badRequest(c, err)
	}

	return c.JSON(http.StatusOK, s.inspectPixel(x, y, w, h))
}

// inspectPixel resolves the closest hit through the pixel center
func (s *Server) inspectPixel(x, y, w, h int) InspectResponse {
	cam := s.Camera()
	winW, winH := s.render.WindowSize()
	proj := cam.Projection(float64(winW) / float64(winH))

	// Image row 0 is the bottom of the view
	ray := renderer.PrimaryRay(cam.View(), proj, w, h, float64(x)+0.5, float64(h-1-y)+0.5)

	acc := s.scene.Accelerator
	if !acc.Intersect(&ray) {
		return InspectResponse{}
	}

	var resp InspectResponse
	s.render.Read(func() {
		hit := acc.Resolve(ray)
		mat := *hit.Material
		resp = InspectResponse{
			Hit:      true,
			Mesh:     acc.Meshes()[ray.GeomID].Name,
			Material: &mat,
			Point:    [3]float64{hit.Position.X, hit.Position.Y, hit.Position.Z},
			Normal:   [3]float64{hit.ShadingNormal.X, hit.ShadingNormal.Y, hit.ShadingNormal.Z},
			Distance: ray.TFar,
		}
	})
	return resp
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}
