package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
)

// Interval between checks for work once the path cap has been reached
const idleInterval = 50 * time.Millisecond

// SSEEvent represents a unified SSE event for thread-safe writing
type SSEEvent struct {
	Type string `json:"type"` // "console", "pass", "error"
	Data string `json:"data"` // JSON-encoded data
}

// PassUpdate is sent to preview clients after every pass
type PassUpdate struct {
	SampleCount int                  `json:"sampleCount"`
	Stats       renderer.RenderStats `json:"stats"`
	ImageData   string               `json:"imageData"` // Base64 encoded PNG at window size
}

// Run traces passes until ctx is cancelled, publishing each one to the
// preview clients. It idles while the path cap is reached.
func (s *Server) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if s.tracePass() {
			s.publishPass()
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(idleInterval):
		}
	}
}

// tracePass renders one pass through the current camera
func (s *Server) tracePass() bool {
	return s.render.TraceCamera()
}

// windowImage returns the current image upscaled to the window size
func (s *Server) windowImage(smooth bool) image.Image {
	img := s.render.Snapshot().ToRGBA()
	w, h := s.render.WindowSize()
	if w == 0 || h == 0 || (w == img.Bounds().Dx() && h == img.Bounds().Dy()) {
		return img
	}
	return renderer.Upscale(img, w, h, smooth)
}

// publishPass sends the new image to every subscriber. Encoding is skipped
// when nobody is watching.
func (s *Server) publishPass() {
	if s.numSubscribers() == 0 {
		return
	}

	imageData, err := imageToBase64PNG(s.windowImage(false))
	if err != nil {
		logger.Errorf("Error encoding preview image: %v", err)
		return
	}
	stats := s.render.Stats()
	data, err := json.Marshal(PassUpdate{
		SampleCount: stats.SamplesPerPixel,
		Stats:       stats,
		ImageData:   imageData,
	})
	if err != nil {
		logger.Errorf("Error marshaling pass update: %v", err)
		return
	}
	s.broadcast(SSEEvent{Type: "pass", Data: string(data)})
}

// forwardConsole relays log lines to the preview clients
func (s *Server) forwardConsole(ctx context.Context) {
	for {
		select {
		case msg := <-s.console.Messages():
			data, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			s.broadcast(SSEEvent{Type: "console", Data: string(data)})
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) subscribe() chan SSEEvent {
	ch := make(chan SSEEvent, 16)
	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

func (s *Server) unsubscribe(ch chan SSEEvent) {
	s.mu.Lock()
	delete(s.subscribers, ch)
	s.mu.Unlock()
}

func (s *Server) numSubscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers)
}

// broadcast delivers an event to every subscriber without blocking. Slow
// clients miss events.
func (s *Server) broadcast(event SSEEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// handleRender streams pass updates and console messages via SSE until the
// client disconnects
func (s *Server) handleRender(c echo.Context) error {
	s.setSSEHeaders(c.Response())
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Flush()

	events := s.subscribe()
	defer s.unsubscribe(events)

	ctx := c.Request().Context()
	for {
		select {
		case event := <-events:
			if err := writeSSEEvent(c.Response(), event); err != nil {
				// Client disconnected during write
				return nil
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
}

// writeSSEEvent writes one event and flushes it to the client
func writeSSEEvent(w *echo.Response, event SSEEvent) error {
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
		return err
	}
	w.Flush()
	return nil
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
