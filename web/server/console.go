package server

import (
	"bytes"
	"strings"
	"sync"
	"time"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "warning", "error"
}

// Console is a log sink that forwards complete lines to the preview clients.
// It never blocks the logger: messages are dropped when the channel is full.
type Console struct {
	mu      sync.Mutex
	pending []byte
	out     chan ConsoleMessage
}

// NewConsole creates a console buffering up to size messages
func NewConsole(size int) *Console {
	return &Console{out: make(chan ConsoleMessage, size)}
}

// Messages returns the channel console messages are delivered on
func (c *Console) Messages() <-chan ConsoleMessage {
	return c.out
}

// Write implements io.Writer so the console can be installed with log.SetSink
func (c *Console) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending = append(c.pending, p...)
	for {
		i := bytes.IndexByte(c.pending, '\n')
		if i < 0 {
			break
		}
		line := string(c.pending[:i])
		c.pending = c.pending[i+1:]
		if line == "" {
			continue
		}

		select {
		case c.out <- ConsoleMessage{Message: line, Timestamp: time.Now(), Level: levelOf(line)}:
		default:
			// Channel full, skip (don't block)
		}
	}
	return len(p), nil
}

// levelOf reads the level tag written by the log formatter
func levelOf(line string) string {
	switch {
	case strings.Contains(line, "[ERROR]") || strings.Contains(line, "[CRITICAL]"):
		return "error"
	case strings.Contains(line, "[WARNING]"):
		return "warning"
	default:
		return "info"
	}
}
