// Package heartbeat tracks whether a taskwise server process is still
// running by stamping a small JSON file on disk at a fixed cadence.
package heartbeat

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Status classifies the last observed heartbeat.
type Status string

const (
	StatusAlive Status = "alive"
	StatusStale Status = "stale"
	StatusDead  Status = "dead"
)

const pulseInterval = 20 * time.Second

// Heartbeat is the on-disk record stamped by a running server.
type Heartbeat struct {
	PID       int       `json:"pid"`
	StartedAt time.Time `json:"started_at"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    string    `json:"uptime"`
}

// Writer stamps the heartbeat file until stopped.
type Writer struct {
	path    string
	started time.Time

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Start launches the stamping goroutine. Calling Start on a running
// writer is a no-op.
func (w *Writer) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stop != nil {
		return
	}

	w.started = time.Now()
	w.stop = make(chan struct{})
	w.done = make(chan struct{})
	w.stamp()

	go w.run(w.stop, w.done)
}

func (w *Writer) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(pulseInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			w.stamp()
		case <-stop:
			return
		}
	}
}

// Stop halts stamping, waits for the goroutine to exit, and removes the
// heartbeat file so a later Check reports dead rather than stale.
func (w *Writer) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stop == nil {
		return
	}

	close(w.stop)
	<-w.done
	w.stop = nil

	os.Remove(w.path)
}

// stamp writes via a temp file so readers never see a partial record.
func (w *Writer) stamp() {
	hb := Heartbeat{
		PID:       os.Getpid(),
		StartedAt: w.started,
		Timestamp: time.Now(),
		Uptime:    time.Since(w.started).Truncate(time.Second).String(),
	}
	data, err := json.Marshal(hb)
	if err != nil {
		return
	}

	tmp := w.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return
	}
	os.Rename(tmp, w.path)
}

// Check inspects the heartbeat file at path. No file means the server is
// dead; a record older than maxAge means it stopped stamping without
// cleaning up, likely a crash or a hung process.
func Check(path string, maxAge time.Duration) (Status, *Heartbeat, error) {
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return StatusDead, nil, nil
	case err != nil:
		return StatusDead, nil, fmt.Errorf("read heartbeat: %w", err)
	}

	var hb Heartbeat
	if err := json.Unmarshal(data, &hb); err != nil {
		return StatusDead, nil, fmt.Errorf("decode heartbeat: %w", err)
	}

	if time.Since(hb.Timestamp) > maxAge {
		return StatusStale, &hb, nil
	}
	return StatusAlive, &hb, nil
}
