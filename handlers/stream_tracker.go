package handlers

import (
	"net/http"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"showstream/api"
)

// StreamTracker tracks in-flight episode streams for the /streams endpoint.
type StreamTracker struct {
	mu      sync.RWMutex
	streams map[string]*trackedStream
}

type trackedStream struct {
	ID            string
	Path          string
	Filename      string
	ClientIP      string
	UserAgent     string
	StartTime     time.Time
	ContentLength int64
	RangeStart    int64
	RangeEnd      int64
	bytes         int64
}

// ActiveStream is a point-in-time snapshot of a tracked stream.
type ActiveStream struct {
	ID            string    `json:"id"`
	Filename      string    `json:"filename"`
	ClientIP      string    `json:"clientIp"`
	UserAgent     string    `json:"userAgent"`
	StartedAt     time.Time `json:"startedAt"`
	ContentLength int64     `json:"contentLength"`
	BytesStreamed int64     `json:"bytesStreamed"`
	RangeStart    int64     `json:"rangeStart"`
	RangeEnd      int64     `json:"rangeEnd"`
}

// NewStreamTracker creates an empty tracker.
func NewStreamTracker() *StreamTracker {
	return &StreamTracker{streams: make(map[string]*trackedStream)}
}

// Start registers a stream and returns its ID along with the byte counter the
// response writer increments.
func (t *StreamTracker) Start(r *http.Request, path string, contentLength, rangeStart, rangeEnd int64) (string, *int64) {
	s := &trackedStream{
		ID:            uuid.NewString(),
		Path:          path,
		Filename:      filepath.Base(path),
		ClientIP:      api.ClientIP(r),
		UserAgent:     r.UserAgent(),
		StartTime:     time.Now(),
		ContentLength: contentLength,
		RangeStart:    rangeStart,
		RangeEnd:      rangeEnd,
	}

	t.mu.Lock()
	t.streams[s.ID] = s
	t.mu.Unlock()
	return s.ID, &s.bytes
}

// End removes a stream from tracking.
func (t *StreamTracker) End(id string) {
	t.mu.Lock()
	delete(t.streams, id)
	t.mu.Unlock()
}

// Active returns snapshots of all in-flight streams.
func (t *StreamTracker) Active() []ActiveStream {
	t.mu.RLock()
	defer t.mu.RUnlock()

	active := make([]ActiveStream, 0, len(t.streams))
	for _, s := range t.streams {
		active = append(active, ActiveStream{
			ID:            s.ID,
			Filename:      s.Filename,
			ClientIP:      s.ClientIP,
			UserAgent:     s.UserAgent,
			StartedAt:     s.StartTime,
			ContentLength: s.ContentLength,
			BytesStreamed: atomic.LoadInt64(&s.bytes),
			RangeStart:    s.RangeStart,
			RangeEnd:      s.RangeEnd,
		})
	}
	return active
}

// Count returns the number of in-flight streams.
func (t *StreamTracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.streams)
}

// countingWriter wraps http.ResponseWriter to count streamed bytes.
type countingWriter struct {
	http.ResponseWriter
	bytes *int64
}

func (w *countingWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	if n > 0 {
		atomic.AddInt64(w.bytes, int64(n))
	}
	return n, err
}
