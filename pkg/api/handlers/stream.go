package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"crimewatch/pkg/store"
)

// sseKeepalive is how often an idle stream emits a comment line so that
// intermediaries don't reap the connection.
const sseKeepalive = 25 * time.Second

type sseWriter struct {
	w http.ResponseWriter
	f http.Flusher
}

// startSSE switches the response into server-sent-event mode.
func startSSE(w http.ResponseWriter) (*sseWriter, error) {
	f, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support flushing")
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	f.Flush()
	return &sseWriter{w: w, f: f}, nil
}

func (s *sseWriter) send(event string, data []byte) error {
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	s.f.Flush()
	return nil
}

func (s *sseWriter) comment() error {
	if _, err := fmt.Fprint(s.w, ": keepalive\n\n"); err != nil {
		return err
	}
	s.f.Flush()
	return nil
}

// pump forwards broker events to the stream until the subscription closes,
// the client goes away or a write fails.
func (s *sseWriter) pump(ctx context.Context, events <-chan store.Event) {
	ticker := time.NewTicker(sseKeepalive)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := s.send(ev.Kind, ev.Data); err != nil {
				return
			}
		case <-ticker.C:
			if err := s.comment(); err != nil {
				return
			}
		}
	}
}
