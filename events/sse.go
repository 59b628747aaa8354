package events

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/user/cookbook-go/logging"
)

// DefaultHeartbeat keeps idle connections open through proxies.
const DefaultHeartbeat = 25 * time.Second

// Stream serves one topic as text/event-stream until the client goes away or the broadcaster closes.
type Stream struct {
	broadcaster *Broadcaster
	heartbeat   time.Duration
}

// NewStream creates an SSE streamer over b.
func NewStream(b *Broadcaster, heartbeat time.Duration) *Stream {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}
	return &Stream{broadcaster: b, heartbeat: heartbeat}
}

// WriteFrame writes one SSE frame: id, event and a single-line JSON data field.
func WriteFrame(w http.ResponseWriter, ev Event) error {
	payload, err := json.Marshal(ev.Data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", ev.ID, ev.Type, payload)
	return err
}

// Serve subscribes to topic and streams events to w.
func (s *Stream) Serve(w http.ResponseWriter, r *http.Request, topic string) {
	rc := http.NewResponseController(w)
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	sub := s.broadcaster.Subscribe(topic)
	defer s.broadcaster.Unsubscribe(sub)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	// the write deadline set by http.Server would otherwise cut long-lived streams
	_ = rc.SetWriteDeadline(time.Time{})

	fmt.Fprintf(w, "retry: 3000\n: connected %s\n\n", sub.ID)
	if err := rc.Flush(); err != nil {
		logger.Warn(ctx, "sse flush unsupported", zap.Error(err))
		return
	}
	logger.Debug(ctx, "sse subscribed", zap.String("topic", topic), zap.String("subscription", sub.ID),
		zap.Int("listeners", s.broadcaster.SubscriberCount(topic)))

	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug(ctx, "sse client disconnected", zap.String("subscription", sub.ID))
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			if err := WriteFrame(w, ev); err != nil {
				logger.Warn(ctx, "sse write failed", zap.Error(err))
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}
