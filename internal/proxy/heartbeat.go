package proxy

import (
	"io"
	"net/http"
	"time"
)

// heartbeatInterval is the steady-state cadence of ": heartbeat\n\n"
// comment frames that keep intermediaries from closing an idle SSE
// connection while we wait on the upstream's first byte. startHeartbeat
// fires one frame immediately on top of this ticker, since clients expect
// the stream to open within milliseconds, not after a full interval.
const heartbeatInterval = 2 * time.Second

// heartbeatWriter emits an immediate SSE comment frame followed by more on
// a ticker, until stop is called or a write fails, whichever comes first.
// It never reorders the real payload: stop() blocks until the heartbeat
// goroutine has exited, so the caller can safely start writing payload
// bytes right after.
type heartbeatWriter struct {
	stopCh chan struct{}
	doneCh chan struct{}
}

func startHeartbeat(w io.Writer, flusher http.Flusher) *heartbeatWriter {
	hb := &heartbeatWriter{stopCh: make(chan struct{}), doneCh: make(chan struct{})}
	if _, err := w.Write([]byte(": heartbeat\n\n")); err == nil {
		flusher.Flush()
	}
	go func() {
		defer close(hb.doneCh)
		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-hb.stopCh:
				return
			case <-ticker.C:
				if _, err := w.Write([]byte(": heartbeat\n\n")); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}()
	return hb
}

func (hb *heartbeatWriter) stop() {
	select {
	case <-hb.stopCh:
	default:
		close(hb.stopCh)
	}
	<-hb.doneCh
}
