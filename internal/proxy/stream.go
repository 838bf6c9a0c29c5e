package proxy

import (
	"bufio"
	"bytes"
	"io"
	"net/http"

	"github.com/llmrouter/router/internal/dedup"
	"github.com/llmrouter/router/internal/dialect"
	"github.com/rs/zerolog/log"
)

// streamResponse relays resp's upstream SSE body to w as an
// OpenAI-compatible chat.completion.chunk stream, emitting heartbeat
// comment frames until the first real frame arrives. Grounded on
// internal/gateway/handler.go's streamProxy loop.
//
// Every frame written to the client, heartbeat comments included, is also
// teed into a buffer, returned as a dedup.Response so a concurrent
// duplicate request can be replayed the exact bytes the first caller saw
// instead of a placeholder ack.
func (s *Server) streamResponse(w http.ResponseWriter, resp *http.Response, source dialect.Dialect, rc *requestContext) (dialect.Usage, dedup.Response) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	captured := dedupResponseFrom(http.StatusOK, w.Header(), nil)
	w.WriteHeader(http.StatusOK)

	flusher, ok := w.(http.Flusher)
	if !ok {
		// Can't stream without a flusher; drain and drop, nothing more we
		// can do for this client.
		_ = resp.Body.Close()
		return dialect.Usage{}, captured
	}

	var body bytes.Buffer
	out := io.MultiWriter(w, &body)

	hb := startHeartbeat(out, flusher)
	firstByteWritten := false
	var usage dialect.Usage
	streamState := &dialect.StreamState{}

	reader := bufio.NewReader(resp.Body)
	for {
		frame, err := dialect.NextFrame(reader)
		if frame.Data != "" && !dialect.IsVendorKeepalive(frame.Data) {
			chunks, frameUsage, done := dialect.TranslateStreamFrame(frame.Data, source, rc.requestID, rc.decision.Model, streamState)
			if frameUsage != nil {
				if frameUsage.InputTokens > 0 {
					usage.InputTokens = frameUsage.InputTokens
				}
				if frameUsage.OutputTokens > 0 {
					usage.OutputTokens = frameUsage.OutputTokens
				}
			}
			for _, chunk := range chunks {
				if !firstByteWritten {
					hb.stop()
					firstByteWritten = true
				}
				if _, werr := out.Write(dialect.FormatSSE(chunk)); werr != nil {
					if !firstByteWritten {
						hb.stop()
					}
					captured.Body = body.Bytes()
					return usage, captured
				}
				flusher.Flush()
			}
			if done {
				break
			}
		}
		if err != nil {
			break
		}
	}

	if !firstByteWritten {
		hb.stop()
	}
	if _, err := out.Write(dialect.DoneFrame()); err != nil {
		log.Debug().Err(err).Msg("proxy: client disconnected before [DONE]")
	}
	flusher.Flush()
	captured.Body = body.Bytes()
	return usage, captured
}

// replay writes a previously-completed dedup.Response verbatim to a new
// duplicate caller.
func replay(w http.ResponseWriter, resp dedup.Response) {
	for k, vs := range resp.Headers {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(resp.Body)
}

// dedupResponseFrom captures a completed response for replay to waiting
// duplicates.
func dedupResponseFrom(statusCode int, headers http.Header, body []byte) dedup.Response {
	return dedup.Response{StatusCode: statusCode, Headers: map[string][]string(headers), Body: append([]byte(nil), body...)}
}
