package proxy

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/llmrouter/router/internal/dialect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sseResponse(body string) *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{},
	}
}

func TestStreamResponseOpenAIPassthrough(t *testing.T) {
	srv := &Server{}
	rec := httptest.NewRecorder()
	body := `data: {"choices":[{"index":0,"delta":{"content":"hi"}}],"model":"gpt-4o-mini"}` + "\n\n" +
		`data: [DONE]` + "\n\n"

	usage, captured := srv.streamResponse(rec, sseResponse(body), dialect.OpenAI, &requestContext{requestID: "req_1", decision: RoutingDecision{Model: "openai/gpt-4o-mini"}})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"content":"hi"`)
	assert.True(t, strings.HasSuffix(rec.Body.String(), "data: [DONE]\n\n"))
	assert.Equal(t, dialect.Usage{}, usage)
	assert.Equal(t, rec.Body.Bytes(), captured.Body)
	assert.Equal(t, []string{"text/event-stream"}, captured.Headers["Content-Type"])
}

func TestStreamResponseAnthropicTranslation(t *testing.T) {
	srv := &Server{}
	rec := httptest.NewRecorder()
	body := `data: {"type":"content_block_delta","delta":{"text":"hello"}}` + "\n\n" +
		`data: {"type":"message_delta","usage":{"output_tokens":7}}` + "\n\n" +
		`data: {"type":"message_stop"}` + "\n\n"

	usage, _ := srv.streamResponse(rec, sseResponse(body), dialect.Anthropic, &requestContext{requestID: "req_1", decision: RoutingDecision{Model: "anthropic/claude-haiku-4-5"}})

	out := rec.Body.String()
	assert.Contains(t, out, `"content":"hello"`)
	assert.Contains(t, out, `"finish_reason":"stop"`)
	assert.True(t, strings.HasSuffix(out, "data: [DONE]\n\n"))
	assert.Equal(t, 7, usage.OutputTokens)
}

func TestStreamResponseSkipsVendorKeepalive(t *testing.T) {
	srv := &Server{}
	rec := httptest.NewRecorder()
	body := "data: : PROCESSING\n\n" +
		`data: {"choices":[{"index":0,"delta":{"content":"ok"}}]}` + "\n\n" +
		"data: [DONE]\n\n"

	srv.streamResponse(rec, sseResponse(body), dialect.OpenAI, &requestContext{requestID: "req_1", decision: RoutingDecision{Model: "openai/gpt-4o-mini"}})

	out := rec.Body.String()
	assert.NotContains(t, out, "PROCESSING")
	assert.Contains(t, out, `"content":"ok"`)
}

func TestStreamResponseCapturesBytesForDedupReplay(t *testing.T) {
	srv := &Server{}
	rec := httptest.NewRecorder()
	body := `data: {"type":"content_block_delta","delta":{"text":"hello"}}` + "\n\n" +
		`data: {"type":"message_stop"}` + "\n\n"

	_, captured := srv.streamResponse(rec, sseResponse(body), dialect.Anthropic, &requestContext{requestID: "req_1", decision: RoutingDecision{Model: "anthropic/claude-haiku-4-5"}})

	replayRec := httptest.NewRecorder()
	replay(replayRec, captured)

	assert.Equal(t, rec.Body.Bytes(), replayRec.Body.Bytes())
	assert.Equal(t, rec.Body.String(), replayRec.Body.String())
	assert.Contains(t, replayRec.Body.String(), `"content":"hello"`)
}

type nonFlushingWriter struct {
	header http.Header
	code   int
	body   strings.Builder
}

func (w *nonFlushingWriter) Header() http.Header         { return w.header }
func (w *nonFlushingWriter) Write(b []byte) (int, error) { return w.body.Write(b) }
func (w *nonFlushingWriter) WriteHeader(code int)        { w.code = code }

func TestStreamResponseWithoutFlusherReturnsEmptyUsage(t *testing.T) {
	srv := &Server{}
	w := &nonFlushingWriter{header: http.Header{}}
	body := `data: {"choices":[{"index":0,"delta":{"content":"hi"}}]}` + "\n\n"

	usage, _ := srv.streamResponse(w, sseResponse(body), dialect.OpenAI, &requestContext{requestID: "req_1"})

	assert.Equal(t, dialect.Usage{}, usage)
	assert.Empty(t, w.body.String())
}

func TestReplayWritesStoredResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	resp := dedupResponseFrom(http.StatusOK, http.Header{"Content-Type": {"application/json"}}, []byte(`{"ok":true}`))
	replay(rec, resp)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"ok":true`)
}
