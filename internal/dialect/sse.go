package dialect

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Frame is one parsed Server-Sent-Events message.
type Frame struct {
	Event string // from an "event:" line, if present
	Data  string // concatenated "data:" line(s), newline-joined
}

// vendorKeepaliveData marks frames that are not valid to forward to a
// strict OpenAI-compatible client: vendor comment/keepalive frames that
// ride inside an otherwise OpenAI-shaped SSE stream from the aggregator
// gateway.
var vendorKeepaliveData = map[string]bool{
	": PROCESSING": true,
}

// NextFrame reads the next SSE event from r, grounded on the teacher's
// nextSSEEvent helper in internal/gateway/handler.go. Returns io.EOF (via
// bufio) when the stream ends.
func NextFrame(r *bufio.Reader) (Frame, error) {
	var f Frame
	var dataLines []string
	for {
		line, err := r.ReadString('\n')
		trimmed := strings.TrimRight(line, "\r\n")

		if trimmed == "" {
			if len(dataLines) > 0 || f.Event != "" {
				f.Data = strings.Join(dataLines, "\n")
				return f, nil
			}
			if err != nil {
				return f, err
			}
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "event:"):
			f.Event = strings.TrimSpace(strings.TrimPrefix(trimmed, "event:"))
		case strings.HasPrefix(trimmed, "data:"):
			dataLines = append(dataLines, strings.TrimSpace(strings.TrimPrefix(trimmed, "data:")))
		}

		if err != nil {
			if len(dataLines) > 0 || f.Event != "" {
				f.Data = strings.Join(dataLines, "\n")
				return f, nil
			}
			return f, err
		}
	}
}

// IsVendorKeepalive reports whether data is a vendor comment/keepalive
// frame that must be dropped rather than forwarded.
func IsVendorKeepalive(data string) bool {
	return vendorKeepaliveData[strings.TrimSpace(data)]
}

// StreamState threads state across a sequence of TranslateStreamFrame
// calls belonging to one stream, so a frame late in the stream can know
// whether an earlier one already announced the assistant role. Callers
// create one zero-value StreamState per upstream connection and reuse it
// for every frame of that connection.
type StreamState struct {
	RoleSent bool
}

// TranslateStreamFrame converts one upstream SSE data payload (already
// extracted from "data: ...") from source dialect into zero or more
// OpenAI-compatible chat.completion.chunk JSON payloads, plus usage if this
// frame carried it and whether the stream is now finished.
//
// OpenAI-sourced frames pass through after thinking-block stripping (the
// origin already emits its own role delta, so state is untouched);
// Anthropic and Gemini frames are reshaped into OpenAI's delta-chunk
// envelope, mirroring internal/gateway/handler.go's sseUsageParser logic
// but generalized across dialects instead of being Anthropic-specific.
func TranslateStreamFrame(data string, source Dialect, requestID, modelID string, state *StreamState) (chunks []string, usage *Usage, done bool) {
	if data == "[DONE]" {
		return nil, nil, true
	}

	switch source {
	case OpenAI:
		cleaned := stripThinkingFromChunkJSON(data)
		return []string{cleaned}, extractOpenAIStreamUsage(data), false
	case Anthropic:
		return anthropicStreamToOpenAI(data, requestID, modelID, state)
	case Gemini:
		return geminiStreamToOpenAI(data, requestID, modelID, state)
	default:
		return []string{data}, nil, false
	}
}

func stripThinkingFromChunkJSON(data string) string {
	content := gjson.Get(data, "choices.0.delta.content")
	if !content.Exists() {
		return data
	}
	out, err := sjson.Set(data, "choices.0.delta.content", StripThinking(content.String()))
	if err != nil {
		return data
	}
	return out
}

func extractOpenAIStreamUsage(data string) *Usage {
	u := gjson.Get(data, "usage")
	if !u.Exists() {
		return nil
	}
	return &Usage{
		InputTokens:  int(u.Get("prompt_tokens").Int()),
		OutputTokens: int(u.Get("completion_tokens").Int()),
	}
}

// anthropicStreamToOpenAI handles the message_start / content_block_delta /
// message_delta / message_stop event family, grounded on
// anthropicSSEPayload / sseUsageParser.applyUsage in the teacher.
//
// message_start is where Anthropic puts the turn's role; OpenAI-compatible
// clients expect that as a leading delta.role chunk, so it's translated
// into one here instead of being dropped.
func anthropicStreamToOpenAI(data, requestID, modelID string, state *StreamState) ([]string, *Usage, bool) {
	eventType := gjson.Get(data, "type").String()

	switch eventType {
	case "message_start":
		if state.RoleSent {
			return nil, nil, false
		}
		state.RoleSent = true
		chunk := newChunk(requestID, modelID)
		chunk, _ = sjson.Set(chunk, "choices.0.delta.role", "assistant")
		return []string{chunk}, nil, false

	case "content_block_delta":
		text := gjson.Get(data, "delta.text").String()
		if text == "" {
			return nil, nil, false
		}
		chunk := newChunk(requestID, modelID)
		if !state.RoleSent {
			state.RoleSent = true
			chunk, _ = sjson.Set(chunk, "choices.0.delta.role", "assistant")
		}
		chunk, _ = sjson.Set(chunk, "choices.0.delta.content", StripThinking(text))
		return []string{chunk}, nil, false

	case "message_delta":
		usage := &Usage{
			OutputTokens: int(gjson.Get(data, "usage.output_tokens").Int()),
		}
		return nil, usage, false

	case "message_stop":
		chunk := newChunk(requestID, modelID)
		chunk, _ = sjson.Set(chunk, "choices.0.finish_reason", "stop")
		return []string{chunk}, nil, true

	default:
		return nil, nil, false
	}
}

func geminiStreamToOpenAI(data, requestID, modelID string, state *StreamState) ([]string, *Usage, bool) {
	text := gjson.Get(data, "candidates.0.content.parts.0.text").String()
	var chunks []string
	if text != "" {
		chunk := newChunk(requestID, modelID)
		if !state.RoleSent {
			state.RoleSent = true
			chunk, _ = sjson.Set(chunk, "choices.0.delta.role", "assistant")
		}
		chunk, _ = sjson.Set(chunk, "choices.0.delta.content", StripThinking(text))
		chunks = append(chunks, chunk)
	}

	var usage *Usage
	if u := gjson.Get(data, "usageMetadata"); u.Exists() {
		usage = &Usage{
			InputTokens:  int(u.Get("promptTokenCount").Int()),
			OutputTokens: int(u.Get("candidatesTokenCount").Int()),
		}
	}

	finish := gjson.Get(data, "candidates.0.finishReason").String()
	done := finish != "" && finish != "FINISH_REASON_UNSPECIFIED"
	if done {
		chunk := newChunk(requestID, modelID)
		chunk, _ = sjson.Set(chunk, "choices.0.finish_reason", "stop")
		chunks = append(chunks, chunk)
	}
	return chunks, usage, done
}

func newChunk(requestID, modelID string) string {
	chunk := `{"object":"chat.completion.chunk","choices":[{"index":0,"delta":{}}]}`
	chunk, _ = sjson.Set(chunk, "id", requestID)
	chunk, _ = sjson.Set(chunk, "model", modelID)
	return chunk
}

// FormatSSE wraps a JSON payload as an outbound "data: ...\n\n" frame.
func FormatSSE(payload string) []byte {
	var b bytes.Buffer
	b.WriteString("data: ")
	b.WriteString(payload)
	b.WriteString("\n\n")
	return b.Bytes()
}

// DoneFrame is the terminating SSE frame for an OpenAI-compatible stream.
func DoneFrame() []byte {
	return []byte("data: [DONE]\n\n")
}
