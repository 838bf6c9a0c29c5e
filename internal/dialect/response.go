package dialect

import (
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// anthropicStopReasons maps Anthropic's stop_reason vocabulary onto
// OpenAI's finish_reason vocabulary; anything unmapped passes through.
var anthropicStopReasons = map[string]string{
	"end_turn":      "stop",
	"max_tokens":    "length",
	"stop_sequence": "stop",
	"tool_use":      "tool_calls",
}

// TranslateNonStreamResponse converts a complete (non-streaming) upstream
// response body in source dialect into an OpenAI-compatible
// chat/completions response.
func TranslateNonStreamResponse(body []byte, source Dialect, requestID, modelID string) ([]byte, Usage, error) {
	switch source {
	case OpenAI:
		return stripThinkingFromOpenAIResponse(body), extractOpenAIUsage(body), nil
	case Anthropic:
		return anthropicToOpenAI(body, requestID, modelID)
	case Gemini:
		return geminiToOpenAI(body, requestID, modelID)
	default:
		return body, Usage{}, nil
	}
}

func stripThinkingFromOpenAIResponse(body []byte) []byte {
	content := gjson.GetBytes(body, "choices.0.message.content")
	if !content.Exists() {
		return body
	}
	cleaned := StripThinking(content.String())
	out, err := sjson.SetBytes(body, "choices.0.message.content", cleaned)
	if err != nil {
		return body
	}
	return out
}

func extractOpenAIUsage(body []byte) Usage {
	return Usage{
		InputTokens:  int(gjson.GetBytes(body, "usage.prompt_tokens").Int()),
		OutputTokens: int(gjson.GetBytes(body, "usage.completion_tokens").Int()),
	}
}

func anthropicToOpenAI(body []byte, requestID, modelID string) ([]byte, Usage, error) {
	var text string
	var toolCalls []gjson.Result
	content := gjson.GetBytes(body, "content")
	if content.IsArray() {
		content.ForEach(func(_, part gjson.Result) bool {
			switch part.Get("type").String() {
			case "text":
				text += part.Get("text").String()
			case "tool_use":
				toolCalls = append(toolCalls, part)
			}
			return true
		})
	}
	text = StripThinking(text)

	stopReason := gjson.GetBytes(body, "stop_reason").String()
	finishReason, ok := anthropicStopReasons[stopReason]
	if !ok {
		finishReason = stopReason
	}

	out := `{"object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant"},"finish_reason":""}]}`
	out, _ = sjson.Set(out, "id", requestID)
	out, _ = sjson.Set(out, "model", modelID)
	out, _ = sjson.Set(out, "choices.0.message.content", text)
	out, _ = sjson.Set(out, "choices.0.finish_reason", finishReason)

	if len(toolCalls) > 0 {
		calls := "[]"
		for _, tc := range toolCalls {
			id := SanitizeToolCallID(tc.Get("id").String())
			entry := `{"type":"function"}`
			entry, _ = sjson.Set(entry, "id", id)
			entry, _ = sjson.Set(entry, "function.name", tc.Get("name").String())
			entry, _ = sjson.Set(entry, "function.arguments", tc.Get("input").Raw)
			calls, _ = sjson.SetRaw(calls, "-1", entry)
		}
		out, _ = sjson.SetRaw(out, "choices.0.message.tool_calls", calls)
	}

	usage := Usage{
		InputTokens:         int(gjson.GetBytes(body, "usage.input_tokens").Int()),
		OutputTokens:        int(gjson.GetBytes(body, "usage.output_tokens").Int()),
		CacheCreationTokens: int(gjson.GetBytes(body, "usage.cache_creation_input_tokens").Int()),
		CacheReadTokens:     int(gjson.GetBytes(body, "usage.cache_read_input_tokens").Int()),
	}
	out, _ = sjson.Set(out, "usage.prompt_tokens", usage.InputTokens)
	out, _ = sjson.Set(out, "usage.completion_tokens", usage.OutputTokens)

	return []byte(out), usage, nil
}

func geminiToOpenAI(body []byte, requestID, modelID string) ([]byte, Usage, error) {
	var text string
	parts := gjson.GetBytes(body, "candidates.0.content.parts")
	if parts.IsArray() {
		parts.ForEach(func(_, part gjson.Result) bool {
			text += part.Get("text").String()
			return true
		})
	}
	text = StripThinking(text)

	out := `{"object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant"},"finish_reason":"stop"}]}`
	out, _ = sjson.Set(out, "id", requestID)
	out, _ = sjson.Set(out, "model", modelID)
	out, _ = sjson.Set(out, "choices.0.message.content", text)

	usage := Usage{
		InputTokens:  int(gjson.GetBytes(body, "usageMetadata.promptTokenCount").Int()),
		OutputTokens: int(gjson.GetBytes(body, "usageMetadata.candidatesTokenCount").Int()),
	}
	out, _ = sjson.Set(out, "usage.prompt_tokens", usage.InputTokens)
	out, _ = sjson.Set(out, "usage.completion_tokens", usage.OutputTokens)

	return []byte(out), usage, nil
}
