package dialect

import (
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// TranslateRequest rewrites an inbound OpenAI-compatible chat/completions
// body (dialect A) into the shape target expects, setting the model field
// to nativeModelID. Untouched fields survive byte-for-byte because the
// rewrite is surgical (gjson reads, sjson writes) rather than a full
// marshal/unmarshal round trip.
func TranslateRequest(body []byte, target Dialect, nativeModelID string) ([]byte, error) {
	switch target {
	case OpenAI:
		return translateToOpenAI(body, nativeModelID)
	case Anthropic:
		return translateToAnthropic(body, nativeModelID)
	case Gemini:
		return translateToGemini(body, nativeModelID)
	default:
		return body, nil
	}
}

func translateToOpenAI(body []byte, nativeModelID string) ([]byte, error) {
	out, err := sjson.SetBytes(body, "model", nativeModelID)
	if err != nil {
		return nil, err
	}

	messages := gjson.GetBytes(out, "messages")
	if messages.IsArray() {
		newMessages := "[]"
		messages.ForEach(func(_, msg gjson.Result) bool {
			role := RemapRole(msg.Get("role").String())
			raw := msg.Raw
			raw, _ = sjson.Set(raw, "role", role)
			newMessages, _ = sjson.SetRaw(newMessages, "-1", raw)
			return true
		})
		out, err = sjson.SetRawBytes(out, "messages", []byte(newMessages))
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// translateToAnthropic extracts every system-role message into a
// top-level "system" string, coerces the remainder to alternating
// user/assistant turns, and defaults max_tokens if absent.
//
// Anthropic's /v1/messages rejects a request where two consecutive turns
// share a role (a 400), which a normalized tool-result conversation can
// easily produce (e.g. two tool results both surfaced as back-to-back
// "user" turns). So consecutive same-role turns are merged into one,
// their content joined by a blank line, rather than just role-remapped.
func translateToAnthropic(body []byte, nativeModelID string) ([]byte, error) {
	out, err := sjson.SetBytes(body, "model", nativeModelID)
	if err != nil {
		return nil, err
	}

	messages := gjson.GetBytes(out, "messages")
	var systemParts []string
	type turn struct {
		role    string
		content string
	}
	var turns []turn

	if messages.IsArray() {
		messages.ForEach(func(_, msg gjson.Result) bool {
			role := RemapRole(msg.Get("role").String())
			content := msg.Get("content").String()
			if role == "system" {
				systemParts = append(systemParts, content)
				return true
			}
			if role != "user" && role != "assistant" {
				role = "user"
			}
			if n := len(turns); n > 0 && turns[n-1].role == role {
				turns[n-1].content = turns[n-1].content + "\n\n" + content
				return true
			}
			turns = append(turns, turn{role: role, content: content})
			return true
		})
	}

	newMessages := "[]"
	for _, t := range turns {
		entry := `{}`
		entry, _ = sjson.Set(entry, "role", t.role)
		entry, _ = sjson.Set(entry, "content", t.content)
		newMessages, _ = sjson.SetRaw(newMessages, "-1", entry)
	}

	out, err = sjson.SetRawBytes(out, "messages", []byte(newMessages))
	if err != nil {
		return nil, err
	}

	if len(systemParts) > 0 {
		out, err = sjson.SetBytes(out, "system", strings.Join(systemParts, "\n\n"))
		if err != nil {
			return nil, err
		}
	}

	if !gjson.GetBytes(out, "max_tokens").Exists() {
		out, err = sjson.SetBytes(out, "max_tokens", 4096)
		if err != nil {
			return nil, err
		}
	}

	// Anthropic's wire format has no top-level "model" conflict with
	// OpenAI-only fields like "frequency_penalty"; leave unrecognized
	// fields as-is, the upstream API ignores fields it doesn't understand.
	return out, nil
}

// translateToGemini transforms each message into Gemini's content-part
// tree and maps the stream flag to the caller's responsibility (the proxy
// appends ?alt=sse / streamGenerateContent to the URL; this function only
// rewrites the body).
func translateToGemini(body []byte, nativeModelID string) ([]byte, error) {
	out, err := sjson.SetBytes(body, "model", nativeModelID)
	if err != nil {
		return nil, err
	}

	messages := gjson.GetBytes(out, "messages")
	contents := "[]"
	var systemParts []string

	if messages.IsArray() {
		first := true
		messages.ForEach(func(_, msg gjson.Result) bool {
			role := RemapRole(msg.Get("role").String())
			text := msg.Get("content").String()
			if role == "system" {
				systemParts = append(systemParts, text)
				return true
			}
			geminiRole := "user"
			if role == "assistant" {
				geminiRole = "model"
			}
			if first && geminiRole != "user" {
				// Gemini requires the first turn to be user-authored.
				injected := `{"role":"user","parts":[{"text":"(continuing conversation)"}]}`
				contents, _ = sjson.SetRaw(contents, "-1", injected)
			}
			first = false

			entry := `{}`
			entry, _ = sjson.Set(entry, "role", geminiRole)
			entry, _ = sjson.SetRaw(entry, "parts", `[{}]`)
			entry, _ = sjson.Set(entry, "parts.0.text", text)
			contents, _ = sjson.SetRaw(contents, "-1", entry)
			return true
		})
	}

	out, err = sjson.SetRawBytes(out, "contents", []byte(contents))
	if err != nil {
		return nil, err
	}
	out, err = sjson.DeleteBytes(out, "messages")
	if err != nil {
		return nil, err
	}

	if len(systemParts) > 0 {
		sysObj := `{"parts":[{}]}`
		sysObj, _ = sjson.Set(sysObj, "parts.0.text", strings.Join(systemParts, "\n\n"))
		out, err = sjson.SetRawBytes(out, "systemInstruction", []byte(sysObj))
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}
