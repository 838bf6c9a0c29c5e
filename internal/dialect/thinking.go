package dialect

import "github.com/dlclark/regexp2"

// thinkingBlockPatterns strip "thinking" content the client should never
// see: paired tags, stray tags of the same names, and sentinel-wrapped
// blocks. Kept as data (not code) per the teacher's own preference for
// data-driven pattern tables over hardcoded string logic (see
// internal/auth/anthropic/handler.go's ShouldFallback signal list).
var thinkingBlockPatterns = mustCompileAll([]string{
	`(?is)<think>.*?</think>`,
	`(?is)<thinking>.*?</thinking>`,
	`(?is)<thought>.*?</thought>`,
	`(?is)<antthinking>.*?</antthinking>`,
	`(?i)</?think>`,
	`(?i)</?thinking>`,
	`(?i)</?thought>`,
	`(?i)</?antthinking>`,
	`(?s)<｜begin_[^｜]*｜>.*?<｜end_[^｜]*｜>`,
	`<｜[^｜]*｜>`,
})

func mustCompileAll(exprs []string) []*regexp2.Regexp {
	out := make([]*regexp2.Regexp, 0, len(exprs))
	for _, e := range exprs {
		re, err := regexp2.Compile(e, regexp2.None)
		if err != nil {
			continue
		}
		out = append(out, re)
	}
	return out
}

// StripThinking removes every thinking-block pattern from content.
func StripThinking(content string) string {
	for _, re := range thinkingBlockPatterns {
		out, err := re.Replace(content, "", -1, -1)
		if err == nil {
			content = out
		}
	}
	return content
}

// toolCallIDPattern matches characters not allowed in a sanitized tool-call
// id.
var toolCallIDPattern = mustCompileAll([]string{`[^A-Za-z0-9_-]`})[0]

// SanitizeToolCallID replaces characters outside [A-Za-z0-9_-] with '_', as
// required by at least one dialect's strict validator.
func SanitizeToolCallID(id string) string {
	out, err := toolCallIDPattern.Replace(id, "_", -1, -1)
	if err != nil {
		return id
	}
	return out
}

// RemapRole normalizes nonstandard roles: developer->system, model->assistant,
// anything unrecognized collapses to user.
func RemapRole(role string) string {
	switch role {
	case "system", "user", "assistant", "tool":
		return role
	case "developer":
		return "system"
	case "model":
		return "assistant"
	default:
		return "user"
	}
}
