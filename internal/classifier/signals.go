package classifier

import (
	"strings"

	"github.com/dlclark/regexp2"
)

// reasoningCuePatterns are multilingual hints that a prompt wants worked-out
// reasoning rather than a lookup answer. Kept as data, not code, so new
// scripts/languages can be added without touching Classify's logic -
// mirrors the data-driven retry-signal tables the teacher uses for
// fallback detection (see internal/proxy/retry.go).
var reasoningCuePatterns = compilePatterns([]string{
	`(?i)step[- ]by[- ]step`,
	`(?i)\bprove\b`,
	`(?i)\bderive\b`,
	`(?i)chain[- ]of[- ]thought`,
	`(?i)\breason(ing)? through\b`,
	`(?i)\bwalk me through\b`,
	`(?i)\bwork(ing)? out\b`,
	`一步一步`,            // Chinese: "step by step"
	`推理`,              // Chinese: "reasoning"
	`шаг за шагом`,     // Russian: "step by step"
	`докажи`,           // Russian: "prove"
	`Schritt für Schritt`, // German: "step by step"
	`beweise`,          // German: "prove"
})

// structuredOutputPatterns flag requests for a specific output shape.
var structuredOutputPatterns = compilePatterns([]string{
	`(?i)\bjson\b`,
	`(?i)\byaml\b`,
	`(?i)\bschema\b`,
	`(?i)respond in\b`,
	`(?i)format (the |your )?(response|answer|output) as\b`,
})

// codeBlockPatterns flag code fences or inline regex-like content.
var codeBlockPatterns = compilePatterns([]string{
	"```",
	`(?i)\bfunction\b.*\{`,
	`(?i)\bdef \w+\(`,
})

// greetingPatterns flag trivially short social openers.
var greetingPatterns = compilePatterns([]string{
	`(?i)^(hi|hello|hey|thanks|thank you|ok|okay)[!.]*$`,
})

func compilePatterns(exprs []string) []*regexp2.Regexp {
	out := make([]*regexp2.Regexp, 0, len(exprs))
	for _, e := range exprs {
		re, err := regexp2.Compile(e, regexp2.None)
		if err != nil {
			// A bad pattern in the data table is a programmer error, not a
			// request-time failure; skip it rather than panic on a hot path.
			continue
		}
		out = append(out, re)
	}
	return out
}

func anyMatch(patterns []*regexp2.Regexp, s string) bool {
	for _, re := range patterns {
		if ok, _ := re.MatchString(s); ok {
			return true
		}
	}
	return false
}

// isInterrogative reports whether s reads as a direct question.
func isInterrogative(s string) bool {
	trimmed := strings.TrimSpace(s)
	if strings.HasSuffix(trimmed, "?") {
		return true
	}
	lower := strings.ToLower(trimmed)
	for _, lead := range []string{"who ", "what ", "when ", "why ", "how ", "where ", "which "} {
		if strings.HasPrefix(lower, lead) {
			return true
		}
	}
	return false
}
