package classifier

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken
)

// CountTokens returns a real BPE token count for s using the cl100k_base
// encoding, falling back to the teacher's len/4 heuristic
// (config.TokenEstimateRatio) if the encoder can't be constructed - token
// counting must never be fatal on the request path.
func CountTokens(s string) int {
	encOnce.Do(func() {
		e, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			enc = e
		}
	})
	if enc == nil {
		return len(s) / 4
	}
	return len(enc.Encode(s, nil, nil))
}
