package registry

import "strings"

// vendorAliases maps our catalog name (minus provider prefix) to the id the
// vendor's own API expects, for the handful of models where they differ.
// Resolved in NativeModelID. This is the decision recorded for Open
// Question 3 in DESIGN.md: a small static table rather than a config file,
// since the divergence is rare and changes only when a vendor renames a
// model snapshot.
var vendorAliases = map[string]string{
	"anthropic/claude-haiku-4-5":  "claude-haiku-4-5-20251001",
	"anthropic/claude-sonnet-4-5": "claude-sonnet-4-5-20250929",
	"bedrock/anthropic.claude-3-5-haiku":  "anthropic.claude-3-5-haiku-20241022-v1:0",
	"bedrock/anthropic.claude-3-5-sonnet": "anthropic.claude-3-5-sonnet-20241022-v2:0",
}

// NativeModelID strips the provider prefix and applies any vendor alias,
// returning the id the upstream provider's API actually expects in its
// request body.
func NativeModelID(id string) string {
	if alias, ok := vendorAliases[id]; ok {
		return alias
	}
	if _, name, ok := strings.Cut(id, "/"); ok {
		return name
	}
	return id
}
