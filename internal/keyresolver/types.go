// Package keyresolver decides, for a given catalog model id, which
// credentials and base URL to dispatch through: a direct provider key, AWS
// SigV4 signing for Bedrock, or the aggregator gateway as a universal
// fallback.
//
// Grounded on internal/auth/registry.go's per-provider dispatch registry
// and internal/gateway/request.go's autoDetectTargetURL header-prefix
// provider detection.
package keyresolver

// Access describes how to reach a model's provider.
type Access struct {
	Provider   string
	BaseURL    string
	APIKey     string // the gateway key when ViaGateway; empty when Sign is set (Bedrock)
	ViaGateway bool
	Sign       SignFunc // non-nil for Bedrock SigV4; nil otherwise
}

// SignFunc computes the signing headers (Authorization/X-Amz-*) for an
// outbound request given the method, URL, and body, and returns them for
// the caller to set.
type SignFunc func(method, url string, body []byte) (map[string]string, error)

// ProviderKeys is the minimal configuration surface keyresolver needs:
// direct API keys per provider prefix, plus an optional gateway fallback.
type ProviderKeys struct {
	DirectKeys map[string]string // providerPrefix -> API key
	BaseURLs   map[string]string // providerPrefix -> base URL override
	GatewayKey string
	GatewayURL string
	// BedrockRegion, when non-empty, enables SigV4 signing for the
	// "bedrock" provider prefix via aws-sdk-go-v2/config.
	BedrockRegion string
}
