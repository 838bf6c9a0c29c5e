package keyresolver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/llmrouter/router/internal/registry"
	"github.com/llmrouter/router/internal/utils"
	"github.com/rs/zerolog/log"
)

// defaultBaseURLs gives the provider's own API endpoint when no override is
// configured.
var defaultBaseURLs = map[string]string{
	"openai":    "https://api.openai.com",
	"anthropic": "https://api.anthropic.com",
	"gemini":    "https://generativelanguage.googleapis.com",
}

// Resolver resolves model ids to Access using a fixed set of provider keys
// loaded at startup (see internal/config).
type Resolver struct {
	keys          ProviderKeys
	bedrockSigner SignFunc // lazily built, nil until first Bedrock resolve succeeds
}

// New builds a Resolver. Bedrock signing is attempted lazily on first use
// so that a deployment with no AWS credentials configured doesn't fail
// startup - it simply can't resolve Bedrock models, and Selector widens
// away from them.
func New(keys ProviderKeys) *Resolver {
	return &Resolver{keys: keys}
}

// Resolve returns how to reach modelID, following the precedence in
// SPEC_FULL.md §6.8:
//  1. gateway, if the provider needs dialect translation and a gateway key exists
//  2. direct key, if one exists for the provider (for a provider that
//     needs translation this is reached only when no gateway key exists)
//  3. Bedrock SigV4, if provider == "bedrock" and AWS credentials resolve
//  4. gateway, as a universal fallback
//  5. error ("unreachable")
func (r *Resolver) Resolve(modelID string) (Access, error) {
	model, ok := registry.Get(modelID)
	if !ok {
		return Access{}, fmt.Errorf("keyresolver: unknown model %q", modelID)
	}

	needsTranslation := model.NativeDialect != registry.DialectOpenAI

	if needsTranslation && r.hasGatewayKey() {
		access := r.gatewayAccess(model)
		logResolved(modelID, access)
		return access, nil
	}

	if !needsTranslation {
		if key, ok := r.directKey(model.ProviderPrefix); ok {
			access := Access{Provider: model.ProviderPrefix, BaseURL: r.baseURL(model.ProviderPrefix), APIKey: key}
			logResolved(modelID, access)
			return access, nil
		}
	} else if key, ok := r.directKey(model.ProviderPrefix); ok {
		// Still allow a direct (non-gateway) call for a non-OpenAI dialect
		// provider when a direct key is configured and no gateway key is -
		// the dialect adapter (C5) handles translation either way.
		access := Access{Provider: model.ProviderPrefix, BaseURL: r.baseURL(model.ProviderPrefix), APIKey: key}
		logResolved(modelID, access)
		return access, nil
	}

	if model.ProviderPrefix == "bedrock" && r.keys.BedrockRegion != "" {
		if access, err := r.bedrockAccess(model); err == nil {
			logResolved(modelID, access)
			return access, nil
		} else {
			log.Warn().Err(err).Msg("keyresolver: bedrock signing unavailable, falling through")
		}
	}

	if r.hasGatewayKey() {
		access := r.gatewayAccess(model)
		logResolved(modelID, access)
		return access, nil
	}

	return Access{}, fmt.Errorf("keyresolver: %s unreachable: no direct key, no bedrock credentials, no gateway key", modelID)
}

// Resolvable adapts Resolve into the selector.Resolvable signature.
func (r *Resolver) Resolvable(modelID string) bool {
	_, err := r.Resolve(modelID)
	return err == nil
}

// ConfiguredProviders lists every provider prefix with a direct key on
// file, sorted, for health reporting. It never includes "gateway" - see
// HasGateway for that.
func (r *Resolver) ConfiguredProviders() []string {
	out := make([]string, 0, len(r.keys.DirectKeys))
	for provider, key := range r.keys.DirectKeys {
		if strings.TrimSpace(key) != "" {
			out = append(out, provider)
		}
	}
	sort.Strings(out)
	return out
}

// HasGateway reports whether a gateway key/URL pair is configured, making
// the gateway a usable universal fallback for dialects with no direct key.
func (r *Resolver) HasGateway() bool {
	return r.hasGatewayKey()
}

func (r *Resolver) directKey(providerPrefix string) (string, bool) {
	k, ok := r.keys.DirectKeys[providerPrefix]
	if !ok || strings.TrimSpace(k) == "" {
		return "", false
	}
	return k, true
}

func (r *Resolver) hasGatewayKey() bool {
	return strings.TrimSpace(r.keys.GatewayKey) != "" && strings.TrimSpace(r.keys.GatewayURL) != ""
}

func (r *Resolver) gatewayAccess(model registry.Model) Access {
	return Access{Provider: model.ProviderPrefix, BaseURL: r.keys.GatewayURL, APIKey: r.keys.GatewayKey, ViaGateway: true}
}

func (r *Resolver) baseURL(providerPrefix string) string {
	if u, ok := r.keys.BaseURLs[providerPrefix]; ok && u != "" {
		return u
	}
	return defaultBaseURLs[providerPrefix]
}

func (r *Resolver) bedrockAccess(model registry.Model) (Access, error) {
	if r.bedrockSigner == nil {
		signer, err := newBedrockSigner(r.keys.BedrockRegion)
		if err != nil {
			return Access{}, err
		}
		r.bedrockSigner = signer
	}
	baseURL := r.baseURL("bedrock")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://bedrock-runtime.%s.amazonaws.com", r.keys.BedrockRegion)
	}
	return Access{Provider: "bedrock", BaseURL: baseURL, Sign: r.bedrockSigner}, nil
}

// logResolved emits a debug-level trace of which provider/key a model
// resolved to, masking the key so it never lands in logs unredacted.
func logResolved(modelID string, access Access) {
	log.Debug().
		Str("model", modelID).
		Str("provider", access.Provider).
		Bool("via_gateway", access.ViaGateway).
		Str("key", utils.MaskKey(access.APIKey)).
		Msg("keyresolver: resolved")
}
