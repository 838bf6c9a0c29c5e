package proxy

import (
	"sort"

	"github.com/llmrouter/router/internal/registry"
)

// allCatalogModelIDs lists every model id referenced by any tier table
// (agentic or not), deduplicated, in the order tiers are walked cheapest
// first. This is the full catalog surface /v1/models and /health report
// against, independent of which of those models this deployment can
// actually reach.
func allCatalogModelIDs() []string {
	seen := map[string]bool{}
	var out []string
	for _, agentic := range []bool{false, true} {
		for _, tier := range registry.AllTiers() {
			cfg, ok := registry.TierTable(agentic)[tier]
			if !ok {
				continue
			}
			for _, id := range append([]string{cfg.Primary}, cfg.Fallback...) {
				if seen[id] {
					continue
				}
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

// accessibleModelIDs filters allCatalogModelIDs to those the resolver can
// actually reach with the keys this deployment has configured.
func (s *Server) accessibleModelIDs() []string {
	out := []string{}
	for _, id := range allCatalogModelIDs() {
		if s.resolver.Resolvable(id) {
			out = append(out, id)
		}
	}
	return out
}

// accessibleProviders returns the distinct provider prefixes backing the
// resolver's accessible models, sorted.
func (s *Server) accessibleProviders() []string {
	seen := map[string]bool{}
	out := []string{}
	for _, id := range s.accessibleModelIDs() {
		model, ok := registry.Get(id)
		if !ok || seen[model.ProviderPrefix] {
			continue
		}
		seen[model.ProviderPrefix] = true
		out = append(out, model.ProviderPrefix)
	}
	sort.Strings(out)
	return out
}

// modelCatalogEntries lists every model this deployment can actually
// reach, in the shape OpenAI-compatible clients expect, plus a synthetic
// "auto" entry for the classifier+selector routing path - "auto" is
// always present even if every direct provider key is missing, since the
// gateway (if configured) can still serve it.
func (s *Server) modelCatalogEntries() []map[string]any {
	created := s.startedAt.Unix()
	out := []map[string]any{
		{"id": "auto", "object": "model", "created": created, "owned_by": "llmrouter"},
	}
	for _, id := range s.accessibleModelIDs() {
		model, ok := registry.Get(id)
		ownedBy := "unknown"
		if ok {
			ownedBy = model.ProviderPrefix
		}
		out = append(out, map[string]any{"id": id, "object": "model", "created": created, "owned_by": ownedBy})
	}
	return out
}
