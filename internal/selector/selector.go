// Package selector maps a classifier tier to a concrete model plus an
// ordered fallback chain, widening across tiers when nothing in the chosen
// tier can currently be reached.
//
// The widening loop is grounded on internal/gateway/phantom_loop.go's
// bounded retry loop (MaxPhantomLoops / Run), generalized here from
// "retry the same request" to "retry against a widened candidate set".
package selector

import (
	"fmt"

	"github.com/llmrouter/router/internal/registry"
)

// Decision is the selector's output before dispatch; the proxy enriches it
// into a full RoutingDecision once cost estimates are available.
type Decision struct {
	Tier     registry.Tier // the tier actually used, which may differ from requested on widening
	Model    string
	Fallback []string
	Widened  bool
	Notes    []string
}

// Resolvable reports whether a model id is currently reachable (a key
// exists / the gateway can proxy it). Supplied by the caller (C2 Key
// Resolver) so this package stays free of provider-credential concerns.
type Resolvable func(modelID string) bool

// Select returns the primary model and fallback chain for tier, using the
// agentic tier table when agentic is true. If nothing in tier is
// resolvable, it widens outward (one tier up, one tier down, alternating)
// until a resolvable model is found or every tier has been tried.
func Select(tier registry.Tier, agentic bool, resolvable Resolvable) (Decision, error) {
	table := registry.TierTable(agentic)

	for i, candidate := range registry.Widen(tier) {
		cfg, ok := table[candidate]
		if !ok {
			continue
		}
		chain := append([]string{cfg.Primary}, cfg.Fallback...)
		for _, id := range chain {
			if resolvable(id) {
				d := Decision{Tier: candidate, Model: id, Fallback: remaining(chain, id), Widened: i > 0}
				if d.Widened {
					d.Notes = append(d.Notes, fmt.Sprintf("widened from %s to %s: no resolvable model in requested tier", tier, candidate))
				}
				return d, nil
			}
		}
	}
	return Decision{}, fmt.Errorf("selector: no resolvable model for tier %s (agentic=%v)", tier, agentic)
}

// remaining returns chain with every model up to and including used
// removed, preserving order, so the proxy's fallback walk never retries
// the model it already dispatched to.
func remaining(chain []string, used string) []string {
	for i, id := range chain {
		if id == used {
			return append([]string{}, chain[i+1:]...)
		}
	}
	return nil
}
