// Package gatewaycatalog keeps a local mapping from our catalog model ids
// to whatever id the aggregator gateway expects, refreshed on a TTL and
// optionally invalidated early over a websocket push channel.
//
// Grounded on internal/costcontrol/tracker.go's background-ticker pattern
// (no direct teacher analog for catalog fetching itself) and
// internal/auth/auth_client.go's coder/websocket connect/receive loop,
// repurposed here from an OAuth browser-flow client into a catalog-changed
// subscriber.
package gatewaycatalog

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultTTL = time.Hour

// gatewayModel is the subset of the gateway's /v1/models response we need.
type gatewayModel struct {
	ID string `json:"id"`
}

// idMapping holds both matching modes built from one gateway refresh:
// exact maps a local id to a gateway id the gateway advertises verbatim;
// bySuffix maps the bare name after a "<prefix>/" split to whichever
// gateway id advertises that same bare name, for gateways that use their
// own vendor prefix (or none at all) instead of ours.
type idMapping struct {
	exact    map[string]string
	bySuffix map[string]string
}

// Catalog resolves local model ids to gateway ids via a pointer-swapped
// snapshot, so readers never block on a refresh in progress.
type Catalog struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	ttl        time.Duration

	snapshot atomic.Pointer[idMapping]

	stopCh   chan struct{}
	stopOnce sync.Once
}

// New creates a Catalog and performs a synchronous first fetch so the
// first request after startup already has a (possibly empty) map to
// consult, then starts the background refresher.
func New(baseURL, apiKey string, httpClient *http.Client) *Catalog {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	c := &Catalog{baseURL: baseURL, apiKey: apiKey, httpClient: httpClient, ttl: defaultTTL, stopCh: make(chan struct{})}
	c.snapshot.Store(&idMapping{exact: map[string]string{}, bySuffix: map[string]string{}})
	c.refresh(context.Background())
	go c.refreshLoop()
	return c
}

// GatewayID returns the gateway's id for localID, falling back to localID
// unchanged if unmapped - the gateway will 4xx on an unmapped id, which
// the proxy's fallback walk then handles like any other retryable error.
//
// Two matching modes are tried in order: an exact match against whatever
// the gateway advertises verbatim, then a suffix match on the bare model
// name with any "<prefix>/" stripped from both sides - gateways that
// re-prefix or drop vendor prefixes entirely still resolve correctly.
func (c *Catalog) GatewayID(localID string) string {
	m := c.snapshot.Load()
	if m == nil {
		return localID
	}
	if gw, ok := m.exact[localID]; ok {
		return gw
	}
	if gw, ok := m.bySuffix[suffixAfterPrefix(localID)]; ok {
		return gw
	}
	return localID
}

// suffixAfterPrefix strips a leading "<prefix>/" (our vendor namespacing
// convention) and returns the bare model name.
func suffixAfterPrefix(id string) string {
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return id[i+1:]
	}
	return id
}

// OnInvalidate triggers an immediate out-of-band refresh, called by the
// websocket subscriber in ws.go when the gateway announces a catalog
// change. Never blocks the caller on network I/O.
func (c *Catalog) OnInvalidate() {
	go c.refresh(context.Background())
}

func (c *Catalog) refreshLoop() {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()
	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.refresh(context.Background())
		}
	}
}

func (c *Catalog) refresh(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/models", nil)
	if err != nil {
		log.Warn().Err(err).Msg("gatewaycatalog: building refresh request")
		return
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("gatewaycatalog: refresh request failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status", resp.StatusCode).Msg("gatewaycatalog: refresh got non-200")
		return
	}

	var body struct {
		Data []gatewayModel `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		log.Warn().Err(err).Msg("gatewaycatalog: decoding refresh response")
		return
	}

	next := &idMapping{
		exact:    make(map[string]string, len(body.Data)),
		bySuffix: make(map[string]string, len(body.Data)),
	}
	for _, m := range body.Data {
		next.exact[m.ID] = m.ID
		next.bySuffix[suffixAfterPrefix(m.ID)] = m.ID
	}
	c.snapshot.Store(next)
}

// Stop halts the background refresh loop and, if connected, the websocket
// subscriber.
func (c *Catalog) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}
