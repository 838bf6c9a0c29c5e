package gatewaycatalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog/log"
)

// invalidationMessage is the only shape we care about on the push channel.
type invalidationMessage struct {
	Type string `json:"type"`
}

// WatchInvalidations holds a long-lived websocket connection to the
// gateway's catalog-invalidation endpoint, calling c.OnInvalidate() on
// every "catalog_changed" message. Connection loss is never fatal: it logs,
// waits five seconds and reconnects, while the TTL poller in catalog.go
// stays the baseline - this is enrichment over polling, not a replacement
// for it. It returns when ctx is done or Stop is called.
//
// Repurposes internal/auth/auth_client.go's coder/websocket connect/
// receive loop (originally an OAuth browser-flow client) into a
// catalog-changed subscriber: same transport and reconnect discipline, new
// message shape.
func (c *Catalog) WatchInvalidations(ctx context.Context, wsURL string) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopCh:
			return
		default:
		}

		if err := c.watchOnce(ctx, wsURL); err != nil {
			log.Warn().Err(err).Msg("gatewaycatalog: invalidation channel dropped, will retry")
		}

		select {
		case <-ctx.Done():
			return
		case <-c.stopCh:
			return
		case <-time.After(5 * time.Second):
		}
	}
}

func (c *Catalog) watchOnce(ctx context.Context, wsURL string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-c.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		var msg invalidationMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.Type == "catalog_changed" {
			c.OnInvalidate()
		}
	}
}
