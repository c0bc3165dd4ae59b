// Package keystore provides tlrouter.KeyStore implementations: process
// memory, environment variables, a JSON auth file, Redis, and a Chain that
// consults several sources in order.
package keystore

import (
	"context"
	"strings"

	"github.com/ZaguanLabs/tlrouter"
)

// Chain consults each store in order and returns the first non-empty key.
// An error from any store stops the lookup.
type Chain []tlrouter.KeyStore

// APIKey implements tlrouter.KeyStore.
func (c Chain) APIKey(ctx context.Context, provider tlrouter.ProviderID) (string, error) {
	for _, store := range c {
		key, err := store.APIKey(ctx, provider)
		if err != nil {
			return "", err
		}
		if key = strings.TrimSpace(key); key != "" {
			return key, nil
		}
	}
	return "", nil
}

// Pinger is implemented by stores backed by a remote service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks every remote store in the chain.
func (c Chain) Ping(ctx context.Context) error {
	for _, store := range c {
		if p, ok := store.(Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

// Configured returns the providers among ids that have a key in store.
func Configured(ctx context.Context, store tlrouter.KeyStore, ids []tlrouter.ProviderID) ([]tlrouter.ProviderID, error) {
	var out []tlrouter.ProviderID
	for _, id := range ids {
		key, err := store.APIKey(ctx, id)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(key) != "" {
			out = append(out, id)
		}
	}
	return out, nil
}

// Verify implementations
var (
	_ tlrouter.KeyStore = Chain(nil)
	_ tlrouter.KeyStore = (*Memory)(nil)
	_ tlrouter.KeyStore = (*Env)(nil)
	_ tlrouter.KeyStore = (*File)(nil)
	_ tlrouter.KeyStore = (*Redis)(nil)
	_ Pinger            = Chain(nil)
	_ Pinger            = (*Redis)(nil)
)
