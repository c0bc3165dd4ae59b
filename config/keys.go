package config

import (
	"context"
	"fmt"

	"github.com/ZaguanLabs/tlrouter"
	"github.com/ZaguanLabs/tlrouter/keystore"
)

// KeyStore assembles the configured key sources into one chain. The
// returned close function releases the Redis connection, if any.
func (c KeysConfig) KeyStore(ctx context.Context) (tlrouter.KeyStore, func() error, error) {
	var chain keystore.Chain
	closeFn := func() error { return nil }

	if len(c.Static) > 0 {
		chain = append(chain, keystore.NewMemory(c.Static))
	}
	if c.EnvEnabled() {
		chain = append(chain, keystore.NewEnv())
	}

	path := c.File
	if path == "" {
		defaultPath, err := keystore.DefaultPath()
		if err == nil {
			path = defaultPath
		}
	}
	if path != "" && path != "-" {
		chain = append(chain, keystore.NewFile(path))
	}

	if c.Redis.URL != "" {
		store, err := keystore.NewRedis(ctx, keystore.RedisConfig{URL: c.Redis.URL, KeyPrefix: c.Redis.Prefix})
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to redis key store: %w", err)
		}
		chain = append(chain, store)
		closeFn = store.Close
	}

	return chain, closeFn, nil
}
