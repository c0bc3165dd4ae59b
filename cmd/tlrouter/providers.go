package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/tlrouter"
	"github.com/ZaguanLabs/tlrouter/config"
	"github.com/ZaguanLabs/tlrouter/keystore"
	"github.com/ZaguanLabs/tlrouter/provider"
)

func newProvidersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List supported providers and whether a key is configured",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.setup(cmd.Context(), nil, nil)
			if err != nil {
				return err
			}
			defer rt.close()

			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			header := "PROVIDER\tDEFAULT MODEL\tKEY\tIN PLAN"
			if rt.limits != nil {
				header += "\tTOKENS"
			}
			fmt.Fprintln(tw, header)

			for _, id := range rt.registry.Providers() {
				key, err := rt.keys.APIKey(cmd.Context(), id)
				if err != nil {
					return &tlrouter.KeyStoreError{Provider: id, Cause: err}
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s", id, provider.Presets[id].Model, tlrouter.RedactKey(key), planPosition(rt.plan, rt.depth, id))
				if rt.limits != nil {
					fmt.Fprintf(tw, "\t%.0f", rt.limits.Limiter(id).Available())
				}
				fmt.Fprintln(tw)
			}
			return tw.Flush()
		},
	}
}

// planPosition describes where id appears in the first depth steps of plan.
func planPosition(plan tlrouter.RoutingPlan, depth int, id tlrouter.ProviderID) string {
	depth = plan.Depth(depth)
	for i, step := range plan[:depth] {
		if step.Provider == id {
			return fmt.Sprintf("step %d", i+1)
		}
	}
	return "-"
}

// keyTarget is the writable key store the keys subcommands operate on.
type keyTarget struct {
	store    tlrouter.KeyStore
	set      func(ctx context.Context, id tlrouter.ProviderID, key string) error
	remove   func(ctx context.Context, id tlrouter.ProviderID) error
	location string
	close    func() error
}

func newKeysCmd(a *app) *cobra.Command {
	var (
		path     string
		useRedis bool
	)

	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage API keys in the local auth file or the shared Redis store",
	}
	cmd.PersistentFlags().StringVar(&path, "file", "", "Auth file (default: $XDG_DATA_HOME/tlrouter/auth.json)")
	cmd.PersistentFlags().BoolVar(&useRedis, "redis", false, "Use the Redis store from keys.redis in the config")

	open := func(ctx context.Context) (*keyTarget, error) {
		if useRedis {
			return a.openRedisKeys(ctx)
		}

		if path == "" {
			defaultPath, err := keystore.DefaultPath()
			if err != nil {
				return nil, err
			}
			path = defaultPath
		}
		f := keystore.NewFile(path)
		return &keyTarget{
			store: f,
			set: func(_ context.Context, id tlrouter.ProviderID, key string) error {
				return f.Set(id, key)
			},
			remove: func(_ context.Context, id tlrouter.ProviderID) error {
				return f.Remove(id)
			},
			location: f.Path(),
			close:    func() error { return nil },
		}, nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set PROVIDER KEY",
		Short: "Store the API key for a provider",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := tlrouter.ProviderID(args[0])
			if !tlrouter.KnownProviders[id] {
				return &tlrouter.ValidationError{Field: "provider", Message: fmt.Sprintf("unknown provider %q", id)}
			}
			target, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer target.close()

			if err := target.set(cmd.Context(), id, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Stored %s key %s in %s\n", id, tlrouter.RedactKey(args[1]), target.location)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove PROVIDER",
		Short: "Remove the API key for a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer target.close()

			if err := target.remove(cmd.Context(), tlrouter.ProviderID(args[0])); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Removed %s key from %s\n", args[0], target.location)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the providers with a stored key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer target.close()

			configured, err := keystore.Configured(cmd.Context(), target.store, provider.NewRegistry().Providers())
			if err != nil {
				return err
			}
			for _, id := range configured {
				key, err := target.store.APIKey(cmd.Context(), id)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "%s\t%s\n", id, tlrouter.RedactKey(key))
			}
			return nil
		},
	})

	return cmd
}

// openRedisKeys connects to the Redis store named by keys.redis in the config.
func (a *app) openRedisKeys(ctx context.Context) (*keyTarget, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Keys.Redis.URL == "" {
		return nil, &tlrouter.ValidationError{Field: "keys.redis.url", Message: "not configured"}
	}

	store, err := a.newRedis(ctx, keystore.RedisConfig{URL: cfg.Keys.Redis.URL, KeyPrefix: cfg.Keys.Redis.Prefix})
	if err != nil {
		return nil, fmt.Errorf("connecting to redis key store: %w", err)
	}
	return &keyTarget{
		store:    store,
		set:      store.Set,
		remove:   store.Remove,
		location: "redis",
		close:    store.Close,
	}, nil
}
