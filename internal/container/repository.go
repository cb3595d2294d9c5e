package container

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/do"
	"github.com/serroba/redirect-gateway/internal/gateway"
	"github.com/serroba/redirect-gateway/internal/health"
	"github.com/serroba/redirect-gateway/internal/store"
	"go.uber.org/zap"
)

// TokenStore is the configured repository with its cache layers and a probe for its backend.
type TokenStore struct {
	gateway.Repository
	Checker health.Checker
	closers []func() error
}

func (s *TokenStore) Shutdown() error {
	var errs []error
	for _, closeFn := range s.closers {
		errs = append(errs, closeFn())
	}

	return errors.Join(errs...)
}

func RepositoryPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*TokenStore, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		ts, err := openStore(ctx, i, opts)
		if err != nil {
			return nil, fmt.Errorf("open %s store: %w", opts.Store, err)
		}

		if opts.CacheTTLSeconds > 0 {
			rc, err := do.Invoke[*Redis](i)
			if err != nil {
				return nil, err
			}

			ts.Repository = store.NewRedisCacheRepository(ts.Repository, rc.Client, seconds(opts.CacheTTLSeconds))
		}

		if opts.LocalCacheBytes > 0 {
			local, err := store.NewLocalCacheRepository(ts.Repository, opts.LocalCacheBytes, seconds(opts.LocalCacheTTLSeconds))
			if err != nil {
				return nil, err
			}

			ts.Repository = local
			ts.closers = append(ts.closers, local.Shutdown)
		}

		logger.Info("token store ready",
			zap.String("store", opts.Store),
			zap.Bool("redisCache", opts.CacheTTLSeconds > 0),
			zap.Bool("localCache", opts.LocalCacheBytes > 0),
		)

		return ts, nil
	})
}

func openStore(ctx context.Context, i *do.Injector, opts *Options) (*TokenStore, error) {
	switch opts.Store {
	case StorePostgres:
		pg, err := do.Invoke[*Postgres](i)
		if err != nil {
			return nil, err
		}

		ps := store.NewPostgresStore(pg.Pool)
		if err = ps.EnsureSchema(ctx); err != nil {
			return nil, err
		}

		return &TokenStore{Repository: ps, Checker: health.NewPostgresChecker(pg.Pool)}, nil
	case StoreSQLite:
		ss, err := store.OpenSQLite(ctx, opts.SQLitePath)
		if err != nil {
			return nil, err
		}

		return &TokenStore{Repository: ss, Checker: ss, closers: []func() error{ss.Shutdown}}, nil
	case StoreRedis:
		rc, err := do.Invoke[*Redis](i)
		if err != nil {
			return nil, err
		}

		return &TokenStore{
			Repository: store.NewRedisStore(rc.Client, seconds(opts.TokenTTLSeconds)),
			Checker:    health.NewRedisChecker(rc.Client),
		}, nil
	case StoreMemory:
		return &TokenStore{
			Repository: store.NewMemoryStore(),
			Checker:    health.CheckerFunc(func(context.Context) error { return nil }),
		}, nil
	default:
		return nil, fmt.Errorf("unknown store %q", opts.Store)
	}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
