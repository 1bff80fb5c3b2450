package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/baltlens/registry-cli/internal/store"
	"github.com/baltlens/registry-cli/pkg/register"
)

// initStore opens the configured local store and runs migrations.
func initStore(ctx context.Context) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "sqlite":
		st, err = store.NewSQLite(cfg.Store.Path)
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: int32(cfg.Store.MaxConns),
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

// initRegister builds the register API client from config.
func initRegister() register.Client {
	opts := []register.Option{}
	if cfg.Register.RateLimit > 0 {
		opts = append(opts, register.WithRateLimit(cfg.Register.RateLimit, 1))
	}
	if cfg.Register.TimeoutSecs > 0 {
		opts = append(opts, register.WithTimeout(time.Duration(cfg.Register.TimeoutSecs)*time.Second))
	}
	return register.NewClient(cfg.Register.APIKey, cfg.Register.BaseURL, opts...)
}
