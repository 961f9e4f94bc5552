package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	fusionauth "github.com/goliatone/go-fusionauth"
	"github.com/goliatone/go-fusionauth/core"
	redisstore "github.com/goliatone/go-fusionauth/store/redis"
	sqlstore "github.com/goliatone/go-fusionauth/store/sql"
	"github.com/goliatone/go-fusionauth/trigger"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const ledgerCacheTTL = 5 * time.Minute

// stores are the trigger's persistence pieces picked from store.*.
type stores struct {
	ledger    fusionauth.EventLedger
	claims    core.ClaimStore
	sqlClaims *sqlstore.ClaimStore
	closers   []func() error
}

func (s *stores) Close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func sqlDriver(driver string) bool {
	driver = strings.TrimSpace(driver)
	return driver == core.StoreDriverSQLite || driver == core.StoreDriverPostgres
}

func (a *app) openStores(ctx context.Context, migrate bool) (*stores, error) {
	out := &stores{}
	cfg := a.config.Store

	if sqlDriver(cfg.Driver) {
		client, err := sqlstore.Open(cfg)
		if err != nil {
			return nil, err
		}
		out.closers = append(out.closers, client.Close)
		if migrate {
			if err := sqlstore.Migrate(ctx, client, cfg.Driver); err != nil {
				_ = out.Close()
				return nil, err
			}
		}
		factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
		if err != nil {
			_ = out.Close()
			return nil, err
		}
		cacheConfig := repositorycache.DefaultConfig()
		cacheConfig.TTL = ledgerCacheTTL
		cacheService, err := repositorycache.NewCacheService(cacheConfig)
		if err != nil {
			_ = out.Close()
			return nil, fmt.Errorf("ledger cache: %w", err)
		}
		ledger, err := sqlstore.NewCachedEventStore(factory.EventStore(), cacheService)
		if err != nil {
			_ = out.Close()
			return nil, err
		}
		out.ledger = ledger
		out.sqlClaims = factory.ClaimStore()
		out.claims = out.sqlClaims
	}

	if addr := strings.TrimSpace(cfg.RedisAddr); addr != "" {
		rdb, err := redisstore.NewClient(ctx, addr)
		if err != nil {
			_ = out.Close()
			return nil, err
		}
		out.closers = append(out.closers, rdb.Close)
		claims, err := redisstore.NewClaimStore(rdb)
		if err != nil {
			_ = out.Close()
			return nil, err
		}
		out.claims = claims
	}

	if out.claims == nil {
		out.claims = trigger.NewMemoryClaimStore()
	}
	a.logger.Debug("trigger stores ready",
		"driver", cfg.Driver,
		"ledger", out.ledger != nil,
		"claims", fmt.Sprintf("%T", out.claims),
	)
	return out, nil
}
