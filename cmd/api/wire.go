package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/quickkart/marketplace/internal/accounts"
	"github.com/quickkart/marketplace/internal/auth"
	"github.com/quickkart/marketplace/internal/cache"
	"github.com/quickkart/marketplace/internal/carts"
	"github.com/quickkart/marketplace/internal/catalog"
	"github.com/quickkart/marketplace/internal/config"
	"github.com/quickkart/marketplace/internal/db"
	"github.com/quickkart/marketplace/internal/domain/principal"
	"github.com/quickkart/marketplace/internal/objectstore"
	"github.com/quickkart/marketplace/internal/observability"
	"github.com/quickkart/marketplace/internal/receipt"
	"github.com/quickkart/marketplace/internal/redisclient"
	"github.com/quickkart/marketplace/internal/repo/memory"
	"github.com/quickkart/marketplace/internal/repo/postgres"
	"github.com/quickkart/marketplace/internal/sessions"
)

type app struct {
	accounts *accounts.Service
	sessions *sessions.Service
	catalog  *catalog.Service
	carts    *carts.Service
	receipts *receipt.Generator

	ping            func(ctx context.Context) error
	localObjectsDir string
	closers         []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

type stores struct {
	principals accounts.Store
	products   catalog.Store
	cart       carts.Store
	sessions   sessions.Store
}

func wire(ctx context.Context, cfg config.Config, log *slog.Logger, prom *observability.Prom) (*app, error) {
	a := &app{}

	st, err := a.openStores(ctx, cfg, log, prom)
	if err != nil {
		a.close()
		return nil, err
	}

	images, err := a.openObjectStore(ctx, cfg)
	if err != nil {
		a.close()
		return nil, err
	}

	var sessionCache sessions.Cache
	if cfg.RedisAddr != "" {
		rc := redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		a.closers = append(a.closers, func() { _ = rc.Close() })

		if err := rc.Ping(ctx); err != nil {
			// the sessions table stays authoritative without the cache
			log.Warn("redis unavailable, session cache disabled", "addr", cfg.RedisAddr, "err", err)
		} else {
			sessionCache = sessions.NewRedisCache(rc.Raw())
		}
	}

	a.accounts = accounts.NewService(st.principals, prom)
	a.sessions = sessions.NewService(st.sessions, sessionCache, auth.NewManager(cfg.JWTSecret), cfg.SessionTTL)
	a.catalog = catalog.NewService(st.products, images, catalog.Options{
		Cache:         cache.New(cfg.CatalogCacheTTL),
		Prom:          prom,
		MaxImageBytes: cfg.MaxUploadBytes,
	})
	a.carts = carts.NewService(st.cart, st.products, prom)
	a.receipts = receipt.NewGenerator(a.accounts, a.carts, prom)

	if cfg.StoreDriver == "memory" {
		if err := seedMemorySeller(ctx, a.accounts, cfg); err != nil {
			a.close()
			return nil, err
		}
	}

	return a, nil
}

// seedMemorySeller gives the in-memory driver the same seed seller that
// db.EnsureSeedSeller writes for postgres.
func seedMemorySeller(ctx context.Context, acc *accounts.Service, cfg config.Config) error {
	if cfg.SeedSellerEmail == "" || cfg.SeedSellerPassword == "" {
		return nil
	}

	store := cfg.SeedSellerStore
	if store == "" {
		store = "QuickKart"
	}

	name := cfg.SeedSellerName
	if name == "" {
		name = store
	}

	_, err := acc.Register(ctx, principal.SignUpRequest{
		Email:     cfg.SeedSellerEmail,
		Password:  cfg.SeedSellerPassword,
		Name:      name,
		Role:      principal.RoleSeller,
		StoreName: store,
	})
	if err != nil && !errors.Is(err, principal.ErrDuplicateEmail) {
		return fmt.Errorf("seed seller: %w", err)
	}
	return nil
}

func (a *app) openStores(ctx context.Context, cfg config.Config, log *slog.Logger, prom *observability.Prom) (stores, error) {
	switch cfg.StoreDriver {
	case "memory":
		log.Warn("using in-memory store; data is lost on restart")

		products := memory.NewProductsRepo()
		cart := memory.NewCartRepo()
		products.OnDelete(cart.DetachProduct)

		return stores{
			principals: memory.NewPrincipalsRepo(),
			products:   products,
			cart:       cart,
			sessions:   memory.NewSessionsRepo(),
		}, nil

	case "postgres", "":
		if cfg.AutoMigrate {
			if err := db.Migrate(cfg.DBURL); err != nil {
				return stores{}, fmt.Errorf("migrate: %w", err)
			}
			log.Info("migrations applied")
		}

		pool, err := db.NewPool(cfg.DBURL)
		if err != nil {
			return stores{}, fmt.Errorf("db connect: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		a.ping = pool.Ping

		if err := db.EnsureSeedSeller(ctx, pool, cfg); err != nil {
			return stores{}, fmt.Errorf("seed seller: %w", err)
		}

		return stores{
			principals: postgres.NewPrincipalsRepo(pool, prom),
			products:   postgres.NewProductsRepo(pool, prom),
			cart:       postgres.NewCartRepo(pool, prom),
			sessions:   postgres.NewSessionsRepo(pool, prom),
		}, nil

	default:
		return stores{}, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

func (a *app) openObjectStore(ctx context.Context, cfg config.Config) (objectstore.Store, error) {
	switch cfg.ObjectStoreDriver {
	case "firebase":
		fs, err := objectstore.NewFirebaseStore(ctx, objectstore.FirebaseConfig{
			ProjectID:             cfg.FirebaseProjectID,
			Bucket:                cfg.FirebaseStorageBucket,
			CredentialsFile:       cfg.GoogleCredentialsFile,
			CredentialsJSONBase64: cfg.FirebaseCredentialsB64,
		})
		if err != nil {
			return nil, fmt.Errorf("firebase storage: %w", err)
		}
		return objectstore.NewBreaker(fs, objectstore.BreakerConfig{}), nil

	case "local", "":
		ls, err := objectstore.NewLocalStore(cfg.ObjectStoreLocalDir, cfg.ObjectStorePublicBaseURL)
		if err != nil {
			return nil, fmt.Errorf("local object store: %w", err)
		}
		a.localObjectsDir = ls.Dir()
		return ls, nil

	default:
		return nil, fmt.Errorf("unknown OBJECTSTORE_DRIVER %q", cfg.ObjectStoreDriver)
	}
}
