package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/haulzy/haulzy-backend/config"
	"github.com/haulzy/haulzy-backend/internal/activity"
	httpapi "github.com/haulzy/haulzy-backend/internal/api/http"
	"github.com/haulzy/haulzy-backend/internal/auth"
	authmw "github.com/haulzy/haulzy-backend/internal/auth/middleware"
	checkoutdomain "github.com/haulzy/haulzy-backend/internal/checkout/domain"
	checkoutrepo "github.com/haulzy/haulzy-backend/internal/checkout/repository"
	checkoutsvc "github.com/haulzy/haulzy-backend/internal/checkout/service"
	dashboardsvc "github.com/haulzy/haulzy-backend/internal/dashboard/service"
	"github.com/haulzy/haulzy-backend/internal/events"
	"github.com/haulzy/haulzy-backend/internal/functions"
	returnssvc "github.com/haulzy/haulzy-backend/internal/returns/service"
	"github.com/haulzy/haulzy-backend/internal/storage/postgres"
	"github.com/haulzy/haulzy-backend/internal/store"
	usersrepo "github.com/haulzy/haulzy-backend/internal/users/repository"
	userssvc "github.com/haulzy/haulzy-backend/internal/users/service"
)

// Backends are the external systems the services run on. Redis and DB are
// optional; without them events, caching and activity history are off.
type Backends struct {
	Store     store.Store
	Accounts  auth.Accounts
	Verifier  auth.Verifier
	Functions functions.Caller
	Redis     *redis.Client
	DB        *sql.DB

	firebase *auth.FirebaseApp
}

// OpenBackends connects everything cfg names. Without Firebase an in-memory
// store and dev tokens stand in, in development and test only. Redis
// and Postgres failures are logged and the feature is switched off.
func OpenBackends(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Backends, error) {
	b := &Backends{}

	if cfg.Firebase.Enabled() {
		app, err := auth.InitializeFirebase(ctx, &cfg.Firebase)
		if err != nil {
			return nil, err
		}
		b.firebase = app
		b.Store = store.NewFirestoreStore(app.Firestore)
		b.Accounts = auth.NewFirebaseAccounts(app.Auth)
		b.Verifier = app.Auth
	} else {
		if !cfg.App.AllowsLocalBackends() {
			return nil, fmt.Errorf("firebase is not configured and APP_ENV=%q does not allow local backends", cfg.App.Environment)
		}
		log.Warn("firebase not configured, using in-memory store and dev tokens")
		mem := store.NewMemoryStore()
		if cfg.App.SeedPath != "" {
			n, err := store.LoadSeedFile(mem, cfg.App.SeedPath)
			if err != nil {
				return nil, err
			}
			log.Info("seeded in-memory store", zap.String("path", cfg.App.SeedPath), zap.Int("documents", n))
		}
		b.Store = mem
		b.Accounts = auth.NewMemoryAccounts()
		b.Verifier = auth.DevVerifier{}
	}

	if cfg.Redis.Addr != "" {
		client, err := OpenRedis(ctx, &cfg.Redis)
		if err != nil {
			log.Warn("redis unavailable, running without cache and events", zap.Error(err))
		} else {
			b.Redis = client
			b.Store = store.NewCachedStore(b.Store, client, cfg.Redis.CacheTTL, log)
		}
	}

	if cfg.Database.Enabled() {
		db, err := OpenDB(ctx, &cfg.Database)
		if err != nil {
			log.Warn("activity database unavailable, history disabled", zap.Error(err))
		} else {
			b.DB = db
		}
	}

	opts := functions.Options{
		BaseURL:       cfg.Functions.BaseURL,
		Timeout:       cfg.Functions.Timeout,
		RatePerSecond: cfg.Functions.RatePerSecond,
		Burst:         cfg.Functions.Burst,
		Logger:        log,
	}
	if cfg.Functions.BaseURL != "" && cfg.Firebase.CredentialsPath != "" {
		ts, err := functions.NewIDTokenSource(ctx, cfg.Functions.BaseURL, cfg.Firebase.CredentialsPath)
		if err != nil {
			log.Warn("service identity tokens unavailable, forwarding caller tokens", zap.Error(err))
		} else {
			opts.TokenSource = ts
		}
	}
	b.Functions = functions.NewClient(opts)

	return b, nil
}

// Close releases every open connection.
func (b *Backends) Close() error {
	var errs []error
	if b.DB != nil {
		errs = append(errs, b.DB.Close())
	}
	if b.Redis != nil {
		errs = append(errs, b.Redis.Close())
	}
	errs = append(errs, b.firebase.Close())
	return errors.Join(errs...)
}

// Recorder returns the activity log, or a no-op one without a database.
func (b *Backends) Recorder() activity.Recorder {
	if b.DB == nil {
		return activity.Nop{}
	}
	return postgres.NewActivityStore(b.DB)
}

// Snapshots returns the snapshot history, or a no-op one without a database.
func (b *Backends) Snapshots() activity.Snapshots {
	if b.DB == nil {
		return activity.Nop{}
	}
	return postgres.NewSnapshotStore(b.DB)
}

// Bus returns the event bus, or nil without Redis.
func (b *Backends) Bus() *events.Bus {
	if b.Redis == nil {
		return nil
	}
	return events.NewBus(b.Redis, nil)
}

// Checks lists the health probes for the configured backends.
func (b *Backends) Checks() map[string]httpapi.Check {
	checks := map[string]httpapi.Check{"redis": nil, "postgres": nil}
	if b.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return b.Redis.Ping(ctx).Err() }
	}
	if b.DB != nil {
		checks["postgres"] = b.DB.PingContext
	}
	return checks
}

// Services are the feature services wired onto one set of backends.
type Services struct {
	Dashboard *dashboardsvc.DashboardService
	Returns   *returnssvc.ReturnsService
	Users     *userssvc.UserService
	Checkout  *checkoutsvc.CheckoutService
	Recorder  activity.Recorder
	Bus       *events.Bus
}

func NewServices(cfg *config.Config, b *Backends, log *zap.Logger) *Services {
	recorder := b.Recorder()
	bus := b.Bus()

	var publisher events.Publisher = events.Nop{}
	var pending checkoutrepo.PendingStore = checkoutrepo.NewMemoryPendingStore()
	if bus != nil {
		publisher = bus
		pending = checkoutrepo.NewRedisPendingStore(b.Redis)
	}

	userRepo := usersrepo.NewUserRepository(b.Store)
	plans := cfg.Checkout.Plans
	catalog := checkoutdomain.DefaultCatalog(checkoutdomain.PriceOverrides{
		OnetimeCents:      plans.OnetimeCents,
		BasicMonthCents:   plans.BasicMonthCents,
		BasicYearCents:    plans.BasicYearCents,
		PremiumMonthCents: plans.PremiumMonthCents,
		PremiumYearCents:  plans.PremiumYearCents,
	})

	return &Services{
		Dashboard: dashboardsvc.NewDashboardService(b.Store, b.Snapshots(), recorder, publisher, log.Named("dashboard")),
		Returns:   returnssvc.NewReturnsService(b.Store, b.Functions, recorder, publisher, log.Named("returns")),
		Users:     userssvc.NewUserService(userRepo, b.Accounts, recorder, publisher, log.Named("users")),
		Checkout: checkoutsvc.NewCheckoutService(catalog, b.Functions, pending, b.Accounts, userRepo, recorder, publisher,
			checkoutsvc.Options{
				SuccessURL: cfg.Checkout.SuccessURL,
				CancelURL:  cfg.Checkout.CancelURL,
				PendingTTL: cfg.Checkout.PendingTTL,
			}, log.Named("checkout")),
		Recorder: recorder,
		Bus:      bus,
	}
}

// RouterDeps assembles everything BuildRouter needs.
func (s *Services) RouterDeps(cfg *config.Config, b *Backends, log *zap.Logger) RouterDeps {
	return RouterDeps{
		ServiceName: "haulzy-api",
		Version:     cfg.App.Version,
		CORSOrigins: cfg.App.CORSOrigins,
		Checks:      b.Checks(),
		Auth:        authmw.NewAuthenticator(b.Verifier, b.Store, log.Named("auth")),
		Dashboard:   s.Dashboard,
		Returns:     s.Returns,
		Users:       s.Users,
		Checkout:    s.Checkout,
		Activity:    s.Recorder,
		Bus:         s.Bus,
		Logger:      log,
	}
}
