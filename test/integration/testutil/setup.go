//go:build integration

package testutil

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/proneo/platform/internal/app"
	"github.com/proneo/platform/internal/auth"
	"github.com/proneo/platform/internal/dismissal"
	"github.com/proneo/platform/internal/guard"
	"github.com/proneo/platform/internal/repository"
	"github.com/proneo/platform/internal/roster"
	"github.com/proneo/platform/internal/service"
	"github.com/proneo/platform/internal/settings"
)

const (
	TestJWTSecret = "integration-test-secret-0123456789abcdef"
	TestDBHost    = "localhost"
	TestDBPort    = 5435
	TestDBUser    = "proneo"
	TestDBPass    = "proneo"
	TestDBName    = "proneo_test"
)

// TestEnv holds all resources for an integration test.
type TestEnv struct {
	Server    *httptest.Server
	Pool      *pgxpool.Pool
	JWTMgr    *auth.JWTManager
	State     *repository.DeviceStateStore
	Outbox    repository.OutboxRepository
	Users     *service.UserService
	Directory *Directory
	Snapshot  *Snapshot
	Logger    *slog.Logger
	t         *testing.T
}

var (
	sharedPool *pgxpool.Pool
	poolOnce   sync.Once
	poolErr    error
)

func testDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		TestDBUser, TestDBPass, TestDBHost, TestDBPort, TestDBName)
}

func bootstrapDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		TestDBUser, TestDBPass, TestDBHost, TestDBPort, "proneo")
}

func ensureTestDB() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	bPool, err := pgxpool.New(ctx, bootstrapDSN())
	if err != nil {
		return fmt.Errorf("connect bootstrap db: %w", err)
	}
	defer bPool.Close()

	var exists bool
	err = bPool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", TestDBName).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check db exists: %w", err)
	}
	if !exists {
		if _, err := bPool.Exec(ctx, fmt.Sprintf("CREATE DATABASE %s", TestDBName)); err != nil {
			return fmt.Errorf("create test db: %w", err)
		}
	}
	return nil
}

func runMigrations() error {
	m, err := newMigrate(fmt.Sprintf("file://%s", filepath.Join(findProjectRoot(), "db", "migrations")), testDSN())
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

func findProjectRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "."
		}
		dir = parent
	}
}

func getSharedPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	poolOnce.Do(func() {
		if err := ensureTestDB(); err != nil {
			poolErr = err
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		poolCfg, err := pgxpool.ParseConfig(testDSN())
		if err != nil {
			poolErr = fmt.Errorf("parse pool config: %w", err)
			return
		}
		poolCfg.MaxConns = 10
		poolCfg.MinConns = 1

		sharedPool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			poolErr = fmt.Errorf("create pool: %w", err)
			return
		}

		if err := runMigrations(); err != nil {
			poolErr = fmt.Errorf("run migrations: %w", err)
			sharedPool.Close()
			sharedPool = nil
		}
	})

	if poolErr != nil {
		t.Fatalf("failed to initialize test pool: %v", poolErr)
	}
	return sharedPool
}

// NewTestEnv creates an httptest.Server over the real router with Postgres
// device state and outbox. The roster, directory and picklists are in memory.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	pool := getSharedPool(t)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	jwtMgr := auth.NewJWTManager(TestJWTSecret, time.Hour)

	state := repository.NewDeviceStateStore(pool, repository.NewDeviceStateRepository())
	outbox := repository.NewOutboxRepository()
	snap := &Snapshot{}
	dir := &Directory{}

	users := service.NewUserService(dir, pool, outbox,
		guard.NewIdempotencyGuard(time.Minute), guard.NewRateLimiter(1000, time.Minute), logger)

	router := app.NewRouter(app.RouterDeps{
		Verifier:    jwtMgr,
		Alerts:      service.NewAlertService(snap, dismissal.NewRegistry(state), settings.NewRegistry(state), time.UTC, logger),
		Users:       users,
		Lists:       service.NewListService(&Lists{}, logger),
		CORSOrigins: "*",
		Logger:      logger,
	})
	server := httptest.NewServer(router)

	env := &TestEnv{
		Server:    server,
		Pool:      pool,
		JWTMgr:    jwtMgr,
		State:     state,
		Outbox:    outbox,
		Users:     users,
		Directory: dir,
		Snapshot:  snap,
		Logger:    logger,
		t:         t,
	}

	t.Cleanup(func() {
		server.Close()
		users.Wait()
		env.CleanAll()
	})
	env.CleanAll()

	return env
}

// SetRoster replaces the snapshot the alert feed derives from.
func (env *TestEnv) SetRoster(s roster.Snapshot) {
	env.Snapshot.Set(s)
}
