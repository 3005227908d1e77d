package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/proneo/platform/internal/localstate"
)

type deviceStateRepo struct{}

// NewDeviceStateRepository returns a pgx-backed DeviceStateRepository.
func NewDeviceStateRepository() DeviceStateRepository {
	return &deviceStateRepo{}
}

func (r *deviceStateRepo) Get(ctx context.Context, db DBTX, key string) ([]byte, error) {
	var value []byte
	err := db.QueryRow(ctx, `
		SELECT value FROM device_state
		WHERE key = $1 AND (expires_at IS NULL OR expires_at > now())`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", localstate.ErrKeyNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("get device state: %w", err)
	}
	return value, nil
}

func (r *deviceStateRepo) Put(ctx context.Context, db DBTX, key string, value []byte, expiresAt *time.Time) error {
	_, err := db.Exec(ctx, `
		INSERT INTO device_state (key, value, expires_at, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at, updated_at = now()`,
		key, value, expiresAt)
	if err != nil {
		return fmt.Errorf("put device state: %w", err)
	}
	return nil
}

func (r *deviceStateRepo) Delete(ctx context.Context, db DBTX, key string) error {
	if _, err := db.Exec(ctx, `DELETE FROM device_state WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete device state: %w", err)
	}
	return nil
}

func (r *deviceStateRepo) PurgeExpired(ctx context.Context, db DBTX) (int64, error) {
	tag, err := db.Exec(ctx, `DELETE FROM device_state WHERE expires_at IS NOT NULL AND expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("purge device state: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeviceStateStore adapts a DeviceStateRepository bound to db into a
// localstate.Store.
type DeviceStateStore struct {
	db   DBTX
	repo DeviceStateRepository
}

// NewDeviceStateStore creates a Postgres-backed localstate.Store.
func NewDeviceStateStore(db DBTX, repo DeviceStateRepository) *DeviceStateStore {
	return &DeviceStateStore{db: db, repo: repo}
}

func (s *DeviceStateStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.repo.Get(ctx, s.db, key)
}

func (s *DeviceStateStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var exp *time.Time
	if ttl > 0 {
		t := time.Now().Add(ttl)
		exp = &t
	}
	return s.repo.Put(ctx, s.db, key, value, exp)
}

func (s *DeviceStateStore) Delete(ctx context.Context, key string) error {
	return s.repo.Delete(ctx, s.db, key)
}

// Purge deletes expired rows.
func (s *DeviceStateStore) Purge(ctx context.Context) (int64, error) {
	return s.repo.PurgeExpired(ctx, s.db)
}
