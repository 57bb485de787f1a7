package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
)

// Sentinel errors shared by the repositories. The service layer maps these
// onto its own taxonomy.
var (
	// ErrRoomTaken: the room's availability flag was already false at write
	// time, or an active lease still references it.
	ErrRoomTaken = errors.New("room is not available")
	// ErrDuplicate: a uniqueness constraint rejected the insert (second
	// auto-generated rent bill in a month, second billing run, second active
	// lease for a tenant or room).
	ErrDuplicate = errors.New("duplicate record")
	// ErrVersionConflict: a conditional update matched zero rows because the
	// record changed under us; the caller must re-fetch before retrying.
	ErrVersionConflict = errors.New("record was modified concurrently")
)

type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	SetEx(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

// Store bundles the database handle and redis client the repositories share.
type Store struct {
	db    *sql.DB
	redis RedisClient

	Properties  *PropertyRepository
	Rooms       *RoomRepository
	Leases      *LeaseRepository
	Bills       *BillRepository
	Payments    *PaymentRepository
	Settings    *SettingsRepository
	Runs        *BillingRunRepository
	Maintenance *MaintenanceRepository
}

// New opens the postgres connection through the pgx stdlib driver and wires
// the repositories. redisAddr may be empty, in which case settings caching
// and the advisory month marker are disabled.
func New(dsn, redisAddr string) (*Store, error) {
	config, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	db := stdlib.OpenDB(*config)
	if err := db.Ping(); err != nil {
		return nil, err
	}

	var rdb RedisClient
	if redisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: redisAddr})
	}

	s := &Store{db: db, redis: rdb}
	s.Properties = &PropertyRepository{db: db}
	s.Rooms = &RoomRepository{db: db}
	s.Leases = &LeaseRepository{db: db}
	s.Bills = &BillRepository{db: db}
	s.Payments = &PaymentRepository{db: db}
	s.Settings = &SettingsRepository{db: db, redis: rdb}
	s.Runs = &BillingRunRepository{db: db}
	s.Maintenance = &MaintenanceRepository{db: db}
	return s, nil
}

// Marker returns the advisory cross-session marker backed by redis, or nil
// when redis is not configured.
func (s *Store) Marker() *AdvisoryMarker {
	if s.redis == nil {
		return nil
	}
	return &AdvisoryMarker{redis: s.redis}
}

// Close closes the database and redis connections.
func (s *Store) Close() error {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.db.Close()
			return err
		}
	}
	return s.db.Close()
}

// isUniqueViolation reports whether err is a postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// AdvisoryMarker is a best-effort cross-session flag held in redis. It only
// suppresses duplicate triggers; correctness never depends on it.
type AdvisoryMarker struct {
	redis RedisClient
}

// TryMark sets the key if it is not already set and reports whether this
// caller won. Errors are returned so the caller can log and proceed.
func (m *AdvisoryMarker) TryMark(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return m.redis.SetNX(ctx, key, 1, ttl).Result()
}
