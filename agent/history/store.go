// Package history persists per-customer support summaries in a single-file
// SQLite database shared by every interaction in the process.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	contractx "github.com/D-Harshith/ResolveAI/agent/contract"
)

const (
	defaultMaxAttempts   = 5
	defaultRetryInterval = 500 * time.Millisecond
)

// Config is the store configuration, filled from the environment.
type Config struct {
	Path          string        `envconfig:"PATH" split_words:"true" default:"support_history.db"`
	BusyTimeout   time.Duration `envconfig:"BUSY_TIMEOUT" split_words:"true" default:"10s"`
	MaxAttempts   int           `envconfig:"MAX_ATTEMPTS" split_words:"true" default:"5"`
	RetryInterval time.Duration `envconfig:"RETRY_INTERVAL" split_words:"true" default:"500ms"`
}

// Record is one immutable history row. The timestamp is assigned by the
// database at insert time, never by the caller.
type Record struct {
	bun.BaseModel `bun:"table:history"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Email     string    `bun:"email,notnull"`
	Summary   string    `bun:"summary,notnull"`
	Timestamp time.Time `bun:"timestamp,nullzero,notnull,default:current_timestamp"`
}

// StoreOption customizes a SQLiteStore.
type StoreOption func(*SQLiteStore)

func WithMaxAttempts(n int) StoreOption {
	return func(s *SQLiteStore) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

func WithRetryInterval(d time.Duration) StoreOption {
	return func(s *SQLiteStore) {
		if d > 0 {
			s.retryInterval = d
		}
	}
}

// SQLiteStore implements contract.HistoryStore over a bun handle.
type SQLiteStore struct {
	db            *bun.DB
	maxAttempts   int
	retryInterval time.Duration
}

var _ contractx.HistoryStore = (*SQLiteStore)(nil)

// Open connects to the single-file database at cfg.Path. The handle is owned
// by the caller and must be closed on shutdown.
func Open(cfg Config, opts ...StoreOption) (*SQLiteStore, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, fmt.Errorf("%w: history database path is required", contractx.ErrValidation)
	}

	busyTimeout := cfg.BusyTimeout
	if busyTimeout <= 0 {
		busyTimeout = 10 * time.Second
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	// One pooled connection keeps the per-connection pragma in effect and
	// serializes in-process writers; cross-process contention still hits the
	// file lock and goes through the retry path in Append.
	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)
	if _, err := sqldb.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", busyTimeout.Milliseconds())); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	store := &SQLiteStore{
		db:            bun.NewDB(sqldb, sqlitedialect.New()),
		maxAttempts:   defaultMaxAttempts,
		retryInterval: defaultRetryInterval,
	}
	if cfg.MaxAttempts > 0 {
		store.maxAttempts = cfg.MaxAttempts
	}
	if cfg.RetryInterval > 0 {
		store.retryInterval = cfg.RetryInterval
	}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	return store, nil
}

// Init idempotently creates the history table and its email index. Safe to
// call on every start regardless of prior state.
func (s *SQLiteStore) Init(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().
		Model((*Record)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create history table: %w", err)
	}

	if _, err := s.db.NewCreateIndex().
		Model((*Record)(nil)).
		Index("idx_email").
		Column("email").
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}

// Records returns every summary saved for the email, oldest first. The id
// breaks ties between rows written within the same timestamp second.
func (s *SQLiteStore) Records(ctx context.Context, email string) ([]string, error) {
	var summaries []string
	err := s.db.NewSelect().
		Model((*Record)(nil)).
		Column("summary").
		Where("email = ?", NormalizeEmail(email)).
		Order("timestamp ASC", "id ASC").
		Scan(ctx, &summaries)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return summaries, nil
}

// Append inserts one record, retrying bounded times when a concurrent writer
// holds the file lock. Non-lock failures surface immediately.
func (s *SQLiteStore) Append(ctx context.Context, email, record string) error {
	normalized := NormalizeEmail(email)
	return retryOnLock(ctx, s.maxAttempts, s.retryInterval, func() error {
		rec := &Record{Email: normalized, Summary: record}
		_, err := s.db.NewInsert().Model(rec).Exec(ctx)
		return err
	})
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// NormalizeEmail lowercases and trims an address; it is applied before every
// storage read or write so history keys stay consistent.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// retryOnLock runs fn up to maxAttempts times, waiting interval between
// attempts that failed with lock contention. The wait respects ctx so a
// cancelled interaction does not sit out the backoff.
func retryOnLock(ctx context.Context, maxAttempts int, interval time.Duration, fn func() error) error {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !isLocked(err) {
			return err
		}
		log.Warn().
			Int("attempt", attempt).
			Int("max_attempts", maxAttempts).
			Msg("history database locked, retrying write")
		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
	return contractx.ErrStoreLocked
}

// isLocked reports whether err is SQLite lock contention (SQLITE_BUSY or
// SQLITE_LOCKED) rather than a fatal storage fault.
func isLocked(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "sqlite_busy")
}
