package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"planforge/internal/domain"
	"planforge/internal/events"
	"planforge/internal/metrics"
)

// Operation names used in errors, logs and metrics.
const (
	opCreate = "create"
	opGet    = "get"
	opList   = "list"
	opUpdate = "update"
	opDelete = "delete"
	opCount  = "count"
)

// Store is the handle every gateway shares. It owns no global state; callers
// build one per database.
type Store struct {
	db      *sql.DB
	log     *zap.Logger
	metrics *metrics.Gateway
	events  events.Writer
	newID   func() string
}

type Option func(*Store)

func WithLogger(log *zap.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

func WithMetrics(m *metrics.Gateway) Option {
	return func(s *Store) { s.metrics = m }
}

// WithClock sets the clock stamping audit events.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.events.Now = now }
}

// WithIDs sets the generator used when a create input carries no id.
func WithIDs(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// NewStore wraps db. db must be open and migrated.
func NewStore(db *sql.DB, opts ...Option) (*Store, error) {
	if db == nil {
		return nil, errors.New("repo: nil database")
	}
	s := &Store{
		db:    db,
		log:   zap.NewNop(),
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// queryer is the part of *sql.Tx the gateways use.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// run executes fn in one transaction and records the outcome. id may be empty
// for operations that do not target a single record.
func (s *Store) run(ctx context.Context, kind domain.Kind, op, id string, fn func(tx *sql.Tx) error) (err error) {
	start := time.Now()
	defer func() {
		err = wrapErr(kind, op, err)
		s.metrics.Observe(string(kind), op, outcome(err), time.Since(start))
		s.logResult(kind, op, id, err)
	}()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *Store) logResult(kind domain.Kind, op, id string, err error) {
	fields := []zap.Field{zap.String("kind", string(kind)), zap.String("op", op)}
	if id != "" {
		fields = append(fields, zap.String("id", id))
	}
	switch Classify(err) {
	case ErrorNone:
		if op != opGet && op != opList && op != opCount {
			s.log.Debug("gateway mutation", fields...)
		}
	case ErrorPersistence:
		s.log.Warn("gateway store failure", append(fields, zap.Error(err))...)
	default:
		s.log.Debug("gateway rejected", append(fields, zap.Error(err))...)
	}
}

// assignID returns the caller's id or a fresh one.
func (s *Store) assignID(id string) string {
	if id != "" {
		return id
	}
	return s.newID()
}

func (s *Store) emit(ctx context.Context, tx *sql.Tx, kind domain.Kind, verb, id string, payload events.EventPayload) error {
	return s.events.Append(ctx, tx, events.Type(kind, verb), kind, id, payload)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func nullable(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func ptr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
