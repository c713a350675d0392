package pgstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rpattn/adminkit/internal/backend"
	"github.com/rpattn/adminkit/internal/domain"
)

// DBTX is the subset of *sql.DB and *sql.Tx the store needs.
type DBTX interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements backend.Store.
type Store struct {
	db        DBTX
	resources map[string]struct{}
	logger    *zap.Logger
}

var _ backend.Store = (*Store)(nil)

// New creates a store serving the given resources.
func New(db DBTX, logger *zap.Logger, resources ...string) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{db: db, resources: make(map[string]struct{}, len(resources)), logger: logger}
	for _, r := range resources {
		s.resources[r] = struct{}{}
	}
	return s
}

func (s *Store) known(resource string) error {
	if _, ok := s.resources[resource]; !ok {
		return fmt.Errorf("resource %q: %w", resource, backend.ErrNotFound)
	}
	return nil
}

// List implements backend.Store.
func (s *Store) List(ctx context.Context, resource string, q backend.Query) ([]domain.Record, int, error) {
	if err := s.known(resource); err != nil {
		return nil, 0, err
	}

	w := &whereBuilder{}
	w.clauses = append(w.clauses, "resource = "+w.arg(resource))
	for _, l := range q.Lookups {
		if err := w.addLookup(l); err != nil {
			return nil, 0, err
		}
	}

	var total int
	countQuery := "SELECT count(*) FROM admin_records WHERE " + w.String()
	if err := s.db.QueryRowContext(ctx, countQuery, w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count %s: %w", resource, err)
	}

	listQuery := "SELECT data FROM admin_records WHERE " + w.String() + " ORDER BY created_at, id"
	if q.Limit > 0 {
		listQuery += " LIMIT " + w.arg(q.Limit)
	}
	if q.Offset > 0 {
		listQuery += " OFFSET " + w.arg(q.Offset)
	}

	s.logger.Debug("listing records", zap.String("resource", resource), zap.String("query", listQuery))

	rows, err := s.db.QueryContext(ctx, listQuery, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list %s: %w", resource, err)
	}
	defer rows.Close()

	records := []domain.Record{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, 0, fmt.Errorf("failed to scan %s: %w", resource, err)
		}
		record, err := decode(raw)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list %s: %w", resource, err)
	}
	return records, total, nil
}

// Get implements backend.Store.
func (s *Store) Get(ctx context.Context, resource, id string) (domain.Record, error) {
	if err := s.known(resource); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx,
		"SELECT data FROM admin_records WHERE resource = $1 AND id = $2", resource, id)
	return scanRecord(row, resource, id)
}

// Create implements backend.Store. Records without an id get a random one.
func (s *Store) Create(ctx context.Context, resource string, record domain.Record) (domain.Record, error) {
	if err := s.known(resource); err != nil {
		return nil, err
	}

	stored := record.Clone()
	id := stored.ID()
	if id == "" {
		id = uuid.NewString()
		stored["id"] = id
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s %s: %w", resource, id, err)
	}

	row := s.db.QueryRowContext(ctx,
		`INSERT INTO admin_records (resource, id, data) VALUES ($1, $2, $3)
ON CONFLICT (resource, id) DO NOTHING RETURNING data`, resource, id, data)
	created, err := scanRecord(row, resource, id)
	if errors.Is(err, backend.ErrNotFound) {
		return nil, fmt.Errorf("%s %s: %w", resource, id, backend.ErrConflict)
	}
	return created, err
}

// Update implements backend.Store by merging patch into the stored
// document.
func (s *Store) Update(ctx context.Context, resource, id string, patch domain.Record) (domain.Record, error) {
	if err := s.known(resource); err != nil {
		return nil, err
	}

	merged := patch.Clone()
	delete(merged, "id")
	data, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s %s: %w", resource, id, err)
	}

	row := s.db.QueryRowContext(ctx,
		`UPDATE admin_records SET data = data || $3::jsonb, updated_at = now()
WHERE resource = $1 AND id = $2 RETURNING data`, resource, id, data)
	return scanRecord(row, resource, id)
}

func scanRecord(row *sql.Row, resource, id string) (domain.Record, error) {
	var raw []byte
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s %s: %w", resource, id, backend.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load %s %s: %w", resource, id, err)
	}
	return decode(raw)
}

func decode(raw []byte) (domain.Record, error) {
	var record domain.Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	if record == nil {
		record = domain.Record{}
	}
	return record, nil
}
