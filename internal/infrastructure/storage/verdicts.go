package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"hextactics-server/internal/domain"
	"hextactics-server/internal/infrastructure/storage/migrations"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// VerdictStore - журнал проверок реплеев в SQLite
type VerdictStore struct {
	db *sql.DB
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// OpenVerdicts открывает базу и применяет встроенные миграции
func OpenVerdicts(path string) (*VerdictStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &VerdictStore{db: db}, nil
}

func (s *VerdictStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveVerdict пишет один вердикт. Повторный ID - ErrAlreadyExists.
func (s *VerdictStore) SaveVerdict(ctx context.Context, v domain.Verdict) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	id := strings.TrimSpace(v.ID)
	if id == "" {
		return fmt.Errorf("verdict id is required")
	}
	created := v.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	var failIndex sql.NullInt64
	if v.Index != nil {
		failIndex = sql.NullInt64{Int64: int64(*v.Index), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO verdicts (
		   id, seed, map_id, tracked_id, valid, reason, fail_index,
		   stats, digest, turn, phase, applied, rejected, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, v.Seed, v.MapID, string(v.TrackedID), v.Valid, v.Reason, failIndex,
		string(v.Stats), v.Digest, v.Turn, v.Phase, v.Applied, v.Rejected, toMillis(created),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("save verdict: %w", err)
	}
	return nil
}

const verdictColumns = `id, seed, map_id, tracked_id, valid, reason, fail_index,
		        stats, digest, turn, phase, applied, rejected, created_at`

func (s *VerdictStore) GetVerdict(ctx context.Context, id string) (domain.Verdict, error) {
	if err := ctx.Err(); err != nil {
		return domain.Verdict{}, err
	}
	if s == nil || s.db == nil {
		return domain.Verdict{}, fmt.Errorf("storage is not configured")
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+verdictColumns+` FROM verdicts WHERE id = ?`, strings.TrimSpace(id))
	v, err := scanVerdict(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Verdict{}, ErrNotFound
		}
		return domain.Verdict{}, fmt.Errorf("get verdict: %w", err)
	}
	return v, nil
}

// ListVerdicts - последние вердикты, новые первыми
func (s *VerdictStore) ListVerdicts(ctx context.Context, limit int) ([]domain.Verdict, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+verdictColumns+` FROM verdicts ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list verdicts: %w", err)
	}
	defer rows.Close()

	var out []domain.Verdict
	for rows.Next() {
		v, err := scanVerdict(rows)
		if err != nil {
			return nil, fmt.Errorf("scan verdict: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVerdict(row scanner) (domain.Verdict, error) {
	var (
		v         domain.Verdict
		tracked   string
		failIndex sql.NullInt64
		stats     string
		created   int64
	)
	if err := row.Scan(
		&v.ID, &v.Seed, &v.MapID, &tracked, &v.Valid, &v.Reason, &failIndex,
		&stats, &v.Digest, &v.Turn, &v.Phase, &v.Applied, &v.Rejected, &created,
	); err != nil {
		return domain.Verdict{}, err
	}
	v.TrackedID = domain.EntityID(tracked)
	if failIndex.Valid {
		idx := int(failIndex.Int64)
		v.Index = &idx
	}
	if stats != "" {
		v.Stats = []byte(stats)
	}
	v.CreatedAt = fromMillis(created)
	return v, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
