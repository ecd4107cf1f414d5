package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/rkwai/rag-system/internal/model"
	"github.com/rkwai/rag-system/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies
// connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

// HealthPing implements health.HealthPinger.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const ddl = `
CREATE TABLE IF NOT EXISTS game_memories (
    memory_id     TEXT PRIMARY KEY,
    player_id     TEXT NOT NULL,
    memory_type   TEXT NOT NULL,
    content       TEXT NOT NULL,
    location      TEXT NOT NULL DEFAULT '',
    importance    DOUBLE PRECISION NOT NULL CHECK (importance >= 0 AND importance <= 1),
    metadata      JSONB,
    creation_time TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_game_memories_player_importance
    ON game_memories (player_id, importance DESC);
`

// Bootstrap ensures connectivity and applies the schema.
func Bootstrap(ctx context.Context, dsn string) error {
	if dsn == "" {
		return nil
	}
	db, err := Open(dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return db.PingContext(ctx)
}

func (s *pgStore) InsertMemory(ctx context.Context, rec *model.MemoryRecord) (*model.MemoryRecord, error) {
	id := rec.ID
	if id == "" {
		id = uuid.New().String()
	}
	var meta []byte
	if rec.Metadata != nil {
		b, err := json.Marshal(rec.Metadata)
		if err != nil {
			return nil, fmt.Errorf("marshal metadata: %w", err)
		}
		meta = b
	}

	var created time.Time
	row := s.db.QueryRowContext(ctx, `
        INSERT INTO game_memories (memory_id, player_id, memory_type, content, location, importance, metadata)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING creation_time
    `, id, rec.PlayerID, rec.MemoryType, rec.Content, rec.Location, rec.Importance, meta)
	if err := row.Scan(&created); err != nil {
		return nil, err
	}

	out := *rec
	out.ID = id
	out.Timestamp = created
	return &out, nil
}

func (s *pgStore) GetMemory(ctx context.Context, id string) (*model.MemoryRecord, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT memory_id, player_id, memory_type, content, location, importance, metadata, creation_time
        FROM game_memories WHERE memory_id=$1
    `, id)
	rec, err := scanMemory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	return rec, err
}

func (s *pgStore) MemoriesByPlayer(ctx context.Context, playerID string, limit int) ([]*model.MemoryRecord, error) {
	q := `
        SELECT memory_id, player_id, memory_type, content, location, importance, metadata, creation_time
        FROM game_memories WHERE player_id=$1
        ORDER BY importance DESC, creation_time DESC
    `
	args := []interface{}{playerID}
	if limit > 0 {
		q += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var res []*model.MemoryRecord
	for rows.Next() {
		rec, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMemory(row rowScanner) (*model.MemoryRecord, error) {
	var rec model.MemoryRecord
	var meta []byte
	if err := row.Scan(&rec.ID, &rec.PlayerID, &rec.MemoryType, &rec.Content, &rec.Location, &rec.Importance, &meta, &rec.Timestamp); err != nil {
		return nil, err
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &rec.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	return &rec, nil
}
