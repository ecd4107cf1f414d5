// Package sqlite implements the relational store on modernc.org/sqlite,
// a cgo-free driver. Used for local development and tests.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/rkwai/rag-system/internal/model"
	"github.com/rkwai/rag-system/internal/store"
)

// Open opens (or creates) a SQLite database at path and enables WAL mode.
// ":memory:" yields an ephemeral database.
func Open(path string) (*sql.DB, error) {
	dsn := "file::memory:?mode=memory&cache=shared"
	if path != ":memory:" {
		// ensure parent directory exists to avoid SQLITE_CANTOPEN errors
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

const ddl = `
CREATE TABLE IF NOT EXISTS game_memories (
    memory_id     TEXT PRIMARY KEY,
    player_id     TEXT NOT NULL,
    memory_type   TEXT NOT NULL,
    content       TEXT NOT NULL,
    location      TEXT NOT NULL DEFAULT '',
    importance    REAL NOT NULL CHECK (importance >= 0 AND importance <= 1),
    metadata      TEXT,
    creation_time TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_game_memories_player_importance
    ON game_memories (player_id, importance DESC);
`

// NewWithDB applies the schema and returns a sqlite-backed store.Store.
func NewWithDB(db *sql.DB) (store.Store, error) {
	if _, err := db.Exec(ddl); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &sqliteStore{db: db}, nil
}

type sqliteStore struct{ db *sql.DB }

// HealthPing implements health.HealthPinger.
func (s *sqliteStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqliteStore) InsertMemory(ctx context.Context, rec *model.MemoryRecord) (*model.MemoryRecord, error) {
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
	created := rec.Timestamp
	if created.IsZero() {
		created = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
        INSERT INTO game_memories (memory_id, player_id, memory_type, content, location, importance, metadata, creation_time)
        VALUES (?,?,?,?,?,?,?,?)
    `, id, rec.PlayerID, rec.MemoryType, rec.Content, rec.Location, rec.Importance, meta, created)
	if err != nil {
		return nil, err
	}

	out := *rec
	out.ID = id
	out.Timestamp = created
	return &out, nil
}

func (s *sqliteStore) GetMemory(ctx context.Context, id string) (*model.MemoryRecord, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT memory_id, player_id, memory_type, content, location, importance, metadata, creation_time
        FROM game_memories WHERE memory_id=?
    `, id)
	rec, err := scanMemory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	return rec, err
}

func (s *sqliteStore) MemoriesByPlayer(ctx context.Context, playerID string, limit int) ([]*model.MemoryRecord, error) {
	q := `
        SELECT memory_id, player_id, memory_type, content, location, importance, metadata, creation_time
        FROM game_memories WHERE player_id=?
        ORDER BY importance DESC, creation_time DESC
    `
	args := []interface{}{playerID}
	if limit > 0 {
		q += ` LIMIT ?`
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
