package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"

	"sidegig/internal/state"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	slot     TEXT PRIMARY KEY,
	version  INTEGER NOT NULL,
	saved_at INTEGER NOT NULL,
	raw_size INTEGER NOT NULL,
	data     BLOB NOT NULL
);
`

// Store keeps zstd-compressed save documents in SQLite, one row per
// named slot.
type Store struct {
	db  *sql.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// Open creates the database file (and its directory) if needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create save directory: %w", err)
		}
	}
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open save database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init save schema: %w", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		db.Close()
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, enc: enc, dec: dec}, nil
}

func (s *Store) Close() error {
	s.enc.Close()
	s.dec.Close()
	return s.db.Close()
}

// Save serializes and writes one slot, replacing any previous snapshot.
func (s *Store) Save(ctx context.Context, slot string, st *state.State, savedAt int64) error {
	doc, err := Serialize(st, savedAt)
	if err != nil {
		return err
	}
	packed := s.enc.EncodeAll(doc, nil)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (slot, version, saved_at, raw_size, data)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			version = excluded.version,
			saved_at = excluded.saved_at,
			raw_size = excluded.raw_size,
			data = excluded.data
	`, slot, state.CurrentVersion, savedAt, len(doc), packed)
	if err != nil {
		return fmt.Errorf("write snapshot %q: %w", slot, err)
	}
	return nil
}

// Load reads one slot. The second return is false when the slot does
// not exist.
func (s *Store) Load(ctx context.Context, slot string) (*state.State, bool, error) {
	var packed []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM snapshots WHERE slot = ?`, slot).Scan(&packed)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read snapshot %q: %w", slot, err)
	}
	doc, err := s.dec.DecodeAll(packed, nil)
	if err != nil {
		return nil, false, fmt.Errorf("decompress snapshot %q: %w", slot, err)
	}
	st, err := Hydrate(doc)
	if err != nil {
		return nil, false, err
	}
	return st, true, nil
}

// SlotInfo describes one stored snapshot.
type SlotInfo struct {
	Slot    string `json:"slot"`
	Version int    `json:"version"`
	SavedAt int64  `json:"savedAt"`
	RawSize int    `json:"rawSize"`
}

// Slots lists stored snapshots, newest first.
func (s *Store) Slots(ctx context.Context) ([]SlotInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT slot, version, saved_at, raw_size FROM snapshots ORDER BY saved_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []SlotInfo
	for rows.Next() {
		var info SlotInfo
		if err := rows.Scan(&info.Slot, &info.Version, &info.SavedAt, &info.RawSize); err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// Delete removes one slot.
func (s *Store) Delete(ctx context.Context, slot string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE slot = ?`, slot)
	if err != nil {
		return fmt.Errorf("delete snapshot %q: %w", slot, err)
	}
	return nil
}
