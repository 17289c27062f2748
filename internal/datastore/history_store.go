package datastore

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"filewarden/internal/common"
	"filewarden/internal/models"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// HistoryStore persists completed verdicts to a SQLite database so past
// analyses survive restarts. The table is pruned to a configured maximum,
// oldest entries first.
type HistoryStore struct {
	db         *sql.DB
	maxEntries int
	logger     zerolog.Logger
}

// HistoryEntry is one persisted verdict record.
type HistoryEntry struct {
	ID           int64
	Kind         models.TargetKind
	Digest       string
	Level        models.RiskLevel
	Signals      []models.Signal
	SourceRemote bool
	AnalyzedAt   time.Time
}

// NewHistoryStore opens (creating if needed) the verdict history database.
func NewHistoryStore(dbPath string, maxEntries int, log zerolog.Logger) (*HistoryStore, error) {
	storeLogger := log.With().Str("component", "HistoryStore").Logger()

	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, common.WrapErrorf(err, "failed to create database directory %s", dbDir)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, common.WrapErrorf(err, "failed to open database %s", dbPath)
	}

	store := &HistoryStore{
		db:         db,
		maxEntries: maxEntries,
		logger:     storeLogger,
	}

	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, common.WrapError(err, "failed to initialize schema")
	}

	storeLogger.Info().Str("db_path", dbPath).Msg("Verdict history database initialized")
	return store, nil
}

// Close closes the database connection.
func (s *HistoryStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *HistoryStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS verdict_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		digest TEXT NOT NULL,
		level TEXT NOT NULL,
		signals TEXT,
		source_remote INTEGER NOT NULL DEFAULT 0,
		analyzed_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_verdict_history_digest ON verdict_history(digest);
	`
	if _, err := s.db.Exec(query); err != nil {
		return err
	}
	return nil
}

// Record inserts a verdict and prunes the table past the entry limit.
func (s *HistoryStore) Record(verdict models.Verdict) error {
	signalsJSON, err := json.Marshal(verdict.Signals)
	if err != nil {
		return common.WrapError(err, "failed to encode signals")
	}

	query := `INSERT INTO verdict_history (kind, digest, level, signals, source_remote, analyzed_at) VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := s.db.Exec(query,
		string(verdict.Fingerprint.Kind),
		verdict.Fingerprint.Digest,
		verdict.Level.String(),
		string(signalsJSON),
		verdict.SourceRemote,
		verdict.Timestamp.UTC(),
	); err != nil {
		return common.WrapError(err, "failed to insert verdict record")
	}

	return s.prune()
}

// Recent returns the newest entries, most recent first, up to limit.
func (s *HistoryStore) Recent(limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = s.maxEntries
	}

	query := `SELECT id, kind, digest, level, signals, source_remote, analyzed_at
		FROM verdict_history ORDER BY id DESC LIMIT ?`
	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, common.WrapError(err, "failed to query verdict history")
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		entry, err := scanHistoryRow(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// FindByDigest returns past verdicts for a specific digest, newest first.
func (s *HistoryStore) FindByDigest(digest string) ([]HistoryEntry, error) {
	query := `SELECT id, kind, digest, level, signals, source_remote, analyzed_at
		FROM verdict_history WHERE digest = ? ORDER BY id DESC`
	rows, err := s.db.Query(query, digest)
	if err != nil {
		return nil, common.WrapError(err, "failed to query verdict history by digest")
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		entry, err := scanHistoryRow(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Count returns the number of stored entries.
func (s *HistoryStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM verdict_history`).Scan(&n); err != nil {
		return 0, common.WrapError(err, "failed to count verdict history")
	}
	return n, nil
}

func (s *HistoryStore) prune() error {
	if s.maxEntries <= 0 {
		return nil
	}
	query := `DELETE FROM verdict_history WHERE id NOT IN (
		SELECT id FROM verdict_history ORDER BY id DESC LIMIT ?)`
	if _, err := s.db.Exec(query, s.maxEntries); err != nil {
		return common.WrapError(err, "failed to prune verdict history")
	}
	return nil
}

func scanHistoryRow(rows *sql.Rows) (HistoryEntry, error) {
	var (
		entry       HistoryEntry
		kind        string
		level       string
		signalsJSON sql.NullString
	)
	if err := rows.Scan(&entry.ID, &kind, &entry.Digest, &level, &signalsJSON, &entry.SourceRemote, &entry.AnalyzedAt); err != nil {
		return HistoryEntry{}, common.WrapError(err, "failed to scan verdict history row")
	}
	entry.Kind = models.TargetKind(kind)
	entry.Level = models.ParseRiskLevel(level)
	if signalsJSON.Valid && signalsJSON.String != "" {
		if err := json.Unmarshal([]byte(signalsJSON.String), &entry.Signals); err != nil {
			return HistoryEntry{}, common.WrapError(err, "failed to decode signals")
		}
	}
	return entry, nil
}
