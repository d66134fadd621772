package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/homesignal/leadscore/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id             TEXT PRIMARY KEY,
	hashed_email   TEXT NOT NULL,
	hashed_phone   TEXT NOT NULL,
	initial_score  INTEGER NOT NULL,
	reranked_score INTEGER NOT NULL,
	intent_level   TEXT NOT NULL,
	explanation    TEXT NOT NULL,
	comments       TEXT NOT NULL DEFAULT '',
	scored_at      DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_leads_hashed_email ON leads(hashed_email);
CREATE INDEX IF NOT EXISTS idx_leads_intent_level ON leads(intent_level);
CREATE INDEX IF NOT EXISTS idx_leads_scored_at ON leads(scored_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) AppendLead(ctx context.Context, rec model.LeadRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	// Single-statement insert: concurrent appends cannot interleave a record.
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO leads
			(id, hashed_email, hashed_phone, initial_score, reranked_score, intent_level, explanation, comments, scored_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.HashedEmail, rec.HashedPhone,
		rec.InitialScore, rec.RerankedScore, string(rec.IntentLevel),
		rec.Explanation, rec.Comments, rec.Timestamp.UTC(),
	)
	return eris.Wrapf(err, "sqlite: append lead %s", rec.ID)
}

func (s *SQLiteStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.LeadRecord, error) {
	query := `SELECT id, hashed_email, hashed_phone, initial_score, reranked_score, intent_level, explanation, comments, scored_at
		FROM leads WHERE 1=1`
	var args []any

	if filter.IntentLevel != "" {
		query += ` AND intent_level = ?`
		args = append(args, string(filter.IntentLevel))
	}
	if filter.MinScore > 0 {
		query += ` AND reranked_score >= ?`
		args = append(args, filter.MinScore)
	}
	query += ` ORDER BY scored_at DESC, id`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads")
	}
	defer rows.Close()

	var recs []model.LeadRecord
	for rows.Next() {
		var rec model.LeadRecord
		var intent string
		if err := rows.Scan(
			&rec.ID, &rec.HashedEmail, &rec.HashedPhone,
			&rec.InitialScore, &rec.RerankedScore, &intent,
			&rec.Explanation, &rec.Comments, &rec.Timestamp,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		rec.IntentLevel = model.IntentLevel(intent)
		recs = append(recs, rec)
	}
	return recs, eris.Wrap(rows.Err(), "sqlite: list leads iterate")
}

func (s *SQLiteStore) CountLeads(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads`).Scan(&n)
	return n, eris.Wrap(err, "sqlite: count leads")
}
