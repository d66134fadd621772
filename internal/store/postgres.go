package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/homesignal/leadscore/internal/model"
)

// Pool abstracts the pgxpool methods the store uses so tests can substitute
// a mock pool.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id             TEXT PRIMARY KEY,
	hashed_email   TEXT NOT NULL,
	hashed_phone   TEXT NOT NULL,
	initial_score  INTEGER NOT NULL,
	reranked_score INTEGER NOT NULL,
	intent_level   TEXT NOT NULL,
	explanation    TEXT NOT NULL,
	comments       TEXT NOT NULL DEFAULT '',
	scored_at      TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_leads_hashed_email ON leads(hashed_email);
CREATE INDEX IF NOT EXISTS idx_leads_intent_level ON leads(intent_level);
CREATE INDEX IF NOT EXISTS idx_leads_scored_at ON leads(scored_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) AppendLead(ctx context.Context, rec model.LeadRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO leads
			(id, hashed_email, hashed_phone, initial_score, reranked_score, intent_level, explanation, comments, scored_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rec.ID, rec.HashedEmail, rec.HashedPhone,
		rec.InitialScore, rec.RerankedScore, string(rec.IntentLevel),
		rec.Explanation, rec.Comments, rec.Timestamp.UTC(),
	)
	return eris.Wrapf(err, "postgres: append lead %s", rec.ID)
}

func (s *PostgresStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.LeadRecord, error) {
	query := `SELECT id, hashed_email, hashed_phone, initial_score, reranked_score, intent_level, explanation, comments, scored_at
		FROM leads WHERE 1=1`
	var args []any
	argNum := 1

	if filter.IntentLevel != "" {
		query += fmt.Sprintf(" AND intent_level = $%d", argNum)
		args = append(args, string(filter.IntentLevel))
		argNum++
	}
	if filter.MinScore > 0 {
		query += fmt.Sprintf(" AND reranked_score >= $%d", argNum)
		args = append(args, filter.MinScore)
		argNum++
	}
	query += ` ORDER BY scored_at DESC, id`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(" LIMIT $%d", argNum)
	args = append(args, limit)
	argNum++

	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list leads")
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
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		rec.IntentLevel = model.IntentLevel(intent)
		recs = append(recs, rec)
	}
	return recs, eris.Wrap(rows.Err(), "postgres: list leads iterate")
}

func (s *PostgresStore) CountLeads(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM leads`).Scan(&n)
	return n, eris.Wrap(err, "postgres: count leads")
}
