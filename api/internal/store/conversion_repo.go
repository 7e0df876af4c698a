package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Conversion statuses.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Conversion is one pipeline run.
type Conversion struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Mode        string    `json:"mode"`
	SourceName  string    `json:"source_name"`
	Engine      string    `json:"engine"`
	Status      string    `json:"status"`
	ErrorCode   string    `json:"error_code,omitempty"`
	Message     string    `json:"message,omitempty"`
	Document    string    `json:"document,omitempty"`
	RawResponse string    `json:"-"`
	ElapsedMS   int64     `json:"elapsed_ms"`
}

type ConversionRepo struct{ DB *sql.DB }

func NewConversionRepo(db *sql.DB) *ConversionRepo { return &ConversionRepo{DB: db} }

const schema = `
create table if not exists conversions (
  id           uuid primary key,
  created_at   timestamptz not null default now(),
  mode         text not null,
  source_name  text not null default '',
  engine       text not null default '',
  status       text not null,
  error_code   text,
  message      text,
  document     text,
  raw_response text,
  elapsed_ms   bigint not null default 0
);
create index if not exists conversions_created_at_idx on conversions (created_at desc);`

func (r *ConversionRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Record stores a run. A repeated ID overwrites the earlier row.
func (r *ConversionRepo) Record(ctx context.Context, c Conversion) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	const q = `
insert into conversions (
  id, created_at, mode, source_name, engine, status,
  error_code, message, document, raw_response, elapsed_ms
) values ($1,$2,$3,$4,$5,$6,nullif($7,''),nullif($8,''),nullif($9,''),nullif($10,''),$11)
on conflict (id) do update
set status = excluded.status,
    error_code = excluded.error_code,
    message = excluded.message,
    document = excluded.document,
    raw_response = excluded.raw_response,
    elapsed_ms = excluded.elapsed_ms`
	_, err := r.DB.ExecContext(ctx, q,
		c.ID, c.CreatedAt, c.Mode, c.SourceName, c.Engine, c.Status,
		c.ErrorCode, c.Message, c.Document, c.RawResponse, c.ElapsedMS,
	)
	if err != nil {
		return fmt.Errorf("record conversion: %w", err)
	}
	return nil
}

// Recent returns the latest runs, newest first.
func (r *ConversionRepo) Recent(ctx context.Context, limit int) ([]Conversion, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	const q = `
select id::text, created_at, mode, source_name, engine, status,
       coalesce(error_code,''), coalesce(message,''), coalesce(document,''),
       coalesce(raw_response,''), elapsed_ms
from conversions
order by created_at desc
limit $1`
	rows, err := r.DB.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("recent conversions: %w", err)
	}
	defer rows.Close()

	var out []Conversion
	for rows.Next() {
		var c Conversion
		if err := rows.Scan(&c.ID, &c.CreatedAt, &c.Mode, &c.SourceName, &c.Engine, &c.Status,
			&c.ErrorCode, &c.Message, &c.Document, &c.RawResponse, &c.ElapsedMS); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
