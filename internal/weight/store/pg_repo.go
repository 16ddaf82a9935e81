package store

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/2beens/weightstats/internal/telemetry/tracing"
	"github.com/2beens/weightstats/internal/weight"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

//go:embed schema.sql
var schema string

// PGRepo stores one row per entry. The positional index of an entry is its
// rank in id order.
type PGRepo struct {
	db *pgxpool.Pool
}

func NewPGRepo(db *pgxpool.Pool) *PGRepo {
	return &PGRepo{
		db: db,
	}
}

func (r *PGRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply weight schema: %w", err)
	}
	return nil
}

func (r *PGRepo) Read(ctx context.Context) (_ []weight.Observation, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.weight.read")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	rows, err := r.db.Query(ctx, `
		SELECT measured_at, weight
		FROM weight_entry
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]weight.Observation, 0)
	for rows.Next() {
		var obs weight.Observation
		if err := rows.Scan(&obs.Date, &obs.Weight); err != nil {
			return nil, err
		}
		entries = append(entries, obs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("entries", len(entries)))
	return entries, nil
}

func (r *PGRepo) Append(ctx context.Context, obs weight.Observation) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.weight.append")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if err := obs.Validate(); err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO weight_entry (measured_at, weight)
		VALUES ($1, $2)
	`, obs.Date, obs.Weight)
	return err
}

func (r *PGRepo) Replace(ctx context.Context, index int, obs weight.Observation) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.weight.replace")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.Int("index", index))

	if index < 0 {
		return ErrEntryNotFound
	}
	if err := obs.Validate(); err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE weight_entry
		SET measured_at = $1, weight = $2
		WHERE id = (SELECT id FROM weight_entry ORDER BY id OFFSET $3 LIMIT 1)
	`, obs.Date, obs.Weight, index)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (r *PGRepo) Remove(ctx context.Context, index int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.weight.remove")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.Int("index", index))

	if index < 0 {
		return ErrEntryNotFound
	}

	tag, err := r.db.Exec(ctx, `
		DELETE FROM weight_entry
		WHERE id = (SELECT id FROM weight_entry ORDER BY id OFFSET $1 LIMIT 1)
	`, index)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (r *PGRepo) Len(ctx context.Context) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.weight.len")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM weight_entry`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
