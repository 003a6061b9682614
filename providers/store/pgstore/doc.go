// Package pgstore persists camera records in PostgreSQL through pgx.
//
// Records live in a single table keyed by (model_name, manufacturer).
// Identity fields have their own columns, every other top-level section of
// the record is a JSONB column, and aliases are a TEXT[] searched with
// ANY. Records rebuilt from salvaged output are stored with needs_review
// set so they can be checked before being trusted.
//
// The store accepts any [Querier], typically a *pgxpool.Pool:
//
//	pool, err := pgxpool.New(ctx, os.Getenv("DATABASE_URL"))
//	store := pgstore.New(pool)
//	if err := store.EnsureSchema(ctx); err != nil { ... }
package pgstore
