package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/leofalp/mirror/internal/camera"
)

// defaultTableName is the PostgreSQL table used when no custom name is provided.
const defaultTableName = "cameras"

// identityColumns precede the section columns in every statement.
var identityColumns = []string{"model_name", "manufacturer", "aliases", "release_year", "camera_type", "user_level"}

// ErrNotFound is returned by Get and GetByAlias when no record matches.
// It wraps camera.ErrNotFound.
var ErrNotFound = fmt.Errorf("pgstore: %w", camera.ErrNotFound)

// Querier abstracts the pgx query methods needed by Store.
// Both *pgxpool.Pool and pgx.Tx satisfy this interface.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store reads and writes camera records. Concurrency is handled by the
// underlying pool.
type Store struct {
	db        Querier
	tableName string
	sections  []string
}

// Option configures optional Store behavior.
type Option func(*Store)

// WithTableName overrides the default table name ("cameras"). The name is
// sanitized via pgx.Identifier because it is interpolated into queries.
func WithTableName(name string) Option {
	return func(s *Store) {
		s.tableName = pgx.Identifier{name}.Sanitize()
	}
}

// New creates a store over db, typically a *pgxpool.Pool.
func New(db Querier, opts ...Option) *Store {
	store := &Store{
		db:        db,
		tableName: defaultTableName,
		sections:  camera.SectionNames(),
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// columns lists the selected columns in scan order.
func (s *Store) columns() []string {
	columns := make([]string, 0, len(identityColumns)+len(s.sections)+3)
	columns = append(columns, identityColumns...)
	columns = append(columns, s.sections...)
	return append(columns, "raw_json", "needs_review", "updated_at")
}

// Upsert inserts spec or, when a record with the same model name and
// manufacturer exists, replaces its content. Known aliases are merged
// rather than replaced. UpdatedAt is set from the database clock.
func (s *Store) Upsert(ctx context.Context, spec *camera.Spec) error {
	if spec == nil {
		return errors.New("pgstore: nil record")
	}

	insertColumns := s.columns()
	insertColumns = insertColumns[:len(insertColumns)-1] // updated_at defaults to NOW()

	placeholders := make([]string, len(insertColumns))
	updates := make([]string, 0, len(insertColumns))
	for i, column := range insertColumns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		switch column {
		case "model_name", "manufacturer":
		case "aliases":
			updates = append(updates, fmt.Sprintf(
				"aliases = ARRAY(SELECT DISTINCT a FROM unnest(%s.aliases || EXCLUDED.aliases) AS a)", s.tableName))
		default:
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", column, column))
		}
	}
	updates = append(updates, "updated_at = NOW()")

	query := fmt.Sprintf(`INSERT INTO %s (%s)
		VALUES (%s)
		ON CONFLICT (model_name, manufacturer) DO UPDATE SET %s
		RETURNING updated_at`,
		s.tableName,
		strings.Join(insertColumns, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "))

	aliases := spec.Aliases
	if aliases == nil {
		aliases = []string{}
	}
	var releaseYear *int32
	if spec.ReleaseYear != nil {
		year := int32(*spec.ReleaseYear)
		releaseYear = &year
	}

	args := []any{spec.ModelName, spec.Manufacturer, aliases, releaseYear, spec.CameraType, spec.UserLevel}
	for _, name := range s.sections {
		args = append(args, nullableJSON(spec.Sections[name]))
	}
	args = append(args, nullableText(spec.RawJSON), spec.NeedsReview)

	var updatedAt time.Time
	if err := s.db.QueryRow(ctx, query, args...).Scan(&updatedAt); err != nil {
		return fmt.Errorf("pgstore: upsert %s %s: %w", spec.Manufacturer, spec.ModelName, err)
	}
	spec.UpdatedAt = updatedAt
	return nil
}

// Get returns the record for a model name and manufacturer, compared
// case-insensitively. It returns ErrNotFound when there is none.
func (s *Store) Get(ctx context.Context, modelName, manufacturer string) (*camera.Spec, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s
		WHERE lower(model_name) = lower($1) AND lower(manufacturer) = lower($2)
		LIMIT 1`, strings.Join(s.columns(), ", "), s.tableName)

	spec, err := s.scanSpec(s.db.QueryRow(ctx, query, modelName, manufacturer))
	if err != nil {
		return nil, fmt.Errorf("pgstore: get %s %s: %w", manufacturer, modelName, err)
	}
	return spec, nil
}

// GetByAlias returns the most recently updated record listing alias. It
// returns ErrNotFound when there is none.
func (s *Store) GetByAlias(ctx context.Context, alias string) (*camera.Spec, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s
		WHERE $1 = ANY(aliases)
		ORDER BY updated_at DESC LIMIT 1`, strings.Join(s.columns(), ", "), s.tableName)

	spec, err := s.scanSpec(s.db.QueryRow(ctx, query, alias))
	if err != nil {
		return nil, fmt.Errorf("pgstore: get by alias %q: %w", alias, err)
	}
	return spec, nil
}

// scanSpec reads one row selected with s.columns().
func (s *Store) scanSpec(row pgx.Row) (*camera.Spec, error) {
	var (
		spec        camera.Spec
		releaseYear *int32
		rawJSON     *string
	)
	sections := make([][]byte, len(s.sections))

	targets := []any{&spec.ModelName, &spec.Manufacturer, &spec.Aliases, &releaseYear, &spec.CameraType, &spec.UserLevel}
	for i := range sections {
		targets = append(targets, &sections[i])
	}
	targets = append(targets, &rawJSON, &spec.NeedsReview, &spec.UpdatedAt)

	if err := row.Scan(targets...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if releaseYear != nil {
		year := int(*releaseYear)
		spec.ReleaseYear = &year
	}
	if rawJSON != nil {
		spec.RawJSON = *rawJSON
	}
	if spec.Aliases == nil {
		spec.Aliases = []string{}
	}
	spec.Sections = make(map[string]json.RawMessage, len(s.sections))
	for i, name := range s.sections {
		if len(sections[i]) > 0 {
			spec.Sections[name] = json.RawMessage(sections[i])
		}
	}
	return &spec, nil
}

// nullableJSON maps an absent or JSON null section to SQL NULL.
func nullableJSON(data json.RawMessage) []byte {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	return []byte(data)
}

func nullableText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
