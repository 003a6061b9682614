package pgstore

import (
	"context"
	"fmt"
	"strings"
)

// createTableSQL creates the camera table. The section columns are
// inserted between the identity columns and raw_json.
const createTableSQL = `CREATE TABLE IF NOT EXISTS %s (
    id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    model_name   TEXT NOT NULL,
    manufacturer TEXT NOT NULL,
    aliases      TEXT[] NOT NULL DEFAULT '{}',
    release_year INTEGER,
    camera_type  TEXT,
    user_level   TEXT,
%s,
    raw_json     TEXT,
    needs_review BOOLEAN NOT NULL DEFAULT FALSE,
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (model_name, manufacturer)
)`

// createNameIndexSQL backs the case-insensitive lookup in Get.
const createNameIndexSQL = `CREATE INDEX IF NOT EXISTS idx_%s_lower_name
    ON %s (lower(model_name), lower(manufacturer))`

// createAliasIndexSQL backs GetByAlias.
const createAliasIndexSQL = `CREATE INDEX IF NOT EXISTS idx_%s_aliases
    ON %s USING GIN (aliases)`

// EnsureSchema creates the camera table and its indexes if they do not
// already exist. Production deployments should manage the schema with
// migrations instead.
func (s *Store) EnsureSchema(ctx context.Context) error {
	sections := make([]string, len(s.sections))
	for i, column := range s.sections {
		sections[i] = fmt.Sprintf("    %s JSONB", column)
	}

	tableSQL := fmt.Sprintf(createTableSQL, s.tableName, strings.Join(sections, ",\n"))
	if _, err := s.db.Exec(ctx, tableSQL); err != nil {
		return fmt.Errorf("pgstore: create table: %w", err)
	}

	indexName := strings.Trim(s.tableName, `"`)

	nameIdxSQL := fmt.Sprintf(createNameIndexSQL, indexName, s.tableName)
	if _, err := s.db.Exec(ctx, nameIdxSQL); err != nil {
		return fmt.Errorf("pgstore: create name index: %w", err)
	}

	aliasIdxSQL := fmt.Sprintf(createAliasIndexSQL, indexName, s.tableName)
	if _, err := s.db.Exec(ctx, aliasIdxSQL); err != nil {
		return fmt.Errorf("pgstore: create alias index: %w", err)
	}

	return nil
}
