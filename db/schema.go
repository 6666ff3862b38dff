package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"slices"
	"strings"

	"github.com/lib/pq"
)

//go:embed schema.sql
var schemaSQL string

var Tables = []string{"market_news", "ticker_sentiments"}

// CreateTables creates the news tables and their indexes if they do not
// exist yet. Existing tables are left as they are.
func CreateTables(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range statements(schemaSQL) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema: %w", err)
		}
	}

	return tx.Commit()
}

// VerifyTables returns the news tables found in the current schema and an
// error if any of them is missing.
func VerifyTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = current_schema() AND table_name = ANY($1)
		ORDER BY table_name
	`, pq.Array(Tables))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var found []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		found = append(found, name)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	var missing []string
	for _, t := range Tables {
		if !slices.Contains(found, t) {
			missing = append(missing, t)
		}
	}
	if len(missing) > 0 {
		return found, fmt.Errorf("missing tables: %s", strings.Join(missing, ", "))
	}

	return found, nil
}

func statements(script string) []string {
	var out []string
	for _, s := range strings.Split(script, ";") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
