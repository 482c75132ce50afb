package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	_ "modernc.org/sqlite"

	"voice-assistant/internal/domain"
)

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteSource reads pairs from the input and output columns of a table,
// in rowid order.
type SQLiteSource struct {
	DSN   string
	Table string
}

func NewSQLiteSource(dsn, table string) *SQLiteSource {
	return &SQLiteSource{DSN: dsn, Table: table}
}

func (s *SQLiteSource) Name() string {
	return "sqlite:" + s.DSN + "#" + s.Table
}

func (s *SQLiteSource) Load(ctx context.Context) ([]domain.Pair, error) {
	if !identifierRe.MatchString(s.Table) {
		return nil, fmt.Errorf("invalid table name %q", s.Table)
	}

	db, err := sql.Open("sqlite", readOnlyDSN(s.DSN))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()

	query := fmt.Sprintf("SELECT %s, %s FROM %s ORDER BY rowid", promptColumn, responseColumn, s.Table)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query corpus: %w", err)
	}
	defer rows.Close()

	var pairs []domain.Pair
	for rows.Next() {
		var prompt, response sql.NullString
		if err := rows.Scan(&prompt, &response); err != nil {
			return nil, fmt.Errorf("scan corpus row: %w", err)
		}
		if p, ok := newPair(prompt.String, response.String); ok {
			pairs = append(pairs, p)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate corpus rows: %w", err)
	}

	return pairs, nil
}

// readOnlyDSN turns a path or file: URI into a read-only URI so a mistyped
// path fails instead of leaving an empty database behind.
func readOnlyDSN(dsn string) string {
	if strings.Contains(dsn, "mode=") {
		return dsn
	}
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "mode=ro"
}
