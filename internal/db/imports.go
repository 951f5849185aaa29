package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ResolveLatestScenario returns the most recently created scenario whose
// name contains pattern (case-insensitive). An empty pattern matches all.
func ResolveLatestScenario(ctx context.Context, db *sql.DB, pattern string) (string, error) {
	pattern = strings.TrimSpace(pattern)
	q := `
SELECT name
FROM scenarios
WHERE name ILIKE '%' || $1 || '%'
ORDER BY created_at DESC
LIMIT 1`
	var name sql.NullString
	if err := db.QueryRowContext(ctx, q, pattern).Scan(&name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("no scenario found like %q", pattern)
		}
		return "", err
	}
	if !name.Valid || name.String == "" {
		return "", fmt.Errorf("empty scenario name for pattern %q", pattern)
	}
	return name.String, nil
}
