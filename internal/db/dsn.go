package db

import (
	"errors"
	"net/url"
	"strings"
)

// WithDBName points dsn at another database on the same server, keeping
// credentials and query parameters. A dsn without a scheme is read as
// postgres://.
func WithDBName(dsn, database string) (string, error) {
	dsn = strings.TrimSpace(dsn)
	database = strings.Trim(strings.TrimSpace(database), "/")
	if dsn == "" {
		return "", errors.New("empty DSN")
	}
	if database == "" {
		return "", errors.New("empty database name")
	}
	if !strings.Contains(dsn, "://") {
		dsn = "postgres://" + dsn
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return "", err
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", errors.New("unsupported DSN scheme " + u.Scheme)
	}
	u.Path = "/" + database
	return u.String(), nil
}
