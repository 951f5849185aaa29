package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"freight-simulator/internal/scenario"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

func Ping(ctx context.Context, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}

// LoadScenario reads one scenario from the scenario_* tables. Rows are
// returned in their stored position so the network is registered in the
// same order every time.
func LoadScenario(ctx context.Context, db *sql.DB, name string) (*scenario.Scenario, error) {
	s := &scenario.Scenario{Name: name}

	stations, err := fetchStations(ctx, db, name)
	if err != nil {
		return nil, err
	}
	if len(stations) == 0 {
		return nil, fmt.Errorf("scenario %q has no stations", name)
	}
	s.Stations = stations

	if s.Lines, err = fetchLines(ctx, db, name); err != nil {
		return nil, err
	}
	if s.Trains, err = fetchTrains(ctx, db, name); err != nil {
		return nil, err
	}
	if s.Packages, err = fetchPackages(ctx, db, name); err != nil {
		return nil, err
	}
	return s, nil
}

func fetchStations(ctx context.Context, db *sql.DB, name string) ([]string, error) {
	q := `SELECT name FROM scenario_stations WHERE scenario = $1 ORDER BY position, name`
	rows, err := db.QueryContext(ctx, q, name)
	if err != nil {
		return nil, fmt.Errorf("query stations: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func fetchLines(ctx context.Context, db *sql.DB, name string) ([]scenario.Line, error) {
	q := `
SELECT name, from_station, to_station, duration
FROM scenario_lines
WHERE scenario = $1
ORDER BY position, name`
	rows, err := db.QueryContext(ctx, q, name)
	if err != nil {
		return nil, fmt.Errorf("query lines: %w", err)
	}
	defer rows.Close()
	var out []scenario.Line
	for rows.Next() {
		var l scenario.Line
		if err := rows.Scan(&l.Name, &l.From, &l.To, &l.Duration); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func fetchTrains(ctx context.Context, db *sql.DB, name string) ([]scenario.Train, error) {
	q := `
SELECT name, capacity, start_station
FROM scenario_trains
WHERE scenario = $1
ORDER BY position, name`
	rows, err := db.QueryContext(ctx, q, name)
	if err != nil {
		return nil, fmt.Errorf("query trains: %w", err)
	}
	defer rows.Close()
	var out []scenario.Train
	for rows.Next() {
		var t scenario.Train
		if err := rows.Scan(&t.Name, &t.Capacity, &t.Start); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func fetchPackages(ctx context.Context, db *sql.DB, name string) ([]scenario.Package, error) {
	q := `
SELECT name, weight, from_station, to_station
FROM scenario_packages
WHERE scenario = $1
ORDER BY position, name`
	rows, err := db.QueryContext(ctx, q, name)
	if err != nil {
		return nil, fmt.Errorf("query packages: %w", err)
	}
	defer rows.Close()
	var out []scenario.Package
	for rows.Next() {
		var p scenario.Package
		if err := rows.Scan(&p.Name, &p.Weight, &p.From, &p.To); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
