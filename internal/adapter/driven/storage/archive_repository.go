package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/diillson/tmc-summarizer-go/internal/domain/entity"
	"github.com/diillson/tmc-summarizer-go/internal/domain/repository"
)

const createTable = `
CREATE TABLE IF NOT EXISTS tmc_counts (
	location_id    TEXT NOT NULL,
	location_name  TEXT NOT NULL,
	source_file    TEXT NOT NULL,
	count_date     TEXT NOT NULL,
	interval_start TEXT NOT NULL,
	interval_min   INTEGER NOT NULL,
	vehicle_class  TEXT NOT NULL,
	direction      TEXT NOT NULL,
	movement       TEXT NOT NULL,
	label          TEXT NOT NULL,
	volume         INTEGER NOT NULL
)`

// SQLArchiveRepository grava as contagens brutas numa base SQLite ou PostgreSQL.
type SQLArchiveRepository struct {
	db     *sql.DB
	driver string
}

// NewSQLArchiveRepository opens the database named by the DSN and creates the
// table if needed. "postgres://" and "postgresql://" DSNs use lib/pq; anything
// else is a SQLite path, optionally prefixed with "sqlite://".
func NewSQLArchiveRepository(ctx context.Context, dsn string) (repository.ArchiveRepository, error) {
	driver, source := parseDSN(dsn)

	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", driver, err)
	}
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tmc_counts table: %w", err)
	}

	return &SQLArchiveRepository{db: db, driver: driver}, nil
}

func parseDSN(dsn string) (driver, source string) {
	lower := strings.ToLower(dsn)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return "postgres", dsn
	case strings.HasPrefix(lower, "sqlite://"):
		return "sqlite", dsn[len("sqlite://"):]
	}
	return "sqlite", dsn
}

// PublishRuns replaces the rows of each run's source file and returns the
// number of interval counts written.
func (s *SQLArchiveRepository) PublishRuns(ctx context.Context, runs []entity.Run) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	del, err := tx.PrepareContext(ctx, s.rebind(`DELETE FROM tmc_counts WHERE source_file = ?`))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare delete: %w", err)
	}
	defer del.Close()

	ins, err := tx.PrepareContext(ctx, s.rebind(`
		INSERT INTO tmc_counts (location_id, location_name, source_file, count_date, interval_start,
		                        interval_min, vehicle_class, direction, movement, label, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer ins.Close()

	written := 0
	for _, run := range runs {
		loc := run.Location
		if _, err := del.ExecContext(ctx, loc.SourceFile); err != nil {
			return 0, fmt.Errorf("failed to clear rows of %s: %w", loc.SourceFile, err)
		}

		date := ""
		if !loc.Date.IsZero() {
			date = loc.Date.Format("2006-01-02")
		}
		for _, iv := range run.Intervals {
			start := iv.Start.Format("2006-01-02 15:04:05")
			minutes := int(iv.Duration.Minutes())
			for _, col := range run.Columns {
				_, err := ins.ExecContext(ctx,
					loc.ID, loc.Name, loc.SourceFile, date, start, minutes,
					string(col.Key.Class), string(col.Key.Direction), string(col.Key.Movement), col.Label,
					iv.Counts[col.Key],
				)
				if err != nil {
					return 0, fmt.Errorf("failed to insert %s %s: %w", loc.SourceFile, col.Key, err)
				}
				written++
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return written, nil
}

// rebind converts ? placeholders to $n for PostgreSQL.
func (s *SQLArchiveRepository) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLArchiveRepository) Close() error {
	return s.db.Close()
}
