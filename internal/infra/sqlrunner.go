package infra

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// SQLExecutor is the query surface the product repository runs on. Every
// query it receives must begin with a `--sql <uuid>` marker line; the marker
// identifies the statement in logs without dumping catalog data.
type SQLExecutor interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
}

var sqlMarker = regexp.MustCompile(`^--sql [0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// SQLRunner executes marked inline SQL against the pgx pool, logging each
// statement's marker and duration.
type SQLRunner struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

func NewSQLRunner(pool *pgxpool.Pool, logger zerolog.Logger) *SQLRunner {
	return &SQLRunner{pool: pool, logger: logger}
}

func (r *SQLRunner) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	marker, stmt, err := splitMarker(query)
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	start := time.Now()
	tag, err := r.pool.Exec(ctx, stmt, args...)
	if err != nil {
		r.logger.Error().Err(err).Str("query", marker).Msg("sql exec failed")
		return tag, err
	}
	r.logger.Debug().Str("query", marker).Int64("rows", tag.RowsAffected()).
		Dur("duration", time.Since(start)).Msg("sql exec")
	return tag, nil
}

func (r *SQLRunner) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	marker, stmt, err := splitMarker(query)
	if err != nil {
		return failedRow{err: err}
	}
	r.logger.Debug().Str("query", marker).Msg("sql query row")
	return scanLoggedRow{row: r.pool.QueryRow(ctx, stmt, args...), logger: r.logger, marker: marker}
}

func (r *SQLRunner) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	marker, stmt, err := splitMarker(query)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	rows, err := r.pool.Query(ctx, stmt, args...)
	if err != nil {
		r.logger.Error().Err(err).Str("query", marker).Msg("sql query failed")
		return nil, err
	}
	r.logger.Debug().Str("query", marker).Dur("duration", time.Since(start)).Msg("sql query")
	return rows, nil
}

type scanLoggedRow struct {
	row    pgx.Row
	logger zerolog.Logger
	marker string
}

func (s scanLoggedRow) Scan(dest ...any) error {
	err := s.row.Scan(dest...)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		s.logger.Error().Err(err).Str("query", s.marker).Msg("sql scan failed")
	}
	return err
}

type failedRow struct {
	err error
}

func (f failedRow) Scan(dest ...any) error {
	return f.err
}

// splitMarker validates the leading `--sql <uuid>` line and returns the
// marker uuid plus the statement below it.
func splitMarker(query string) (string, string, error) {
	trimmed := strings.TrimSpace(query)
	lines := strings.Split(trimmed, "\n")
	if len(lines) == 0 {
		return "", "", errors.New("infra: empty query")
	}
	markerLine := strings.TrimSpace(lines[0])
	if !sqlMarker.MatchString(markerLine) {
		return "", "", errors.New("infra: sql marker missing or invalid")
	}
	return strings.TrimPrefix(markerLine, "--sql "), strings.Join(lines[1:], "\n"), nil
}

var _ SQLExecutor = (*SQLRunner)(nil)
