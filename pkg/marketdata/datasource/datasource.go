// Package datasource reads downloaded candles back through DuckDB, from either
// the appended CSV file or the Parquet export.
package datasource

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/rxtech-lab/iss-candles/pkg/errors"
)

// TickerSummary describes the rows stored for one ticker.
type TickerSummary struct {
	Ticker     string
	Rows       int
	FirstBegin time.Time
	LastBegin  time.Time
}

// Summary describes the content of a candles file.
type Summary struct {
	Path      string
	TotalRows int
	Tickers   []TickerSummary
}

// DuckDBDataSource exposes a candles file as the "candles" view of an in-memory DuckDB.
type DuckDBDataSource struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
	sq     squirrel.StatementBuilderType
}

// NewDataSource opens path, a .csv or .parquet file written by one of the writers.
func NewDataSource(path string, logger *zap.Logger) (*DuckDBDataSource, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var reader string

	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		reader = "read_parquet('%s')"
	case ".csv":
		reader = "read_csv_auto('%s', header=true)"
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "unsupported candles file %s", path)
	}

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open DuckDB connection: %w", err)
	}

	logger.Debug("opening candles file", zap.String("path", path))

	// squirrel has no CREATE VIEW
	query := fmt.Sprintf("CREATE VIEW candles AS SELECT * FROM "+reader, strings.ReplaceAll(path, "'", "''"))

	if _, err := db.Exec(query); err != nil {
		db.Close()

		return nil, errors.Wrapf(errors.ErrCodeMarketDataDecodeFailed, err, "failed to read %s", path)
	}

	return &DuckDBDataSource{
		db:     db,
		path:   path,
		logger: logger,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// Count returns the number of rows, restricted to ticker when it is set.
func (d *DuckDBDataSource) Count(ticker optional.Option[string]) (int, error) {
	builder := d.sq.Select("COUNT(*)").From("candles")
	if ticker.IsSome() {
		builder = builder.Where(squirrel.Eq{"ticker": ticker.Unwrap()})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var count int64
	if err := d.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}

	return int(count), nil
}

// Summarize groups the rows by ticker, ordered by ticker name.
func (d *DuckDBDataSource) Summarize() (Summary, error) {
	query, args, err := d.sq.
		Select(
			"CAST(ticker AS VARCHAR)",
			"COUNT(*)",
			`MIN(CAST("begin" AS TIMESTAMP))`,
			`MAX(CAST("begin" AS TIMESTAMP))`,
		).
		From("candles").
		GroupBy("ticker").
		OrderBy("ticker").
		ToSql()
	if err != nil {
		return Summary{}, fmt.Errorf("failed to build summary query: %w", err)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to summarize %s: %w", d.path, err)
	}
	defer rows.Close()

	summary := Summary{Path: d.path}

	for rows.Next() {
		var (
			ts    TickerSummary
			count int64
		)

		if err := rows.Scan(&ts.Ticker, &count, &ts.FirstBegin, &ts.LastBegin); err != nil {
			return Summary{}, fmt.Errorf("failed to scan summary row: %w", err)
		}

		ts.Rows = int(count)
		summary.TotalRows += ts.Rows
		summary.Tickers = append(summary.Tickers, ts)
	}

	if err := rows.Err(); err != nil {
		return Summary{}, fmt.Errorf("failed to read summary rows: %w", err)
	}

	return summary, nil
}

// Close closes the underlying database.
func (d *DuckDBDataSource) Close() error {
	return d.db.Close()
}
