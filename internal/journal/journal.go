package journal

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-signals/internal/logger"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"go.uber.org/zap"
)

// Driver selects the SQL backend of a journal.
type Driver string

const (
	DriverDuckDB   Driver = "duckdb"
	DriverPostgres Driver = "postgres"
)

// Config describes where the journal lives.
type Config struct {
	Driver Driver `yaml:"driver" json:"driver" validate:"omitempty,oneof=duckdb postgres" jsonschema:"enum=duckdb,enum=postgres"`
	// DSN is a file path (or ":memory:") for duckdb and a connection string for postgres.
	DSN string `yaml:"dsn" json:"dsn"`
	// ParquetDir, when set, receives trades.parquet and snapshots.parquet on Close (duckdb only).
	ParquetDir string `yaml:"parquet_dir" json:"parquet_dir"`
}

// Recorder persists what the loop did each cycle.
type Recorder interface {
	RecordTrade(ctx context.Context, trade types.TradeRecord) error
	RecordSnapshot(ctx context.Context, runID string, snapshot types.ValuationSnapshot) error
	Close() error
}

// SQLJournal is a Recorder backed by DuckDB or Postgres.
type SQLJournal struct {
	db     *sql.DB
	sq     squirrel.StatementBuilderType
	config Config
	log    *logger.Logger
	mu     sync.Mutex
}

// NewRunID returns a fresh identifier for one loop or backtest run.
func NewRunID() string {
	return uuid.New().String()
}

// Open connects to the configured backend and creates the tables.
func Open(config Config, log *logger.Logger) (*SQLJournal, error) {
	if config.Driver == "" {
		config.Driver = DriverDuckDB
	}

	var placeholder squirrel.PlaceholderFormat

	switch config.Driver {
	case DriverDuckDB:
		if config.DSN == "" {
			config.DSN = ":memory:"
		}

		placeholder = squirrel.Question
	case DriverPostgres:
		if config.DSN == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfiguration, "postgres journal requires a dsn")
		}

		placeholder = squirrel.Dollar
	default:
		return nil, errors.Newf(errors.ErrCodeUnsupportedDriver, "unsupported journal driver %q", config.Driver)
	}

	db, err := sql.Open(string(config.Driver), config.DSN)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeJournalOpenFailed, "failed to open journal database", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeJournalOpenFailed, "failed to connect to journal database", err)
	}

	journal := &SQLJournal{
		db:     db,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(placeholder),
		config: config,
		log:    log,
		mu:     sync.Mutex{},
	}

	if err := journal.initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return journal, nil
}

func (j *SQLJournal) initialize() error {
	_, err := j.db.Exec(`
		CREATE TABLE IF NOT EXISTS trades (
			id TEXT PRIMARY KEY,
			run_id TEXT,
			ticker TEXT,
			action TEXT,
			requested_qty DOUBLE PRECISION,
			executed_qty DOUBLE PRECISION,
			price DOUBLE PRECISION,
			cash_after DOUBLE PRECISION,
			executed_at TIMESTAMP
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeJournalOpenFailed, "failed to create trades table", err)
	}

	_, err = j.db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			run_id TEXT,
			ts TIMESTAMP,
			portfolio_value DOUBLE PRECISION,
			long_exposure DOUBLE PRECISION,
			short_exposure DOUBLE PRECISION,
			gross_exposure DOUBLE PRECISION,
			net_exposure DOUBLE PRECISION,
			long_short_ratio DOUBLE PRECISION
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeJournalOpenFailed, "failed to create snapshots table", err)
	}

	return nil
}

// RecordTrade inserts a trade, assigning an ID when the record has none.
func (j *SQLJournal) RecordTrade(ctx context.Context, trade types.TradeRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if trade.ID == "" {
		trade.ID = uuid.New().String()
	}

	_, err := j.sq.
		Insert("trades").
		Columns("id", "run_id", "ticker", "action", "requested_qty", "executed_qty", "price", "cash_after", "executed_at").
		Values(trade.ID, trade.RunID, trade.Ticker, string(trade.Action), trade.RequestedQty,
			trade.ExecutedQty, trade.Price, trade.CashAfter, trade.ExecutedAt.UTC()).
		RunWith(j.db).
		ExecContext(ctx)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeJournalWriteFailed, err, "failed to insert trade for %s", trade.Ticker)
	}

	return nil
}

// RecordSnapshot inserts a valuation point. An infinite long/short ratio is stored as NULL.
func (j *SQLJournal) RecordSnapshot(ctx context.Context, runID string, snapshot types.ValuationSnapshot) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	ratio := sql.NullFloat64{Float64: 0, Valid: false}
	if snapshot.HasFiniteRatio() {
		ratio = sql.NullFloat64{Float64: snapshot.LongShortRatio, Valid: true}
	}

	_, err := j.sq.
		Insert("snapshots").
		Columns("run_id", "ts", "portfolio_value", "long_exposure", "short_exposure",
			"gross_exposure", "net_exposure", "long_short_ratio").
		Values(runID, snapshot.Time.UTC(), snapshot.PortfolioValue, snapshot.Long, snapshot.Short,
			snapshot.Gross, snapshot.Net, ratio).
		RunWith(j.db).
		ExecContext(ctx)
	if err != nil {
		return errors.Wrap(errors.ErrCodeJournalWriteFailed, "failed to insert snapshot", err)
	}

	return nil
}

// Trades returns the trades of a run in execution order.
func (j *SQLJournal) Trades(ctx context.Context, runID string) ([]types.TradeRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.sq.
		Select("id", "run_id", "ticker", "action", "requested_qty", "executed_qty", "price", "cash_after", "executed_at").
		From("trades").
		Where(squirrel.Eq{"run_id": runID}).
		OrderBy("executed_at ASC").
		RunWith(j.db).
		QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeJournalQueryFailed, "failed to query trades", err)
	}
	defer rows.Close()

	trades := []types.TradeRecord{}

	for rows.Next() {
		var (
			trade  types.TradeRecord
			action string
		)

		err := rows.Scan(&trade.ID, &trade.RunID, &trade.Ticker, &action, &trade.RequestedQty,
			&trade.ExecutedQty, &trade.Price, &trade.CashAfter, &trade.ExecutedAt)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeJournalQueryFailed, "failed to scan trade", err)
		}

		trade.Action = types.Action(action)
		trades = append(trades, trade)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeJournalQueryFailed, "failed to iterate trades", err)
	}

	return trades, nil
}

// Snapshots returns the valuation history of a run. NULL ratios come back as +Inf.
func (j *SQLJournal) Snapshots(ctx context.Context, runID string) ([]types.ValuationSnapshot, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.sq.
		Select("ts", "portfolio_value", "long_exposure", "short_exposure", "gross_exposure",
			"net_exposure", "long_short_ratio").
		From("snapshots").
		Where(squirrel.Eq{"run_id": runID}).
		OrderBy("ts ASC").
		RunWith(j.db).
		QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeJournalQueryFailed, "failed to query snapshots", err)
	}
	defer rows.Close()

	snapshots := []types.ValuationSnapshot{}

	for rows.Next() {
		var (
			snapshot types.ValuationSnapshot
			ts       time.Time
			ratio    sql.NullFloat64
		)

		err := rows.Scan(&ts, &snapshot.PortfolioValue, &snapshot.Long, &snapshot.Short,
			&snapshot.Gross, &snapshot.Net, &ratio)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeJournalQueryFailed, "failed to scan snapshot", err)
		}

		snapshot.Time = ts.UTC()
		snapshot.LongShortRatio = math.Inf(1)

		if ratio.Valid {
			snapshot.LongShortRatio = ratio.Float64
		}

		snapshots = append(snapshots, snapshot)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeJournalQueryFailed, "failed to iterate snapshots", err)
	}

	return snapshots, nil
}

// ExportParquet writes both tables to dir as parquet files and returns their paths.
func (j *SQLJournal) ExportParquet(dir string) ([]string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.config.Driver != DriverDuckDB {
		return nil, errors.Newf(errors.ErrCodeUnsupportedDriver, "parquet export requires duckdb, got %q", j.config.Driver)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeJournalExportFailed, "failed to create parquet directory", err)
	}

	tradesPath := filepath.Join(dir, "trades.parquet")
	snapshotsPath := filepath.Join(dir, "snapshots.parquet")

	// squirrel has no COPY support
	_, err := j.db.Exec(fmt.Sprintf(`COPY (SELECT * FROM trades ORDER BY executed_at ASC) TO '%s' (FORMAT PARQUET)`, tradesPath))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeJournalExportFailed, "failed to export trades", err)
	}

	_, err = j.db.Exec(fmt.Sprintf(`COPY (SELECT * FROM snapshots ORDER BY ts ASC) TO '%s' (FORMAT PARQUET)`, snapshotsPath))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeJournalExportFailed, "failed to export snapshots", err)
	}

	return []string{tradesPath, snapshotsPath}, nil
}

// Close exports to ParquetDir when configured and releases the connection.
func (j *SQLJournal) Close() error {
	if j.config.ParquetDir != "" && j.config.Driver == DriverDuckDB {
		paths, err := j.ExportParquet(j.config.ParquetDir)
		if err != nil {
			j.log.Warn("Failed to export journal on close", zap.Error(err))
		} else {
			j.log.Info("Journal exported", zap.Strings("files", paths))
		}
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if j.db == nil {
		return nil
	}

	err := j.db.Close()
	j.db = nil

	if err != nil {
		return errors.Wrap(errors.ErrCodeJournalWriteFailed, "failed to close journal database", err)
	}

	return nil
}
