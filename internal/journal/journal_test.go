package journal

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-signals/internal/logger"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type JournalTestSuite struct {
	suite.Suite
	journal *SQLJournal
	ctx     context.Context
}

func TestJournalSuite(t *testing.T) {
	suite.Run(t, new(JournalTestSuite))
}

func (suite *JournalTestSuite) SetupTest() {
	journal, err := Open(Config{Driver: DriverDuckDB, DSN: "", ParquetDir: ""}, logger.NewNop())
	suite.Require().NoError(err)

	suite.journal = journal
	suite.ctx = context.Background()
}

func (suite *JournalTestSuite) TearDownTest() {
	suite.Require().NoError(suite.journal.Close())
}

// ==================== Open ====================

func (suite *JournalTestSuite) TestOpenUnsupportedDriver() {
	_, err := Open(Config{Driver: "sqlite", DSN: "", ParquetDir: ""}, logger.NewNop())
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeUnsupportedDriver))
}

func (suite *JournalTestSuite) TestOpenPostgresRequiresDSN() {
	_, err := Open(Config{Driver: DriverPostgres, DSN: "", ParquetDir: ""}, logger.NewNop())
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *JournalTestSuite) TestCloseTwice() {
	journal, err := Open(Config{Driver: "", DSN: "", ParquetDir: ""}, logger.NewNop())
	suite.Require().NoError(err)
	suite.Require().NoError(journal.Close())
	suite.Require().NoError(journal.Close())
}

// ==================== Trades ====================

func (suite *JournalTestSuite) TestRecordTradesRoundTrip() {
	runID := NewRunID()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	suite.Require().NoError(suite.journal.RecordTrade(suite.ctx, types.TradeRecord{
		ID: "", RunID: runID, Ticker: "AAPL", Action: types.ActionBuy,
		RequestedQty: 60, ExecutedQty: 50, Price: 100, CashAfter: 5000, ExecutedAt: base.Add(time.Hour),
	}))
	suite.Require().NoError(suite.journal.RecordTrade(suite.ctx, types.TradeRecord{
		ID: "fixed-id", RunID: runID, Ticker: "MSFT", Action: types.ActionShort,
		RequestedQty: 10, ExecutedQty: 10, Price: 200, CashAfter: 4000, ExecutedAt: base,
	}))
	suite.Require().NoError(suite.journal.RecordTrade(suite.ctx, types.TradeRecord{
		ID: "", RunID: "other-run", Ticker: "AAPL", Action: types.ActionSell,
		RequestedQty: 1, ExecutedQty: 1, Price: 1, CashAfter: 1, ExecutedAt: base,
	}))

	trades, err := suite.journal.Trades(suite.ctx, runID)
	suite.Require().NoError(err)
	suite.Require().Len(trades, 2)

	suite.Equal("fixed-id", trades[0].ID)
	suite.Equal(types.ActionShort, trades[0].Action)
	suite.Equal("AAPL", trades[1].Ticker)
	suite.NotEmpty(trades[1].ID)
	suite.InDelta(60, trades[1].RequestedQty, 1e-9)
	suite.InDelta(50, trades[1].ExecutedQty, 1e-9)
	suite.InDelta(5000, trades[1].CashAfter, 1e-9)
	suite.True(base.Add(time.Hour).Equal(trades[1].ExecutedAt))
}

func (suite *JournalTestSuite) TestTradesEmptyRun() {
	trades, err := suite.journal.Trades(suite.ctx, "missing")
	suite.Require().NoError(err)
	suite.Empty(trades)
}

// ==================== Snapshots ====================

func (suite *JournalTestSuite) TestSnapshotInfiniteRatioStoredAsNull() {
	runID := NewRunID()
	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	suite.Require().NoError(suite.journal.RecordSnapshot(suite.ctx, runID, types.ValuationSnapshot{
		Time:           ts,
		PortfolioValue: 10500,
		Exposure:       types.Exposure{Long: 5500, Short: 0, Gross: 5500, Net: 5500, LongShortRatio: math.Inf(1)},
	}))
	suite.Require().NoError(suite.journal.RecordSnapshot(suite.ctx, runID, types.ValuationSnapshot{
		Time:           ts.Add(time.Hour),
		PortfolioValue: 9450,
		Exposure:       types.Exposure{Long: 5500, Short: 750, Gross: 6250, Net: 4750, LongShortRatio: 5500.0 / 750.0},
	}))

	var nulls int

	err := suite.journal.db.QueryRow("SELECT COUNT(*) FROM snapshots WHERE long_short_ratio IS NULL").Scan(&nulls)
	suite.Require().NoError(err)
	suite.Equal(1, nulls)

	snapshots, err := suite.journal.Snapshots(suite.ctx, runID)
	suite.Require().NoError(err)
	suite.Require().Len(snapshots, 2)

	suite.True(math.IsInf(snapshots[0].LongShortRatio, 1))
	suite.InDelta(10500, snapshots[0].PortfolioValue, 1e-9)
	suite.InDelta(5500.0/750.0, snapshots[1].LongShortRatio, 1e-9)
	suite.InDelta(6250, snapshots[1].Gross, 1e-9)
	suite.True(ts.Add(time.Hour).Equal(snapshots[1].Time))
}

// ==================== Parquet ====================

func (suite *JournalTestSuite) TestExportParquet() {
	runID := NewRunID()
	suite.Require().NoError(suite.journal.RecordTrade(suite.ctx, types.TradeRecord{
		ID: "", RunID: runID, Ticker: "AAPL", Action: types.ActionBuy,
		RequestedQty: 1, ExecutedQty: 1, Price: 10, CashAfter: 90, ExecutedAt: time.Now(),
	}))

	dir := filepath.Join(suite.T().TempDir(), "export")

	paths, err := suite.journal.ExportParquet(dir)
	suite.Require().NoError(err)
	suite.Require().Len(paths, 2)

	for _, path := range paths {
		_, err := os.Stat(path)
		suite.NoError(err)
	}
}

func (suite *JournalTestSuite) TestCloseExportsToParquetDir() {
	dir := suite.T().TempDir()

	journal, err := Open(Config{Driver: DriverDuckDB, DSN: "", ParquetDir: dir}, logger.NewNop())
	suite.Require().NoError(err)
	suite.Require().NoError(journal.Close())

	_, err = os.Stat(filepath.Join(dir, "trades.parquet"))
	suite.NoError(err)
	_, err = os.Stat(filepath.Join(dir, "snapshots.parquet"))
	suite.NoError(err)
}
