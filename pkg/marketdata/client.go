package marketdata

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rxtech-lab/iss-candles/internal/types"
	"github.com/rxtech-lab/iss-candles/pkg/errors"
	"github.com/rxtech-lab/iss-candles/pkg/marketdata/provider"
	"github.com/rxtech-lab/iss-candles/pkg/marketdata/writer"
)

// WriterType defines the type of market data writer.
type WriterType string

const (
	WriterCSV    WriterType = "csv"
	WriterDuckDB WriterType = "duckdb"
	WriterSQLite WriterType = "sqlite"
)

// FailurePolicy decides what a failed window fetch does to the run.
type FailurePolicy string

const (
	// FailurePolicySkip logs the failure, records it in Result.Failures and
	// continues; the window contributes zero rows.
	FailurePolicySkip FailurePolicy = "skip"
	// FailurePolicyAbort stops the run on the first failed window. Nothing is written.
	FailurePolicyAbort FailurePolicy = "abort"
)

// ClientConfig holds the configuration for the market data client.
type ClientConfig struct {
	Tickers       []string      `validate:"required,min=1,dive,required"`
	Engine        string        `validate:"required"`
	Market        string        `validate:"required"`
	StartDate     time.Time     `validate:"required"`
	EndDate       time.Time     `validate:"required,gtefield=StartDate"`
	WriterType    WriterType    `validate:"required,oneof=csv duckdb sqlite"`
	OutputPath    string        `validate:"required"`
	Concurrency   int           `validate:"min=1"`
	FailurePolicy FailurePolicy `validate:"required,oneof=skip abort"`
	BaseURL       string        `validate:"omitempty,url"`
}

// WindowFailure records a window whose fetch failed.
type WindowFailure struct {
	Ticker string
	Window types.TimeWindow
	Code   errors.ErrorCode
	Err    error
}

// Result summarizes a download run.
type Result struct {
	// Rows is the number of candle rows handed to the writer.
	Rows int
	// Requests is the number of window fetches attempted.
	Requests int
	// Failures lists failed windows in iteration order.
	Failures []WindowFailure
	// OutputPath is where the writer put the data.
	OutputPath string
}

// Client is the market data client responsible for downloading candles from the
// provider and handing them to a writer.
type Client struct {
	provider       provider.Provider
	writer         writer.MarketDataWriter
	config         ClientConfig
	validate       *validator.Validate
	logger         *zap.Logger
	onProgress     provider.OnDownloadProgress
	progressOutput io.Writer
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithProvider replaces the provider built from the configuration.
func WithProvider(p provider.Provider) ClientOption {
	return func(c *Client) {
		c.provider = p
	}
}

// WithWriter replaces the writer built from the configuration.
func WithWriter(w writer.MarketDataWriter) ClientOption {
	return func(c *Client) {
		c.writer = w
	}
}

// WithProgressOutput sets where the progress bar is drawn. io.Discard hides it.
func WithProgressOutput(w io.Writer) ClientOption {
	return func(c *Client) {
		c.progressOutput = w
	}
}

// NewClient creates a new market data client with the given configuration.
func NewClient(config ClientConfig, onProgress provider.OnDownloadProgress, opts ...ClientOption) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid client configuration", err)
	}

	c := &Client{
		config:         config,
		validate:       validate,
		logger:         zap.NewNop(),
		onProgress:     onProgress,
		progressOutput: os.Stderr,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.provider == nil {
		p, err := provider.NewMarketDataProvider(provider.ProviderISS, config.BaseURL, c.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create ISS provider: %w", err)
		}

		c.provider = p
	}

	return c, nil
}

type fetchJob struct {
	index  int
	day    time.Time
	ticker string
}

type fetchResult struct {
	rows     []*types.Record
	failures []WindowFailure
	requests int
}

// Fetch requests every (day, ticker, window) of the configured range and returns
// the rows in date, ticker, window, API order. Window failures are handled
// according to the failure policy.
func (c *Client) Fetch(ctx context.Context) ([]*types.Record, Result, error) {
	if err := c.validate.Struct(c.config); err != nil {
		return nil, Result{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid client configuration", err)
	}

	var jobs []fetchJob
	for _, day := range types.DateRange(c.config.StartDate, c.config.EndDate) {
		for _, ticker := range c.config.Tickers {
			jobs = append(jobs, fetchJob{index: len(jobs), day: day, ticker: ticker})
		}
	}

	bar := progressbar.NewOptions(len(jobs),
		progressbar.OptionSetDescription("Downloading candles"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWriter(c.progressOutput),
	)

	results := make([]fetchResult, len(jobs))

	var (
		mu        sync.Mutex
		completed int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.config.Concurrency)

	for _, job := range jobs {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			res, err := c.fetchJob(gctx, job)
			results[job.index] = res

			mu.Lock()
			completed++
			done := completed
			mu.Unlock()

			_ = bar.Add(1)

			if c.onProgress != nil {
				c.onProgress(float64(done), float64(len(jobs)), fmt.Sprintf("Downloading %s %s", job.ticker, job.day.Format("2006-01-02")))
			}

			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, Result{}, err
	}

	if err := ctx.Err(); err != nil {
		return nil, Result{}, err
	}

	_ = bar.Finish()

	var (
		rows   []*types.Record
		result Result
	)

	for _, res := range results {
		rows = append(rows, res.rows...)
		result.Failures = append(result.Failures, res.failures...)
		result.Requests += res.requests
	}

	result.Rows = len(rows)

	return rows, result, nil
}

// fetchJob fetches the day window then the late window for one (day, ticker).
func (c *Client) fetchJob(ctx context.Context, job fetchJob) (fetchResult, error) {
	var res fetchResult

	date := job.day.Format("2006-01-02")
	c.logger.Info("fetching candles", zap.String("ticker", job.ticker), zap.String("date", date))

	for _, window := range types.SessionWindows(job.day) {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		res.requests++

		rows, err := c.provider.GetCandles(ctx, provider.CandleRequest{
			Ticker:   job.ticker,
			Engine:   c.config.Engine,
			Market:   c.config.Market,
			From:     window.From,
			Till:     window.Till,
			Interval: 1,
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return res, ctxErr
			}

			failure := WindowFailure{
				Ticker: job.ticker,
				Window: window,
				Code:   errors.GetCode(err),
				Err:    err,
			}

			c.logger.Warn("window fetch failed",
				zap.String("ticker", job.ticker),
				zap.String("session", string(window.Kind)),
				zap.String("from", window.From),
				zap.String("till", window.Till),
				zap.Stringer("code", failure.Code),
				zap.Error(err),
			)

			if c.config.FailurePolicy == FailurePolicyAbort {
				return res, fmt.Errorf("fetch %s %s-%s: %w", job.ticker, window.From, window.Till, err)
			}

			res.failures = append(res.failures, failure)

			continue
		}

		res.rows = append(res.rows, rows...)
	}

	return res, nil
}

// Download fetches every window of the configured range and writes all rows in
// a single writer session once fetching is complete. A cancelled or aborted run
// writes nothing.
func (c *Client) Download(ctx context.Context) (Result, error) {
	rows, result, err := c.Fetch(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("download failed: %w", err)
	}

	marketWriter, err := c.setupWriter()
	if err != nil {
		return Result{}, errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to setup writer", err)
	}

	if err := marketWriter.Initialize(); err != nil {
		return Result{}, errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to initialize writer", err)
	}

	defer func() {
		if cerr := marketWriter.Close(); cerr != nil {
			c.logger.Warn("failed to close writer", zap.Error(cerr))
		}
	}()

	for _, row := range rows {
		if err := marketWriter.Write(row); err != nil {
			return Result{}, errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to write row", err)
		}
	}

	result.OutputPath, err = marketWriter.Finalize()
	if err != nil {
		return Result{}, errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to finalize writer", err)
	}

	c.logger.Info("download finished",
		zap.Int("rows", result.Rows),
		zap.Int("requests", result.Requests),
		zap.Int("failed_windows", len(result.Failures)),
		zap.String("output", result.OutputPath),
	)

	return result, nil
}

// setupWriter returns the injected writer or builds one from the configuration.
func (c *Client) setupWriter() (writer.MarketDataWriter, error) {
	if c.writer != nil {
		return c.writer, nil
	}

	switch c.config.WriterType {
	case WriterCSV:
		return writer.NewCSVWriter(c.config.OutputPath), nil
	case WriterDuckDB:
		outputPath := c.config.OutputPath
		if filepath.Ext(outputPath) != ".parquet" {
			outputPath += ".parquet"
		}

		return writer.NewDuckDBWriter(outputPath), nil
	case WriterSQLite:
		outputPath := c.config.OutputPath
		if filepath.Ext(outputPath) != ".db" {
			outputPath += ".db"
		}

		return writer.NewSQLiteWriter(outputPath), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidWriter, "unsupported writer type: %s", c.config.WriterType)
	}
}
