package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rxtech-lab/iss-candles/internal/logger"
	"github.com/rxtech-lab/iss-candles/internal/version"
	"github.com/rxtech-lab/iss-candles/pkg/marketdata"
	"github.com/rxtech-lab/iss-candles/pkg/marketdata/datasource"
	"github.com/rxtech-lab/iss-candles/pkg/marketdata/writer"
)

// buildDownloadConfig layers the built-in defaults, the optional YAML file and
// the explicitly set flags, in that order.
func buildDownloadConfig(cmd *cli.Command) (*marketdata.DownloadConfig, error) {
	config := marketdata.DefaultDownloadConfig()

	if path := cmd.String("config"); path != "" {
		loaded, err := marketdata.LoadDownloadConfig(path)
		if err != nil {
			return nil, err
		}

		config = *loaded
	}

	if cmd.IsSet("ticker") {
		config.Tickers = cmd.StringSlice("ticker")
	}

	if cmd.IsSet("start") {
		config.StartDate = cmd.String("start")
	}

	if cmd.IsSet("end") {
		config.EndDate = cmd.String("end")
	}

	if cmd.IsSet("engine") {
		config.Engine = cmd.String("engine")
	}

	if cmd.IsSet("market") {
		config.Market = cmd.String("market")
	}

	if cmd.IsSet("output") {
		config.Output = cmd.String("output")
	}

	if cmd.IsSet("writer") {
		config.Writer = cmd.String("writer")
	}

	if cmd.IsSet("concurrency") {
		config.Concurrency = int(cmd.Int("concurrency"))
	}

	if cmd.IsSet("fail-fast") {
		config.FailFast = cmd.Bool("fail-fast")
	}

	if baseURL := cmd.String("base-url"); baseURL != "" {
		config.BaseURL = baseURL
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// downloadAction fetches every configured window and appends the candles to the output file.
// Failed windows are reported but do not change the exit status.
func downloadAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("schema") {
		schema, err := marketdata.GetDownloadConfigSchema()
		if err != nil {
			return fmt.Errorf("failed to generate schema: %w", err)
		}

		fmt.Println(schema)

		return nil
	}

	level := zapcore.InfoLevel
	if cmd.Bool("debug") {
		level = zapcore.DebugLevel
	}

	l, err := logger.NewLoggerWithLevel(level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	defer func() {
		_ = l.Sync()
	}()

	downloadConfig, err := buildDownloadConfig(cmd)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	clientConfig, err := downloadConfig.ToClientConfig()
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	client, err := marketdata.NewClient(clientConfig, nil, marketdata.WithLogger(l.Logger))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	l.Info("starting download",
		zap.Strings("tickers", clientConfig.Tickers),
		zap.String("start", downloadConfig.StartDate),
		zap.String("end", downloadConfig.EndDate),
		zap.String("writer", string(clientConfig.WriterType)),
		zap.String("output", clientConfig.OutputPath),
		zap.Int("concurrency", clientConfig.Concurrency),
	)

	result, err := client.Download(ctx)
	if err != nil {
		return cli.Exit(fmt.Sprintf("download failed: %v", err), 1)
	}

	for _, failure := range result.Failures {
		l.Warn("window skipped",
			zap.String("ticker", failure.Ticker),
			zap.String("from", failure.Window.From),
			zap.String("till", failure.Window.Till),
			zap.Stringer("code", failure.Code),
		)
	}

	fmt.Printf("Appended %d rows to %s (%d requests, %d failed)\n",
		result.Rows, result.OutputPath, result.Requests, len(result.Failures))

	if cmd.Bool("summary") && result.Rows > 0 && clientConfig.WriterType != marketdata.WriterSQLite {
		if err := printSummary(result.OutputPath, l.Logger); err != nil {
			return cli.Exit(err.Error(), 1)
		}
	}

	return nil
}

// printSummary reads the output file back and prints per ticker row counts.
func printSummary(path string, logger *zap.Logger) error {
	ds, err := datasource.NewDataSource(path, logger)
	if err != nil {
		return err
	}
	defer ds.Close()

	summary, err := ds.Summarize()
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d rows\n", summary.Path, summary.TotalRows)

	for _, t := range summary.Tickers {
		fmt.Printf("  %-8s %7d  %s .. %s\n", t.Ticker, t.Rows,
			t.FirstBegin.Format(time.DateTime), t.LastBegin.Format(time.DateTime))
	}

	return nil
}

func newCommand(action cli.ActionFunc) *cli.Command {
	return &cli.Command{
		Name:    "download",
		Usage:   "Download MOEX ISS 1-minute candles and append them to a CSV file",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "ticker",
				Aliases: []string{"t"},
				Usage:   fmt.Sprintf("Security to download, repeatable (default %s)", strings.Join(marketdata.DefaultTickers, ",")),
			},
			&cli.StringFlag{
				Name:    "start",
				Aliases: []string{"s"},
				Usage:   "First day in `YYYY-MM-DD` format",
				Value:   marketdata.DefaultStartDate,
			},
			&cli.StringFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "Last day (inclusive) in `YYYY-MM-DD` format",
				Value:   marketdata.DefaultEndDate,
			},
			&cli.StringFlag{
				Name:  "engine",
				Usage: "ISS engine",
				Value: marketdata.DefaultEngine,
			},
			&cli.StringFlag{
				Name:  "market",
				Usage: "ISS market",
				Value: marketdata.DefaultMarket,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file; candles are appended",
				Value:   writer.DefaultCSVPath,
			},
			&cli.StringFlag{
				Name:    "writer",
				Aliases: []string{"w"},
				Usage:   fmt.Sprintf("Output format: %s", strings.Join(marketdata.GetSupportedWriters(), ", ")),
				Value:   string(marketdata.WriterCSV),
			},
			&cli.IntFlag{
				Name:    "concurrency",
				Aliases: []string{"c"},
				Usage:   "Number of (day, ticker) fetches in flight",
				Value:   marketdata.DefaultConcurrency,
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "YAML configuration file; flags override its values",
			},
			&cli.BoolFlag{
				Name:  "fail-fast",
				Usage: "Abort on the first failed window instead of skipping it",
			},
			&cli.StringFlag{
				Name:    "base-url",
				Usage:   "ISS base URL",
				Sources: cli.EnvVars("ISS_BASE_URL"),
			},
			&cli.BoolFlag{
				Name:  "schema",
				Usage: "Print the configuration JSON schema and exit",
			},
			&cli.BoolFlag{
				Name:  "summary",
				Usage: "Print per ticker row counts of the output file after the download (csv and duckdb writers)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Action: action,
	}
}

func main() {
	// .env is optional
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to load .env: %v", err)
	}

	if err := newCommand(downloadAction).Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
