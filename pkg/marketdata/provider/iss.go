package provider

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rxtech-lab/iss-candles/internal/types"
	"github.com/rxtech-lab/iss-candles/pkg/marketdata/iss"
	"go.uber.org/zap"
)

// CandlesBlock is the ISS block holding candle rows.
const CandlesBlock = "candles"

// candleInterval is the only interval ever requested: 1-minute candles.
const candleInterval = 1

// ISSProvider fetches candles from the Moscow Exchange ISS.
type ISSProvider struct {
	querier iss.Querier
	logger  *zap.Logger
}

func NewISSProvider(querier iss.Querier, logger *zap.Logger) *ISSProvider {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ISSProvider{
		querier: querier,
		logger:  logger,
	}
}

// CandlesMethod returns the ISS method path for the candles of ticker.
func CandlesMethod(engine, market, ticker string) string {
	return fmt.Sprintf("engines/%s/markets/%s/securities/%s/candles", engine, market, ticker)
}

// CandlesParams returns the query parameters for req.
// The interval is always 1 regardless of req.Interval.
func CandlesParams(req CandleRequest) map[string]string {
	return map[string]string{
		"from":     req.From,
		"till":     req.Till,
		"interval": strconv.Itoa(candleInterval),
		"start":    "0",
	}
}

// GetCandles performs one unpaginated candles query. Rows beyond the
// server-side cap of a window are not requested.
func (p *ISSProvider) GetCandles(ctx context.Context, req CandleRequest) ([]*types.Record, error) {
	doc, err := p.querier.Query(ctx, CandlesMethod(req.Engine, req.Market, req.Ticker), CandlesParams(req))
	if err != nil {
		return nil, err
	}

	if len(doc) == 0 {
		return []*types.Record{}, nil
	}

	if _, ok := doc[CandlesBlock]; !ok {
		p.logger.Debug("response has no candles block",
			zap.String("ticker", req.Ticker),
			zap.String("from", req.From),
		)

		return []*types.Record{}, nil
	}

	candles, err := iss.Flatten(doc, CandlesBlock)
	if err != nil {
		return nil, fmt.Errorf("failed to flatten candles for %s: %w", req.Ticker, err)
	}

	for _, c := range candles {
		c.Set(types.ColumnTicker, req.Ticker)
	}

	p.logger.Debug("fetched candles",
		zap.String("ticker", req.Ticker),
		zap.String("from", req.From),
		zap.String("till", req.Till),
		zap.Int("count", len(candles)),
	)

	return candles, nil
}
