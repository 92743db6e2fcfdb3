package provider

import (
	"context"
	"fmt"

	"github.com/rxtech-lab/iss-candles/internal/types"
	"github.com/rxtech-lab/iss-candles/pkg/marketdata/iss"
	"go.uber.org/zap"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderISS ProviderType = "iss"
)

// CandleRequest describes one candles query for a single time window.
type CandleRequest struct {
	Ticker string
	Engine string
	Market string
	From   string
	Till   string
	// Interval is accepted for API symmetry but ISS is always asked for 1-minute candles.
	Interval int
}

type OnDownloadProgress = func(current float64, total float64, message string)

type Provider interface {
	// GetCandles fetches the candles of one window and tags every row with the ticker.
	// A response without a candles block yields an empty slice and no error.
	GetCandles(ctx context.Context, req CandleRequest) ([]*types.Record, error)
}

// NewMarketDataProvider creates a new market data provider based on the provider type.
// config may be a base URL string; an empty string selects the public endpoint.
func NewMarketDataProvider(providerType ProviderType, config any, logger *zap.Logger) (Provider, error) {
	switch providerType {
	case ProviderISS:
		baseURL, ok := config.(string)
		if !ok {
			return nil, fmt.Errorf("iss provider requires base URL string config")
		}

		client := iss.NewClient(iss.WithBaseURL(baseURL), iss.WithLogger(logger))

		return NewISSProvider(client, logger), nil
	default:
		return nil, fmt.Errorf("unsupported market data provider: %s", providerType)
	}
}
