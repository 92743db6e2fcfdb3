package mocks

//go:generate mockgen -destination=./mock_querier.go -package=mocks github.com/rxtech-lab/iss-candles/pkg/marketdata/iss Querier
//go:generate mockgen -destination=./mock_provider.go -package=mocks github.com/rxtech-lab/iss-candles/pkg/marketdata/provider Provider
//go:generate mockgen -destination=./mock_writer.go -package=mocks github.com/rxtech-lab/iss-candles/pkg/marketdata/writer MarketDataWriter
