package marketdata

import (
	"fmt"

	"github.com/rxtech-lab/iss-candles/pkg/marketdata/provider"
)

// ProviderInfo contains metadata about a market data provider.
type ProviderInfo struct {
	Name         string `json:"name"`
	DisplayName  string `json:"displayName"`
	Description  string `json:"description"`
	BaseURL      string `json:"baseUrl"`
	RequiresAuth bool   `json:"requiresAuth"`
}

// providerRegistry holds metadata about all supported providers.
var providerRegistry = map[provider.ProviderType]ProviderInfo{
	provider.ProviderISS: {
		Name:         string(provider.ProviderISS),
		DisplayName:  "MOEX ISS",
		Description:  "Moscow Exchange Informational & Statistical Server, historical intraday candles",
		BaseURL:      "https://iss.moex.com/iss",
		RequiresAuth: false,
	},
}

// writerRegistry lists the supported writers with their output format.
var writerRegistry = []struct {
	Type   WriterType
	Format string
}{
	{WriterCSV, "append-only CSV"},
	{WriterDuckDB, "Parquet via DuckDB"},
	{WriterSQLite, "SQLite database"},
}

// GetSupportedProviders returns a list of all supported provider names.
func GetSupportedProviders() []string {
	providers := make([]string, 0, len(providerRegistry))
	for providerType := range providerRegistry {
		providers = append(providers, string(providerType))
	}

	return providers
}

// GetProviderInfo returns metadata for a specific provider.
func GetProviderInfo(providerName string) (ProviderInfo, error) {
	info, exists := providerRegistry[provider.ProviderType(providerName)]
	if !exists {
		return ProviderInfo{}, fmt.Errorf("unsupported provider: %s", providerName)
	}

	return info, nil
}

// GetSupportedWriters returns writer names with a short description, in display order.
func GetSupportedWriters() []string {
	writers := make([]string, 0, len(writerRegistry))
	for _, w := range writerRegistry {
		writers = append(writers, fmt.Sprintf("%s (%s)", w.Type, w.Format))
	}

	return writers
}
