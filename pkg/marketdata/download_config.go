package marketdata

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/iss-candles/pkg/errors"
	"github.com/rxtech-lab/iss-candles/pkg/marketdata/writer"
	"github.com/rxtech-lab/iss-candles/pkg/utils"
)

// DateLayout is the layout of StartDate and EndDate.
const DateLayout = "2006-01-02"

const (
	DefaultEngine      = "stock"
	DefaultMarket      = "shares"
	DefaultStartDate   = "2024-01-01"
	DefaultEndDate     = "2024-06-30"
	DefaultConcurrency = 1
)

// DefaultTickers is the ticker list downloaded when none is configured.
var DefaultTickers = []string{"POSI", "SMLT", "ENPG", "GMKN", "IMOEX", "TCSG", "TRNFP", "KMEZ", "BELU", "BSPBP"}

// DownloadConfig is the user-facing download configuration, read from JSON or YAML.
type DownloadConfig struct {
	Tickers     []string `json:"tickers" yaml:"tickers" jsonschema:"title=Tickers,description=Securities to download; iterated in order for every day,minItems=1" validate:"required,min=1,dive,required"`
	StartDate   string   `json:"startDate" yaml:"startDate" jsonschema:"title=Start Date,description=First day (inclusive),format=date" validate:"required"`
	EndDate     string   `json:"endDate" yaml:"endDate" jsonschema:"title=End Date,description=Last day (inclusive),format=date" validate:"required"`
	Engine      string   `json:"engine,omitempty" yaml:"engine" jsonschema:"title=Engine,default=stock"`
	Market      string   `json:"market,omitempty" yaml:"market" jsonschema:"title=Market,default=shares"`
	Output      string   `json:"output,omitempty" yaml:"output" jsonschema:"title=Output,description=File the candles are appended to,default=moex_data2.csv"`
	Writer      string   `json:"writer,omitempty" yaml:"writer" jsonschema:"title=Writer,enum=csv,enum=duckdb,enum=sqlite,default=csv" validate:"omitempty,oneof=csv duckdb sqlite"`
	Concurrency int      `json:"concurrency,omitempty" yaml:"concurrency" jsonschema:"title=Concurrency,description=Parallel (day ticker) fetches,minimum=1,maximum=32,default=1" validate:"omitempty,min=1,max=32"`
	FailFast    bool     `json:"failFast,omitempty" yaml:"failFast" jsonschema:"title=Fail Fast,description=Abort on the first failed window instead of skipping it"`
	BaseURL     string   `json:"baseUrl,omitempty" yaml:"baseUrl" jsonschema:"title=Base URL,description=ISS endpoint override" validate:"omitempty,url"`
}

// DefaultDownloadConfig returns the built-in download configuration.
func DefaultDownloadConfig() DownloadConfig {
	return DownloadConfig{
		Tickers:     append([]string(nil), DefaultTickers...),
		StartDate:   DefaultStartDate,
		EndDate:     DefaultEndDate,
		Engine:      DefaultEngine,
		Market:      DefaultMarket,
		Output:      writer.DefaultCSVPath,
		Writer:      string(WriterCSV),
		Concurrency: DefaultConcurrency,
	}
}

// Validate validates the DownloadConfig fields.
func (c *DownloadConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid config", err)
	}

	start, err := time.Parse(DateLayout, c.StartDate)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid startDate format, expected YYYY-MM-DD", err)
	}

	end, err := time.Parse(DateLayout, c.EndDate)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid endDate format, expected YYYY-MM-DD", err)
	}

	if end.Before(start) {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "endDate %s is before startDate %s", c.EndDate, c.StartDate)
	}

	return nil
}

// ToClientConfig converts a DownloadConfig to ClientConfig, filling empty
// optional fields with defaults.
func (c *DownloadConfig) ToClientConfig() (ClientConfig, error) {
	if err := c.Validate(); err != nil {
		return ClientConfig{}, err
	}

	start, _ := time.Parse(DateLayout, c.StartDate)
	end, _ := time.Parse(DateLayout, c.EndDate)

	config := ClientConfig{
		Tickers:       append([]string(nil), c.Tickers...),
		Engine:        orDefault(c.Engine, DefaultEngine),
		Market:        orDefault(c.Market, DefaultMarket),
		StartDate:     start,
		EndDate:       end,
		WriterType:    WriterType(orDefault(c.Writer, string(WriterCSV))),
		OutputPath:    orDefault(c.Output, writer.DefaultCSVPath),
		Concurrency:   c.Concurrency,
		FailurePolicy: FailurePolicySkip,
		BaseURL:       c.BaseURL,
	}

	if config.Concurrency == 0 {
		config.Concurrency = DefaultConcurrency
	}

	if c.FailFast {
		config.FailurePolicy = FailurePolicyAbort
	}

	return config, nil
}

// ParseDownloadConfig parses JSON into a DownloadConfig on top of the defaults.
func ParseDownloadConfig(jsonConfig string) (*DownloadConfig, error) {
	config := DefaultDownloadConfig()
	if err := json.Unmarshal([]byte(jsonConfig), &config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse JSON config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadDownloadConfig reads a YAML configuration file on top of the defaults.
func LoadDownloadConfig(path string) (*DownloadConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	config := DefaultDownloadConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to parse YAML config %s", path)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// GetDownloadConfigSchema returns the JSON schema of DownloadConfig.
func GetDownloadConfigSchema() (string, error) {
	//nolint:exhaustruct // Empty struct is intentional for schema generation
	return utils.GetSchemaFromConfig(DownloadConfig{})
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}

	return v
}
