package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeMissingParameter     ErrorCode = 109

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed    ErrorCode = 700
	ErrCodeMarketDataWriteFailed    ErrorCode = 701
	ErrCodeMarketDataDecodeFailed   ErrorCode = 702
	ErrCodeInvalidWriter            ErrorCode = 704
	ErrCodeMarketDataSchemaMismatch ErrorCode = 705
)

// String returns a short name for the code, used as a log field.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeInvalidParameter:
		return "invalid_parameter"
	case ErrCodeInvalidConfiguration:
		return "invalid_configuration"
	case ErrCodeMissingParameter:
		return "missing_parameter"
	case ErrCodeMarketDataFetchFailed:
		return "fetch_failed"
	case ErrCodeMarketDataWriteFailed:
		return "write_failed"
	case ErrCodeMarketDataDecodeFailed:
		return "decode_failed"
	case ErrCodeInvalidWriter:
		return "invalid_writer"
	case ErrCodeMarketDataSchemaMismatch:
		return "schema_mismatch"
	default:
		return "unknown"
	}
}
