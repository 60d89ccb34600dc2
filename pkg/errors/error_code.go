package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Input validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidSeries        ErrorCode = 102
	ErrCodeInvalidPeriod        ErrorCode = 103
	ErrCodeInsufficientData     ErrorCode = 104
	ErrCodeMissingField         ErrorCode = 105
	ErrCodeVolumeDataRequired   ErrorCode = 106
	ErrCodeInvalidMultiplier    ErrorCode = 107

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound         ErrorCode = 200
	ErrCodeHistoricalDataFailed ErrorCode = 201
	ErrCodePriceFetchFailed     ErrorCode = 202
	ErrCodeQueryFailed          ErrorCode = 203
	ErrCodeCacheFailed          ErrorCode = 204

	// Indicator errors (300-399)
	ErrCodeIndicatorCalculation ErrorCode = 300

	// Analysis errors (400-499)
	ErrCodeAnalysisFailed  ErrorCode = 400
	ErrCodeVersionMismatch ErrorCode = 401

	// Market data errors (700-799)
	ErrCodeInvalidTimeframe      ErrorCode = 700
	ErrCodeInvalidProvider       ErrorCode = 701
	ErrCodeUnsupportedPriceKind  ErrorCode = 702
	ErrCodeMarketDataParseFailed ErrorCode = 703
)
