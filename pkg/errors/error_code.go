package errors

// ErrorCode identifies a class of failure.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Configuration and validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeConfigReadFailed     ErrorCode = 102
	ErrCodeConfigParseFailed    ErrorCode = 103
	ErrCodeInvalidInterval      ErrorCode = 104
	ErrCodeInvalidMargin        ErrorCode = 105
	ErrCodeInvalidVersion       ErrorCode = 106
	ErrCodeVersionMismatch      ErrorCode = 107

	// Market data errors (200-299)
	ErrCodeMarketDataFetchFailed ErrorCode = 200
	ErrCodeMarketDataParseFailed ErrorCode = 201
	ErrCodeInvalidProvider       ErrorCode = 202
	ErrCodeUnsupportedInterval   ErrorCode = 203
	ErrCodeNoDataFound           ErrorCode = 204

	// Strategy errors (400-499)
	ErrCodeStrategyNotFound      ErrorCode = 400
	ErrCodeStrategyAlreadyExists ErrorCode = 401
	ErrCodeNoStrategies          ErrorCode = 402

	// Ledger errors (500-599)
	ErrCodeInvalidCash ErrorCode = 500

	// Notification errors (600-699)
	ErrCodeNotificationFailed ErrorCode = 600

	// Journal errors (700-799)
	ErrCodeJournalOpenFailed   ErrorCode = 700
	ErrCodeJournalWriteFailed  ErrorCode = 701
	ErrCodeJournalQueryFailed  ErrorCode = 702
	ErrCodeJournalExportFailed ErrorCode = 703
	ErrCodeUnsupportedDriver   ErrorCode = 704

	// Runner errors (800-899)
	ErrCodeAgentFailed       ErrorCode = 800
	ErrCodeBacktestNoData    ErrorCode = 801
	ErrCodeBacktestBadWindow ErrorCode = 802
	ErrCodeBacktestCanceled  ErrorCode = 803
)
