package fetch

// SourceError represents errors from external data source operations.
type SourceError struct {
	Source  string // data source name
	Code    string // error code (e.g. "rate_limit_exceeded")
	Message string
	Err     error
}

func (e SourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e SourceError) Unwrap() error { return e.Err }

// Common error codes
const (
	ErrCodeRateLimitExceeded = "rate_limit_exceeded"
	ErrCodeNotFound          = "not_found"
	ErrCodeInvalidData       = "invalid_data"
	ErrCodeNetworkError      = "network_error"
	ErrCodeServerError       = "server_error"
)

// NewSourceError creates a new data source error
func NewSourceError(source, code, message string, err error) SourceError {
	return SourceError{Source: source, Code: code, Message: message, Err: err}
}
