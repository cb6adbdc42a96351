package server

// Error codes for transport-level failures, before a request reaches the
// exchange protocol. Protocol-level errors use the protocol package's wire
// forms instead.
const (
	ErrInvalidRequest    = "INVALID_REQUEST"
	ErrInvalidContent    = "INVALID_CONTENT_TYPE"
	ErrRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrInternalError     = "INTERNAL_ERROR"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
