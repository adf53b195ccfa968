package error

import "errors"

// Dashboard and access errors.
var (
	// ErrDashboardNotFound is returned when the dashboard does not exist.
	ErrDashboardNotFound = errors.New("dashboard not found")

	// ErrNotDashboardMember is returned when the user has no membership in the dashboard.
	ErrNotDashboardMember = errors.New("user is not a member of the dashboard")

	// ErrInsufficientRole is returned when the member's role does not allow the operation.
	ErrInsufficientRole = errors.New("insufficient role for operation")

	// ErrInvalidDashboardRole is returned when a role name is not recognised.
	ErrInvalidDashboardRole = errors.New("invalid dashboard role")

	// ErrMissingToken is returned when the request carries no bearer token.
	ErrMissingToken = errors.New("missing token")

	// ErrInvalidToken is returned when a token is invalid or expired.
	ErrInvalidToken = errors.New("invalid token")

	// ErrRateLimited is returned when a caller exceeds its request budget.
	ErrRateLimited = errors.New("rate limited")
)

// DashboardErrorCode defines error codes for dashboard and access errors.
// Format: DSH-XXYYYY where XX is category and YYYY is specific error.
type DashboardErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeInvalidDashboardRole DashboardErrorCode = "DSH-010001"
	ErrCodeInvalidDashboardID   DashboardErrorCode = "DSH-010002"

	// Not found errors (02XXXX)
	ErrCodeDashboardNotFound DashboardErrorCode = "DSH-020001"

	// Forbidden errors (03XXXX)
	ErrCodeNotDashboardMember DashboardErrorCode = "DSH-030001"
	ErrCodeInsufficientRole   DashboardErrorCode = "DSH-030002"
	ErrCodeMissingToken       DashboardErrorCode = "DSH-030003"
	ErrCodeInvalidToken       DashboardErrorCode = "DSH-030004"

	// Conflict errors (04XXXX)
	ErrCodeRateLimited DashboardErrorCode = "DSH-040001"
)

// DashboardError represents a dashboard error with code and message.
type DashboardError struct {
	Code    DashboardErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *DashboardError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *DashboardError) Unwrap() error {
	return e.Err
}

// ErrorCode returns the string form of the error code.
func (e *DashboardError) ErrorCode() string {
	return string(e.Code)
}

// NewDashboardError creates a new DashboardError with the given code and message.
func NewDashboardError(code DashboardErrorCode, message string, err error) *DashboardError {
	return &DashboardError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
