package error

import "errors"

// Lock errors.
var (
	// ErrLockNotAcquired is returned when another holder owns the lock.
	ErrLockNotAcquired = errors.New("lock is held by another process")

	// ErrLockLost is returned when releasing a lock whose lease already expired or changed owner.
	ErrLockLost = errors.New("lock lease lost")
)

// LockErrorCode defines error codes for lock errors.
// Format: LCK-XXYYYY where XX is category and YYYY is specific error.
type LockErrorCode string

const (
	// Conflict errors (04XXXX)
	ErrCodeLockNotAcquired LockErrorCode = "LCK-040001"
	ErrCodeLockLost        LockErrorCode = "LCK-040002"
)

// LockError represents a lock error with code and message.
type LockError struct {
	Code    LockErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *LockError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *LockError) Unwrap() error {
	return e.Err
}

// ErrorCode returns the string form of the error code.
func (e *LockError) ErrorCode() string {
	return string(e.Code)
}

// NewLockError creates a new LockError with the given code and message.
func NewLockError(code LockErrorCode, message string, err error) *LockError {
	return &LockError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
