package error

import "errors"

// Transaction domain errors.
var (
	// ErrTransactionNotFound is returned when a transaction is not found in the dashboard.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrEmptyTransactionIDs is returned when an empty list of transaction IDs is provided.
	ErrEmptyTransactionIDs = errors.New("transaction IDs list cannot be empty")

	// ErrTransactionIDsNotFound is returned when one or more transaction IDs are not found.
	ErrTransactionIDsNotFound = errors.New("one or more transactions not found")

	// ErrInvalidTransactionID is returned when an ID cannot be parsed.
	ErrInvalidTransactionID = errors.New("invalid transaction id")
)

// TransactionErrorCode defines error codes for transaction errors.
// Format: TXN-XXYYYY where XX is category and YYYY is specific error.
type TransactionErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeEmptyTransactionIDs  TransactionErrorCode = "TXN-010001"
	ErrCodeInvalidTransactionID TransactionErrorCode = "TXN-010002"

	// Not found errors (02XXXX)
	ErrCodeTransactionNotFound    TransactionErrorCode = "TXN-020001"
	ErrCodeTransactionIDsNotFound TransactionErrorCode = "TXN-020002"
)

// TransactionError represents a transaction error with code and message.
type TransactionError struct {
	Code    TransactionErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *TransactionError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *TransactionError) Unwrap() error {
	return e.Err
}

// ErrorCode returns the string form of the error code.
func (e *TransactionError) ErrorCode() string {
	return string(e.Code)
}

// NewTransactionError creates a new TransactionError with the given code and message.
func NewTransactionError(code TransactionErrorCode, message string, err error) *TransactionError {
	return &TransactionError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
