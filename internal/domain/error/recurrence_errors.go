package error

import "errors"

// Recurrence domain errors.
var (
	// ErrRecurrenceNotFound is returned when a recurrence definition does not exist in the dashboard.
	ErrRecurrenceNotFound = errors.New("recurrence not found")

	// ErrInvalidFrequency is returned when the frequency is not one of the supported values.
	ErrInvalidFrequency = errors.New("invalid frequency")

	// ErrInvalidInterval is returned when the interval is not a positive integer within bounds.
	ErrInvalidInterval = errors.New("invalid interval")

	// ErrInvalidRecurrenceAmount is returned when the template amount is not positive.
	ErrInvalidRecurrenceAmount = errors.New("invalid recurrence amount")

	// ErrInvalidRecurrenceType is returned when the template type is neither income nor expense.
	ErrInvalidRecurrenceType = errors.New("invalid recurrence type")

	// ErrInvalidDateRange is returned when the end date is before the start date.
	ErrInvalidDateRange = errors.New("end date before start date")

	// ErrRecurrenceDescriptionTooLong is returned when the template description exceeds the maximum length.
	ErrRecurrenceDescriptionTooLong = errors.New("description too long")

	// ErrMissingRecurrenceFields is returned when required template fields are empty.
	ErrMissingRecurrenceFields = errors.New("missing required fields")

	// ErrInvalidRecurrenceInstallments is returned when the per-occurrence installment count is out of range.
	ErrInvalidRecurrenceInstallments = errors.New("invalid installment count")

	// ErrFutureProcessingDate is returned when a processing run is requested for a date after today.
	ErrFutureProcessingDate = errors.New("processing date is in the future")

	// ErrRecurrenceExhausted is returned when resuming a definition whose schedule has ended.
	ErrRecurrenceExhausted = errors.New("recurrence schedule has ended")

	// ErrCursorMoved is returned when another worker advanced the recurrence cursor first.
	ErrCursorMoved = errors.New("recurrence cursor moved")
)

// RecurrenceErrorCode defines error codes for recurrence errors.
// Format: REC-XXYYYY where XX is category and YYYY is specific error.
type RecurrenceErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeInvalidFrequency          RecurrenceErrorCode = "REC-010001"
	ErrCodeInvalidInterval           RecurrenceErrorCode = "REC-010002"
	ErrCodeInvalidRecurrenceAmount   RecurrenceErrorCode = "REC-010003"
	ErrCodeInvalidRecurrenceType     RecurrenceErrorCode = "REC-010004"
	ErrCodeInvalidDateRange          RecurrenceErrorCode = "REC-010005"
	ErrCodeRecurrenceDescTooLong     RecurrenceErrorCode = "REC-010006"
	ErrCodeMissingRecurrenceFields   RecurrenceErrorCode = "REC-010007"
	ErrCodeInvalidRecurrenceInstalls RecurrenceErrorCode = "REC-010008"
	ErrCodeFutureProcessingDate      RecurrenceErrorCode = "REC-010009"
	ErrCodeRecurrenceExhausted       RecurrenceErrorCode = "REC-010010"
	ErrCodeInvalidRecurrenceDate     RecurrenceErrorCode = "REC-010011"

	// Not found errors (02XXXX)
	ErrCodeRecurrenceNotFound RecurrenceErrorCode = "REC-020001"

	// Conflict errors (04XXXX)
	ErrCodeCursorMoved RecurrenceErrorCode = "REC-040001"
)

// RecurrenceError represents a recurrence error with code and message.
type RecurrenceError struct {
	Code    RecurrenceErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *RecurrenceError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *RecurrenceError) Unwrap() error {
	return e.Err
}

// ErrorCode returns the string form of the error code.
func (e *RecurrenceError) ErrorCode() string {
	return string(e.Code)
}

// NewRecurrenceError creates a new RecurrenceError with the given code and message.
func NewRecurrenceError(code RecurrenceErrorCode, message string, err error) *RecurrenceError {
	return &RecurrenceError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
