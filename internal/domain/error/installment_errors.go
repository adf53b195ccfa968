package error

import "errors"

// Installment domain errors.
var (
	// ErrInstallmentGroupNotFound is returned when no live rows carry the group id.
	ErrInstallmentGroupNotFound = errors.New("installment group not found")

	// ErrInstallmentNotInGroup is returned when the target transaction is not a member of the group.
	ErrInstallmentNotInGroup = errors.New("transaction is not part of the installment group")

	// ErrInvalidInstallmentScope is returned when the scope is not single, remaining or all.
	ErrInvalidInstallmentScope = errors.New("invalid installment scope")

	// ErrInvalidInstallmentCount is returned when the installment count is out of range.
	ErrInvalidInstallmentCount = errors.New("invalid installment count")

	// ErrInvalidInstallmentAmount is returned when the total is not positive or has more than two decimals.
	ErrInvalidInstallmentAmount = errors.New("invalid installment amount")

	// ErrInstallmentAmountTooSmall is returned when splitting would produce an installment below one cent.
	ErrInstallmentAmountTooSmall = errors.New("amount too small for installment count")

	// ErrInstallmentTargetRequired is returned when a scoped operation is missing its target transaction.
	ErrInstallmentTargetRequired = errors.New("target transaction is required")

	// ErrInstallmentDateOutOfOrder is returned when a date edit would break the group's date ordering.
	ErrInstallmentDateOutOfOrder = errors.New("installment date out of order")

	// ErrEmptyInstallmentPatch is returned when an update carries no changes.
	ErrEmptyInstallmentPatch = errors.New("no changes provided")

	// ErrInvalidInstallmentStep is returned when the plan's period step cannot compute dates.
	ErrInvalidInstallmentStep = errors.New("invalid installment period")

	// ErrInvalidInstallmentFields is returned when descriptive fields fail validation.
	ErrInvalidInstallmentFields = errors.New("invalid installment fields")

	// ErrInstallmentConsistency is returned when a mutation would leave a group in an invalid state.
	ErrInstallmentConsistency = errors.New("installment group consistency violated")
)

// InstallmentErrorCode defines error codes for installment errors.
// Format: INS-XXYYYY where XX is category and YYYY is specific error.
type InstallmentErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeInvalidInstallmentScope   InstallmentErrorCode = "INS-010001"
	ErrCodeInvalidInstallmentCount   InstallmentErrorCode = "INS-010002"
	ErrCodeInvalidInstallmentAmount  InstallmentErrorCode = "INS-010003"
	ErrCodeInstallmentAmountTooSmall InstallmentErrorCode = "INS-010004"
	ErrCodeInstallmentTargetRequired InstallmentErrorCode = "INS-010005"
	ErrCodeInstallmentDateOutOfOrder InstallmentErrorCode = "INS-010006"
	ErrCodeEmptyInstallmentPatch     InstallmentErrorCode = "INS-010007"
	ErrCodeInvalidInstallmentStep    InstallmentErrorCode = "INS-010008"
	ErrCodeInvalidInstallmentFields  InstallmentErrorCode = "INS-010009"

	// Not found errors (02XXXX)
	ErrCodeInstallmentGroupNotFound InstallmentErrorCode = "INS-020001"
	ErrCodeInstallmentNotInGroup    InstallmentErrorCode = "INS-020002"

	// Consistency errors (05XXXX)
	ErrCodeInstallmentConsistency InstallmentErrorCode = "INS-050001"
)

// InstallmentError represents an installment error with code and message.
type InstallmentError struct {
	Code    InstallmentErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *InstallmentError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *InstallmentError) Unwrap() error {
	return e.Err
}

// ErrorCode returns the string form of the error code.
func (e *InstallmentError) ErrorCode() string {
	return string(e.Code)
}

// NewInstallmentError creates a new InstallmentError with the given code and message.
func NewInstallmentError(code InstallmentErrorCode, message string, err error) *InstallmentError {
	return &InstallmentError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
