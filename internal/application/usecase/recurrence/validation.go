package recurrence

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finance-tracker/ledger/internal/domain/entity"
	domainerror "github.com/finance-tracker/ledger/internal/domain/error"
	"github.com/finance-tracker/ledger/internal/domain/valueobject"
)

func validateTemplate(description string, amount decimal.Decimal, transactionType entity.TransactionType) error {
	description = strings.TrimSpace(description)
	if description == "" {
		return domainerror.NewRecurrenceError(
			domainerror.ErrCodeMissingRecurrenceFields,
			"description is required",
			domainerror.ErrMissingRecurrenceFields,
		)
	}
	if len(description) > entity.MaxDescriptionLength {
		return domainerror.NewRecurrenceError(
			domainerror.ErrCodeRecurrenceDescTooLong,
			fmt.Sprintf("description must not exceed %d characters", entity.MaxDescriptionLength),
			domainerror.ErrRecurrenceDescriptionTooLong,
		)
	}
	if err := validateAmount(amount); err != nil {
		return err
	}
	if !transactionType.IsValid() {
		return domainerror.NewRecurrenceError(
			domainerror.ErrCodeInvalidRecurrenceType,
			"type must be 'expense' or 'income'",
			domainerror.ErrInvalidRecurrenceType,
		)
	}
	return nil
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() || !amount.Equal(amount.Round(2)) {
		return domainerror.NewRecurrenceError(
			domainerror.ErrCodeInvalidRecurrenceAmount,
			"amount must be positive with at most two decimal places",
			domainerror.ErrInvalidRecurrenceAmount,
		)
	}
	return nil
}

func parseFrequency(raw string) (valueobject.Frequency, error) {
	if strings.TrimSpace(raw) == "" {
		return "", domainerror.NewRecurrenceError(
			domainerror.ErrCodeMissingRecurrenceFields,
			"frequency is required",
			domainerror.ErrMissingRecurrenceFields,
		)
	}
	frequency, err := valueobject.ParseFrequency(raw)
	if err != nil {
		return "", domainerror.NewRecurrenceError(
			domainerror.ErrCodeInvalidFrequency,
			err.Error(),
			domainerror.ErrInvalidFrequency,
		)
	}
	return frequency, nil
}

func validateInterval(interval int) error {
	if interval < 1 || interval > valueobject.MaxInterval {
		return domainerror.NewRecurrenceError(
			domainerror.ErrCodeInvalidInterval,
			fmt.Sprintf("interval must be between 1 and %d", valueobject.MaxInterval),
			domainerror.ErrInvalidInterval,
		)
	}
	return nil
}

func validateDateRange(start time.Time, end *time.Time) error {
	if end != nil && valueobject.NormalizeDate(*end).Before(valueobject.NormalizeDate(start)) {
		return domainerror.NewRecurrenceError(
			domainerror.ErrCodeInvalidDateRange,
			"end date must not be before start date",
			domainerror.ErrInvalidDateRange,
		)
	}
	return nil
}

func validateInstallmentCount(count *int, amount decimal.Decimal) error {
	if count == nil {
		return nil
	}
	if *count < 2 || *count > entity.MaxRecurrenceInstallments {
		return domainerror.NewRecurrenceError(
			domainerror.ErrCodeInvalidRecurrenceInstalls,
			fmt.Sprintf("installment count must be between 2 and %d", entity.MaxRecurrenceInstallments),
			domainerror.ErrInvalidRecurrenceInstallments,
		)
	}
	if amount.Div(decimal.NewFromInt(int64(*count))).RoundFloor(2).LessThan(decimal.New(1, -2)) {
		return domainerror.NewRecurrenceError(
			domainerror.ErrCodeInvalidRecurrenceInstalls,
			fmt.Sprintf("%s cannot be split into %d installments", amount.StringFixed(2), *count),
			domainerror.ErrInvalidRecurrenceInstallments,
		)
	}
	return nil
}

func notFoundError(err error) error {
	if errors.Is(err, domainerror.ErrRecurrenceNotFound) {
		return domainerror.NewRecurrenceError(
			domainerror.ErrCodeRecurrenceNotFound,
			"recurrence not found",
			domainerror.ErrRecurrenceNotFound,
		)
	}
	return fmt.Errorf("failed to get recurrence: %w", err)
}
