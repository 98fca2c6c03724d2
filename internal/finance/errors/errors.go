package errors

import (
	"errors"
	"fmt"
)

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func NewValidationError(msg string) error {
	return &ValidationError{Msg: msg}
}

func IsValidationError(err error) bool {
	var validationError *ValidationError
	ok := errors.As(err, &validationError)
	return ok
}

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

func NewNotFoundError(resource string) error {
	return &NotFoundError{Resource: resource}
}

func IsNotFoundError(err error) bool {
	var notFoundError *NotFoundError
	ok := errors.As(err, &notFoundError)
	return ok
}

type InsufficientFundsError struct {
	AccountName string
	Balance     string
	Required    string
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds in account %q: balance %s, required %s", e.AccountName, e.Balance, e.Required)
}

func NewInsufficientFundsError(accountName, balance, required string) error {
	return &InsufficientFundsError{AccountName: accountName, Balance: balance, Required: required}
}

func IsInsufficientFundsError(err error) bool {
	var insufficientFundsError *InsufficientFundsError
	ok := errors.As(err, &insufficientFundsError)
	return ok
}

type ConcurrencyTimeoutError struct {
	Msg string
}

func (e *ConcurrencyTimeoutError) Error() string {
	return e.Msg
}

func NewConcurrencyTimeoutError(msg string) error {
	return &ConcurrencyTimeoutError{Msg: msg}
}

func IsConcurrencyTimeoutError(err error) bool {
	var concurrencyTimeoutError *ConcurrencyTimeoutError
	ok := errors.As(err, &concurrencyTimeoutError)
	return ok
}

var ErrAccountNotFound = NewNotFoundError("Account")
var ErrCategoryNotFound = NewNotFoundError("Category")
var ErrEntryNotFound = NewNotFoundError("Entry")
