package domain

import "errors"

var (
	ErrValidation             = errors.New("validation failed")
	ErrCurrencyMismatch       = errors.New("currency mismatch")
	ErrDivideByZero           = errors.New("divide by zero")
	ErrInsufficientHolding    = errors.New("insufficient holding")
	ErrInvalidOperation       = errors.New("invalid operation")
	ErrIllegalStateTransition = errors.New("illegal state transition")
	ErrConflict               = errors.New("version conflict")
	ErrInvalidState           = errors.New("invalid state")
)
