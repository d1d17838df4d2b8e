package errors

import (
	"errors"
	"fmt"
)

// Common error types for the shop backend
var (
	// User errors
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotDeletable  = errors.New("account cannot be deleted")

	// Catalog errors
	ErrItemNotFound     = errors.New("item not found")
	ErrCategoryNotFound = errors.New("category not found")

	// Order errors
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidQuantity   = errors.New("order quantity must be at least one")
	ErrInvalidMileage    = errors.New("mileage exceeds available balance")
	ErrOrderCancelFailed = errors.New("order can no longer be cancelled")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
