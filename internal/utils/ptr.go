package utils

import "strings"

// Ptr returns a pointer to a copy of v.
func Ptr[T any](v T) *T {
	return &v
}

// OrZero dereferences v, yielding the zero value for nil.
func OrZero[T comparable](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}

// NilIfZero maps the zero value to nil, the inverse of OrZero for nullable columns.
func NilIfZero[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}

// StringOrNil trims s and returns nil when nothing is left.
func StringOrNil(s string) *string {
	return NilIfZero(strings.TrimSpace(s))
}
