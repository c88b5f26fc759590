package utils

import "strings"

func Ptr[T any](v T) *T {
	return &v
}

// OrZero dereferences v, giving the zero value for nil.
func OrZero[T any](v *T) T {
	var zero T
	return OrDefault(v, zero)
}

// OrDefault dereferences v, giving def for nil.
func OrDefault[T any](v *T, def T) T {
	if v == nil {
		return def
	}
	return *v
}

// TrimmedOrNil trims s and returns nil when nothing is left.
func TrimmedOrNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
