// Package utils provides utility functions for rsa-blocks.
// This file contains safe arithmetic and length checks that keep block
// sequences and key material within the ranges the decoder supports.

package utils

import (
	"errors"
	"math"
)

// Maximum allowed sizes for inputs read from keyrings and the command line.
const (
	// MaxBlocks is the maximum number of ciphertext blocks in one sequence.
	MaxBlocks = 1 << 16 // 64K blocks

	// MaxKeyringSize is the maximum accepted keyring file size in bytes.
	MaxKeyringSize = 1 << 20 // 1MB

	// MaxKeys is the maximum number of keys in one keyring.
	MaxKeys = 1024
)

var (
	// ErrOverflow indicates an integer overflow occurred.
	ErrOverflow = errors.New("integer overflow")

	// ErrExceedsLimit indicates a value exceeds the allowed limit.
	ErrExceedsLimit = errors.New("value exceeds allowed limit")

	// ErrInvalidLength indicates an invalid length value.
	ErrInvalidLength = errors.New("invalid length")
)

// SafeMultiplyUint64 multiplies two unsigned integers and returns an error if overflow occurs.
func SafeMultiplyUint64(a, b uint64) (uint64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	// Check for overflow before multiplying
	if a > math.MaxUint64/b {
		return 0, ErrOverflow
	}
	return a * b, nil
}

// CheckLength validates that length is within [0, maxAllowed].
func CheckLength(length, maxAllowed int) error {
	if length < 0 {
		return ErrInvalidLength
	}
	if length > maxAllowed {
		return ErrExceedsLimit
	}
	return nil
}

// CheckPositive validates that value is > 0.
func CheckPositive(value uint64, name string) error {
	if value == 0 {
		return errors.New(name + " must be positive")
	}
	return nil
}

// CheckBelow validates that every value is strictly below bound.
// It returns the index of the first offending value, or -1.
func CheckBelow(values []uint64, bound uint64) int {
	for i, v := range values {
		if v >= bound {
			return i
		}
	}
	return -1
}
