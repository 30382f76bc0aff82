package models

import (
	"errors"
	"fmt"
)

// ErrInvalidThreshold is returned when a similarity threshold falls outside (0, 1]
var ErrInvalidThreshold = errors.New("threshold must be in (0, 1]")

// ValidateThreshold checks that t can be used as a similarity threshold
func ValidateThreshold(t float64) error {
	// NaN fails both comparisons, so test the accepted range directly
	if !(t > 0 && t <= 1) {
		return fmt.Errorf("%w: got %v", ErrInvalidThreshold, t)
	}
	return nil
}
