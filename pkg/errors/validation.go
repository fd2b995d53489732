package errors

import "math"

// ValidatePositive validates that a named parameter is a positive, finite real.
// It is used by the pipeline and Voronoi option validators for buffer distance,
// cell size, tile size, and overlap.
func ValidatePositive(stage, name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidParameter, stage, "%s must be finite, got %g", name, v)
	}
	if v <= 0 {
		return New(ErrCodeInvalidParameter, stage, "%s must be positive, got %g", name, v)
	}
	return nil
}

// ValidateNonNegative validates that a named parameter is a non-negative,
// finite real. Used for optional tolerances where zero disables the feature.
func ValidateNonNegative(stage, name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidParameter, stage, "%s must be finite, got %g", name, v)
	}
	if v < 0 {
		return New(ErrCodeInvalidParameter, stage, "%s must not be negative, got %g", name, v)
	}
	return nil
}
