// Package config defines the path and robot files trajectories are generated from.
package config

import (
	"math"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"
)

func joinPath(path, field string) string {
	if path == "" {
		return field
	}
	return path + "." + field
}

func newValidationError(path, field, format string, args ...interface{}) error {
	return goutils.NewConfigValidationError(joinPath(path, field), errors.Errorf(format, args...))
}

func checkFinite(path, field string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return newValidationError(path, field, "must be finite, got %v", value)
	}
	return nil
}

// checkNumber rejects values that are not finite, not above zero when positive is set, or
// negative otherwise.
func checkNumber(path, field string, value float64, positive bool) error {
	if err := checkFinite(path, field, value); err != nil {
		return err
	}
	switch {
	case positive && value <= 0:
		return newValidationError(path, field, "must be positive, got %v", value)
	case value < 0:
		return newValidationError(path, field, "must not be negative, got %v", value)
	}
	return nil
}
