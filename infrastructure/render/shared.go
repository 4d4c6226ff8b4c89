// Package render provides the orchestration layer that turns a response
// record into ranked, presentation-ready units, combining grouping and
// score formatting with the host-supplied collaborators.
package render

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// Input validation constants to prevent resource exhaustion.
const (
	// MaxItems is the maximum number of response items accepted per render.
	MaxItems = 10000

	// MaxStringLength is the maximum allowed length for any payload (10MB).
	MaxStringLength = 10 * 1024 * 1024 // 10MB
)

// Common errors returned by the render layer.
var (
	// ErrEmptyRendererName is returned when a renderer is created with an
	// empty name.
	ErrEmptyRendererName = errors.New("renderer name cannot be empty")

	// ErrTooManyItems is returned when a response exceeds MaxItems.
	ErrTooManyItems = errors.New("response item count exceeds limit")

	// ErrEmptyQuery is returned when a filter is created with an empty query.
	ErrEmptyQuery = errors.New("filter query cannot be empty")
)

// Package-level validator instance for configuration validation.
// Uses go-playground/validator v10 for struct tag-based validation.
var validate = validator.New()
