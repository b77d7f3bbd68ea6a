// Package errors provides custom error types for product-related operations.
package errors

import "errors"

var ErrProductNotFound = errors.New("product not found")

// ErrVersionConflict is returned when a product was modified after it was read.
var ErrVersionConflict = errors.New("product version conflict")
