// Package services implements the three-stage feedback pipeline: raw
// ingestion, normalization, and daily aggregation. This file centralizes
// common service-level error values so that they can be consistently
// returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler/controller layer.
package services

import "errors"

// Pipeline-related errors.
var (
	// ErrChannelNotFound indicates that the requested channel configuration
	// is missing or inactive. Fatal to the run that needed it.
	ErrChannelNotFound = errors.New("channel not found or inactive")

	// ErrInvalidDate is returned when a date string is not a valid
	// YYYY-MM-DD calendar date.
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

	// ErrInvalidDateRange is returned when fromDate is after toDate.
	ErrInvalidDateRange = errors.New("fromDate must be before or equal to toDate")

	// ErrStoreNotResolved indicates that a raw record's store identifier is
	// missing or matched no known store. The record is left NEW and becomes
	// retryable once store data is fixed.
	ErrStoreNotResolved = errors.New("store not resolved")

	// ErrAlreadyNormalized indicates that a visit already references the raw
	// record. Expected under double-pick races; counted as a skip.
	ErrAlreadyNormalized = errors.New("raw record already normalized")

	// ErrInvalidBatchSize is returned when a normalization batch size is not
	// a positive integer.
	ErrInvalidBatchSize = errors.New("batch size must be positive")
)
