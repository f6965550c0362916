package errors

import "net/http"

var (
	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrUnknownCity = New(
		"UNKNOWN_CITY",
		"City is not tracked",
		http.StatusBadRequest,
	)

	ErrUnknownPollutant = New(
		"UNKNOWN_POLLUTANT",
		"Pollutant is not tracked",
		http.StatusBadRequest,
	)

	ErrInvalidDateRange = New(
		"INVALID_DATE_RANGE",
		"Start date must not be after end date",
		http.StatusBadRequest,
	)

	ErrSeriesNotFound = New(
		"SERIES_NOT_FOUND",
		"Series not found",
		http.StatusNotFound,
	)

	ErrInsufficientData = New(
		"INSUFFICIENT_DATA",
		"Not enough data points",
		http.StatusUnprocessableEntity,
	)

	ErrZeroVariance = New(
		"ZERO_VARIANCE",
		"Values have no variance",
		http.StatusUnprocessableEntity,
	)

	ErrDatasetNotReady = New(
		"DATASET_NOT_READY",
		"Dataset is still loading",
		http.StatusServiceUnavailable,
	)

	ErrReloadFailed = New(
		"RELOAD_FAILED",
		"Dataset reload failed",
		http.StatusInternalServerError,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
