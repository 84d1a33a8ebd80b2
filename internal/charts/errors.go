package charts

import "errors"

var (
	// ErrUnknownGraphType is returned for a type id outside the catalog.
	ErrUnknownGraphType = errors.New("charts: unknown graph type")
	// ErrMissingRequiredColumn is returned when a selected sensor's series
	// lacks a field the graph type requires. The wrapping message names the
	// sensor and field; selection was explicit, so this is never a silent skip.
	ErrMissingRequiredColumn = errors.New("charts: missing required column")
	// ErrInsufficientData is returned when no plottable records remain.
	ErrInsufficientData = errors.New("charts: insufficient data")
)
