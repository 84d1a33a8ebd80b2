package api

import (
	"errors"

	"climagraph/internal/charts"
	"climagraph/internal/ingest"
	"climagraph/internal/mapping"
	sensor "climagraph/internal/sensor/domain"
	"climagraph/internal/series"
)

// Kind tags a Fault with its failure category.
type Kind string

const (
	KindInvalidName           Kind = "invalid_name"
	KindInvalidMapping        Kind = "invalid_mapping"
	KindInvalidRange          Kind = "invalid_range"
	KindNotFound              Kind = "not_found"
	KindNoFileBound           Kind = "no_file_bound"
	KindDuplicateName         Kind = "duplicate_name"
	KindUnsupportedFormat     Kind = "unsupported_format"
	KindFileNotFound          Kind = "file_not_found"
	KindCorruptFile           Kind = "corrupt_file"
	KindEmptyFile             Kind = "empty_file"
	KindFileTooLarge          Kind = "file_too_large"
	KindUnknownGraphType      Kind = "unknown_graph_type"
	KindMissingRequiredColumn Kind = "missing_required_column"
	KindInsufficientData      Kind = "insufficient_data"
	KindIOError               Kind = "io_error"
	KindInternal              Kind = "internal"
)

// Fault is the structured failure half of every operation result. It crosses
// the boundary instead of raw errors so the shell can branch on Kind.
type Fault struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func (f *Fault) Error() string {
	if f == nil {
		return ""
	}
	return string(f.Kind) + ": " + f.Message
}

var faultKinds = []struct {
	target error
	kind   Kind
}{
	{sensor.ErrInvalidName, KindInvalidName},
	{sensor.ErrDuplicateName, KindDuplicateName},
	{sensor.ErrNotFound, KindNotFound},
	{sensor.ErrNoFileBound, KindNoFileBound},
	{mapping.ErrIncompleteMapping, KindInvalidMapping},
	{mapping.ErrUnknownColumn, KindInvalidMapping},
	{series.ErrInvalidRange, KindInvalidRange},
	{ingest.ErrUnsupportedFormat, KindUnsupportedFormat},
	{ingest.ErrFileNotFound, KindFileNotFound},
	{ingest.ErrCorruptFile, KindCorruptFile},
	{ingest.ErrEmptyFile, KindEmptyFile},
	{ingest.ErrFileTooLarge, KindFileTooLarge},
	{charts.ErrUnknownGraphType, KindUnknownGraphType},
	{charts.ErrMissingRequiredColumn, KindMissingRequiredColumn},
	{charts.ErrInsufficientData, KindInsufficientData},
}

// faultFrom maps a domain error onto the boundary taxonomy.
func faultFrom(err error) *Fault {
	if err == nil {
		return nil
	}
	var fault *Fault
	if errors.As(err, &fault) {
		return fault
	}
	for _, fk := range faultKinds {
		if errors.Is(err, fk.target) {
			return &Fault{Kind: fk.kind, Message: err.Error()}
		}
	}
	return &Fault{Kind: KindInternal, Message: err.Error()}
}

func newFault(kind Kind, message string) *Fault {
	return &Fault{Kind: kind, Message: message}
}
