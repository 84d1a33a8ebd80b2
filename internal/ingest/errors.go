package ingest

import "errors"

var (
	// ErrUnsupportedFormat is returned when no adapter matches the file's
	// extension and signature.
	ErrUnsupportedFormat = errors.New("ingest: unsupported file format")
	// ErrFileNotFound is returned when the source path does not exist,
	// typically because the file moved since it was picked.
	ErrFileNotFound = errors.New("ingest: file not found")
	// ErrCorruptFile is returned when the format library fails to parse the file.
	ErrCorruptFile = errors.New("ingest: corrupt or unreadable file")
	// ErrEmptyFile is returned when the file holds zero data rows.
	ErrEmptyFile = errors.New("ingest: no data rows")
	// ErrFileTooLarge is returned when the file exceeds the configured row or
	// byte limits. Ingestion never truncates silently.
	ErrFileTooLarge = errors.New("ingest: file exceeds configured limits")
)
