package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"climagraph/internal/observability/metrics"
)

const (
	defaultMaxRows  = 500_000
	defaultMaxBytes = 64 << 20 // 64 MiB
)

// Binary signatures of the two spreadsheet sub-variants.
var (
	sigZIP = []byte{0x50, 0x4B, 0x03, 0x04}
	sigOLE = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// Parser dispatches a file to the adapter matching its extension and
// signature and enforces ingestion limits.
type Parser struct {
	maxRows  int
	maxBytes int64
}

// Option configures a Parser.
type Option func(*Parser)

// WithMaxRows caps the number of data rows accepted per file.
func WithMaxRows(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.maxRows = n
		}
	}
}

// WithMaxBytes caps the accepted file size in bytes.
func WithMaxBytes(n int64) Option {
	return func(p *Parser) {
		if n > 0 {
			p.maxBytes = n
		}
	}
}

// NewParser constructs a Parser.
func NewParser(opts ...Option) *Parser {
	p := &Parser{maxRows: defaultMaxRows, maxBytes: defaultMaxBytes}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse reads a source file into a RawTable.
//
// Missing paths fail with ErrFileNotFound and files whose extension matches
// no adapter with ErrUnsupportedFormat. Files over the byte limit fail with
// ErrFileTooLarge before any content is read; each adapter enforces the row
// limit while reading, so an oversized file never gets fully buffered.
// Format-library parse failures surface as ErrCorruptFile and zero data rows
// as ErrEmptyFile.
func (p *Parser) Parse(path string) (*RawTable, error) {
	started := time.Now()
	table, err := p.parse(path)

	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}
	metrics.ObserveParse(formatLabel(path), result, time.Since(started))
	return table, err
}

func (p *Parser) parse(path string) (*RawTable, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}
	if info.Size() > p.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrFileTooLarge, info.Size(), p.maxBytes)
	}

	var table *RawTable
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		table, err = p.parseSpreadsheet(path)
	case ".csv":
		table, err = p.parseCSV(path)
	case ".hobo":
		table, err = p.parseHOBO(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	if len(table.Rows) == 0 {
		return nil, ErrEmptyFile
	}
	table.Meta.RowCount = len(table.Rows)
	return table, nil
}

// rowLimitErr is returned by adapters once the row cap is hit mid-read.
func (p *Parser) rowLimitErr() error {
	return fmt.Errorf("%w: more than %d data rows", ErrFileTooLarge, p.maxRows)
}

// formatLabel names the adapter family for metrics, by extension so failed
// parses are labeled too.
func formatLabel(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		return string(FormatSpreadsheet)
	case ".csv":
		return string(FormatCSV)
	case ".hobo":
		return string(FormatHOBO)
	default:
		return "unknown"
	}
}

// sniff reads the first bytes of a file for signature checks.
func sniff(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	head := make([]byte, n)
	read, err := f.Read(head)
	if err != nil && read == 0 {
		return nil, err
	}
	return head[:read], nil
}

func hasPrefix(head, sig []byte) bool {
	return len(head) >= len(sig) && bytes.Equal(head[:len(sig)], sig)
}
