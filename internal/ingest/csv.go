package ingest

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// csvSeparators are tried in order when sniffing the delimiter.
var csvSeparators = []rune{',', ';', '\t'}

// parseCSV reads a delimited text file. The separator is sniffed from the
// header line (most frequent of comma, semicolon, tab), matching how exports
// from different locales delimit fields. Comma decimals survive as text; the
// normalizer interprets them later.
func (p *Parser) parseCSV(path string) (*RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	header, err := br.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}
	header = bytes.TrimPrefix(header, []byte{0xEF, 0xBB, 0xBF}) // UTF-8 BOM

	reader := csv.NewReader(br)
	reader.Comma = sniffSeparator(header)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headerRecord, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}
	columns := dedupeColumns(trimBOM(headerRecord))

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptFile, err)
		}
		if emptyRow(record) {
			continue
		}
		if len(rows) == p.maxRows {
			return nil, p.rowLimitErr()
		}
		rows = append(rows, padRow(record, len(columns)))
	}

	return &RawTable{
		Columns: columns,
		Rows:    rows,
		Meta:    Metadata{Format: FormatCSV},
	}, nil
}

// sniffSeparator picks the candidate separator occurring most often in the
// first line. Comma wins ties by order.
func sniffSeparator(head []byte) rune {
	line := head
	if idx := bytes.IndexByte(head, '\n'); idx >= 0 {
		line = head[:idx]
	}

	best := csvSeparators[0]
	bestCount := 0
	for _, sep := range csvSeparators {
		count := bytes.Count(line, []byte(string(sep)))
		if count > bestCount {
			best = sep
			bestCount = count
		}
	}
	return best
}

func trimBOM(row []string) []string {
	if len(row) > 0 {
		row[0] = strings.TrimPrefix(row[0], "\uFEFF")
	}
	return row
}
