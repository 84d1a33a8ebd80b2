package ingest

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// parseSpreadsheet reads the first sheet of an OOXML workbook.
//
// The two spreadsheet sub-variants are told apart by binary signature: ZIP
// containers (xlsx family) are parsed with excelize; legacy OLE compound
// files (BIFF xls) are recognized but rejected with an actionable message,
// since no maintained Go reader decodes BIFF cell data. Anything else under a
// spreadsheet extension is corrupt.
func (p *Parser) parseSpreadsheet(path string) (*RawTable, error) {
	head, err := sniff(path, 8)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}
	switch {
	case hasPrefix(head, sigZIP):
		// fallthrough to excelize below
	case hasPrefix(head, sigOLE):
		return nil, fmt.Errorf("%w: legacy BIFF workbook, re-save as .xlsx", ErrUnsupportedFormat)
	default:
		return nil, fmt.Errorf("%w: not a spreadsheet container", ErrCorruptFile)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	iter, err := f.Rows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}
	defer iter.Close()

	if !iter.Next() {
		return nil, ErrEmptyFile
	}
	headerRow, err := iter.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}
	columns := dedupeColumns(headerRow)

	var data [][]string
	for iter.Next() {
		row, err := iter.Columns()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptFile, err)
		}
		if emptyRow(row) {
			continue
		}
		if len(data) == p.maxRows {
			return nil, p.rowLimitErr()
		}
		data = append(data, padRow(row, len(columns)))
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}

	return &RawTable{
		Columns: columns,
		Rows:    data,
		Meta:    Metadata{Format: FormatSpreadsheet},
	}, nil
}

func emptyRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
