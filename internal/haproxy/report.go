package haproxy

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ParseReport reads a stats-over-CSV report. HAProxy prefixes the header
// line with "# ", which is stripped before the header is read.
func ParseReport(r io.Reader) ([]Row, error) {
	br := bufio.NewReader(r)

	if prefix, err := br.Peek(2); err == nil && string(prefix) == "# " {
		if _, err := br.Discard(2); err != nil {
			return nil, err
		}
	}

	reader := csv.NewReader(br)
	// Data lines end with a trailing comma, so field counts can vary.
	reader.FieldsPerRecord = -1
	// Free-text columns such as last_chk can carry bare quotes.
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read report header: %w", err)
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read report row %d: %w", len(rows)+1, err)
		}

		rows = append(rows, newRow(headers, record))
	}

	return rows, nil
}

func newRow(headers, record []string) Row {
	row := make(Row, len(headers))
	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" || i >= len(record) {
			continue
		}
		row[header] = record[i]
	}

	return row
}
