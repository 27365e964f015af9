package series

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadCSV reads "timestamp,value" rows. A first row whose timestamp column
// is not numeric is treated as a header. Lines starting with '#' are ignored.
func ReadCSV(r io.Reader, label string) (*Series, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var timestamps, values []float64

	for row := 1; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		if len(record) < 2 {
			return nil, fmt.Errorf("row %d: expected 2 columns, got %d", row, len(record))
		}

		ts, err := strconv.ParseFloat(strings.TrimSpace(record[0]), 64)
		if err != nil {
			if row == 1 {
				continue
			}
			return nil, fmt.Errorf("row %d: invalid timestamp %q", row, record[0])
		}

		value, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid value %q", row, record[1])
		}

		timestamps = append(timestamps, ts)
		values = append(values, value)
	}

	return FromPoints(label, timestamps, values)
}

// WriteCSV writes a "timestamp,value" header followed by every sample.
func WriteCSV(w io.Writer, s *Series) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"timestamp", "value"}); err != nil {
		return err
	}

	for _, p := range s.Points() {
		record := []string{
			strconv.FormatFloat(p.Timestamp, 'f', -1, 64),
			strconv.FormatFloat(p.Value, 'g', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
