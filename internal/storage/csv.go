package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/popsim/internal/solution"
)

// WriteCSV writes one row per recorded step under a "time,<keys>" header.
// No-value markers become empty cells.
func WriteCSV(w io.Writer, times []float64, tr *solution.Trace) error {
	if len(times) < tr.Len() {
		return fmt.Errorf("trace has %d rows but the time axis has %d points", tr.Len(), len(times))
	}
	cw := csv.NewWriter(w)

	keys := tr.Keys()
	header := append([]string{"time"}, keys...)
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for i := 0; i < tr.Len(); i++ {
		row[0] = strconv.FormatFloat(times[i], 'f', 6, 64)
		for j, v := range tr.Row(i, keys) {
			row[j+1] = v.String()
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses what WriteCSV wrote.
func ReadCSV(r io.Reader) ([]float64, *solution.Trace, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("empty trace file")
	}

	header := records[0]
	if len(header) == 0 || header[0] != "time" {
		return nil, nil, fmt.Errorf("trace header must start with time, got %v", header)
	}
	keys := header[1:]

	times := make([]float64, 0, len(records)-1)
	columns := make(map[string][]solution.Value, len(keys))
	for line, record := range records[1:] {
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: time: %w", line+2, err)
		}
		times = append(times, t)

		for j, k := range keys {
			v, err := solution.Parse(record[j+1])
			if err != nil {
				return nil, nil, fmt.Errorf("line %d: %s: %w", line+2, k, err)
			}
			columns[k] = append(columns[k], v)
		}
	}

	return times, solution.FromSeries(keys, columns), nil
}
