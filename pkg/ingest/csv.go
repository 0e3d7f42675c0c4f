package ingest

import (
	"encoding/csv"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
)

const utf8BOM = "\ufeff"

// rowReader yields CSV rows keyed by header name.
type rowReader struct {
	r      *csv.Reader
	header map[string]int
}

func newRowReader(src io.Reader) (*rowReader, error) {
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.ReuseRecord = true

	names, err := r.Read()
	if err != nil {
		return nil, err
	}

	header := make(map[string]int, len(names))
	for i, name := range names {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		header[strings.TrimSpace(name)] = i
	}
	return &rowReader{r: r, header: header}, nil
}

// next returns io.EOF at the end. A row the CSV parser rejects is reported
// as skip=true so the caller can count it and keep going.
func (rr *rowReader) next() (row, bool, error) {
	record, err := rr.r.Read()
	if err == io.EOF {
		return row{}, false, io.EOF
	}
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return row{}, true, nil
	}
	if err != nil {
		return row{}, false, err
	}
	return row{header: rr.header, fields: record}, false, nil
}

type row struct {
	header map[string]int
	fields []string
}

func (r row) get(name string) string {
	i, ok := r.header[name]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

// float reads a measurement. Anything missing, unreadable or non-finite is 0.
func (r row) float(name string) float64 {
	f, err := strconv.ParseFloat(r.get(name), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// int reads an integer key column; fractions are truncated.
func (r row) int(name string) (int64, bool) {
	raw := r.get(name)
	if raw == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(math.Trunc(f)), true
}
