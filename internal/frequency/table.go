// Package frequency loads label/frequency tables from CSV files and
// collapses them into the mapping the word-cloud renderer consumes.
package frequency

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Row is a single label with its frequency, in file order.
type Row struct {
	Label string
	Freq  float64
}

// Table holds the rows of a frequency CSV.
type Table struct {
	Rows []Row
}

// Load opens the CSV at path and reads the label and frequency columns from it.
func Load(path, labelColumn, freqColumn string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s failed", path)
	}
	defer f.Close()

	table, err := Read(f, labelColumn, freqColumn)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s failed", path)
	}
	return table, nil
}

// Read parses CSV with a header row. Columns are selected by header name;
// any other columns are ignored.
func Read(r io.Reader, labelColumn, freqColumn string) (*Table, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("csv has no header row")
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading csv header failed")
	}

	labelIdx, freqIdx := -1, -1
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		switch name {
		case labelColumn:
			labelIdx = i
		case freqColumn:
			freqIdx = i
		}
	}
	if labelIdx < 0 {
		return nil, errors.Errorf("csv has no %q column", labelColumn)
	}
	if freqIdx < 0 {
		return nil, errors.Errorf("csv has no %q column", freqColumn)
	}

	table := &Table{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "reading csv row failed")
		}

		line, _ := reader.FieldPos(freqIdx)
		freq, err := parseFreq(record[freqIdx])
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}

		table.Rows = append(table.Rows, Row{
			Label: record[labelIdx],
			Freq:  freq,
		})
	}

	return table, nil
}

func parseFreq(s string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.Wrapf(err, "frequency %q is not a number", s)
	}
	f, _ := d.Float64()
	return f, nil
}
