package customer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ReadCSV reads customers in the raw dataset layout: a header row naming the
// columns, customerID optional, unknown columns (such as Churn) ignored.
// UTF-8 with or without BOM and UTF-16 with BOM are accepted.
func ReadCSV(r io.Reader) ([]Record, error) {
	records, _, err := readCSV(r, "")
	return records, err
}

// ReadLabeledCSV is ReadCSV for training exports: it also returns the raw
// value of labelColumn for every row.
func ReadLabeledCSV(r io.Reader, labelColumn string) ([]Record, []string, error) {
	if labelColumn == "" {
		return nil, nil, errors.New("label column is required")
	}
	return readCSV(r, labelColumn)
}

func readCSV(r io.Reader, labelColumn string) ([]Record, []string, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	reader := csv.NewReader(transform.NewReader(r, decoder))
	reader.TrimLeadingSpace = false

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, errors.New("csv is empty")
		}
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, name := range Columns() {
		if _, ok := index[name]; !ok {
			return nil, nil, fmt.Errorf("csv header missing column %s", name)
		}
	}
	labelIdx := -1
	if labelColumn != "" {
		i, ok := index[labelColumn]
		if !ok {
			return nil, nil, fmt.Errorf("csv header missing column %s", labelColumn)
		}
		labelIdx = i
	}

	records := make([]Record, 0)
	var labels []string
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		values := make(map[string]string, len(index))
		for name, i := range index {
			values[name] = row[i]
		}
		// numeric columns may carry padding in exported files and become 0
		// when blank; TotalCharges keeps its raw text for the preprocessor
		for _, name := range []string{"SeniorCitizen", "tenure", "MonthlyCharges"} {
			values[name] = strings.TrimSpace(values[name])
		}
		record, err := fromValues(values)
		if err != nil {
			return nil, nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		records = append(records, record)
		if labelIdx >= 0 {
			labels = append(labels, strings.TrimSpace(row[labelIdx]))
		}
	}
	return records, labels, nil
}
