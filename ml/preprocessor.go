package ml

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	CustomerIDColumn   = "customerID"
	TotalChargesColumn = "TotalCharges"
)

// Preprocess reproduces the training-time cleanup on a copy of frame:
// blanks become 0 in every column, TotalCharges is coerced to a number,
// customerID is dropped and every encoded column is replaced by its codes.
// Blanks are substituted before encoding, so a blank categorical cell ends up
// as code 0. Numeric cells in encoded columns are kept, which makes
// Preprocess idempotent on its own output.
func Preprocess(frame *Frame, encoders EncoderMap) (*Frame, error) {
	out := frame.Copy()

	for i := range out.rows {
		for j, cell := range out.rows[i] {
			if s, ok := cell.Str(); ok && strings.TrimSpace(s) == "" {
				out.rows[i][j] = Number(0)
			}
		}
	}

	if err := coerceNumeric(out, TotalChargesColumn); err != nil {
		return nil, err
	}

	out.Drop(CustomerIDColumn)

	for _, column := range encoders.Columns() {
		col, ok := out.index[column]
		if !ok {
			continue
		}
		for i := range out.rows {
			s, ok := out.rows[i][col].Str()
			if !ok {
				continue
			}
			code, err := encoders.Encode(column, s)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			out.rows[i][col] = Number(float64(code))
		}
	}
	return out, nil
}

func coerceNumeric(frame *Frame, column string) error {
	col, ok := frame.index[column]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingColumn, column)
	}
	for i := range frame.rows {
		s, ok := frame.rows[i][col].Str()
		if !ok {
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return &NonNumericError{Column: column, Row: i, Value: s}
		}
		frame.rows[i][col] = Number(value)
	}
	return nil
}
