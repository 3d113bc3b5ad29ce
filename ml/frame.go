package ml

import (
	"fmt"
	"strconv"
)

type Cell struct {
	str   string
	num   float64
	isNum bool
}

func String(s string) Cell {
	return Cell{str: s}
}

func Number(f float64) Cell {
	return Cell{num: f, isNum: true}
}

func (c Cell) IsNumber() bool {
	return c.isNum
}

// Float returns the numeric value; ok is false for string cells.
func (c Cell) Float() (float64, bool) {
	if !c.isNum {
		return 0, false
	}
	return c.num, true
}

func (c Cell) Str() (string, bool) {
	if c.isNum {
		return "", false
	}
	return c.str, true
}

func (c Cell) String() string {
	if c.isNum {
		return strconv.FormatFloat(c.num, 'f', -1, 64)
	}
	return c.str
}

// Frame is a small column-named table. Rows always have one cell per column.
type Frame struct {
	columns []string
	index   map[string]int
	rows    [][]Cell
}

func NewFrame(columns ...string) *Frame {
	f := &Frame{
		columns: append([]string(nil), columns...),
		index:   make(map[string]int, len(columns)),
	}
	for i, name := range f.columns {
		f.index[name] = i
	}
	return f
}

func (f *Frame) AppendRow(cells ...Cell) error {
	if len(cells) != len(f.columns) {
		return fmt.Errorf("row has %d cells, frame has %d columns", len(cells), len(f.columns))
	}
	f.rows = append(f.rows, append([]Cell(nil), cells...))
	return nil
}

func (f *Frame) Columns() []string {
	return append([]string(nil), f.columns...)
}

func (f *Frame) Len() int {
	return len(f.rows)
}

func (f *Frame) HasColumn(name string) bool {
	_, ok := f.index[name]
	return ok
}

func (f *Frame) Cell(row int, column string) (Cell, bool) {
	col, ok := f.index[column]
	if !ok || row < 0 || row >= len(f.rows) {
		return Cell{}, false
	}
	return f.rows[row][col], true
}

func (f *Frame) Set(row int, column string, cell Cell) error {
	col, ok := f.index[column]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingColumn, column)
	}
	if row < 0 || row >= len(f.rows) {
		return fmt.Errorf("row %d out of range", row)
	}
	f.rows[row][col] = cell
	return nil
}

// Drop removes the column if present and reports whether it was there.
func (f *Frame) Drop(column string) bool {
	col, ok := f.index[column]
	if !ok {
		return false
	}
	f.columns = append(f.columns[:col], f.columns[col+1:]...)
	for i, row := range f.rows {
		f.rows[i] = append(row[:col], row[col+1:]...)
	}
	f.index = make(map[string]int, len(f.columns))
	for i, name := range f.columns {
		f.index[name] = i
	}
	return true
}

func (f *Frame) Copy() *Frame {
	out := NewFrame(f.columns...)
	out.rows = make([][]Cell, len(f.rows))
	for i, row := range f.rows {
		out.rows[i] = append([]Cell(nil), row...)
	}
	return out
}

// Row returns a copy of the cells of one row keyed by column name.
func (f *Frame) Row(row int) map[string]Cell {
	if row < 0 || row >= len(f.rows) {
		return nil
	}
	out := make(map[string]Cell, len(f.columns))
	for i, name := range f.columns {
		out[name] = f.rows[row][i]
	}
	return out
}
