package ml

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// LabelEncoder maps category strings to stable integer codes. The code of a
// class is its position in the training class list.
type LabelEncoder struct {
	classes []string
	codes   map[string]int
}

func NewLabelEncoder(classes []string) (*LabelEncoder, error) {
	if len(classes) == 0 {
		return nil, fmt.Errorf("%w: encoder has no classes", ErrCorruptArtifact)
	}
	le := &LabelEncoder{
		classes: append([]string(nil), classes...),
		codes:   make(map[string]int, len(classes)),
	}
	for i, class := range le.classes {
		if _, dup := le.codes[class]; dup {
			return nil, fmt.Errorf("%w: duplicate class %q", ErrCorruptArtifact, class)
		}
		le.codes[class] = i
	}
	return le, nil
}

func (le *LabelEncoder) Encode(value string) (int, bool) {
	code, ok := le.codes[value]
	return code, ok
}

func (le *LabelEncoder) Decode(code int) (string, bool) {
	if code < 0 || code >= len(le.classes) {
		return "", false
	}
	return le.classes[code], true
}

func (le *LabelEncoder) Classes() []string {
	return append([]string(nil), le.classes...)
}

type EncoderMap map[string]*LabelEncoder

// Columns returns the encoded column names in sorted order.
func (m EncoderMap) Columns() []string {
	columns := make([]string, 0, len(m))
	for column := range m {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	return columns
}

func (m EncoderMap) Encode(column, value string) (int, error) {
	le, ok := m[column]
	if !ok {
		return 0, fmt.Errorf("%w: no encoder for %s", ErrMissingColumn, column)
	}
	code, ok := le.Encode(value)
	if !ok {
		return 0, &UnseenCategoryError{Column: column, Value: value}
	}
	return code, nil
}

// MarshalJSON writes the same {"column": [classes...]} layout LoadEncoders reads.
func (m EncoderMap) MarshalJSON() ([]byte, error) {
	raw := make(map[string][]string, len(m))
	for column, le := range m {
		raw[column] = le.classes
	}
	return json.Marshal(raw)
}

func LoadEncoders(path string) (EncoderMap, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string][]string
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptArtifact, path, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: %s: no encoders", ErrCorruptArtifact, path)
	}
	encoders := make(EncoderMap, len(raw))
	for column, classes := range raw {
		le, err := NewLabelEncoder(classes)
		if err != nil {
			return nil, fmt.Errorf("%s: column %s: %w", path, column, err)
		}
		encoders[column] = le
	}
	return encoders, nil
}
