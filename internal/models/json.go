package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList is a []string stored as a JSON text column
type StringList []string

func (l StringList) Value() (driver.Value, error) { return valueJSON(l, "[]") }
func (l *StringList) Scan(src any) error { return scanJSON(src, l) }

// IntList is a []int stored as a JSON text column
type IntList []int

func (l IntList) Value() (driver.Value, error) { return valueJSON(l, "[]") }
func (l *IntList) Scan(src any) error { return scanJSON(src, l) }

// QuestionList is a quiz's questions stored as a JSON text column
type QuestionList []QuizQuestion

func (l QuestionList) Value() (driver.Value, error) { return valueJSON(l, "[]") }
func (l *QuestionList) Scan(src any) error { return scanJSON(src, l) }

func valueJSON[T any](v []T, empty string) (driver.Value, error) {
	if len(v) == 0 {
		return empty, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func scanJSON(src any, dest any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T as JSON", src)
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dest)
}
