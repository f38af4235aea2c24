// Package pure_utils contains pure helpers with no dependency on the rest of
// the codebase.
package pure_utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

const (
	DateFormat     = "2006-01-02"
	DateTimeFormat = "2006-01-02T15:04:05"
)

// Value conversion errors. Fatal for the value being converted, never retried.
var (
	ErrInvalidBooleanValue = errors.New("invalid boolean value")
	ErrInvalidIntegerValue = errors.New("invalid integer value")
	ErrInvalidDateValue    = errors.New("invalid date value")
)

// CastBool converts a raw database scalar into a bool. Already-bool input is
// returned unchanged. Accepted string forms (case insensitive):
// true/t/yes/y/1 and false/f/no/n/0.
func CastBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "t", "yes", "y", "1":
			return true, nil
		case "false", "f", "no", "n", "0":
			return false, nil
		}
		return false, errors.Wrap(ErrInvalidBooleanValue, strconv.Quote(val))
	}
	return false, errors.Wrap(ErrInvalidBooleanValue, fmt.Sprintf("%v (%T)", v, v))
}

// CastInt converts a raw database scalar into an int. Numeric strings are
// parsed, integer types are passed through.
func CastInt(v any) (int, error) {
	switch val := v.(type) {
	case int:
		return val, nil
	case int32:
		return int(val), nil
	case int64:
		return int(val), nil
	case float64:
		if val != float64(int(val)) {
			return 0, errors.Wrap(ErrInvalidIntegerValue, fmt.Sprintf("%v", val))
		}
		return int(val), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, errors.Wrap(ErrInvalidIntegerValue, strconv.Quote(val))
		}
		return i, nil
	}
	return 0, errors.Wrap(ErrInvalidIntegerValue, fmt.Sprintf("%v (%T)", v, v))
}

// CastDate converts a raw database scalar into a time.Time, parsing strings
// against the fixed "2006-01-02" format. Idempotent on time.Time input.
func CastDate(v any) (time.Time, error) {
	return castTime(v, DateFormat)
}

// CastDateTime is CastDate for the "2006-01-02T15:04:05" format.
func CastDateTime(v any) (time.Time, error) {
	return castTime(v, DateTimeFormat)
}

func castTime(v any, format string) (time.Time, error) {
	switch val := v.(type) {
	case time.Time:
		return val, nil
	case string:
		t, err := time.Parse(format, strings.TrimSpace(val))
		if err != nil {
			return time.Time{}, errors.Wrap(ErrInvalidDateValue, strconv.Quote(val))
		}
		return t, nil
	}
	return time.Time{}, errors.Wrap(ErrInvalidDateValue, fmt.Sprintf("%v (%T)", v, v))
}

// CastCSV splits a raw comma-separated string into its trimmed items.
// Nil and empty input both cast to an empty list: the legacy schema does not
// distinguish "no options" from "empty options", so neither do we.
// Already-split input is returned unchanged.
func CastCSV(v any, separator string) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return val, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		parts := strings.Split(val, separator)
		items := make([]string, len(parts))
		for i, part := range parts {
			items[i] = strings.TrimSpace(part)
		}
		return items, nil
	}
	return nil, errors.Newf("cannot cast %T to csv", v)
}
