package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Level identifies a training level. Level identifiers arrive from
// configuration and scripts as either numbers or strings, so equality is
// loose: "3" and 3 name the same level.
type Level string

// LevelOf converts a raw number or string into a Level.
func LevelOf(v interface{}) Level {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return Level(strings.TrimSpace(x))
	case float64:
		return Level(strconv.FormatFloat(x, 'f', -1, 64))
	case int:
		return Level(strconv.Itoa(x))
	case int64:
		return Level(strconv.FormatInt(x, 10))
	default:
		return Level(strings.TrimSpace(fmt.Sprintf("%v", x)))
	}
}

// IsZero reports whether the level is unset.
func (l Level) IsZero() bool {
	return l == ""
}

// String returns the level identifier.
func (l Level) String() string {
	return string(l)
}

// Matches reports loose equality: exact string match, or numeric equality
// when both sides parse as numbers.
func (l Level) Matches(o Level) bool {
	if l == o {
		return true
	}
	lf, errL := strconv.ParseFloat(string(l), 64)
	of, errO := strconv.ParseFloat(string(o), 64)
	return errL == nil && errO == nil && lf == of
}

// UnmarshalJSON accepts both JSON numbers and JSON strings.
func (l *Level) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*l = LevelOf(v)
	return nil
}

// MarshalJSON emits the level as a string.
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(l))
}
