package profile

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// LegacyList is a list-valued profile column stored as text. Rows written by
// this service always hold a JSON array of strings, but older rows may hold
// NULL or hand-entered free text, and every reader has to accept all three.
type LegacyList struct {
	Raw   string
	Valid bool
}

// ListOf encodes items as a JSON array.
func ListOf(items ...string) LegacyList {
	if items == nil {
		items = []string{}
	}
	b, _ := json.Marshal(items)
	return LegacyList{Raw: string(b), Valid: true}
}

// RawList stores s verbatim.
func RawList(s string) LegacyList {
	return LegacyList{Raw: s, Valid: true}
}

func (l LegacyList) IsEmpty() bool {
	return !l.Valid || l.Raw == ""
}

// elements decodes the value as a JSON array. ok is false for NULL, for
// anything that is not valid JSON and for JSON that is not an array.
func (l LegacyList) elements() ([]string, bool) {
	if l.IsEmpty() {
		return nil, false
	}
	var v any
	if err := json.Unmarshal([]byte(l.Raw), &v); err != nil {
		return nil, false
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		out = append(out, elementString(e))
	}
	return out, true
}

// Items returns the decoded elements. Free text becomes a single element.
func (l LegacyList) Items() []string {
	if l.IsEmpty() {
		return []string{}
	}
	if items, ok := l.elements(); ok {
		return items
	}
	return []string{l.Raw}
}

func elementString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}

func (l *LegacyList) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*l = LegacyList{}
	case string:
		*l = LegacyList{Raw: v, Valid: true}
	case []byte:
		*l = LegacyList{Raw: string(v), Valid: true}
	default:
		return fmt.Errorf("profile: cannot scan %T into LegacyList", value)
	}
	return nil
}

func (l LegacyList) Value() (driver.Value, error) {
	if !l.Valid {
		return nil, nil
	}
	return l.Raw, nil
}

func (LegacyList) GormDataType() string { return "text" }

// MarshalJSON emits an array when the stored value decodes as one and the raw
// string otherwise.
func (l LegacyList) MarshalJSON() ([]byte, error) {
	if !l.Valid {
		return []byte("null"), nil
	}
	if items, ok := l.elements(); ok {
		return json.Marshal(items)
	}
	return json.Marshal(l.Raw)
}

// UnmarshalJSON accepts an array of strings, a plain string or null.
func (l *LegacyList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case trimmed == "null":
		*l = LegacyList{}
		return nil
	case strings.HasPrefix(trimmed, "["):
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("profile: list must contain strings: %w", err)
		}
		*l = ListOf(items...)
		return nil
	default:
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("profile: list must be an array or a string: %w", err)
		}
		*l = RawList(s)
		return nil
	}
}
