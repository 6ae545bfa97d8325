package resource

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/arzan03/ConsultCMS/internal/apperr"
	"github.com/arzan03/ConsultCMS/internal/store"
	"github.com/goccy/go-json"
)

type writeMode int

const (
	modeCreate writeMode = iota
	modeMerge
	modeReplace
)

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// prepare validates input against the schema and returns the fields to set and to unset.
// Fields not declared by the schema are ignored.
func (s *Schema) prepare(input map[string]any, mode writeMode) (store.Document, []string, error) {
	set := store.Document{}
	var unset []string
	var problems []string

	for _, f := range s.Fields {
		raw, present := input[f.Name]

		var value any
		empty := true
		if present {
			v, isEmpty, err := coerce(f, raw)
			if err != nil {
				problems = append(problems, err.Error())
				continue
			}
			value, empty = v, isEmpty
		}

		switch {
		case !empty:
			set[f.Name] = value

		case f.Kind == Password && mode != modeCreate:
			// passwords only change when a new one is supplied

		case mode == modeMerge:
			if !present {
				continue
			}
			if f.Required {
				problems = append(problems, fmt.Sprintf("%s cannot be empty", f.Name))
				continue
			}
			unset = append(unset, f.Name)

		case mode == modeReplace && f.KeepWhenOmitted:
			// e.g. an image is only replaced when a new one is supplied

		case f.Default != nil:
			set[f.Name] = f.Default

		case f.Required:
			problems = append(problems, fmt.Sprintf("%s is required", f.Name))

		case mode == modeReplace:
			unset = append(unset, f.Name)
		}
	}

	if len(problems) > 0 {
		return nil, nil, apperr.Validation("%s", strings.Join(problems, ", "))
	}
	return set, unset, nil
}

// coerce converts a JSON or form value to the field's kind. The bool result reports an
// empty value (nil, blank string, empty list).
func coerce(f Field, raw any) (any, bool, error) {
	if raw == nil {
		return nil, true, nil
	}

	switch f.Kind {
	case String, Text, Email, File, Ref, Password, Enum:
		s, ok := raw.(string)
		if !ok {
			return nil, false, fmt.Errorf("%s must be a string", f.Name)
		}
		if f.Kind != Text && f.Kind != Password {
			s = strings.TrimSpace(s)
		}
		if f.Lowercase {
			s = strings.ToLower(s)
		}
		if s == "" {
			return nil, true, nil
		}
		if f.MaxLength > 0 && utf8.RuneCountInString(s) > f.MaxLength {
			return nil, false, fmt.Errorf("%s must be at most %d characters", f.Name, f.MaxLength)
		}
		if f.Kind == Enum && !contains(f.Values, s) {
			return nil, false, fmt.Errorf("%s must be one of: %s", f.Name, strings.Join(f.Values, ", "))
		}
		if f.Kind == Email && !looksLikeEmail(s) {
			return nil, false, fmt.Errorf("%s must be a valid email address", f.Name)
		}
		return s, false, nil

	case Date:
		switch v := raw.(type) {
		case time.Time:
			return v.UTC(), v.IsZero(), nil
		case string:
			v = strings.TrimSpace(v)
			if v == "" {
				return nil, true, nil
			}
			for _, layout := range dateLayouts {
				if t, err := time.Parse(layout, v); err == nil {
					return t.UTC(), false, nil
				}
			}
		}
		return nil, false, fmt.Errorf("%s must be a date (YYYY-MM-DD or RFC 3339)", f.Name)

	case Bool:
		switch v := raw.(type) {
		case bool:
			return v, false, nil
		case string:
			v = strings.TrimSpace(v)
			if v == "" {
				return nil, true, nil
			}
			if v == "on" {
				return true, false, nil
			}
			if b, err := strconv.ParseBool(v); err == nil {
				return b, false, nil
			}
		}
		return nil, false, fmt.Errorf("%s must be true or false", f.Name)

	case Number:
		switch v := raw.(type) {
		case float64:
			return v, false, nil
		case int:
			return float64(v), false, nil
		case string:
			v = strings.TrimSpace(v)
			if v == "" {
				return nil, true, nil
			}
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				return n, false, nil
			}
		}
		return nil, false, fmt.Errorf("%s must be a number", f.Name)

	case StringList:
		list, err := toStringList(raw)
		if err != nil {
			return nil, false, fmt.Errorf("%s must be a list of strings", f.Name)
		}
		return list, len(list) == 0, nil
	}

	return nil, false, fmt.Errorf("%s has an unsupported type", f.Name)
}

func toStringList(raw any) ([]string, error) {
	var items []string
	switch v := raw.(type) {
	case []string:
		items = v
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("non-string item %v", item)
			}
			items = append(items, s)
		}
	case string:
		v = strings.TrimSpace(v)
		if strings.HasPrefix(v, "[") {
			if err := json.Unmarshal([]byte(v), &items); err != nil {
				return nil, err
			}
		} else if v != "" {
			items = strings.Split(v, ",")
		}
	default:
		return nil, fmt.Errorf("unsupported list %T", raw)
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out, nil
}

func looksLikeEmail(s string) bool {
	at := strings.LastIndex(s, "@")
	return at > 0 && at < len(s)-1 && !strings.ContainsAny(s, " \t") && strings.Contains(s[at:], ".")
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
