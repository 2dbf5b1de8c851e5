package validation

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Record is a submitted form: field name to (normalized) value.
type Record map[string]string

// Get returns the value for field, or "" when absent.
func (r Record) Get(field string) string { return r[field] }

// Has reports whether field carries a non-empty value.
func (r Record) Has(field string) bool { return r[field] != "" }

// FieldError is one violated constraint.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is the Invalid outcome: every violation, in field-declaration order.
type Errors struct {
	Fields []FieldError
}

func (e *Errors) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field has at least one violation.
func (e *Errors) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Field declares the rules for one input. Aliases are alternate input keys;
// the first non-empty of Name, Aliases... is used and stored under Name.
type Field struct {
	Name    string
	Label   string
	Aliases []string
	Rules   []Rule
}

// F builds a Field.
func F(name, label string, rules ...Rule) Field {
	return Field{Name: name, Label: label, Rules: rules}
}

// Or adds alternate input keys to the field.
func (f Field) Or(aliases ...string) Field {
	f.Aliases = append(append([]string(nil), f.Aliases...), aliases...)
	return f
}

// Schema is an ordered rule table.
type Schema []Field

// Names lists the canonical field names in declaration order.
func (s Schema) Names() []string {
	out := make([]string, 0, len(s))
	for _, f := range s {
		out = append(out, f.Name)
	}
	return out
}

// Validate evaluates every field (no short-circuit across fields) and
// returns either the normalized Record or *Errors. Keys not declared in the
// schema are dropped.
func (s Schema) Validate(raw map[string]any) (Record, error) {
	out := make(Record, len(s))
	var violations []FieldError

	for _, field := range s {
		value, ok := field.lookup(raw)
		if !ok {
			violations = append(violations, FieldError{Field: field.Name, Message: field.Label + " must be text"})
			continue
		}

		for _, rule := range field.Rules {
			if rule.normalize != nil {
				value = rule.normalize(value)
			}
		}

		if value == "" {
			if field.required() {
				violations = append(violations, FieldError{Field: field.Name, Message: field.Label + " is required"})
			}
			continue
		}

		fieldOK := true
		for _, rule := range field.Rules {
			if rule.kind != kindCheck {
				continue
			}
			if !rule.check(value) {
				fieldOK = false
				violations = append(violations, FieldError{Field: field.Name, Message: fmt.Sprintf(rule.message, field.Label)})
			}
		}
		if fieldOK {
			out[field.Name] = value
		}
	}

	if len(violations) > 0 {
		return nil, &Errors{Fields: violations}
	}
	return out, nil
}

func (f Field) required() bool {
	for _, r := range f.Rules {
		if r.kind == kindRequired {
			return true
		}
	}
	return false
}

// lookup returns the first non-blank value among the field's keys; ok is
// false when that key holds an object or array.
func (f Field) lookup(raw map[string]any) (string, bool) {
	keys := append([]string{f.Name}, f.Aliases...)
	for _, k := range keys {
		v, present := raw[k]
		if !present || v == nil {
			continue
		}
		s, ok := scalarString(v)
		if !ok {
			return "", false
		}
		if strings.TrimSpace(s) != "" {
			return s, true
		}
	}
	return "", true
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}
