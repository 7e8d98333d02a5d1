package query

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/hospital-device-booking/internal/httperr"
)

type condition struct {
	field  string
	column string
	op     Operator
	value  any
}

// parseKey splits "usageDay[gte]" into ("usageDay", "gte").
func parseKey(key string) (string, Operator, error) {
	open := strings.IndexByte(key, '[')
	if open < 0 {
		return key, OpEq, nil
	}
	if !strings.HasSuffix(key, "]") || open == 0 {
		return "", "", fmt.Errorf("malformed filter key %q", key)
	}
	op := Operator(key[open+1 : len(key)-1])
	if !op.valid() {
		return "", "", fmt.Errorf("unknown operator %q in %q", op, key)
	}
	return key[:open], op, nil
}

func parseConditions(schema Schema, params map[string][]string) ([]condition, map[string]map[string]any, error) {
	keys := make([]string, 0, len(params))
	for k := range params {
		if !reservedKeys[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var conds []condition
	applied := map[string]map[string]any{}

	for _, key := range keys {
		raw := params[key]
		if len(raw) == 0 {
			continue
		}

		name, op, err := parseKey(key)
		if err != nil {
			return nil, nil, httperr.Validation("invalid_filter", err.Error())
		}
		field, ok := schema.Fields[name]
		if !ok {
			return nil, nil, httperr.Validation("invalid_filter", fmt.Sprintf("field %q cannot be filtered", name))
		}

		// /pattern/ on a string field is a regex match
		if field.Kind == String && op == OpEq && len(raw) == 1 && isRegexLiteral(raw[0]) {
			op = OpRegex
			raw = []string{raw[0][1 : len(raw[0])-1]}
		}
		if op == OpEq && len(raw) > 1 {
			op = OpIn
		}
		if !field.allows(op) {
			return nil, nil, httperr.Validation("invalid_filter", fmt.Sprintf("operator %q is not allowed on %q", op, name))
		}

		value, err := coerce(field, op, raw)
		if err != nil {
			return nil, nil, httperr.Validation("invalid_filter", fmt.Sprintf("%s: %v", name, err))
		}

		conds = append(conds, condition{field: name, column: field.Column, op: op, value: value})
		if applied[name] == nil {
			applied[name] = map[string]any{}
		}
		applied[name][string(op)] = value
	}

	return conds, applied, nil
}

func isRegexLiteral(s string) bool {
	return len(s) >= 2 && strings.HasPrefix(s, "/") && strings.HasSuffix(s, "/")
}

func coerce(f Field, op Operator, raw []string) (any, error) {
	if op == OpIn || op == OpNin {
		var parts []string
		for _, r := range raw {
			for _, p := range strings.Split(r, ",") {
				if p = strings.TrimSpace(p); p != "" {
					parts = append(parts, p)
				}
			}
		}
		if len(parts) == 0 {
			return nil, fmt.Errorf("empty list")
		}
		values := make([]any, 0, len(parts))
		for _, p := range parts {
			v, err := coerceOne(f.Kind, p)
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
		return values, nil
	}

	if len(raw) != 1 {
		return nil, fmt.Errorf("operator %q takes a single value", op)
	}

	if op == OpRegex {
		if _, err := regexp.Compile(raw[0]); err != nil {
			return nil, fmt.Errorf("invalid pattern")
		}
		return raw[0], nil
	}

	return coerceOne(f.Kind, raw[0])
}

func coerceOne(kind Kind, s string) (any, error) {
	switch kind {
	case Number:
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", s)
		}
		return f, nil
	case Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("%q is not a boolean", s)
		}
		return b, nil
	case Time:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return nil, fmt.Errorf("%q is not a date", s)
	default:
		return s, nil
	}
}

func (c condition) expression(dialect string) clause.Expression {
	col := clause.Column{Name: c.column}
	switch c.op {
	case OpNe:
		return clause.Neq{Column: col, Value: c.value}
	case OpGt:
		return clause.Gt{Column: col, Value: c.value}
	case OpGte:
		return clause.Gte{Column: col, Value: c.value}
	case OpLt:
		return clause.Lt{Column: col, Value: c.value}
	case OpLte:
		return clause.Lte{Column: col, Value: c.value}
	case OpIn:
		return clause.IN{Column: col, Values: c.value.([]any)}
	case OpNin:
		return clause.Not(clause.IN{Column: col, Values: c.value.([]any)})
	case OpRegex:
		if dialect == "postgres" {
			return clause.Expr{SQL: "? ~ ?", Vars: []any{col, c.value}}
		}
		return clause.Expr{SQL: "? REGEXP ?", Vars: []any{col, c.value}}
	default:
		return clause.Eq{Column: col, Value: c.value}
	}
}
