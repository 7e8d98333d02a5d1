package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/hospital-device-booking/internal/httperr"
)

type SortField struct {
	Field string
	Desc  bool
}

func (s SortField) order() string {
	if s.Desc {
		return "desc"
	}
	return "asc"
}

// SortSpec keeps sort keys in priority order, also when serialized.
type SortSpec []SortField

func (s SortSpec) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Field)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteString(`:"` + f.order() + `"`)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// parseSort reads "field:asc,other:desc". A token without a valid
// direction, or naming a field outside the schema, is rejected.
func parseSort(schema Schema, raw string) (SortSpec, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return append(SortSpec(nil), schema.DefaultSort...), nil
	}

	var spec SortSpec
	seen := map[string]bool{}
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		name, dir, ok := strings.Cut(token, ":")
		if !ok {
			return nil, httperr.Validation("invalid_sort", fmt.Sprintf("sort token %q needs :asc or :desc", token))
		}
		dir = strings.ToLower(strings.TrimSpace(dir))
		if dir != "asc" && dir != "desc" {
			return nil, httperr.Validation("invalid_sort", fmt.Sprintf("sort token %q needs :asc or :desc", token))
		}
		name = strings.TrimSpace(name)
		f, ok := schema.Fields[name]
		if !ok || f.NoSort {
			return nil, httperr.Validation("invalid_sort", fmt.Sprintf("field %q cannot be sorted", name))
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		spec = append(spec, SortField{Field: name, Desc: dir == "desc"})
	}

	if len(spec) == 0 {
		return nil, httperr.Validation("invalid_sort", "no valid sort field")
	}
	return spec, nil
}

func (s SortSpec) orderBy(schema Schema) []clause.OrderByColumn {
	out := make([]clause.OrderByColumn, 0, len(s))
	for _, f := range s {
		col := f.Field
		if fd, ok := schema.Fields[f.Field]; ok {
			col = fd.Column
		}
		out = append(out, clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: f.Desc})
	}
	return out
}
