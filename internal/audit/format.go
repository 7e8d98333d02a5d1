package audit

import (
	"fmt"
	"time"
)

const (
	valueActive   = "active"
	valueInactive = "inactive"
)

type FieldInfo struct {
	Field string `json:"field"`
	Label string `json:"label"`
	Value string `json:"value"`
}

type FieldChange struct {
	Field string `json:"field"`
	Label string `json:"label"`
	From  string `json:"from"`
	To    string `json:"to"`
}

// Detail is the payload stored with each audit entry.
type Detail struct {
	ResourceType string         `json:"resourceType"`
	ResourceID   uint           `json:"resourceId,omitempty"`
	Details      any            `json:"details"`
	Extra        map[string]any `json:"extra,omitempty"`
}

type Formatter struct {
	labels *Labels
	locale string
}

func NewFormatter(labels *Labels, locale string) *Formatter {
	if labels == nil {
		labels = NewLabels()
	}
	if locale == "" {
		locale = DefaultLocale
	}
	return &Formatter{labels: labels, locale: locale}
}

// Info renders a snapshot as one {field, label, value} entry per field.
func (f *Formatter) Info(entity string, s Snapshot) []FieldInfo {
	out := make([]FieldInfo, 0, len(s))
	for _, fd := range s {
		out = append(out, FieldInfo{
			Field: fd.Name,
			Label: f.labels.Label(entity, fd.Name, f.locale),
			Value: FormatValue(fd.Value),
		})
	}
	return out
}

// Update renders a diff as one {field, label, from, to} entry per change.
func (f *Formatter) Update(entity string, changes Changes) []FieldChange {
	out := make([]FieldChange, 0, len(changes))
	for _, ch := range changes {
		out = append(out, FieldChange{
			Field: ch.Field,
			Label: f.labels.Label(entity, ch.Field, f.locale),
			From:  FormatValue(ch.From),
			To:    FormatValue(ch.To),
		})
	}
	return out
}

func CreatedMessage(performedBy, resourceType string) string {
	return fmt.Sprintf("%q created %s", performedBy, resourceType)
}

func UpdatedMessage(performedBy, resourceType string) string {
	return fmt.Sprintf("%q updated %s", performedBy, resourceType)
}

func DeletedMessage(performedBy, resourceType string) string {
	return fmt.Sprintf("%q deleted %s", performedBy, resourceType)
}

func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case bool:
		if t {
			return valueActive
		}
		return valueInactive
	case *bool:
		if t == nil {
			return ""
		}
		return FormatValue(*t)
	case string:
		return t
	case *string:
		if t == nil {
			return ""
		}
		return *t
	case time.Time:
		return t.Format(time.RFC3339)
	case *time.Time:
		if t == nil {
			return ""
		}
		return t.Format(time.RFC3339)
	case *uint:
		if t == nil {
			return ""
		}
		return fmt.Sprint(*t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}
