package audit

import "reflect"

type Field struct {
	Name  string
	Value any
}

// Snapshot is an ordered view of an entity's fields.
type Snapshot []Field

func (s Snapshot) Get(name string) (any, bool) {
	for _, f := range s {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

type Change struct {
	Field string `json:"field"`
	From  any    `json:"from"`
	To    any    `json:"to"`
}

type Changes []Change

func (c Changes) Empty() bool { return len(c) == 0 }

func (c Changes) Map() map[string]Change {
	m := make(map[string]Change, len(c))
	for _, ch := range c {
		m[ch.Field] = ch
	}
	return m
}

// Diff compares only the listed fields and returns the ones whose values
// differ, in the order of fields. Anything outside fields is ignored.
func Diff(before, after Snapshot, fields []string) Changes {
	if len(fields) == 0 {
		return nil
	}

	var out Changes
	for _, name := range fields {
		from, inBefore := before.Get(name)
		to, inAfter := after.Get(name)
		if !inBefore && !inAfter {
			continue
		}
		if reflect.DeepEqual(from, to) {
			continue
		}
		out = append(out, Change{Field: name, From: from, To: to})
	}
	return out
}
