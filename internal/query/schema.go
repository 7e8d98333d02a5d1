package query

type Operator string

const (
	OpEq    Operator = "eq"
	OpNe    Operator = "ne"
	OpGt    Operator = "gt"
	OpGte   Operator = "gte"
	OpLt    Operator = "lt"
	OpLte   Operator = "lte"
	OpIn    Operator = "in"
	OpNin   Operator = "nin"
	OpRegex Operator = "regex"
)

func (o Operator) valid() bool {
	switch o {
	case OpEq, OpNe, OpGt, OpGte, OpLt, OpLte, OpIn, OpNin, OpRegex:
		return true
	}
	return false
}

type Kind int

const (
	String Kind = iota
	Number
	Bool
	Time
)

// Field describes one filterable/sortable attribute of an entity as it is
// named in query strings.
type Field struct {
	Column string
	Kind   Kind
	// Ops restricts the operators accepted for the field; nil means the
	// defaults for Kind.
	Ops []Operator
	// NoSort excludes the field from the sort whitelist.
	NoSort bool
}

func (f Field) allows(op Operator) bool {
	ops := f.Ops
	if ops == nil {
		ops = defaultOps[f.Kind]
	}
	for _, o := range ops {
		if o == op {
			return true
		}
	}
	return false
}

var defaultOps = map[Kind][]Operator{
	String: {OpEq, OpNe, OpIn, OpNin, OpRegex},
	Number: {OpEq, OpNe, OpGt, OpGte, OpLt, OpLte, OpIn, OpNin},
	Time:   {OpEq, OpNe, OpGt, OpGte, OpLt, OpLte},
	Bool:   {OpEq, OpNe},
}

// Relation is an expandable association. Columns is the projection loaded
// for it and ForeignKey the local column it hangs off.
type Relation struct {
	Preload    string
	Columns    []string
	ForeignKey string
}

type Schema struct {
	Fields    map[string]Field
	Relations map[string]Relation
	// DefaultSort applies when the request carries no sort.
	DefaultSort []SortField
}

var reservedKeys = map[string]bool{
	"page":      true,
	"sort":      true,
	"limit":     true,
	"fields":    true,
	"sortBy":    true,
	"sortOrder": true,
	"populate":  true,
	"count":     true,
}
