package partnerfile

// Column is one header cell resolved to its field path. Root and Sub are
// precomputed for grouping: Root is the dotted array-root name when the
// column lies under one ("" for scalar columns), Sub the dotted remainder
// below the root ("" for single-column roots such as "roles").
type Column struct {
	Name string // raw header cell, whitespace-collapsed
	Path FieldPath
	Root string
	Sub  string
}

// Scalar reports whether the column holds a plain per-record value. The
// column-positional nameParts family counts as scalar for grouping purposes:
// its array membership is by column, not by row.
func (c Column) Scalar() bool { return c.Root == "" }

// Schema is the ordered column-to-FieldPath mapping derived once from a
// header line and reused for every row of that file.
type Schema struct {
	Columns []Column
}

// BuildSchema parses the header row into a Schema. It is a pure function of
// the header text. It fails with schema-kind Issues when the header is empty,
// a column name is empty, or two columns resolve to the same field path.
func BuildSchema(header []string) (Schema, error) {
	if len(header) == 0 {
		return Schema{}, Issues{{Code: CodeEmptyHeader, Line: 1, Message: "header row has no columns"}}
	}
	var iss Issues
	cols := make([]Column, 0, len(header))
	seen := make(map[string]string, len(header))
	for _, name := range header {
		name = Collapse(name)
		if name == "" {
			iss = append(iss, Issue{Code: CodeEmptyColumn, Line: 1, Message: "empty column name in header"})
			continue
		}
		p := ToPath(name)
		key := p.String()
		if prev, dup := seen[key]; dup {
			iss = append(iss, Issue{Code: CodeDuplicateColumn, Line: 1, Column: name,
				Message: "resolves to the same field as column " + quote(prev)})
			continue
		}
		seen[key] = name
		col := Column{Name: name, Path: p}
		if root, sub, ok := arrayRootOf(p); ok {
			col.Root, col.Sub = root, sub
		}
		cols = append(cols, col)
	}
	if err := iss.OrNil(); err != nil {
		return Schema{}, err
	}
	return Schema{Columns: cols}, nil
}

// Index returns the position of the column with the given name, or -1.
func (s Schema) Index(name string) int {
	for i, c := range s.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Header returns the raw column names in order.
func (s Schema) Header() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// rootOrder returns the array roots present in the schema, ordered by the
// column where each root first appears. The encoder emits continuation rows
// grouped in this order.
func (s Schema) rootOrder() []string {
	var order []string
	seen := map[string]bool{}
	for _, c := range s.Columns {
		if c.Root == "" || seen[c.Root] {
			continue
		}
		seen[c.Root] = true
		order = append(order, c.Root)
	}
	return order
}

func quote(s string) string { return "\"" + s + "\"" }
