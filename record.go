package partnerfile

// Element is one member of an array root. For multi-column roots such as
// "identifiers" the Fields map carries the sub-path cells ("type", "value",
// ...). For single-column roots such as "roles" the element is the bare cell
// value and Fields is nil. An element never contains another array: the
// format cannot represent nested repetition.
type Element struct {
	Value  string
	Fields map[string]string
}

// Field returns the element value for the dotted sub-path ("" addresses the
// bare value of a single-column root).
func (e Element) Field(sub string) string {
	if sub == "" {
		return e.Value
	}
	return e.Fields[sub]
}

// Record is the logical unit of a batch: one business partner addressed by
// the caller's external identifier.
//
// Scalars maps the canonical (unabbreviated) dotted path to the raw cell
// value; only non-empty cells are present. NameParts holds the positional
// name1..name9 columns; trailing empty slots are trimmed, inner gaps are
// kept so that encoding restores each part to its original column. Arrays
// maps each array root to its elements in row encounter order.
type Record struct {
	ExternalID string
	NameParts  []string
	Scalars    map[string]string
	Arrays     map[string][]Element
}

// NewRecord returns an empty record for the given external identifier.
func NewRecord(externalID string) Record {
	return Record{
		ExternalID: externalID,
		Scalars:    map[string]string{},
		Arrays:     map[string][]Element{},
	}
}

// Scalar returns the value stored under the canonical dotted path, or "".
func (r Record) Scalar(path string) string { return r.Scalars[path] }

// SetScalar stores a value under the canonical dotted path. Empty values are
// ignored so that records never carry empty cells.
func (r *Record) SetScalar(path, value string) {
	if value == "" {
		return
	}
	r.Scalars[path] = value
}

// SetNamePart stores the value of the nameN column at position i (0-based).
func (r *Record) SetNamePart(i int, value string) {
	if value == "" {
		return
	}
	for len(r.NameParts) <= i {
		r.NameParts = append(r.NameParts, "")
	}
	r.NameParts[i] = value
}

// Append adds an element to the array root, preserving row encounter order.
func (r *Record) Append(root string, e Element) {
	r.Arrays[root] = append(r.Arrays[root], e)
}
