package partnerfile

import (
	"strconv"
	"strings"
)

// Segment is one element of a FieldPath. Array marks the segment as an array
// root; everything below it is scoped per array element. Index is only used
// for the column-positional nameParts array and is -1 everywhere else.
type Segment struct {
	Name  string
	Array bool
	Index int
}

// FieldPath is an ordered sequence of path segments addressing one field in a
// nested partner record.
type FieldPath []Segment

// String returns the canonical unabbreviated form, e.g.
// "address.physicalPostalAddress.city" or "nameParts[2]". Used as a map key;
// two columns with the same String() address the same field.
func (p FieldPath) String() string {
	b := &strings.Builder{}
	for i, seg := range p {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.Name)
		if seg.Index >= 0 {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(seg.Index))
			b.WriteByte(']')
		}
	}
	return b.String()
}

// namePartsField is the record field the column-positional name1..name9
// family maps to.
const namePartsField = "nameParts"

// maxNameParts bounds the name1..name9 column family.
const maxNameParts = 9

// expandAbbrev maps the abbreviated column segment to the full field name.
// "alternative" is accepted as an input alias for files written against older
// format revisions; toName always emits the canonical "alternate".
var expandAbbrev = map[string]string{
	"physical":    "physicalPostalAddress",
	"alternate":   "alternativePostalAddress",
	"alternative": "alternativePostalAddress",
}

var shortenAbbrev = map[string]string{
	"physicalPostalAddress":    "physical",
	"alternativePostalAddress": "alternate",
}

// arrayRoots lists the dotted field-path prefixes whose value is a list of
// sub-objects. The set is fixed by the upload format; unknown columns below
// these prefixes still belong to the array element.
var arrayRoots = map[string]bool{
	"identifiers":        true,
	"states":             true,
	"roles":              true,
	"legalEntity.states": true,
	"site.states":        true,
	"address.states":     true,
}

// ToPath converts a dotted column name to a FieldPath, expanding the
// documented abbreviations, rewriting name1..name9 to nameParts[i] and
// marking array roots. Unknown segment names pass through verbatim so that
// unrecognized nested fields are preserved rather than dropped.
func ToPath(name string) FieldPath {
	if i, ok := namePartIndex(name); ok {
		return FieldPath{{Name: namePartsField, Array: true, Index: i}}
	}
	raw := strings.Split(name, ".")
	p := make(FieldPath, 0, len(raw))
	for _, seg := range raw {
		if full, ok := expandAbbrev[seg]; ok {
			seg = full
		}
		p = append(p, Segment{Name: seg, Index: -1})
	}
	prefix := ""
	for i := range p {
		if i > 0 {
			prefix += "."
		}
		prefix += p[i].Name
		if arrayRoots[prefix] {
			p[i].Array = true
		}
	}
	return p
}

// ToName is the inverse of ToPath: it renders a FieldPath as the dotted
// column name, applying the abbreviation table and turning nameParts[i] back
// into the nameN column.
func ToName(p FieldPath) string {
	if len(p) == 1 && p[0].Name == namePartsField && p[0].Index >= 0 {
		return "name" + strconv.Itoa(p[0].Index+1)
	}
	parts := make([]string, 0, len(p))
	for _, seg := range p {
		name := seg.Name
		if short, ok := shortenAbbrev[name]; ok {
			name = short
		}
		parts = append(parts, name)
	}
	return strings.Join(parts, ".")
}

// arrayRootOf splits a FieldPath at its array root. It returns the dotted
// root name, the dotted sub-path below the root and true when the path lies
// under one of the recognized array roots. The nameParts pseudo-array is not
// an array root in this sense: its elements are positional by column, not by
// row.
func arrayRootOf(p FieldPath) (root, sub string, ok bool) {
	for i, seg := range p {
		if !seg.Array || seg.Index >= 0 {
			continue
		}
		names := make([]string, 0, len(p))
		for _, s := range p[:i+1] {
			names = append(names, s.Name)
		}
		root = strings.Join(names, ".")
		names = names[:0]
		for _, s := range p[i+1:] {
			names = append(names, s.Name)
		}
		sub = strings.Join(names, ".")
		return root, sub, true
	}
	return "", "", false
}

func namePartIndex(name string) (int, bool) {
	if len(name) != 5 || !strings.HasPrefix(name, "name") {
		return 0, false
	}
	n := int(name[4] - '0')
	if n < 1 || n > maxNameParts {
		return 0, false
	}
	return n - 1, true
}
