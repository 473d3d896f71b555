package partnerfile

import (
	"slices"
	"strconv"
	"strings"
)

// grouper folds an ordered row sequence into sealed records. It carries the
// current open record as an explicit accumulator; sealing happens when the
// external identifier changes or input ends. A record that produced an issue
// is poisoned: its remaining rows are consumed without effect and the record
// is reported instead of emitted, so decoding resumes cleanly with the next
// identifier.
type grouper struct {
	s        Schema
	idIdx    int
	required []int // column indexes that must be non-empty on sealed records

	out  []Record
	iss  Issues
	cur  Record
	open bool
	bad  bool
	line int // main line of the current record
}

func (g *grouper) row(line int, row []string) {
	if len(row) != len(g.s.Columns) {
		g.iss = append(g.iss, Issue{Code: CodeRowWidth, Line: line,
			Message: "expected " + strconv.Itoa(len(g.s.Columns)) + " cells, found " + strconv.Itoa(len(row))})
		g.bad = g.open // a malformed row poisons the open record but nothing else
		return
	}
	cells := make([]string, len(row))
	for i, v := range row {
		cells[i] = Collapse(v)
	}
	id := cells[g.idIdx]
	if !g.open || id != g.cur.ExternalID {
		g.seal()
		g.openRecord(line, id, cells)
		return
	}
	if g.bad {
		return
	}
	g.continuation(line, cells)
}

// openRecord seeds a new record from its main line: every non-empty scalar
// cell populates a scalar field, every non-empty cell under an array root
// populates the index-0 element of that array.
func (g *grouper) openRecord(line int, id string, cells []string) {
	g.cur = NewRecord(id)
	g.open = true
	g.bad = false
	g.line = line

	first := map[string]*Element{}
	for i, col := range g.s.Columns {
		v := cells[i]
		if v == "" || i == g.idIdx {
			continue
		}
		switch {
		case col.Root != "":
			e := first[col.Root]
			if e == nil {
				e = &Element{}
				first[col.Root] = e
			}
			if col.Sub == "" {
				e.Value = v
			} else {
				if e.Fields == nil {
					e.Fields = map[string]string{}
				}
				e.Fields[col.Sub] = v
			}
		case col.Path[0].Name == namePartsField && col.Path[0].Index >= 0:
			g.cur.SetNamePart(col.Path[0].Index, v)
		default:
			g.cur.SetScalar(col.Path.String(), v)
		}
	}
	// index-0 elements in schema root order, so arrays come out deterministic
	for _, root := range g.s.rootOrder() {
		if e, ok := first[root]; ok {
			g.cur.Append(root, *e)
		}
	}
}

// continuation merges a row into the open record. Exactly one array root must
// have data; any non-empty cell outside that root (other than the identifier)
// is a format violation.
func (g *grouper) continuation(line int, cells []string) {
	var roots []string
	e := Element{}
	for i, col := range g.s.Columns {
		v := cells[i]
		if v == "" || i == g.idIdx {
			continue
		}
		if col.Root == "" {
			g.poison(Issue{Code: CodeContinuationField, Line: line, Column: col.Name, ExternalID: g.cur.ExternalID,
				Message: "only array columns may be set on a continuation row"})
			return
		}
		if !slices.Contains(roots, col.Root) {
			roots = append(roots, col.Root)
		}
		if col.Sub == "" {
			e.Value = v
		} else {
			if e.Fields == nil {
				e.Fields = map[string]string{}
			}
			e.Fields[col.Sub] = v
		}
	}
	switch {
	case len(roots) == 0:
		g.poison(Issue{Code: CodeContinuationEmpty, Line: line, ExternalID: g.cur.ExternalID,
			Message: "continuation row sets no array column"})
	case len(roots) > 1:
		g.poison(Issue{Code: CodeContinuationAmbiguous, Line: line, ExternalID: g.cur.ExternalID,
			Message: "continuation row spans array roots " + strings.Join(roots, ", ")})
	default:
		g.cur.Append(roots[0], e)
	}
}

func (g *grouper) poison(i Issue) {
	g.iss = append(g.iss, i)
	g.bad = true
}

// seal closes the open record, validates the required fields and either
// emits it or reports it. Sealed records are immutable downstream.
func (g *grouper) seal() {
	if !g.open {
		return
	}
	g.open = false
	if g.bad {
		return
	}
	ok := true
	for _, idx := range g.required {
		col := g.s.Columns[idx]
		v := g.recordValue(col)
		if idx == g.idIdx {
			v = g.cur.ExternalID
		}
		if v == "" {
			g.iss = append(g.iss, Issue{Code: CodeRequiredField, Line: g.line, Column: col.Name,
				ExternalID: g.cur.ExternalID, Message: "required field is missing or empty"})
			ok = false
		}
	}
	if ok {
		g.out = append(g.out, g.cur)
	}
}

// recordValue reads back the value a column contributed to the record, for
// required-field validation.
func (g *grouper) recordValue(col Column) string {
	if col.Root != "" {
		if els := g.cur.Arrays[col.Root]; len(els) > 0 {
			return els[0].Field(col.Sub)
		}
		return ""
	}
	if col.Path[0].Name == namePartsField && col.Path[0].Index >= 0 {
		if col.Path[0].Index < len(g.cur.NameParts) {
			return g.cur.NameParts[col.Path[0].Index]
		}
		return ""
	}
	return g.cur.Scalar(col.Path.String())
}
