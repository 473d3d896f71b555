package partnerfile

// encodeRecord renders a record as rows under the schema: one main row with
// all scalar fields and the index-0 element of every array root, then one
// continuation row per remaining element. Continuation rows are grouped by
// array root in schema column order, elements by index, each carrying the
// external identifier and nothing outside its own root. This is the exact
// inverse of the grouper for well-formed records.
func encodeRecord(s Schema, idIdx int, r Record) [][]string {
	rows := [][]string{mainRow(s, idIdx, r)}
	for _, root := range s.rootOrder() {
		els := r.Arrays[root]
		for i := 1; i < len(els); i++ {
			rows = append(rows, continuationRow(s, idIdx, r.ExternalID, root, els[i]))
		}
	}
	return rows
}

func mainRow(s Schema, idIdx int, r Record) []string {
	row := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		if i == idIdx {
			row[i] = r.ExternalID
			continue
		}
		switch {
		case col.Root != "":
			if els := r.Arrays[col.Root]; len(els) > 0 {
				row[i] = els[0].Field(col.Sub)
			}
		case col.Path[0].Name == namePartsField && col.Path[0].Index >= 0:
			if idx := col.Path[0].Index; idx < len(r.NameParts) {
				row[i] = r.NameParts[idx]
			}
		default:
			row[i] = r.Scalar(col.Path.String())
		}
	}
	return row
}

func continuationRow(s Schema, idIdx int, externalID, root string, e Element) []string {
	row := make([]string, len(s.Columns))
	row[idIdx] = externalID
	for i, col := range s.Columns {
		if col.Root == root {
			row[i] = e.Field(col.Sub)
		}
	}
	return row
}
