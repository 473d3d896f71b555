package partnerfile

import (
	"context"

	"github.com/bpdmkit/partnerfile/source"
)

// DefaultIdentifierColumn correlates batch rows with the caller's system.
const DefaultIdentifierColumn = "externalId"

// Options configure a Codec. The zero value sniffs the delimiter on decode,
// writes semicolons on encode and requires only the external identifier.
type Options struct {
	// Delimiter fixes the field delimiter. 0 means sniff on decode and
	// semicolon on encode.
	Delimiter rune
	// IdentifierColumn names the external-identifier column. Defaults to
	// "externalId".
	IdentifierColumn string
	// Required lists column names that must be non-empty on every sealed
	// record, e.g. "name1". The identifier column is always required. Which
	// name fields are mandatory differs between format versions, so this is
	// configuration rather than a constant.
	Required []string
}

// Codec orchestrates schema, grouper and encoder. It holds no mutable state;
// one Codec may be used concurrently as long as each call owns its rows.
type Codec struct {
	schema   Schema
	opt      Options
	idIdx    int
	required []int
}

// New builds a Codec for the schema. It fails with a schema-kind issue when
// the identifier column or a required column is not part of the schema.
func New(schema Schema, opt Options) (*Codec, error) {
	if opt.IdentifierColumn == "" {
		opt.IdentifierColumn = DefaultIdentifierColumn
	}
	var iss Issues
	idIdx := schema.Index(opt.IdentifierColumn)
	if idIdx < 0 {
		iss = append(iss, Issue{Code: CodeMissingColumn, Column: opt.IdentifierColumn,
			Message: "identifier column is missing"})
	}
	required := []int{}
	if idIdx >= 0 {
		required = append(required, idIdx)
	}
	for _, name := range opt.Required {
		idx := schema.Index(name)
		if idx < 0 {
			iss = append(iss, Issue{Code: CodeMissingColumn, Column: name,
				Message: "required column is missing"})
			continue
		}
		if idx != idIdx {
			required = append(required, idx)
		}
	}
	if err := iss.OrNil(); err != nil {
		return nil, err
	}
	return &Codec{schema: schema, opt: opt, idIdx: idIdx, required: required}, nil
}

// Schema returns the column mapping the codec was built with.
func (c *Codec) Schema() Schema { return c.schema }

// DecodeRows groups ordered data rows into sealed records. Line numbers in
// issues count the header as line 1, so the first data row is line 2.
//
// Errors are isolated per record: a record that produced an issue is
// reported, not emitted, and decoding resumes with the next identifier. Both
// return values are meaningful when err is non-nil.
func (c *Codec) DecodeRows(ctx context.Context, rows [][]string) ([]Record, error) {
	g := &grouper{s: c.schema, idIdx: c.idIdx, required: c.required}
	for i, row := range rows {
		g.row(i+2, row)
	}
	g.seal()
	recs := g.out
	if recs == nil {
		recs = []Record{}
	}
	return recs, g.iss.OrNil()
}

// EncodeRecords is the inverse of DecodeRows: it renders each record as a
// main row plus continuation rows, in record order. The header row is not
// included; see EncodeText.
func (c *Codec) EncodeRecords(ctx context.Context, records []Record) ([][]string, error) {
	var iss Issues
	rows := [][]string{}
	for _, r := range records {
		if r.ExternalID == "" {
			iss = append(iss, Issue{Code: CodeRequiredField, Column: c.opt.IdentifierColumn,
				Message: "record has no external identifier"})
			continue
		}
		rows = append(rows, encodeRecord(c.schema, c.idIdx, r)...)
	}
	return rows, iss.OrNil()
}

// EncodeText renders records as a complete file: header line plus data rows,
// using the configured delimiter (semicolon by default) and LF line endings.
func (c *Codec) EncodeText(ctx context.Context, records []Record) ([]byte, error) {
	body, err := c.EncodeRecords(ctx, records)
	if err != nil {
		return nil, err
	}
	delim := c.opt.Delimiter
	if delim == 0 {
		delim = ';'
	}
	rows := append([][]string{c.schema.Header()}, body...)
	return source.WriteAll(rows, delim)
}

// DecodeText is the decode entry point for raw upload bytes: it strips the
// BOM, sniffs the delimiter unless one is configured, derives the schema
// from the header line and groups the remaining rows. The schema is returned
// alongside the records so callers can re-encode against it.
func DecodeText(ctx context.Context, data []byte, opt Options) (Schema, []Record, error) {
	delim := opt.Delimiter
	if delim == 0 {
		var err error
		delim, err = source.Sniff(data)
		if err != nil {
			return Schema{}, nil, Issues{{Code: CodeNoDelimiter, Line: 1, Message: err.Error(), Cause: err}}
		}
	}
	rows, err := source.ReadAll(data, delim)
	if err != nil {
		return Schema{}, nil, Issues{{Code: CodeRowWidth, Message: "malformed delimited text", Cause: err}}
	}
	if len(rows) == 0 {
		return Schema{}, nil, Issues{{Code: CodeEmptyHeader, Line: 1, Message: "file has no header line"}}
	}
	schema, err := BuildSchema(rows[0])
	if err != nil {
		return Schema{}, nil, err
	}
	c, err := New(schema, opt)
	if err != nil {
		return Schema{}, nil, err
	}
	recs, err := c.DecodeRows(ctx, rows[1:])
	return schema, recs, err
}

// IsKind reports whether err carries at least one issue of the given kind.
func IsKind(err error, k Kind) bool {
	iss, ok := AsIssues(err)
	if !ok {
		return false
	}
	for _, i := range iss {
		if i.Kind() == k {
			return true
		}
	}
	return false
}
